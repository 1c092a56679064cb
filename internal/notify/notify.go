package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/watersafety/asset-management-backend/internal/domain"
)

// Notifier delivers maintenance notifications. Delivery failures are the
// caller's to log; they never fail the mutation that triggered them.
type Notifier interface {
	AssetCreated(ctx context.Context, asset domain.Asset) error
	FilterExpiryAlert(ctx context.Context, asset domain.Asset) error
}

// FilterExpiringSoon reports whether an asset's filter expiry date falls
// within the next 30 days (or has already passed). Assets without a parseable
// expiry date never alert.
func FilterExpiringSoon(asset domain.Asset, now time.Time) bool {
	if asset.FilterExpiryDate == "" {
		return false
	}
	expiry, err := time.Parse(domain.ISODate, asset.FilterExpiryDate)
	if err != nil {
		return false
	}
	return !expiry.After(now.AddDate(0, 0, 30))
}

// Message is one recorded local notification.
type Message struct {
	Subject string
	Body    string
	SentAt  string
}

// LocalNotifier stands in for SNS in local mode: it logs each notification
// and keeps it in memory for inspection.
type LocalNotifier struct {
	mu   sync.Mutex
	sent []Message
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{}
}

func (n *LocalNotifier) record(subject, body string) {
	log.Info().Str("subject", subject).Str("body", body).Msg("local notification")
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Message{
		Subject: subject,
		Body:    body,
		SentAt:  domain.NowISO(),
	})
}

func (n *LocalNotifier) AssetCreated(ctx context.Context, asset domain.Asset) error {
	n.record("Asset "+asset.AssetBarcode+" registered",
		"New asset of type "+asset.AssetType+" in "+asset.Room)
	return nil
}

func (n *LocalNotifier) FilterExpiryAlert(ctx context.Context, asset domain.Asset) error {
	n.record("Filter expiring on "+asset.AssetBarcode,
		"Filter expires "+asset.FilterExpiryDate+", schedule a replacement")
	return nil
}

// Sent returns a copy of everything recorded so far.
func (n *LocalNotifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.sent))
	copy(out, n.sent)
	return out
}
