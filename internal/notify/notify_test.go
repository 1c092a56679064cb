package notify

import (
	"context"
	"testing"
	"time"

	"github.com/watersafety/asset-management-backend/internal/domain"
)

func TestFilterExpiringSoon(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		expiry string
		want   bool
	}{
		{"2025-06-15", true},  // inside the 30-day window
		{"2025-05-01", true},  // already expired
		{"2025-07-01", true},  // exactly 30 days out
		{"2025-08-01", false}, // beyond the window
		{"", false},
		{"not-a-date", false},
	}
	for _, tt := range tests {
		asset := domain.Asset{FilterExpiryDate: tt.expiry}
		if got := FilterExpiringSoon(asset, now); got != tt.want {
			t.Errorf("FilterExpiringSoon(%q) = %v, want %v", tt.expiry, got, tt.want)
		}
	}
}

func TestLocalNotifierRecords(t *testing.T) {
	n := NewLocalNotifier()
	ctx := context.Background()

	asset := domain.Asset{AssetBarcode: "WT-001", AssetType: "Water Tap", Room: "Kitchen", FilterExpiryDate: "2025-06-15"}
	if err := n.AssetCreated(ctx, asset); err != nil {
		t.Fatalf("AssetCreated: %v", err)
	}
	if err := n.FilterExpiryAlert(ctx, asset); err != nil {
		t.Fatalf("FilterExpiryAlert: %v", err)
	}

	sent := n.Sent()
	if len(sent) != 2 {
		t.Fatalf("recorded %d messages, want 2", len(sent))
	}
	if sent[0].Subject != "Asset WT-001 registered" {
		t.Errorf("subject = %q", sent[0].Subject)
	}
	if sent[1].Subject != "Filter expiring on WT-001" {
		t.Errorf("subject = %q", sent[1].Subject)
	}
	if sent[0].SentAt == "" {
		t.Error("SentAt not stamped")
	}
}
