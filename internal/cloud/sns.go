package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/watersafety/asset-management-backend/internal/domain"
)

// SNSNotifier publishes maintenance notifications to an SNS topic.
type SNSNotifier struct {
	svc      *sns.Client
	topicArn string
}

// NewSNSNotifier creates an SNS client for the given topic.
func NewSNSNotifier(ctx context.Context, region, topicArn string) (*SNSNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &SNSNotifier{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

func (n *SNSNotifier) publish(ctx context.Context, subject, message string) error {
	result, err := n.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	log.Info().Str("messageId", aws.ToString(result.MessageId)).Str("subject", subject).Msg("notification sent")
	return nil
}

// AssetCreated announces a newly registered asset.
func (n *SNSNotifier) AssetCreated(ctx context.Context, asset domain.Asset) error {
	subject := fmt.Sprintf("Water Safety: Asset %s registered", asset.AssetBarcode)
	message := fmt.Sprintf(
		"New Asset Registered\n\n"+
			"Barcode: %s\n"+
			"Type: %s\n"+
			"Location: %s, %s\n"+
			"Registered By: %s\n"+
			"Time: %s\n",
		asset.AssetBarcode,
		asset.AssetType,
		asset.Wing,
		asset.Room,
		asset.CreatedBy,
		time.Now().Format(time.RFC3339),
	)
	return n.publish(ctx, subject, message)
}

// FilterExpiryAlert warns that an asset's filter is expired or close to it.
func (n *SNSNotifier) FilterExpiryAlert(ctx context.Context, asset domain.Asset) error {
	subject := fmt.Sprintf("Water Safety Alert: Filter expiring on %s", asset.AssetBarcode)
	message := fmt.Sprintf(
		"Filter Expiry Alert\n\n"+
			"Barcode: %s\n"+
			"Type: %s\n"+
			"Location: %s, %s\n"+
			"Filter Type: %s\n"+
			"Expiry Date: %s\n\n"+
			"Please schedule a filter replacement.",
		asset.AssetBarcode,
		asset.AssetType,
		asset.Wing,
		asset.Room,
		asset.FilterType,
		asset.FilterExpiryDate,
	)
	return n.publish(ctx, subject, message)
}
