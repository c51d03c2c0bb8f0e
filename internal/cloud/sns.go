package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
)

// SNSClient wraps AWS SNS for operational alert notifications.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
}

func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &SNSClient{svc: sns.NewFromConfig(cfg), topicArn: topicArn}, nil
}

// SendAlert publishes a notification to the configured topic.
func (c *SNSClient) SendAlert(ctx context.Context, subject, message string) error {
	out, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	log.Info().Str("message_id", aws.ToString(out.MessageId)).Msg("alert sent")
	return nil
}

// SendMaintenanceAlert notifies operators that a pump's efficiency
// diagnosis flagged maintenance.
func (c *SNSClient) SendMaintenanceAlert(ctx context.Context, pumpID, rating string, efficiencyRatio, degradationPct float64) error {
	subject := fmt.Sprintf("Pump Maintenance Alert: %s", pumpID)
	message := fmt.Sprintf(
		"Pump Maintenance Recommended\n\n"+
			"Pump: %s\n"+
			"Efficiency Rating: %s\n"+
			"Actual/Rated Ratio: %.1f%%\n"+
			"Degradation: %.1f%%\n"+
			"Time: %s\n\n"+
			"Schedule an inspection to prevent failures.",
		pumpID,
		rating,
		efficiencyRatio*100,
		degradationPct,
		time.Now().Format(time.RFC3339),
	)
	return c.SendAlert(ctx, subject, message)
}
