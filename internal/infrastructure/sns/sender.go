package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/hisworks-api/internal/config"
	"github.com/hisworks-api/internal/domain"
)

// Publisher is the subset of the SNS client the alerter uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Alerter publishes scheduler run failures to an SNS topic for operators.
type Alerter struct {
	client   Publisher
	topicARN string
}

// NewClient builds an SNS client honouring the LocalStack endpoint override.
func NewClient(awsCfg aws.Config, cfg *config.Config) *sns.Client {
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})
}

func NewAlerter(client Publisher, topicARN string) *Alerter {
	return &Alerter{client: client, topicARN: topicARN}
}

// RunFailed publishes a summary of a failed run.
func (a *Alerter) RunFailed(ctx context.Context, res *domain.RunResult, runErr error) error {
	subject := "Reminder run failed"
	msg := fmt.Sprintf("error: %v", runErr)
	if res != nil {
		subject = fmt.Sprintf("Reminder run %s failed", res.RunID)
		msg = fmt.Sprintf(
			"run_id: %s\nperiod: %s\nstarted_at: %s\nselected: %d\ndelivered: %d\nmarked_sent: %d\nrescheduled: %d\nfailed: %d\nerror: %v",
			res.RunID, res.Period, res.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			res.Selected, res.Delivered, res.MarkedSent, res.Rescheduled, res.Failed, runErr,
		)
	}
	_, err := a.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(msg),
	})
	if err != nil {
		return fmt.Errorf("publish run alert: %w", err)
	}
	return nil
}
