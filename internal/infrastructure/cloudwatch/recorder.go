// Package cloudwatch publishes scheduler run metrics.
package cloudwatch

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/hisworks-api/internal/config"
	"github.com/hisworks-api/internal/domain"
)

const (
	MetricSelected     = "RemindersSelected"
	MetricDelivered    = "RemindersDelivered"
	MetricTicketErrors = "PushTicketErrors"
	MetricMarkedSent   = "RemindersMarkedSent"
	MetricAlreadySent  = "RemindersAlreadySent"
	MetricRescheduled  = "RemindersRescheduled"
	MetricFailed       = "ReminderPersistenceFailures"
	MetricRunFailed    = "RunFailed"

	dimPeriod = "Period"
)

// Client abstracts the CloudWatch PutMetricData operation for testability.
type Client interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// NewClient builds a CloudWatch client honouring the LocalStack endpoint override.
func NewClient(awsCfg aws.Config, cfg *config.Config) *cloudwatch.Client {
	return cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})
}

// Recorder emits one PutMetricData call per scheduler run. Failures are logged, never returned.
type Recorder struct {
	client    Client
	namespace string
	log       *slog.Logger
}

func NewRecorder(client Client, namespace string, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{client: client, namespace: namespace, log: log}
}

// RecordRun publishes the run's counters with a Period dimension.
func (r *Recorder) RecordRun(ctx context.Context, res *domain.RunResult, runErr error) {
	failed := 0.0
	if runErr != nil {
		failed = 1
	}
	dims := []cwtypes.Dimension{{Name: aws.String(dimPeriod), Value: aws.String(string(res.Period))}}
	counts := []struct {
		name  string
		value float64
	}{
		{MetricSelected, float64(res.Selected)},
		{MetricDelivered, float64(res.Delivered)},
		{MetricTicketErrors, float64(res.TicketErrors)},
		{MetricMarkedSent, float64(res.MarkedSent)},
		{MetricAlreadySent, float64(res.AlreadySent)},
		{MetricRescheduled, float64(res.Rescheduled)},
		{MetricFailed, float64(res.Failed)},
		{MetricRunFailed, failed},
	}
	data := make([]cwtypes.MetricDatum, 0, len(counts))
	for _, c := range counts {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(c.name),
			Value:      aws.Float64(c.value),
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  aws.Time(res.StartedAt),
			Dimensions: dims,
		})
	}

	if _, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	}); err != nil {
		r.log.Error("failed to record run metrics", "error", err.Error(), "run_id", res.RunID)
	}
}
