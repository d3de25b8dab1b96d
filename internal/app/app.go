// Package app wires configuration, AWS clients, repositories and the reminder lifecycle.
// Both the HTTP API and the scheduler Lambda build their dependencies through New.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hisworks-api/internal/application/reminder"
	"github.com/hisworks-api/internal/config"
	"github.com/hisworks-api/internal/domain"
	cwinfra "github.com/hisworks-api/internal/infrastructure/cloudwatch"
	"github.com/hisworks-api/internal/infrastructure/dynamo"
	"github.com/hisworks-api/internal/infrastructure/push"
	s3infra "github.com/hisworks-api/internal/infrastructure/s3"
	"github.com/hisworks-api/internal/infrastructure/sns"
)

// App holds everything an entry point needs.
type App struct {
	Config *config.Config

	ReminderRepo     *dynamo.ReminderRepo
	UserRepo         *dynamo.UserRepo
	TestimonyRepo    *dynamo.TestimonyRepo
	DeviceRepo       *dynamo.DeviceRepo
	NotificationRepo *dynamo.NotificationRepo

	Lifecycle *reminder.Lifecycle
	Alerter   *sns.Alerter // nil when ALERT_TOPIC_ARN is unset
}

// New resolves AWS configuration and builds the reminder lifecycle. Tables are created on
// startup in development only.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	dynamoClient := dynamo.NewClient(awsCfg, cfg)
	if cfg.AppEnv == "development" {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	}

	a := &App{
		Config:           cfg,
		ReminderRepo:     dynamo.NewReminderRepo(dynamoClient, cfg.DynamoTables.Reminders),
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		TestimonyRepo:    dynamo.NewTestimonyRepo(dynamoClient, cfg.DynamoTables.Testimonies),
		DeviceRepo:       dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
	}

	phrases := domain.Phrases{}
	if cfg.PhrasesBucket != "" {
		store := s3infra.NewPhraseStore(s3infra.NewClient(awsCfg, cfg), cfg.PhrasesBucket, cfg.PhrasesKey)
		if phrases, err = store.Load(ctx); err != nil {
			log.Warn("phrase pool unavailable, using defaults", "bucket", cfg.PhrasesBucket, "error", err)
			phrases = domain.Phrases{}
		}
	}

	transport := push.NewHTTPTransport(cfg.Push)
	deps := reminder.LifecycleDeps{
		Selector: reminder.NewSelector(reminder.SelectorDeps{
			ReminderRepo:  a.ReminderRepo,
			UserRepo:      a.UserRepo,
			TestimonyRepo: a.TestimonyRepo,
			DeviceRepo:    a.DeviceRepo,
			Logger:        log,
		}),
		Composer:      reminder.NewComposer(phrases, nil, cfg.DeepLinkScheme),
		Deliverer:     push.NewBatcher(transport, cfg.Push.BatchSize, cfg.Push.ChunksPerSecond, log),
		ReminderRepo:  a.ReminderRepo,
		TestimonyRepo: a.TestimonyRepo,
		DeviceRepo:    a.DeviceRepo,
		Inbox:         a.NotificationRepo,
		Logger:        log,
	}
	if cfg.MetricsNamespace != "" {
		deps.Metrics = cwinfra.NewRecorder(cwinfra.NewClient(awsCfg, cfg), cfg.MetricsNamespace, log)
	}
	a.Lifecycle = reminder.NewLifecycle(deps)

	if cfg.AlertTopicARN != "" {
		a.Alerter = sns.NewAlerter(sns.NewClient(awsCfg, cfg), cfg.AlertTopicARN)
	}
	return a, nil
}

// ScheduledRun returns the scheduler entry point, alerting through SNS when configured.
func (a *App) ScheduledRun(log *slog.Logger) *ScheduledRun {
	if a.Alerter == nil {
		return NewScheduledRun(a.Lifecycle, nil, log)
	}
	return NewScheduledRun(a.Lifecycle, a.Alerter, log)
}
