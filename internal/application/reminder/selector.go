package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/infrastructure/push"
)

type pendingLister interface {
	ListPendingBetween(ctx context.Context, from, to time.Time) ([]domain.Reminder, error)
}

type userBatchGetter interface {
	GetMany(ctx context.Context, userIDs []string) (map[string]*domain.User, error)
}

type testimonyBatchGetter interface {
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Testimony, error)
}

type tokenLookup interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

// Selector finds the reminders that should go out during an invocation.
type Selector struct {
	reminders   pendingLister
	users       userBatchGetter
	testimonies testimonyBatchGetter
	tokens      tokenLookup
	log         *slog.Logger
}

type SelectorDeps struct {
	ReminderRepo  pendingLister
	UserRepo      userBatchGetter
	TestimonyRepo testimonyBatchGetter
	DeviceRepo    tokenLookup
	Logger        *slog.Logger
}

func NewSelector(deps SelectorDeps) *Selector {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Selector{
		reminders:   deps.ReminderRepo,
		users:       deps.UserRepo,
		testimonies: deps.TestimonyRepo,
		tokens:      deps.DeviceRepo,
		log:         log,
	}
}

// SelectDue returns the unsent reminders scheduled on now's UTC day whose recipient prefers the
// current period (or has no preference) and has a valid push address. The result is ordered by
// scheduled_for then id; an empty result is returned as nil.
func (s *Selector) SelectDue(ctx context.Context, now time.Time) ([]domain.DueReminder, error) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	pending, err := s.reminders.ListPendingBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	userIDs := make([]string, 0, len(pending))
	testimonyIDs := make([]string, 0, len(pending))
	for _, r := range pending {
		userIDs = append(userIDs, r.UserID)
		testimonyIDs = append(testimonyIDs, r.TestimonyID)
	}
	users, err := s.users.GetMany(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load recipients: %w", err)
	}
	testimonies, err := s.testimonies.GetMany(ctx, testimonyIDs)
	if err != nil {
		return nil, fmt.Errorf("load testimonies: %w", err)
	}

	period := domain.PeriodAt(now)
	tokens := make(map[string]string)
	var due []domain.DueReminder
	for _, r := range pending {
		user, ok := users[r.UserID]
		if !ok {
			s.log.Warn("reminder recipient not found", "reminder_id", r.ReminderID, "user_id", r.UserID)
			continue
		}
		if !user.ReminderSettings.AllowsPeriod(period) {
			continue
		}
		testimony, ok := testimonies[r.TestimonyID]
		if !ok {
			s.log.Warn("reminder testimony not found", "reminder_id", r.ReminderID, "testimony_id", r.TestimonyID)
			continue
		}
		token, ok := tokens[r.UserID]
		if !ok {
			token, err = s.tokens.PushToken(ctx, r.UserID)
			if err != nil {
				return nil, fmt.Errorf("resolve push token for %s: %w", r.UserID, err)
			}
			tokens[r.UserID] = token
		}
		if !push.ValidToken(token) {
			s.log.Debug("recipient has no valid push token", "reminder_id", r.ReminderID, "user_id", r.UserID)
			continue
		}
		due = append(due, domain.DueReminder{
			Reminder: r,
			Recipient: domain.Recipient{
				UserID:    r.UserID,
				PushToken: token,
				Settings:  user.ReminderSettings,
			},
			Testimony: *testimony,
		})
	}
	return due, nil
}
