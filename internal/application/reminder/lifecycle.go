package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/infrastructure/push"
	"github.com/hisworks-api/internal/pkg/id"
	"github.com/hisworks-api/internal/recurrence"
)

// ManualBookkeepingDelay is how far ahead a manually sent reminder's record is scheduled.
const ManualBookkeepingDelay = 24 * time.Hour

type dueSelector interface {
	SelectDue(ctx context.Context, now time.Time) ([]domain.DueReminder, error)
}

type deliverer interface {
	Deliver(ctx context.Context, msgs []domain.PushMessage) ([]domain.Ticket, error)
}

type lifecycleStore interface {
	Put(ctx context.Context, r *domain.Reminder) error
	MarkSent(ctx context.Context, reminderIDs []string, sentAt time.Time) map[string]error
	Delete(ctx context.Context, reminderID string) error
}

type testimonyGetter interface {
	Get(ctx context.Context, testimonyID string) (*domain.Testimony, error)
}

type notificationWriter interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type runRecorder interface {
	RecordRun(ctx context.Context, res *domain.RunResult, runErr error)
}

// Lifecycle sends due reminders and schedules their successors.
type Lifecycle struct {
	selector    dueSelector
	composer    *Composer
	deliverer   deliverer
	reminders   lifecycleStore
	testimonies testimonyGetter
	tokens      tokenLookup
	inbox       notificationWriter
	metrics     runRecorder
	newID       func() string
	newRunID    func() string
	log         *slog.Logger
}

type LifecycleDeps struct {
	Selector      dueSelector
	Composer      *Composer
	Deliverer     deliverer
	ReminderRepo  lifecycleStore
	TestimonyRepo testimonyGetter
	DeviceRepo    tokenLookup
	// Inbox and Metrics are optional.
	Inbox    notificationWriter
	Metrics  runRecorder
	NewID    func() string
	NewRunID func() string
	Logger   *slog.Logger
}

func NewLifecycle(deps LifecycleDeps) *Lifecycle {
	l := &Lifecycle{
		selector:    deps.Selector,
		composer:    deps.Composer,
		deliverer:   deps.Deliverer,
		reminders:   deps.ReminderRepo,
		testimonies: deps.TestimonyRepo,
		tokens:      deps.DeviceRepo,
		inbox:       deps.Inbox,
		metrics:     deps.Metrics,
		newID:       deps.NewID,
		newRunID:    deps.NewRunID,
		log:         deps.Logger,
	}
	if l.composer == nil {
		l.composer = NewComposer(domain.Phrases{}, nil, "")
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	if l.newRunID == nil {
		l.newRunID = id.New
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	return l
}

// Run performs one scheduler invocation at now: select, compose, deliver, mark sent, reschedule.
// A delivery error aborts before anything is marked. Per-reminder persistence failures do not
// stop the others; they are joined into the returned error.
func (l *Lifecycle) Run(ctx context.Context, now time.Time) (*domain.RunResult, error) {
	now = now.UTC()
	res := &domain.RunResult{RunID: l.newRunID(), Period: domain.PeriodAt(now), StartedAt: now}
	log := l.log.With("run_id", res.RunID, "period", res.Period)

	due, err := l.selector.SelectDue(ctx, now)
	if err != nil {
		err = fmt.Errorf("select due reminders: %w", err)
		l.finish(ctx, log, res, err)
		return res, err
	}
	res.Selected = len(due)
	if len(due) == 0 {
		l.finish(ctx, log, res, nil)
		return res, nil
	}

	msgs := make([]domain.PushMessage, len(due))
	for i, d := range due {
		msgs[i] = l.composer.Compose(d)
	}

	tickets, err := l.deliverer.Deliver(ctx, msgs)
	countTickets(res, tickets)
	if err != nil {
		err = fmt.Errorf("deliver reminders: %w", err)
		l.finish(ctx, log, res, err)
		return res, err
	}
	for i, t := range tickets {
		if !t.OK() && i < len(due) {
			log.Warn("push ticket error",
				"reminder_id", due[i].Reminder.ReminderID,
				"message", t.Message,
				"details", t.Details,
			)
		}
	}

	ids := make([]string, len(due))
	for i, d := range due {
		ids[i] = d.Reminder.ReminderID
	}
	failures := l.reminders.MarkSent(ctx, ids, now)

	var errs []error
	for i, d := range due {
		rem := d.Reminder
		if markErr, failed := failures[rem.ReminderID]; failed {
			if errors.Is(markErr, domain.ErrConflict) {
				res.AlreadySent++
				log.Warn("reminder already marked sent", "reminder_id", rem.ReminderID)
				continue
			}
			res.Failed++
			errs = append(errs, markErr)
			continue
		}
		res.MarkedSent++
		l.recordInbox(ctx, log, rem, msgs[i], now)

		next, err := l.reschedule(ctx, rem, now)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			continue
		}
		if next != nil {
			res.Rescheduled++
		}
	}

	err = errors.Join(errs...)
	l.finish(ctx, log, res, err)
	return res, err
}

// reschedule inserts the successor of a recurring reminder. It returns nil for terminal types.
func (l *Lifecycle) reschedule(ctx context.Context, prev domain.Reminder, now time.Time) (*domain.Reminder, error) {
	interval, ok := recurrence.IntervalFor(prev.Type)
	if !ok {
		return nil, nil
	}
	at, err := recurrence.NextOccurrence(prev.ScheduledFor.UTC(), interval, now)
	if err != nil {
		return nil, fmt.Errorf("next occurrence of %s: %w", prev.ReminderID, err)
	}
	next := domain.NewPendingReminder(l.newID(), prev.UserID, prev.TestimonyID, prev.Type, at, now)
	if err := l.reminders.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("reschedule %s: %w", prev.ReminderID, err)
	}
	return next, nil
}

// SendNow delivers one reminder about a testimony to its owner immediately. The bookkeeping row
// is inserted as a one-time reminder ManualBookkeepingDelay ahead and marked sent at now, so the
// scheduler never selects it.
func (l *Lifecycle) SendNow(ctx context.Context, userID string, req domain.ManualSendRequest, now time.Time) (*domain.Reminder, []domain.Ticket, error) {
	now = now.UTC()
	testimony, err := l.testimonies.Get(ctx, req.TestimonyID)
	if err != nil {
		return nil, nil, err
	}
	if testimony.UserID != userID {
		return nil, nil, fmt.Errorf("testimony belongs to another user: %w", domain.ErrForbidden)
	}
	token, err := l.tokens.PushToken(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve push token: %w", err)
	}
	if !push.ValidToken(token) {
		return nil, nil, fmt.Errorf("no valid push token registered: %w", domain.ErrBadRequest)
	}

	rem := domain.NewPendingReminder(l.newID(), userID, testimony.TestimonyID, domain.ReminderOneTime,
		now.Add(ManualBookkeepingDelay), now)
	if err := l.reminders.Put(ctx, rem); err != nil {
		return nil, nil, err
	}

	msg := l.composer.Message(token, req.Title, req.Body, testimony.TestimonyID, rem.ReminderID)
	tickets, err := l.deliverer.Deliver(ctx, []domain.PushMessage{msg})
	if err != nil {
		if delErr := l.reminders.Delete(ctx, rem.ReminderID); delErr != nil {
			l.log.Error("failed to remove undelivered manual reminder", "reminder_id", rem.ReminderID, "error", delErr)
		}
		return nil, tickets, fmt.Errorf("deliver manual reminder: %w", err)
	}

	if markErr := l.reminders.MarkSent(ctx, []string{rem.ReminderID}, now)[rem.ReminderID]; markErr != nil {
		l.log.Error("failed to mark manual reminder sent", "reminder_id", rem.ReminderID, "error", markErr)
		if delErr := l.reminders.Delete(ctx, rem.ReminderID); delErr != nil {
			l.log.Error("failed to remove unmarked manual reminder", "reminder_id", rem.ReminderID, "error", delErr)
		}
		return nil, tickets, fmt.Errorf("mark manual reminder sent: %w", markErr)
	}
	rem.SentAt = &now
	rem.PendingDay = ""
	rem.UpdatedAt = now
	l.recordInbox(ctx, l.log, *rem, msg, now)
	return rem, tickets, nil
}

func (l *Lifecycle) recordInbox(ctx context.Context, log *slog.Logger, rem domain.Reminder, msg domain.PushMessage, now time.Time) {
	if l.inbox == nil {
		return
	}
	testimonyID := rem.TestimonyID
	n := &domain.Notification{
		NotificationID: rem.ReminderID,
		UserID:         rem.UserID,
		TestimonyID:    &testimonyID,
		Title:          msg.Title,
		Message:        msg.Body,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := l.inbox.Put(ctx, n); err != nil {
		log.Warn("failed to record in-app notification", "reminder_id", rem.ReminderID, "error", err)
	}
}

func (l *Lifecycle) finish(ctx context.Context, log *slog.Logger, res *domain.RunResult, err error) {
	attrs := []any{
		"selected", res.Selected,
		"delivered", res.Delivered,
		"ticket_errors", res.TicketErrors,
		"marked_sent", res.MarkedSent,
		"already_sent", res.AlreadySent,
		"rescheduled", res.Rescheduled,
		"failed", res.Failed,
	}
	if err != nil {
		log.Error("reminder run failed", append(attrs, "error", err)...)
	} else {
		log.Info("reminder run completed", attrs...)
	}
	if l.metrics != nil {
		l.metrics.RecordRun(ctx, res, err)
	}
}

func countTickets(res *domain.RunResult, tickets []domain.Ticket) {
	for _, t := range tickets {
		if t.OK() {
			res.Delivered++
		} else {
			res.TicketErrors++
		}
	}
}
