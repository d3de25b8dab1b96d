package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/recurrence"
)

// Preferred delivery hours (UTC) used when provisioning reminders for a testimony.
const (
	morningHour = 9
	eveningHour = 19
)

// Service manages a user's reminder records outside of scheduler runs.
type Service interface {
	ScheduleForTestimony(ctx context.Context, userID, testimonyID string, now time.Time) ([]domain.Reminder, error)
	RescheduleForTestimony(ctx context.Context, userID, testimonyID string, now time.Time) ([]domain.Reminder, error)
	DeleteForTestimony(ctx context.Context, userID, testimonyID string) (int, error)
	List(ctx context.Context, userID string) ([]domain.Reminder, error)
	Get(ctx context.Context, reminderID, userID string) (*domain.Reminder, error)
	UpdateSchedule(ctx context.Context, reminderID, userID string, scheduledFor, now time.Time) (*domain.Reminder, error)
	Delete(ctx context.Context, reminderID, userID string) error
	MarkOpened(ctx context.Context, reminderID, userID string) error
}

type reminderStore interface {
	Put(ctx context.Context, r *domain.Reminder) error
	Get(ctx context.Context, reminderID string) (*domain.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error)
	ListByTestimony(ctx context.Context, testimonyID string) ([]domain.Reminder, error)
	UpdateSchedule(ctx context.Context, reminderID string, scheduledFor, now time.Time) error
	Delete(ctx context.Context, reminderID string) error
	DeleteByTestimony(ctx context.Context, testimonyID string, pendingOnly bool) (int, error)
}

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type notificationReader interface {
	MarkAsRead(ctx context.Context, notificationID string) error
}

type service struct {
	repo          reminderStore
	userRepo      userGetter
	testimonyRepo testimonyGetter
	inbox         notificationReader
	newID         func() string
}

type ServiceDeps struct {
	ReminderRepo  reminderStore
	UserRepo      userGetter
	TestimonyRepo testimonyGetter
	Inbox         notificationReader
	NewID         func() string
}

func NewService(deps ServiceDeps) Service {
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &service{
		repo:          deps.ReminderRepo,
		userRepo:      deps.UserRepo,
		testimonyRepo: deps.TestimonyRepo,
		inbox:         deps.Inbox,
		newID:         newID,
	}
}

// ScheduleForTestimony inserts one pending reminder per recurring preference the owner has
// enabled, at the next anniversary of the event date after now. Types that already have a
// pending reminder for the testimony are skipped.
func (s *service) ScheduleForTestimony(ctx context.Context, userID, testimonyID string, now time.Time) ([]domain.Reminder, error) {
	testimony, err := s.ownedTestimony(ctx, userID, testimonyID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ListByTestimony(ctx, testimonyID)
	if err != nil {
		return nil, err
	}
	scheduled := make(map[domain.ReminderType]bool)
	for _, r := range existing {
		if r.Pending() {
			scheduled[r.Type] = true
		}
	}

	now = now.UTC()
	anchor := anchorFor(testimony.EventDate, user.ReminderSettings)
	var created []domain.Reminder
	for _, typ := range enabledTypes(user.ReminderSettings) {
		if scheduled[typ] {
			continue
		}
		interval, _ := recurrence.IntervalFor(typ)
		at, err := recurrence.NextOccurrence(anchor, interval, now)
		if err != nil {
			return created, err
		}
		r := domain.NewPendingReminder(s.newID(), userID, testimonyID, typ, at, now)
		if err := s.repo.Put(ctx, r); err != nil {
			return created, err
		}
		created = append(created, *r)
	}
	return created, nil
}

// RescheduleForTestimony drops the testimony's pending reminders and provisions them again.
func (s *service) RescheduleForTestimony(ctx context.Context, userID, testimonyID string, now time.Time) ([]domain.Reminder, error) {
	if _, err := s.ownedTestimony(ctx, userID, testimonyID); err != nil {
		return nil, err
	}
	if _, err := s.repo.DeleteByTestimony(ctx, testimonyID, true); err != nil {
		return nil, err
	}
	return s.ScheduleForTestimony(ctx, userID, testimonyID, now)
}

// DeleteForTestimony removes every reminder of the testimony, sent or not.
func (s *service) DeleteForTestimony(ctx context.Context, userID, testimonyID string) (int, error) {
	if _, err := s.ownedTestimony(ctx, userID, testimonyID); err != nil {
		return 0, err
	}
	return s.repo.DeleteByTestimony(ctx, testimonyID, false)
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Reminder, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, reminderID, userID string) (*domain.Reminder, error) {
	r, err := s.repo.Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return r, nil
}

// UpdateSchedule moves a pending reminder to a future time.
func (s *service) UpdateSchedule(ctx context.Context, reminderID, userID string, scheduledFor, now time.Time) (*domain.Reminder, error) {
	r, err := s.Get(ctx, reminderID, userID)
	if err != nil {
		return nil, err
	}
	if !r.Pending() {
		return nil, fmt.Errorf("reminder already sent: %w", domain.ErrConflict)
	}
	if !scheduledFor.After(now) {
		return nil, fmt.Errorf("scheduled_for must be in the future: %w", domain.ErrBadRequest)
	}
	if err := s.repo.UpdateSchedule(ctx, reminderID, scheduledFor, now); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, reminderID)
}

func (s *service) Delete(ctx context.Context, reminderID, userID string) error {
	if _, err := s.Get(ctx, reminderID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, reminderID)
}

// MarkOpened marks the reminder's in-app notification read. A reminder without an inbox entry
// (not sent yet, or its inbox write failed) is not an error.
func (s *service) MarkOpened(ctx context.Context, reminderID, userID string) error {
	if _, err := s.Get(ctx, reminderID, userID); err != nil {
		return err
	}
	if err := s.inbox.MarkAsRead(ctx, reminderID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) ownedTestimony(ctx context.Context, userID, testimonyID string) (*domain.Testimony, error) {
	t, err := s.testimonyRepo.Get(ctx, testimonyID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, fmt.Errorf("testimony belongs to another user: %w", domain.ErrForbidden)
	}
	return t, nil
}

// anchorFor places the event date at the owner's preferred delivery hour.
func anchorFor(eventDate time.Time, settings *domain.ReminderSettings) time.Time {
	hour := morningHour
	if settings != nil && settings.TimeOfDay == domain.Evening {
		hour = eveningHour
	}
	y, m, d := eventDate.UTC().Date()
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

// enabledTypes lists the recurring reminder types the settings turn on. Monthly has no schedule.
func enabledTypes(settings *domain.ReminderSettings) []domain.ReminderType {
	if settings == nil {
		return nil
	}
	var types []domain.ReminderType
	if settings.Yearly {
		types = append(types, domain.ReminderYearly)
	}
	if settings.Quarterly {
		types = append(types, domain.ReminderQuarterly)
	}
	return types
}
