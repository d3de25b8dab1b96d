package reminder

import (
	"context"
	"strconv"
	"time"

	"github.com/hisworks-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockReminderStore struct{ mock.Mock }

func (m *mockReminderStore) Put(ctx context.Context, r *domain.Reminder) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockReminderStore) Get(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	args := m.Called(ctx, reminderID)
	if r, _ := args.Get(0).(*domain.Reminder); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReminderStore) ListPendingBetween(ctx context.Context, from, to time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, from, to)
	rs, _ := args.Get(0).([]domain.Reminder)
	return rs, args.Error(1)
}
func (m *mockReminderStore) ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error) {
	args := m.Called(ctx, userID)
	rs, _ := args.Get(0).([]domain.Reminder)
	return rs, args.Error(1)
}
func (m *mockReminderStore) ListByTestimony(ctx context.Context, testimonyID string) ([]domain.Reminder, error) {
	args := m.Called(ctx, testimonyID)
	rs, _ := args.Get(0).([]domain.Reminder)
	return rs, args.Error(1)
}
func (m *mockReminderStore) UpdateSchedule(ctx context.Context, reminderID string, scheduledFor, now time.Time) error {
	return m.Called(ctx, reminderID, scheduledFor, now).Error(0)
}
func (m *mockReminderStore) MarkSent(ctx context.Context, reminderIDs []string, sentAt time.Time) map[string]error {
	args := m.Called(ctx, reminderIDs, sentAt)
	failures, _ := args.Get(0).(map[string]error)
	return failures
}
func (m *mockReminderStore) Delete(ctx context.Context, reminderID string) error {
	return m.Called(ctx, reminderID).Error(0)
}
func (m *mockReminderStore) DeleteByTestimony(ctx context.Context, testimonyID string, pendingOnly bool) (int, error) {
	args := m.Called(ctx, testimonyID, pendingOnly)
	return args.Int(0), args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetMany(ctx context.Context, userIDs []string) (map[string]*domain.User, error) {
	args := m.Called(ctx, userIDs)
	users, _ := args.Get(0).(map[string]*domain.User)
	return users, args.Error(1)
}

type mockTestimonyStore struct{ mock.Mock }

func (m *mockTestimonyStore) Get(ctx context.Context, testimonyID string) (*domain.Testimony, error) {
	args := m.Called(ctx, testimonyID)
	if t, _ := args.Get(0).(*domain.Testimony); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTestimonyStore) GetMany(ctx context.Context, ids []string) (map[string]*domain.Testimony, error) {
	args := m.Called(ctx, ids)
	ts, _ := args.Get(0).(map[string]*domain.Testimony)
	return ts, args.Error(1)
}

type mockTokenLookup struct{ mock.Mock }

func (m *mockTokenLookup) PushToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type mockDeliverer struct{ mock.Mock }

func (m *mockDeliverer) Deliver(ctx context.Context, msgs []domain.PushMessage) ([]domain.Ticket, error) {
	args := m.Called(ctx, msgs)
	tickets, _ := args.Get(0).([]domain.Ticket)
	return tickets, args.Error(1)
}

type mockSelector struct{ mock.Mock }

func (m *mockSelector) SelectDue(ctx context.Context, now time.Time) ([]domain.DueReminder, error) {
	args := m.Called(ctx, now)
	due, _ := args.Get(0).([]domain.DueReminder)
	return due, args.Error(1)
}

type mockInbox struct{ mock.Mock }

func (m *mockInbox) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockInbox) MarkAsRead(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) RecordRun(ctx context.Context, res *domain.RunResult, runErr error) {
	m.Called(ctx, res, runErr)
}

// --- helpers ---

// firstChooser makes composition deterministic.
func firstChooser(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[0]
}

// sequentialIDs returns a generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

func okTickets(n int) []domain.Ticket {
	out := make([]domain.Ticket, n)
	for i := range out {
		out[i] = domain.Ticket{Status: domain.TicketStatusOK, ID: "ticket-" + strconv.Itoa(i)}
	}
	return out
}

const validToken = "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"
