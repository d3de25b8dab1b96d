package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/hisworks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) UpdateReminderSettings(ctx context.Context, userID string, settings domain.ReminderSettings) error {
	return m.Called(ctx, userID, settings).Error(0)
}

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func TestGet_DefaultsWhenUnset(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	s, err := NewService(us).Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.ReminderSettings{}, *s)
}

func TestGet_NotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	_, err := NewService(us).Get(context.Background(), "u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdate_MergesPresentFields(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", ReminderSettings: &domain.ReminderSettings{
		Yearly: true, TimeOfDay: domain.Morning,
	}}, nil)
	want := domain.ReminderSettings{Yearly: true, Quarterly: true, TimeOfDay: domain.Evening}
	us.On("UpdateReminderSettings", mock.Anything, "u1", want).Return(nil)

	got, err := NewService(us).Update(context.Background(), "u1", domain.UpdateReminderSettingsRequest{
		Quarterly: boolPtr(true),
		TimeOfDay: strPtr("evening"),
	})

	require.NoError(t, err)
	assert.Equal(t, want, *got)
	us.AssertExpectations(t)
}

func TestUpdate_EmptyTimeOfDayClears(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", ReminderSettings: &domain.ReminderSettings{TimeOfDay: domain.Evening}}, nil)
	us.On("UpdateReminderSettings", mock.Anything, "u1", domain.ReminderSettings{}).Return(nil)

	got, err := NewService(us).Update(context.Background(), "u1", domain.UpdateReminderSettingsRequest{TimeOfDay: strPtr("")})

	require.NoError(t, err)
	assert.Empty(t, got.TimeOfDay)
}

func TestUpdate_NoChangeSkipsWrite(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", ReminderSettings: &domain.ReminderSettings{Yearly: true}}, nil)

	_, err := NewService(us).Update(context.Background(), "u1", domain.UpdateReminderSettingsRequest{Yearly: boolPtr(true)})

	require.NoError(t, err)
	us.AssertNotCalled(t, "UpdateReminderSettings", mock.Anything, mock.Anything, mock.Anything)
}
