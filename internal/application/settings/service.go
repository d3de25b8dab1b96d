package settings

import (
	"context"

	"github.com/hisworks-api/internal/domain"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.ReminderSettings, error)
	Update(ctx context.Context, userID string, req domain.UpdateReminderSettingsRequest) (*domain.ReminderSettings, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateReminderSettings(ctx context.Context, userID string, settings domain.ReminderSettings) error
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

// Get returns the user's reminder settings; a user who never saved any gets the zero value.
func (s *service) Get(ctx context.Context, userID string) (*domain.ReminderSettings, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ReminderSettings == nil {
		return &domain.ReminderSettings{}, nil
	}
	return u.ReminderSettings, nil
}

// Update applies the fields present in req. An empty timeOfDay clears the preference.
func (s *service) Update(ctx context.Context, userID string, req domain.UpdateReminderSettingsRequest) (*domain.ReminderSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := *current
	if req.Yearly != nil {
		next.Yearly = *req.Yearly
	}
	if req.Quarterly != nil {
		next.Quarterly = *req.Quarterly
	}
	if req.Monthly != nil {
		next.Monthly = *req.Monthly
	}
	if req.TimeOfDay != nil {
		next.TimeOfDay = domain.TimeOfDay(*req.TimeOfDay)
	}
	if next == *current {
		return current, nil
	}
	if err := s.repo.UpdateReminderSettings(ctx, userID, next); err != nil {
		return nil, err
	}
	return &next, nil
}
