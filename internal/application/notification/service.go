package notification

import (
	"context"

	"github.com/hisworks-api/internal/domain"
)

type Service interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
}

type notificationStore interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}
