package device

import (
	"context"
	"fmt"
	"time"

	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/infrastructure/push"
	pkgdevice "github.com/hisworks-api/internal/pkg/device"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Device, error)
	// RegisterToken binds a push token to the caller's device, creating the device on first use.
	RegisterToken(ctx context.Context, userID string, req domain.RegisterTokenRequest) (*domain.Device, error)
	Delete(ctx context.Context, deviceID, userID string) error
}

type deviceStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
	GetByUUID(ctx context.Context, uuid string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
	Update(ctx context.Context, deviceID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, deviceID string) error
}

type service struct {
	repo deviceStore
}

func NewService(repo deviceStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Device, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) RegisterToken(ctx context.Context, userID string, req domain.RegisterTokenRequest) (*domain.Device, error) {
	if !push.ValidToken(req.Token) {
		return nil, fmt.Errorf("unrecognised push token format: %w", domain.ErrBadRequest)
	}
	d, _, err := pkgdevice.Resolve(ctx, s.repo, req.DeviceUUID, userID, time.Now())
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if d.Token == nil || *d.Token != req.Token {
		updates["token"] = req.Token
	}
	// A device that changed hands now addresses the caller.
	if d.UserID != userID {
		updates["user_id"] = userID
	}
	if !d.Enable {
		updates["enable"] = true
	}
	if len(updates) == 0 {
		return d, nil
	}
	if err := s.repo.Update(ctx, d.DeviceID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, d.DeviceID)
}

func (s *service) Delete(ctx context.Context, deviceID, userID string) error {
	d, err := s.repo.Get(ctx, deviceID)
	if err != nil {
		return err
	}
	if d.UserID != userID {
		return fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return s.repo.SoftDelete(ctx, deviceID)
}
