package device

import (
	"context"
	"errors"
	"time"

	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/pkg/id"
)

// Store is the subset of the device repository Resolve needs.
type Store interface {
	GetByUUID(ctx context.Context, uuid string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
}

// Resolve returns the existing Device for deviceUUID when found, otherwise
// creates a new enabled one associated with userID and persists it.
func Resolve(ctx context.Context, repo Store, deviceUUID, userID string, now time.Time) (*domain.Device, bool, error) {
	d, err := repo.GetByUUID(ctx, deviceUUID)
	if err == nil {
		return d, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	now = now.UTC()
	d = &domain.Device{
		DeviceID:  id.New(),
		UUID:      deviceUUID,
		UserID:    userID,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Put(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}
