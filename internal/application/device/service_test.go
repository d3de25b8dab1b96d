package device

import (
	"context"
	"errors"
	"testing"

	"github.com/hisworks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	ds, _ := args.Get(0).([]domain.Device)
	return ds, args.Error(1)
}
func (m *mockDeviceStore) Get(ctx context.Context, deviceID string) (*domain.Device, error) {
	args := m.Called(ctx, deviceID)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) GetByUUID(ctx context.Context, uuid string) (*domain.Device, error) {
	args := m.Called(ctx, uuid)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Put(ctx context.Context, d *domain.Device) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDeviceStore) Update(ctx context.Context, deviceID string, updates map[string]interface{}) error {
	return m.Called(ctx, deviceID, updates).Error(0)
}
func (m *mockDeviceStore) SoftDelete(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}

const token = "ExponentPushToken[abcdefghijklmnop]"

func TestRegisterToken_RejectsMalformedToken(t *testing.T) {
	ds := &mockDeviceStore{}
	_, err := NewService(ds).RegisterToken(context.Background(), "u1", domain.RegisterTokenRequest{DeviceUUID: "x", Token: "garbage"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	ds.AssertNotCalled(t, "GetByUUID", mock.Anything, mock.Anything)
}

func TestRegisterToken_NewDevice(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("GetByUUID", mock.Anything, "uuid-1").Return(nil, domain.ErrNotFound)
	ds.On("Put", mock.Anything, mock.Anything).Return(nil)
	ds.On("Update", mock.Anything, mock.Anything, map[string]interface{}{"token": token}).Return(nil)
	stored := token
	ds.On("Get", mock.Anything, mock.Anything).Return(&domain.Device{DeviceID: "d1", UserID: "u1", Token: &stored, Enable: true}, nil)

	d, err := NewService(ds).RegisterToken(context.Background(), "u1", domain.RegisterTokenRequest{DeviceUUID: "uuid-1", Token: token})

	require.NoError(t, err)
	assert.Equal(t, token, *d.Token)
	ds.AssertExpectations(t)
}

func TestRegisterToken_ReassignsAndReenables(t *testing.T) {
	ds := &mockDeviceStore{}
	old := "ExpoPushToken[old]"
	ds.On("GetByUUID", mock.Anything, "uuid-1").Return(&domain.Device{DeviceID: "d1", UserID: "other", Token: &old, Enable: false}, nil)
	ds.On("Update", mock.Anything, "d1", map[string]interface{}{"token": token, "user_id": "u1", "enable": true}).Return(nil)
	ds.On("Get", mock.Anything, "d1").Return(&domain.Device{DeviceID: "d1", UserID: "u1"}, nil)

	_, err := NewService(ds).RegisterToken(context.Background(), "u1", domain.RegisterTokenRequest{DeviceUUID: "uuid-1", Token: token})

	require.NoError(t, err)
	ds.AssertExpectations(t)
}

func TestRegisterToken_UnchangedSkipsWrite(t *testing.T) {
	ds := &mockDeviceStore{}
	same := token
	ds.On("GetByUUID", mock.Anything, "uuid-1").Return(&domain.Device{DeviceID: "d1", UserID: "u1", Token: &same, Enable: true}, nil)

	_, err := NewService(ds).RegisterToken(context.Background(), "u1", domain.RegisterTokenRequest{DeviceUUID: "uuid-1", Token: token})

	require.NoError(t, err)
	ds.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_ForeignDeviceForbidden(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("Get", mock.Anything, "d1").Return(&domain.Device{DeviceID: "d1", UserID: "other"}, nil)

	err := NewService(ds).Delete(context.Background(), "d1", "u1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ds.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}
