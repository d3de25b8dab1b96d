package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/hisworks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct{ mock.Mock }

func (m *mockRunner) Run(ctx context.Context, now time.Time) (*domain.RunResult, error) {
	args := m.Called(ctx, now)
	res, _ := args.Get(0).(*domain.RunResult)
	return res, args.Error(1)
}

type mockAlerter struct{ mock.Mock }

func (m *mockAlerter) RunFailed(ctx context.Context, res *domain.RunResult, runErr error) error {
	return m.Called(ctx, res, runErr).Error(0)
}

func TestHandle_UsesEventTime(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 3, 0, time.UTC)
	rn := &mockRunner{}
	rn.On("Run", mock.Anything, at).Return(&domain.RunResult{RunID: "r1", Period: domain.Morning}, nil)
	al := &mockAlerter{}

	res, err := NewScheduledRun(rn, al, nil).Handle(context.Background(), events.CloudWatchEvent{Time: at})

	require.NoError(t, err)
	assert.Equal(t, domain.Morning, res.Period)
	al.AssertNotCalled(t, "RunFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_ZeroEventTimeFallsBackToClock(t *testing.T) {
	clock := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	rn := &mockRunner{}
	rn.On("Run", mock.Anything, clock).Return(&domain.RunResult{}, nil)
	s := NewScheduledRun(rn, nil, nil)
	s.now = func() time.Time { return clock }

	_, err := s.Handle(context.Background(), events.CloudWatchEvent{})

	require.NoError(t, err)
	rn.AssertExpectations(t)
}

func TestHandle_FailureAlertsAndSwallows(t *testing.T) {
	runErr := errors.New("deliver reminders: transport down")
	partial := &domain.RunResult{RunID: "r2", Selected: 4}
	rn := &mockRunner{}
	rn.On("Run", mock.Anything, mock.Anything).Return(partial, runErr)
	al := &mockAlerter{}
	al.On("RunFailed", mock.Anything, partial, runErr).Return(errors.New("sns down"))

	res, err := NewScheduledRun(rn, al, nil).Handle(context.Background(), events.CloudWatchEvent{ID: "evt-1", Time: time.Now()})

	require.NoError(t, err)
	assert.Same(t, partial, res)
	al.AssertExpectations(t)
}

func TestHandle_FailureWithoutAlerter(t *testing.T) {
	rn := &mockRunner{}
	rn.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("select due reminders: boom"))

	res, err := NewScheduledRun(rn, nil, nil).Handle(context.Background(), events.CloudWatchEvent{Time: time.Now()})

	require.NoError(t, err)
	assert.Nil(t, res)
}
