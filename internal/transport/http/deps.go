package http

import (
	"context"
	"time"

	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/hisworks-api/internal/infrastructure/jwt"
)

// Lifecycle is the part of the reminder lifecycle the router exposes: the manual send and
// the externally triggered scheduler run.
type Lifecycle interface {
	SendNow(ctx context.Context, userID string, req domain.ManualSendRequest, now time.Time) (*domain.Reminder, []domain.Ticket, error)
	Run(ctx context.Context, now time.Time) (*domain.RunResult, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ReminderRepo     *dynamo.ReminderRepo
	UserRepo         *dynamo.UserRepo
	TestimonyRepo    *dynamo.TestimonyRepo
	DeviceRepo       *dynamo.DeviceRepo
	NotificationRepo *dynamo.NotificationRepo
	Lifecycle        Lifecycle
	JWTProvider      *jwtinfra.Provider
}
