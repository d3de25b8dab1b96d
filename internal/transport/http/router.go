package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hisworks-api/internal/application/device"
	"github.com/hisworks-api/internal/application/notification"
	"github.com/hisworks-api/internal/application/reminder"
	"github.com/hisworks-api/internal/application/settings"
	"github.com/hisworks-api/internal/config"
	"github.com/hisworks-api/internal/transport/http/handler"
	appmiddleware "github.com/hisworks-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appmiddleware.TriggerKeyHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 1 request/second, burst of 2 for the cron-facing trigger.
	triggerRL := appmiddleware.NewRateLimiter(rate.Limit(1), 2)
	// 5 requests/second, burst of 10 for manual sends.
	sendRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	reminderSvc := reminder.NewService(reminder.ServiceDeps{
		ReminderRepo:  deps.ReminderRepo,
		UserRepo:      deps.UserRepo,
		TestimonyRepo: deps.TestimonyRepo,
		Inbox:         deps.NotificationRepo,
	})
	settingsSvc := settings.NewService(deps.UserRepo)
	deviceSvc := device.NewService(deps.DeviceRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)

	healthH := handler.NewHealthHandler()
	reminderH := handler.NewReminderHandler(reminderSvc, deps.Lifecycle)
	testimonyH := handler.NewTestimonyReminderHandler(reminderSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	deviceH := handler.NewDeviceHandler(deviceSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	schedulerH := handler.NewSchedulerHandler(deps.Lifecycle)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(triggerRL.Limit, appmiddleware.TriggerKey(cfg.TriggerKeyHash)).Post("/scheduler/run", schedulerH.Run)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/reminders", reminderH.List)
			r.With(sendRL.Limit).Post("/reminders/send", reminderH.Send)
			r.Get("/reminders/{id}", reminderH.Get)
			r.Put("/reminders/{id}", reminderH.Update)
			r.Delete("/reminders/{id}", reminderH.Delete)
			r.Put("/reminders/{id}/opened", reminderH.Opened)

			r.Post("/testimonies/{id}/reminders", testimonyH.Schedule)
			r.Put("/testimonies/{id}/reminders", testimonyH.Reschedule)
			r.Delete("/testimonies/{id}/reminders", testimonyH.Delete)

			r.Get("/reminder-settings", settingsH.Get)
			r.Put("/reminder-settings", settingsH.Update)

			r.Get("/devices", deviceH.List)
			r.Put("/devices/token", deviceH.RegisterToken)
			r.Delete("/devices/{id}", deviceH.Delete)

			r.Get("/notifications", notifH.ListUnread)
		})
	})

	return r
}
