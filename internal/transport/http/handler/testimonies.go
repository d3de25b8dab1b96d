package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hisworks-api/internal/application/reminder"
	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/transport/http/middleware"
)

// TestimonyReminderHandler provisions reminders when a testimony is created, edited or removed.
type TestimonyReminderHandler struct {
	svc reminder.Service
	now func() time.Time
}

func NewTestimonyReminderHandler(svc reminder.Service) *TestimonyReminderHandler {
	return &TestimonyReminderHandler{svc: svc, now: time.Now}
}

func (h *TestimonyReminderHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	created, err := h.svc.ScheduleForTestimony(r.Context(), claims.UserID, chi.URLParam(r, "id"), h.now().UTC())
	if err != nil {
		httpError(w, err)
		return
	}
	if created == nil {
		created = []domain.Reminder{}
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TestimonyReminderHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	created, err := h.svc.RescheduleForTestimony(r.Context(), claims.UserID, chi.URLParam(r, "id"), h.now().UTC())
	if err != nil {
		httpError(w, err)
		return
	}
	if created == nil {
		created = []domain.Reminder{}
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *TestimonyReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	n, err := h.svc.DeleteForTestimony(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedEnvelope{Deleted: n, Message: "reminders deleted"})
}
