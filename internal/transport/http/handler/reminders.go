package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hisworks-api/internal/application/reminder"
	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/transport/http/middleware"
)

type manualSender interface {
	SendNow(ctx context.Context, userID string, req domain.ManualSendRequest, now time.Time) (*domain.Reminder, []domain.Ticket, error)
}

// ReminderHandler handles the caller's reminder records and the manual send trigger.
type ReminderHandler struct {
	svc    reminder.Service
	sender manualSender
	now    func() time.Time
}

func NewReminderHandler(svc reminder.Service, sender manualSender) *ReminderHandler {
	return &ReminderHandler{svc: svc, sender: sender, now: time.Now}
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reminders, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	if reminders == nil {
		reminders = []domain.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rem, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateReminderRequest
	if !decodeValid(w, r, &req) {
		return
	}
	rem, err := h.svc.UpdateSchedule(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.ScheduledFor, h.now().UTC())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reminder deleted"})
}

// Opened is called by the client when it follows a reminder's deep link.
func (h *ReminderHandler) Opened(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.MarkOpened(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reminder opened"})
}

// Send pushes one reminder about a testimony to the caller right away.
func (h *ReminderHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ManualSendRequest
	if !decodeValid(w, r, &req) {
		return
	}
	rem, tickets, err := h.sender.SendNow(r.Context(), claims.UserID, req, h.now().UTC())
	if err != nil {
		httpError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	writeJSON(w, http.StatusCreated, SendEnvelope{Reminder: rem, Tickets: tickets})
}
