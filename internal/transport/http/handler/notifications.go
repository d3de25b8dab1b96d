package handler

import (
	"net/http"

	"github.com/hisworks-api/internal/application/notification"
	"github.com/hisworks-api/internal/transport/http/middleware"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	notifications, err := h.svc.ListUnread(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}
