package handler

import (
	"net/http"

	"github.com/hisworks-api/internal/application/settings"
	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/transport/http/middleware"
)

// SettingsHandler handles the caller's reminder preferences.
type SettingsHandler struct {
	svc settings.Service
}

func NewSettingsHandler(svc settings.Service) *SettingsHandler { return &SettingsHandler{svc: svc} }

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateReminderSettingsRequest
	if !decodeValid(w, r, &req) {
		return
	}
	s, err := h.svc.Update(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
