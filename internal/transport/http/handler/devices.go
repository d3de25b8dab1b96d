package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hisworks-api/internal/application/device"
	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/transport/http/middleware"
)

// DeviceHandler handles device endpoints.
type DeviceHandler struct {
	svc device.Service
}

func NewDeviceHandler(svc device.Service) *DeviceHandler { return &DeviceHandler{svc: svc} }

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	devices, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.RegisterTokenRequest
	if !decodeValid(w, r, &req) {
		return
	}
	d, err := h.svc.RegisterToken(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "device deleted"})
}
