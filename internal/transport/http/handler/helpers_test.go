package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwtinfra "github.com/hisworks-api/internal/infrastructure/jwt"
	"github.com/hisworks-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// authedReq builds a request whose context already carries claims for userID.
func authedReq(t *testing.T, method, target, userID string, body interface{}) *http.Request {
	t.Helper()
	var r *http.Request
	switch b := body.(type) {
	case nil:
		r = httptest.NewRequest(method, target, nil)
	case string:
		r = httptest.NewRequest(method, target, bytes.NewBufferString(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = httptest.NewRequest(method, target, bytes.NewReader(raw))
	}
	if userID == "" {
		return r
	}
	return r.WithContext(middleware.WithClaims(r.Context(), &jwtinfra.Claims{UserID: userID}))
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
