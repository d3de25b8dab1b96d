package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTriggerKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cases := []struct {
		name string
		hash string
		key  string
		want int
	}{
		{"valid key", string(hash), "s3cret", http.StatusOK},
		{"wrong key", string(hash), "guess", http.StatusUnauthorized},
		{"missing key", string(hash), "", http.StatusUnauthorized},
		{"disabled", "", "s3cret", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/scheduler/run", nil)
			if tc.key != "" {
				req.Header.Set(TriggerKeyHeader, tc.key)
			}
			rr := httptest.NewRecorder()
			TriggerKey(tc.hash)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}
