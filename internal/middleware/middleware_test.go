package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	var seen string
	var ctxLogger *zerolog.Logger
	handler := RequestID(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		ctxLogger = zerolog.Ctx(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("reuses caller id", func(t *testing.T) {
		logs.Reset()
		req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
		require.NotNil(t, ctxLogger)
		assert.Contains(t, logs.String(), `"request_id":"abc-123"`)
		assert.Contains(t, logs.String(), `"status":418`)
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
