package trace

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "fintech/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(applog.New(applog.Config{Output: &buf}), func(*http.Request) string { return "10.0.0.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), "status_code=418")
	assert.Equal(t, int64(1), m.GetMetrics().TotalRequests)
}

func TestMiddlewareKeepsValidIncomingID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	id := uuid.NewString()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, int64(1), m.GetMetrics().ServerErrors)

	req.Header.Set(HeaderRequestID, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(HeaderRequestID))
}

func TestMiddlewareRequestLoggerCarriesID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(applog.New(applog.Config{Output: &buf}), nil)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "export failed",
			applog.NewFields().WithError(errors.New("disk full")).ToSlice()...)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/expenses/export.csv", nil))

	id := rec.Header().Get(HeaderRequestID)
	require.NotEmpty(t, id)
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "request_id="+id), out)
	assert.Contains(t, out, `error="disk full"`)
}
