package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentAssistant, Format: "json", Output: &buf})

	l.Info("answered", FieldTopic, "income")
	l.WithComponent(ComponentHTTP).Debug("request")

	out := buf.String()
	if !strings.Contains(out, `"component":"assistant"`) || !strings.Contains(out, `"topic":"income"`) {
		t.Errorf("missing fields in %s", out)
	}
	if !strings.Contains(out, `"component":"http"`) {
		t.Errorf("component override missing in %s", out)
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithError(nil).WithRequestID("").WithExpense(3, "Market", "12.5").WithError(errors.New("boom"))
	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be skipped")
	}
	if f[FieldError] != "boom" || f[FieldExpenseID] != int64(3) {
		t.Errorf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Error("ToSlice length mismatch")
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "text", Output: &buf})

	h := Middleware(base, func(*http.Request) string { return "req-1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing in %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("FromContext without logger should fall back")
	}
}
