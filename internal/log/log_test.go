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

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"rinkbook/internal/core"
)

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf})
	l.WithComponent(ComponentWorker).Info("Started", FieldSeason, "2024-2025")

	out := buf.String()
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "season=2024-2025") {
		t.Errorf("unexpected output %q", out)
	}
	if l.Component() != ComponentApp {
		t.Errorf("Component() = %s", l.Component())
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger")
	}
	l := New(DefaultConfig())
	if FromContext(NewContext(context.Background(), l)) != l {
		t.Error("expected logger from context")
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithPlayer("p1", "2024-2025").
		WithGame(core.GameRecord{ID: "g1", Opponent: "Eagles", Points: 4}).
		WithError(errors.New("boom")).
		WithRequestID("")

	if f[FieldPlayerID] != "p1" || f[FieldSeason] != "2024-2025" || f[FieldPoints] != 4 || f[FieldError] != "boom" {
		t.Errorf("unexpected fields %v", f)
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be omitted")
	}
	if got := len(f.ToSlice()); got != len(f)*2 {
		t.Errorf("ToSlice() length = %d", got)
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok", http.StatusOK, "level=INFO"},
		{"client error", http.StatusNotFound, "level=WARN"},
		{"server error", http.StatusInternalServerError, "level=ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

			var sawLogger bool
			h := chimiddleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sawLogger = FromContext(r.Context()).Component() == ComponentHTTP
				w.WriteHeader(tt.status)
			})))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players?x=1", nil))

			out := buf.String()
			for _, want := range []string{tt.level, "path=/api/v1/players", "request_id=", "component=http"} {
				if !strings.Contains(out, want) {
					t.Errorf("log %q missing %q", out, want)
				}
			}
			if !sawLogger {
				t.Error("handler did not receive the request logger")
			}
		})
	}
}
