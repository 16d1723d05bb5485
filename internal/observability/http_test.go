package observability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alikhantareen/natural-language-query-finder/internal/config"
)

func TestTraceMiddlewarePreservesIncomingTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := TraceIDFromContext(r.Context()); got != "trace-1" {
			t.Fatalf("TraceIDFromContext() = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(traceHeader, "trace-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(traceHeader); got != "trace-1" {
		t.Fatalf("trace header = %q", got)
	}
}

func TestTraceMiddlewareGeneratesTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if TraceIDFromContext(r.Context()) == "" {
			t.Fatal("expected generated trace id")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Header().Get(traceHeader) == "" {
		t.Fatal("expected X-Trace-ID header")
	}
}

func TestTraceIDContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc123")
	if got := TraceIDFromContext(ctx); got != "abc123" {
		t.Fatalf("TraceIDFromContext() = %q", got)
	}
}

func TestLoggingMiddlewareDoesNotPanic(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
}

func TestMaskHidesCredentials(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			in:   "dial postgresql://app:s3cr3t@db:5432/natural_language_db failed",
			want: "dial postgresql://app:***@db:5432/natural_language_db failed",
		},
		{in: "Authorization: Bearer abc.def-123", want: "Authorization: Bearer ***"},
		{in: "password=hunter2 host=db", want: "password=*** host=db"},
		{in: "key sk-or-v1-0123456789abcdef rejected", want: "key sk-*** rejected"},
		{in: "nothing secret here", want: "nothing secret here"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Fatalf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerWritesRotatingFile(t *testing.T) {
	cfg := config.Config{
		Profile: config.ProfileTest,
		Service: config.ServiceConfig{Name: "nlq-test"},
		Observability: config.ObservabilityConfig{
			LogLevel: slog.LevelInfo,
			LogJSON:  true,
			LogFile:  filepath.Join(t.TempDir(), "nlq.log"),
		},
	}
	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Info("hello")

	if !strings.Contains(buf.String(), `"service":"nlq-test"`) {
		t.Fatalf("stdout log = %s", buf.String())
	}
	content, err := os.ReadFile(cfg.Observability.LogFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"hello"`) {
		t.Fatalf("file log = %s", content)
	}
}
