package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alikhantareen/natural-language-query-finder/internal/auth"
	"github.com/alikhantareen/natural-language-query-finder/internal/config"
	"github.com/alikhantareen/natural-language-query-finder/internal/history"
	"github.com/alikhantareen/natural-language-query-finder/internal/nl2sql"
	"github.com/alikhantareen/natural-language-query-finder/internal/pipeline"
	"github.com/alikhantareen/natural-language-query-finder/internal/query/memory"
)

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{Executor: "memory"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "ok" || body["executor"] != "memory" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadyEndpointReturns503WhenDependencyFails(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{
		Readiness: func(context.Context) error {
			return errors.New("dial tcp postgres://app:hunter2@db:5432/app: connection refused")
		},
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "hunter2") {
		t.Fatalf("readiness error leaked a credential: %s", rr.Body.String())
	}
}

func TestCombineReadinessChecksStopsOnFirstFailure(t *testing.T) {
	order := make([]int, 0, 3)
	combined := CombineReadinessChecks(
		func(context.Context) error {
			order = append(order, 1)
			return nil
		},
		nil,
		func(context.Context) error {
			order = append(order, 2)
			return errors.New("boom")
		},
		func(context.Context) error {
			order = append(order, 3)
			return nil
		},
	)

	if err := combined(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("execution order = %#v", order)
	}
}

func TestCheckAIConfig(t *testing.T) {
	if err := CheckAIConfig(loadConfig(t, nil))(context.Background()); err == nil {
		t.Fatal("expected error without an API key")
	}
	cfg := loadConfig(t, map[string]string{"OPENAI_API_KEY": "sk-test"})
	if err := CheckAIConfig(cfg)(context.Background()); err != nil {
		t.Fatalf("CheckAIConfig() error = %v", err)
	}
}

func TestProtectedRoutesRequireAuthAndRole(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"NLQ_AUTH_REQUIRED": "true"})
	validator, err := auth.NewStaticAPIKeyValidator("asker-key:alice:asker,admin-key:ops:admin")
	if err != nil {
		t.Fatalf("validator setup failed: %v", err)
	}
	h := NewHandler(cfg, Dependencies{
		AuthMiddleware: auth.Middleware(nil, validator),
		Pipeline:       newMemoryPipeline(t, &stubGenerator{sql: "SELECT * FROM users"}, &stubNarrator{text: "ok"}),
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		key    string
		want   int
	}{
		{name: "query without key", method: http.MethodPost, path: "/api/query", body: `{"query":"users"}`, want: http.StatusUnauthorized},
		{name: "query as asker", method: http.MethodPost, path: "/api/query", body: `{"query":"users"}`, key: "asker-key", want: http.StatusOK},
		{name: "config read as asker", method: http.MethodGet, path: "/api/config", key: "asker-key", want: http.StatusOK},
		{name: "config write as asker", method: http.MethodPut, path: "/api/config", body: `{"model":"m"}`, key: "asker-key", want: http.StatusForbidden},
		{name: "config write as admin", method: http.MethodPut, path: "/api/config", body: `{"model":"m"}`, key: "admin-key", want: http.StatusOK},
		{name: "health is public", method: http.MethodGet, path: "/api/health", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d, body=%s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestAuthRequiredWithoutMiddlewareFailsClosed(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"NLQ_AUTH_REQUIRED": "true"})
	h := NewHandler(cfg, Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query":"x"}`)))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUIHandlerServesNonAPIRoutes(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{
		UI: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, "<html>ok</html>")
		}),
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestHistoryEndpoint(t *testing.T) {
	reader := stubHistory{entries: map[string]history.Entry{
		"abc": {ID: "abc", Question: "show users", Status: history.StatusSucceeded, RowCount: 5},
	}}
	h := NewHandler(loadConfig(t, nil), Dependencies{History: reader})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history/abc", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["question"] != "show users" || body["row_count"] != float64(5) {
		t.Fatalf("body = %v", body)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rr.Code)
	}

	disabled := NewHandler(loadConfig(t, nil), Dependencies{})
	rr = httptest.NewRecorder()
	disabled.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history/abc", nil))
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("disabled status = %d", rr.Code)
	}
}

func loadConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	cfg, err := config.Load("nlq-api", mapLookup(env))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return cfg
}

func mapLookup(values map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v, body=%s", err, rr.Body.String())
	}
	return body
}

func newMemoryPipeline(t *testing.T, generator pipeline.SQLGenerator, narrator pipeline.ResultNarrator) *pipeline.Service {
	t.Helper()
	service, err := pipeline.NewService(pipeline.Dependencies{
		Generator: generator,
		Engine:    memory.NewEngine(),
		Narrator:  narrator,
		Settings:  nl2sql.DefaultSettings(),
		NewID:     func() string { return "query-id" },
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return service
}

type stubGenerator struct {
	sql string
	err error
}

func (s *stubGenerator) Generate(context.Context, nl2sql.Settings, string) (string, error) {
	return s.sql, s.err
}

type stubNarrator struct {
	text string
	err  error
}

func (s *stubNarrator) Explain(context.Context, nl2sql.Settings, nl2sql.Summary) (string, error) {
	return s.text, s.err
}

type stubHistory struct {
	entries map[string]history.Entry
}

func (s stubHistory) Lookup(_ context.Context, id string) (history.Entry, error) {
	entry, ok := s.entries[id]
	if !ok {
		return history.Entry{}, history.ErrNotFound
	}
	return entry, nil
}
