package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alikhantareen/natural-language-query-finder/internal/auth"
	"github.com/alikhantareen/natural-language-query-finder/internal/config"
	"github.com/alikhantareen/natural-language-query-finder/internal/history"
	"github.com/alikhantareen/natural-language-query-finder/internal/nl2sql"
	"github.com/alikhantareen/natural-language-query-finder/internal/observability"
	"github.com/alikhantareen/natural-language-query-finder/internal/pipeline"
)

type ReadinessCheck func(ctx context.Context) error

// QueryPipeline is the orchestrator behind POST /api/query and the
// configuration endpoints.
type QueryPipeline interface {
	Ask(ctx context.Context, question string) (pipeline.Answer, error)
	Settings() nl2sql.Settings
	DefaultSettings() nl2sql.Settings
	UpdateSettings(next nl2sql.Settings) (nl2sql.Settings, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Pipeline          QueryPipeline
	History           history.Reader
	// Executor names the active query strategy in health responses.
	Executor string
	UI       http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"service":  cfg.Service.Name,
			"executor": deps.Executor,
		})
	})

	mux.HandleFunc("GET /api/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "Service not ready", observability.Mask(err.Error()), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	guard := func(role string, handler http.HandlerFunc) http.Handler {
		if !cfg.Auth.Required {
			return handler
		}
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "Internal server error", "auth middleware is required by configuration", nil)
			})
		}
		return deps.AuthMiddleware(auth.RequireRole(role)(handler))
	}

	mux.Handle("POST /api/query", guard(auth.RoleAsker, func(w http.ResponseWriter, r *http.Request) {
		handleQuery(deps, w, r)
	}))
	mux.Handle("GET /api/config", guard(auth.RoleAsker, func(w http.ResponseWriter, r *http.Request) {
		handleGetConfig(deps, w, r)
	}))
	mux.Handle("PUT /api/config", guard(auth.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		handlePutConfig(deps, w, r)
	}))
	mux.Handle("GET /api/history/{id}", guard(auth.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		handleGetHistory(deps, w, r)
	}))
	if deps.UI != nil {
		mux.Handle("GET /{path...}", deps.UI)
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// CheckAIConfig fails when no completion credentials were configured.
func CheckAIConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.AI.APIKey == "" {
			return errors.New("AI API key is not configured")
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message, details string, extra map[string]any) {
	payload := map[string]any{
		"error":    message,
		"trace_id": observability.TraceIDFromContext(ctx),
	}
	if details != "" {
		payload["details"] = details
	}
	for key, value := range extra {
		payload[key] = value
	}
	writeJSON(w, status, payload)
}
