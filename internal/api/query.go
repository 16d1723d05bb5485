package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alikhantareen/natural-language-query-finder/internal/observability"
	"github.com/alikhantareen/natural-language-query-finder/internal/pipeline"
	"github.com/alikhantareen/natural-language-query-finder/internal/query"
)

const (
	maxRequestBodyBytes = 64 << 10

	msgQueryRequired   = "Query is required and must be a string"
	msgInvalidJSON     = "Invalid JSON body"
	msgGenerationError = "Failed to parse natural language query"
	msgExecutionError  = "Failed to execute SQL query"
	msgInternalError   = "Internal server error"
)

type queryResponse struct {
	Success              bool           `json:"success"`
	NaturalLanguageQuery string         `json:"naturalLanguageQuery"`
	GeneratedSQL         string         `json:"generatedSQL"`
	Results              []query.Record `json:"results"`
	Count                int            `json:"count"`
	Explanation          string         `json:"explanation"`
}

func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil {
		writeError(r.Context(), w, http.StatusInternalServerError, msgInternalError, "query pipeline is not configured", nil)
		return
	}

	var body struct {
		Query json.RawMessage `json:"query"`
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(&body); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, msgInvalidJSON, err.Error(), nil)
		return
	}
	var question string
	if len(body.Query) == 0 || json.Unmarshal(body.Query, &question) != nil || strings.TrimSpace(question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, msgQueryRequired, "", nil)
		return
	}

	answer, err := deps.Pipeline.Ask(r.Context(), question)
	if answer.ID != "" {
		w.Header().Set("X-Query-ID", answer.ID)
	}
	if err != nil {
		writePipelineError(deps, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Success:              true,
		NaturalLanguageQuery: answer.Question,
		GeneratedSQL:         answer.SQL,
		Results:              answer.Result.Records(),
		Count:                answer.Result.RowCount(),
		Explanation:          answer.Explanation,
	})
}

func writePipelineError(deps Dependencies, w http.ResponseWriter, r *http.Request, err error) {
	var validation *pipeline.ValidationError
	var generation *pipeline.GenerationError
	var execution *pipeline.ExecutionError
	switch {
	case errors.As(err, &validation):
		writeError(r.Context(), w, http.StatusBadRequest, msgQueryRequired, "", nil)
	case errors.As(err, &generation):
		writeError(r.Context(), w, http.StatusBadRequest, msgGenerationError, observability.Mask(generation.Err.Error()), nil)
	case errors.As(err, &execution):
		writeError(r.Context(), w, http.StatusInternalServerError, msgExecutionError, observability.Mask(execution.Err.Error()), map[string]any{
			"sql": execution.SQL,
		})
	default:
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "query request failed",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.Any("error", err),
			)
		}
		writeError(r.Context(), w, http.StatusInternalServerError, msgInternalError, observability.Mask(err.Error()), nil)
	}
}
