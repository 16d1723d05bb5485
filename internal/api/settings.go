package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alikhantareen/natural-language-query-finder/internal/pipeline"
)

type settingsRequest struct {
	Model        *string  `json:"model"`
	Temperature  *float64 `json:"temperature"`
	SystemPrompt *string  `json:"systemPrompt"`
}

func handleGetConfig(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil {
		writeError(r.Context(), w, http.StatusInternalServerError, msgInternalError, "query pipeline is not configured", nil)
		return
	}
	writeJSON(w, http.StatusOK, deps.Pipeline.Settings())
}

// handlePutConfig replaces the settings as a whole: fields left out of the
// body fall back to the startup defaults, not to the current values.
func handlePutConfig(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil {
		writeError(r.Context(), w, http.StatusInternalServerError, msgInternalError, "query pipeline is not configured", nil)
		return
	}

	var request settingsRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, msgInvalidJSON, err.Error(), nil)
		return
	}

	next := deps.Pipeline.DefaultSettings()
	if request.Model != nil {
		next.Model = *request.Model
	}
	if request.Temperature != nil {
		next.Temperature = *request.Temperature
	}
	if request.SystemPrompt != nil {
		next.SystemPrompt = *request.SystemPrompt
	}

	updated, err := deps.Pipeline.UpdateSettings(next)
	if err != nil {
		var validation *pipeline.ValidationError
		if errors.As(err, &validation) {
			writeError(r.Context(), w, http.StatusBadRequest, "Invalid configuration", validation.Reason, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, msgInternalError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
