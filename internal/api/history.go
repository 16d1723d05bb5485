package api

import (
	"errors"
	"net/http"

	"github.com/alikhantareen/natural-language-query-finder/internal/history"
)

func handleGetHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "Query history is not enabled", "", nil)
		return
	}
	entry, err := deps.History.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(r.Context(), w, http.StatusNotFound, "History entry not found", "", nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, msgInternalError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
