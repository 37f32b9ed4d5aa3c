package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dukerupert/parish/internal/attendance"
	"github.com/dukerupert/parish/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeError maps a domain error to its HTTP status and user-visible
// message. Validation faults are 400, conflicts 409, missing identifiers
// 404, and partial writes 500 with an explicit inconsistency message so
// clients can tell "nothing happened" from "re-fetch before retrying".
func writeError(w http.ResponseWriter, err error, fallback string) {
	var ve *store.ValidationError
	var pw *attendance.PartialWriteError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Msg})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "record already exists"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &pw):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "attendance was partially written; re-fetch the date and submit again",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}
