package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/186mph/calsoft-assets/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// statusForErr maps domain sentinels to HTTP statuses so callers can
// distinguish bad input from backend trouble without parsing messages.
func statusForErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPartitionMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIdentityConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptySourcePayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusForErr(err), Fail(err.Error()))
}
