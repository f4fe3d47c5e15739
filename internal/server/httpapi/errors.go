package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to HTTP statuses and client-facing messages.
// Anything unrecognised is reported as an internal error without detail.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrLabelRequired),
		errors.Is(err, common.ErrSecretRequired),
		errors.Is(err, common.ErrBlobRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrIncorrectPassword):
		return http.StatusUnauthorized, common.ErrIncorrectPassword.Error()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, common.ErrorUnauthorized.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func writeError(w http.ResponseWriter, err error) {
	code, msg := statusFor(err)
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
