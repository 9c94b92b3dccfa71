// Package apphttp provides the HTTP plumbing shared by the bridge's API
// surface: an error-returning handler convention and graceful server
// lifecycle management.
package apphttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
)

// HandlerFunc is an HTTP handler that returns an error instead of writing it
// directly, so every route shares one error-to-response mapping.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError adapts a HandlerFunc to http.HandlerFunc, routing any returned
// error through DefaultErrorHandler.
//
// Usage with chi:
//
//	r.Post("/claim", apphttp.HandleError(h.claim))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

type errorResponse struct {
	ErrMsg     string `json:"error"`
	ErrMsgCode int    `json:"code"`
}

// DefaultErrorHandler writes a JSON error body with the status code carried
// by a *apperrors.ServiceError, or a generic 500 for anything else.
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	var svcErr *apperrors.ServiceError

	if errors.As(err, &svcErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(svcErr.StatusCode())
		_ = json.NewEncoder(w).Encode(&errorResponse{
			ErrMsg:     svcErr.Message,
			ErrMsgCode: svcErr.StatusCode(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(&errorResponse{
		ErrMsg:     "Unexpected Service Error",
		ErrMsgCode: http.StatusInternalServerError,
	})
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
