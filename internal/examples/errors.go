package examples

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/loadextract/internal/drafts"
)

// Domain errors for learning example operations.
var (
	ErrNotFound      = errors.New("learning example not found")
	ErrDuplicate     = errors.New("learning example already exists")
	ErrMissingTenant = errors.New("tenant id required")
	ErrInvalidBody   = errors.New("invalid request body")
)

// MapHTTPStatus maps example domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingTenant),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, drafts.ErrInvalidDraft):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
