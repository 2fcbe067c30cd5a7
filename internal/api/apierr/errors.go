package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/autosnake/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidGridSize     = "INVALID_GRID_SIZE"
	CodeInvalidDirection    = "INVALID_DIRECTION"
	CodeInvalidTickInterval = "INVALID_TICK_INTERVAL"
	CodeUnknownStrategy     = "UNKNOWN_STRATEGY"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidControlToken = "INVALID_CONTROL_TOKEN"
	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodeResultNotFound      = "RESULT_NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrResultNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeResultNotFound, "Result not found"}}
	case errors.Is(err, model.ErrInvalidControlToken):
		return &httpError{http.StatusForbidden, APIError{CodeInvalidControlToken, "Control token does not match this game"}}
	case errors.Is(err, model.ErrInvalidGridSize):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGridSize, "Grid size must be between 3 and 64"}}
	case errors.Is(err, model.ErrInvalidDirection):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDirection, "Direction must be one of up, down, left, right"}}
	case errors.Is(err, model.ErrInvalidTickInterval):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTickInterval, "Tick interval must not be negative"}}
	case errors.Is(err, model.ErrUnknownStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownStrategy, "Unknown autopilot strategy"}}
	case errors.Is(err, model.ErrInvalidBody):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Invalid snake body"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Control token required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
