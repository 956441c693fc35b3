package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartsched/internal/sched"
)

// API-specific errors.
var (
	// ErrInvalidInput is returned for request bodies that cannot be decoded
	// into tasks.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTaskNotFound is returned when a task id is not in the store.
	ErrTaskNotFound = errors.New("task not found")

	// ErrRateLimited is returned when the request rate limit is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ErrorCode represents an API error code.
type ErrorCode string

// Error codes for API responses.
const (
	CodeInvalidInput   ErrorCode = "invalid_input"
	CodeInvalidTask    ErrorCode = "invalid_task"
	CodeMixedAwareness ErrorCode = "mixed_awareness"
	CodeTaskNotFound   ErrorCode = "task_not_found"
	CodeRateLimited    ErrorCode = "rate_limited"
	CodeInternalError  ErrorCode = "internal_error"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Code       ErrorCode
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// MapError maps a domain error to an HTTPError.
func MapError(err error) *HTTPError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, sched.ErrInvalidTask):
		return &HTTPError{http.StatusBadRequest, CodeInvalidTask, err}

	case errors.Is(err, sched.ErrMixedAwareness):
		return &HTTPError{http.StatusBadRequest, CodeMixedAwareness, err}

	case errors.Is(err, ErrInvalidInput):
		return &HTTPError{http.StatusBadRequest, CodeInvalidInput, err}

	case errors.Is(err, ErrTaskNotFound):
		return &HTTPError{http.StatusNotFound, CodeTaskNotFound, err}

	case errors.Is(err, ErrRateLimited):
		return &HTTPError{http.StatusTooManyRequests, CodeRateLimited, err}

	default:
		return &HTTPError{http.StatusInternalServerError, CodeInternalError, err}
	}
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, err error) {
	httpErr := MapError(err)
	if httpErr == nil {
		return
	}

	writeJSON(w, httpErr.StatusCode, ErrorDTO{
		Code:   string(httpErr.Code),
		Detail: httpErr.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
