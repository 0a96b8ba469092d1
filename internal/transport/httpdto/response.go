package httpdto

import (
	"errors"
	"net/http"

	chat_errors "chatgraph/pkg/errors"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{chat_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{chat_errors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{chat_errors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{chat_errors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{chat_errors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{chat_errors.ErrTooLarge, http.StatusRequestEntityTooLarge, "TOO_LARGE"},
	{chat_errors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	{chat_errors.ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

// StatusFor maps a service error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// ErrorFor builds the error body for err. Internal errors are not echoed.
func ErrorFor(err error) (int, Response[any]) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		return status, NewErrorResponse("internal error", code)
	}
	return status, NewErrorResponse(err.Error(), code)
}
