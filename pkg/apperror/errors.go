package apperror

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrUnauthenticated  = &AppError{Code: "UNAUTHENTICATED", Message: "Authentication required", Status: http.StatusUnauthorized}
	ErrPermissionDenied = &AppError{Code: "PERMISSION_DENIED", Message: "Permission denied", Status: http.StatusForbidden}
	ErrInvalidArgument  = &AppError{Code: "INVALID_ARGUMENT", Message: "Invalid argument", Status: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrDispatchFailure  = &AppError{Code: "DISPATCH_FAILURE", Message: "Dispatch channel unreachable", Status: http.StatusBadGateway}
	ErrRateLimited      = &AppError{Code: "RATE_LIMITED", Message: "Too many requests", Status: http.StatusTooManyRequests}
	ErrInternal         = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
)

func NewUnauthenticated(message string) *AppError {
	return &AppError{Code: "UNAUTHENTICATED", Message: message, Status: http.StatusUnauthorized}
}

func NewInvalidArgument(message string) *AppError {
	return &AppError{Code: "INVALID_ARGUMENT", Message: message, Status: http.StatusBadRequest}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

// MapError normalizes any error into an AppError so handlers can write a
// consistent envelope. Unknown errors are hidden behind a generic internal error.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal
}

// Is reports whether err carries the given taxonomy code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
