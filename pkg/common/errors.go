package common

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across services.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrBadRequest       = errors.New("bad request")
	ErrInternalServer   = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")
	ErrValidation       = errors.New("validation error")
	ErrAlreadyCommitted = errors.New("booking already committed")
	ErrAlreadyTaken     = errors.New("ride already taken")
	ErrTerminalState    = errors.New("booking is in a terminal state")
)

// AppError is an application error carrying an HTTP status code.
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewNotFoundError(message string, err error) *AppError {
	if err == nil {
		err = ErrNotFound
	}
	return &AppError{Code: http.StatusNotFound, Message: message, Err: err}
}

func NewBadRequestError(message string, err error) *AppError {
	if err == nil {
		err = ErrBadRequest
	}
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: err}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message, Err: ErrUnauthorized}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message, Err: ErrForbidden}
}

func NewConflictError(message string, err error) *AppError {
	if err == nil {
		err = ErrConflict
	}
	return &AppError{Code: http.StatusConflict, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// NewAlreadyCommittedError marks a payment confirmation that raced an
// existing booking. Callers treat it as a normal outcome, not a failure.
func NewAlreadyCommittedError(tripID string) *AppError {
	return &AppError{
		Code:      http.StatusConflict,
		ErrorCode: "already_committed",
		Message:   "a booking already exists for this payment: " + tripID,
		Err:       ErrAlreadyCommitted,
	}
}

// NewAlreadyTakenError marks a dispatch offer that another partner won.
func NewAlreadyTakenError() *AppError {
	return &AppError{
		Code:      http.StatusConflict,
		ErrorCode: "already_taken",
		Message:   "ride has already been accepted by another partner",
		Err:       ErrAlreadyTaken,
	}
}

// NewTerminalStateError marks a transition attempted on a completed or
// canceled booking.
func NewTerminalStateError(status string) *AppError {
	return &AppError{
		Code:      http.StatusConflict,
		ErrorCode: "terminal_state",
		Message:   "booking is already " + status + " and cannot change state",
		Err:       ErrTerminalState,
	}
}
