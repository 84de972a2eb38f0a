package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError describes one input field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string       `json:"error_code"`
	Message    string       `json:"message"`
	Fields     []FieldError `json:"fields,omitempty"`
	HTTPStatus int          `json:"-"`
	Err        error        `json:"-"` // wrapped cause, never sent to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

const (
	CodeValidation       = "VAL_001"
	CodeBodyTooLarge     = "VAL_002"
	CodeQuery            = "QRY_001"
	CodeSubmitInProgress = "FORM_001"
	CodeInvalidToken     = "AUTH_001"
	CodeRateLimit        = "RATE_001"
	CodeInternal         = "SYS_001"
)

// ---- Input (VAL) ----

// Validation reports input that failed the schema rules before any gateway
// call. fields lists the offending fields for inline rendering.
func Validation(message string, fields ...FieldError) *AppError {
	if message == "" && len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		message = strings.Join(parts, "; ")
	}
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		Fields:     fields,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrBodyTooLarge rejects request bodies above the configured limit.
func ErrBodyTooLarge() *AppError {
	return New(CodeBodyTooLarge, "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Gateway (QRY) ----

// QueryError reports a failed gateway read or write. The cause is kept
// unchanged so callers can still errors.Is / errors.As against it.
func QueryError(err error) *AppError {
	msg := "Query failed"
	if err != nil {
		msg = err.Error()
	}
	return Wrap(CodeQuery, msg, http.StatusInternalServerError, err)
}

// ---- Form (FORM) ----

func ErrSubmitInProgress() *AppError {
	return New(CodeSubmitInProgress, "A submission is already in progress", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimit, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// IsValidation reports whether err carries a VAL_001 AppError.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsQuery reports whether err carries a QRY_001 AppError.
func IsQuery(err error) bool {
	return hasCode(err, CodeQuery)
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
