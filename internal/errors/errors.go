package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound       = NewAppError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrUnauthorized   = NewAppError("UNAUTHORIZED", "Unauthorized", http.StatusUnauthorized)
	ErrForbidden      = NewAppError("FORBIDDEN", "Access denied", http.StatusForbidden)
	ErrBadRequest     = NewAppError("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrInternalServer = NewAppError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict       = NewAppError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrValidation     = NewAppError("VALIDATION_ERROR", "Validation error", http.StatusBadRequest)

	ErrStorageUnavailable = NewRetryableError("STORAGE_UNAVAILABLE", "Ledger store unavailable, retry later", http.StatusServiceUnavailable)
	ErrResourceNotOwned   = NewAppError("RESOURCE_NOT_OWNED", "Resource does not belong to the user", http.StatusForbidden)

	ErrInvalidAmount        = NewAppError("INVALID_AMOUNT", "Amount must be a positive whole-cent value within the ledger limit", http.StatusBadRequest)
	ErrGoalNotFound         = NewAppError("GOAL_NOT_FOUND", "Savings goal not found", http.StatusNotFound)
	ErrGoalAlreadyCompleted = NewAppError("GOAL_ALREADY_COMPLETED", "Savings goal is already completed", http.StatusConflict)
	ErrContributionNotDue   = NewAppError("CONTRIBUTION_NOT_DUE", "Auto-debit already applied for this period", http.StatusConflict)

	ErrTransactionNotFound   = NewRetryableError("TRANSACTION_NOT_FOUND", "Transaction not found", http.StatusNotFound)
	ErrTransactionNotPending = NewAppError("TRANSACTION_NOT_PENDING", "Transaction is no longer pending", http.StatusConflict)
	ErrTransactionNotFailed  = NewAppError("TRANSACTION_NOT_FAILED", "Only failed transactions can be retried", http.StatusConflict)
	ErrBookingNotFound       = NewAppError("BOOKING_NOT_FOUND", "Booking not found", http.StatusNotFound)
	ErrInvalidWebhook        = NewAppError("INVALID_WEBHOOK", "Malformed webhook payload", http.StatusBadRequest)
	ErrInvalidSignature      = NewAppError("INVALID_SIGNATURE", "Invalid webhook signature", http.StatusUnauthorized)
	ErrUnknownProvider       = NewAppError("UNKNOWN_PROVIDER", "Unknown payment provider", http.StatusNotFound)
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
	// Retryable marks failures a caller (typically a payment provider) should
	// redeliver later.
	Retryable bool
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches by code so clones produced by WithError or WithDetails compare
// equal to the sentinel they were derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	if details == nil {
		clone.Details = make(map[string]interface{})
		return clone
	}
	clone.Details = make(map[string]interface{}, len(details))
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

func (e *AppError) WithMessage(message string) *AppError {
	clone := e.clone()
	clone.Message = message
	return clone
}

func (e *AppError) WithStatus(statusCode int) *AppError {
	clone := e.clone()
	clone.StatusCode = statusCode
	return clone
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewRetryableError(code, message string, statusCode int) *AppError {
	appErr := NewAppError(code, message, statusCode)
	appErr.Retryable = true
	return appErr
}

func WrapError(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Details != nil {
		clone.Details = make(map[string]interface{}, len(e.Details))
		for k, v := range e.Details {
			clone.Details[k] = v
		}
	} else {
		clone.Details = make(map[string]interface{})
	}
	return &clone
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable reports whether err should be surfaced to a provider as a
// transient failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStorageUnavailable.WithError(err)
	}

	if errors.Is(err, context.Canceled) {
		return WrapError(err, "REQUEST_CANCELED", "Request canceled by the client", http.StatusRequestTimeout)
	}

	return WrapError(err, "UNKNOWN_ERROR", "Unknown error", http.StatusInternalServerError)
}

func NewAuthError(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Details:    make(map[string]interface{}),
	}
}

func NewValidationError(field, message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("%s %s", field, message),
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

// NewDatabaseError reports a storage failure. Callers treat it as transient.
func NewDatabaseError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return ErrStorageUnavailable.WithError(err)
}

func NewConflictError(resource string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    fmt.Sprintf("%s already exists", resource),
		StatusCode: http.StatusConflict,
		Details: map[string]interface{}{
			"resource": resource,
		},
	}
}

func ParseValidationErrors(err error) *AppError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ErrBadRequest.WithError(err)
	}

	fieldErrors := make([]map[string]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, map[string]string{
			"field":   jsonFieldName(fieldErr.Field()),
			"message": translateValidationError(fieldErr),
		})
	}

	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Request fields failed validation",
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"fields": fieldErrors,
		},
	}
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func translateValidationError(fe validator.FieldError) string {
	fieldName := jsonFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldName)
	case "min":
		return fmt.Sprintf("%s must be at least %s", fieldName, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fieldName, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fieldName, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fieldName, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fieldName, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldName, fe.Param())
	case "ulid":
		return fmt.Sprintf("%s must be a valid ULID", fieldName)
	case "datetime":
		return fmt.Sprintf("%s must be a valid date", fieldName)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", fieldName)
	default:
		return fmt.Sprintf("validation '%s' failed for %s", fe.Tag(), fieldName)
	}
}
