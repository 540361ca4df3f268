package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MatheusWesley/api-projects-management/internal/constants"
	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeInvalidFormat = "INVALID_FORMAT"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	// Business logic errors
	ErrCodeInvalidOperation        = "INVALID_OPERATION"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Kind is the closed set of failure categories the services raise.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindBusinessLogic
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindBusinessLogic:
		return "business_logic"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// StatusCode maps a kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindBusinessLogic:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the error type returned by the service layer.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches copies made by WithDetails against their original.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Err != nil || e.Err != nil {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Validation builds a caller-correctable input error for field.
func Validation(field, message string) *AppError {
	var details interface{}
	if field != "" {
		details = map[string]string{"field": field}
	}
	return &AppError{Kind: KindValidation, Code: ErrCodeInvalidInput, Message: message, Details: details}
}

// MissingField builds a validation error for an absent required field.
func MissingField(field string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    ErrCodeMissingField,
		Message: fmt.Sprintf("%s is required", field),
		Details: map[string]string{"field": field},
	}
}

func NotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: ErrCodeNotFound, Message: message}
}

func ForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: ErrCodeForbidden, Message: message}
}

// BusinessLogic builds an error for a well-formed request that breaks a
// domain rule.
func BusinessLogic(code, message string) *AppError {
	return &AppError{Kind: KindBusinessLogic, Code: code, Message: message}
}

func ConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Code: ErrCodeConflict, Message: message}
}

func UnauthorizedError(code, message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: code, Message: message}
}

// Internal wraps an infrastructure failure. The message is logged, never sent.
func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: ErrCodeInternalError, Message: message, Err: err}
}

// KindOf returns the kind of err. Anything that is not an *AppError is internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, ErrorResponse{Success: false, Error: err})
}

// Respond translates a service error into the failure envelope. Internal
// errors are logged with their cause and reported generically.
func Respond(c *gin.Context, err error) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Kind == KindInternal {
		attrs := []any{"request_id", c.GetString(constants.ContextKeyRequestID), "err", err}
		if c.Request != nil {
			attrs = append(attrs, "method", c.Request.Method, "path", c.Request.URL.Path)
		}
		slog.Error("unexpected error", attrs...)
		InternalError(c, "")
		return
	}

	RespondWithError(c, appErr.Kind.StatusCode(), NewAPIErrorWithDetails(appErr.Code, appErr.Message, appErr.Details))
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}
