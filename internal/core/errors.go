package core

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrTokenExpired      = errors.New("token expired")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Error kinds double as the envelope status field for failed requests.
const (
	KindValidation        = "validation_error"
	KindConflict          = "conflict"
	KindAuthentication    = "authentication_error"
	KindAuthorization     = "authorization_error"
	KindNotFound          = "not_found"
	KindUnsupportedFormat = "unsupported_format"
	KindInternal          = "internal_error"
)

type AppError struct {
	Err     error
	Message string
	Status  int
	Kind    string
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

func NewAppError(err error, message string, status int, kind string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Kind:    kind,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		KindValidation,
	)
}

func ConflictError(message string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		message,
		http.StatusConflict,
		KindConflict,
	)
}

func DuplicateError(field string) *AppError {
	return ConflictError(field + " already registered")
}

func AuthenticationError(message string) *AppError {
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		KindAuthentication,
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		KindAuthorization,
	)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		KindNotFound,
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"invalid authorization token",
		http.StatusUnauthorized,
		KindAuthorization,
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"authorization token expired",
		http.StatusUnauthorized,
		KindAuthorization,
	)
}

func UnsupportedFormatError(format string) *AppError {
	return NewAppError(
		ErrUnsupportedFormat,
		fmt.Sprintf("unsupported export format %q", format),
		http.StatusBadRequest,
		KindUnsupportedFormat,
	)
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"internal server error",
		http.StatusInternalServerError,
		KindInternal,
	)
}

func FormatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request body"
	}

	if len(validationErrs) == 0 {
		return "invalid request body"
	}

	fieldErr := validationErrs[0]
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldErr.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fieldErr.Field())
	case "min":
		return fmt.Sprintf(
			"%s must be at least %s characters",
			fieldErr.Field(),
			fieldErr.Param(),
		)
	case "max":
		return fmt.Sprintf(
			"%s must be at most %s characters",
			fieldErr.Field(),
			fieldErr.Param(),
		)
	case "eqfield":
		return fmt.Sprintf(
			"%s must match %s",
			fieldErr.Field(),
			fieldErr.Param(),
		)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", fieldErr.Field())
	default:
		return fmt.Sprintf("%s is invalid", fieldErr.Field())
	}
}
