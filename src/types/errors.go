package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	ValidationError    ErrorKind = "validation"
	AuthError          ErrorKind = "auth"
	NotFoundError      ErrorKind = "not_found"
	ConfigurationError ErrorKind = "configuration"
	GatewayError       ErrorKind = "gateway"
	SignatureError     ErrorKind = "signature"
	StorageError       ErrorKind = "storage"
)

const (
	CODE_VALIDATION            = "VALIDATION_ERROR"
	CODE_INVALID_AMOUNT        = "INVALID_AMOUNT"
	CODE_INVALID_CURRENCY      = "INVALID_CURRENCY"
	CODE_CONSENT_REQUIRED      = "CONSENT_REQUIRED"
	CODE_INVALID_CREDENTIALS   = "INVALID_CREDENTIALS"
	CODE_UNAUTHORIZED          = "UNAUTHORIZED"
	CODE_NOT_FOUND             = "NOT_FOUND"
	CODE_CONFIGURATION         = "CONFIGURATION_ERROR"
	CODE_INVALID_PAYMENT       = "INVALID_PAYMENT_REQUEST"
	CODE_GATEWAY               = "PAYMENT_GATEWAY_ERROR"
	CODE_MISSING_SIGNATURE     = "MISSING_SIGNATURE"
	CODE_INVALID_SIGNATURE     = "INVALID_SIGNATURE"
	CODE_STORAGE               = "STORAGE_ERROR"
	CODE_INTERNAL              = "INTERNAL_ERROR"
	CODE_SERVICE_UNAVAILABLE   = "SERVICE_UNAVAILABLE"
	CODE_ROUTE_NOT_FOUND       = "ROUTE_NOT_FOUND"
	CODE_METHOD_NOT_ALLOWED    = "METHOD_NOT_ALLOWED"
	MESSAGE_UNAUTHORIZED       = "Authentication required"
	MESSAGE_INVALID_CREDENTIAL = "Invalid credentials"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the error type every service returns for conditions the HTTP
// layer knows how to report. Err carries the cause for logs only.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Status  int
	Details []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

var (
	ErrInvalidCredentials = &AppError{Kind: AuthError, Code: CODE_INVALID_CREDENTIALS, Message: MESSAGE_INVALID_CREDENTIAL, Status: http.StatusUnauthorized}
	ErrUnauthorized       = &AppError{Kind: AuthError, Code: CODE_UNAUTHORIZED, Message: MESSAGE_UNAUTHORIZED, Status: http.StatusUnauthorized}
)

func NewValidationError(code, message string, details ...FieldError) *AppError {
	if code == "" {
		code = CODE_VALIDATION
	}
	return &AppError{Kind: ValidationError, Code: code, Message: message, Status: http.StatusBadRequest, Details: details}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: NotFoundError, Code: CODE_NOT_FOUND, Message: message, Status: http.StatusNotFound}
}

func NewConfigurationError(message string, err error) *AppError {
	return &AppError{Kind: ConfigurationError, Code: CODE_CONFIGURATION, Message: message, Status: http.StatusInternalServerError, Err: err}
}

func NewGatewayError(status int, code, message string, err error) *AppError {
	return &AppError{Kind: GatewayError, Code: code, Message: message, Status: status, Err: err}
}

func NewSignatureError(code, message string, err error) *AppError {
	return &AppError{Kind: SignatureError, Code: code, Message: message, Status: http.StatusBadRequest, Err: err}
}

func NewStorageError(err error) *AppError {
	return &AppError{Kind: StorageError, Code: CODE_STORAGE, Message: "Storage unavailable", Status: http.StatusInternalServerError, Err: err}
}

// Unauthorized wraps a token failure so callers still match ErrUnauthorized.
func Unauthorized(err error) *AppError {
	return &AppError{Kind: AuthError, Code: CODE_UNAUTHORIZED, Message: MESSAGE_UNAUTHORIZED, Status: http.StatusUnauthorized, Err: err}
}

// AsAppError extracts an AppError from err, falling back to a generic 500.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: "internal", Code: CODE_INTERNAL, Message: "Internal server error", Status: http.StatusInternalServerError, Err: err}
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return AsAppError(err).Status
}

func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
