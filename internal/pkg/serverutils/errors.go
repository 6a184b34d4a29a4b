package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// AppError carries an HTTP status and a message safe to show to clients.
type AppError struct {
	Code    int
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string, err error) *AppError {
	return NewAppError(fiber.StatusBadRequest, message, err)
}

func Unauthorized(message string) *AppError {
	return NewAppError(fiber.StatusUnauthorized, message, nil)
}

func TooLarge(message string, err error) *AppError {
	return NewAppError(fiber.StatusRequestEntityTooLarge, message, err)
}

func Unprocessable(message string, err error) *AppError {
	return NewAppError(fiber.StatusUnprocessableEntity, message, err)
}

func Internal(message string, err error) *AppError {
	return NewAppError(fiber.StatusInternalServerError, message, err)
}

// AsAppError unwraps err into an AppError when it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
