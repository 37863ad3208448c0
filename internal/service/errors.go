package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation")    // 400
	ErrUnauthorized        = errors.New("unauthorized")  // 401
	ErrForbidden           = errors.New("forbidden")     // 403
	ErrNotFound            = errors.New("not found")     // 404
	ErrConflict            = errors.New("conflict")      // 409
	ErrInvalidRefreshToken = errors.New("invalid token") // 400 on logout, 401 on refresh
)

// FieldError is a validation failure tied to one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func fieldError(field, msg string) error {
	return &FieldError{Field: field, Message: msg}
}
