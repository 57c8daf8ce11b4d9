// internal/apperrors/errors.go
package apperrors

import "fmt"

// NotFoundError covers both absent rows and disabled rows: callers other
// than enable/disable treat the two identically.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NotFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError signals a lifecycle transition against the wrong state,
// e.g. disabling an already disabled entity.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError signals an authenticated caller without ownership or the
// required role.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func Forbidden(format string, args ...interface{}) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError covers malformed input and business-rule rejections such
// as a checkout stock shortfall.
type ValidationError struct {
	Message string
	Fields  interface{}
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func ValidationWithFields(message string, fields interface{}) error {
	return &ValidationError{Message: message, Fields: fields}
}

// UnauthorizedError signals missing or invalid credentials.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

func Unauthorized(format string, args ...interface{}) error {
	return &UnauthorizedError{Message: fmt.Sprintf(format, args...)}
}
