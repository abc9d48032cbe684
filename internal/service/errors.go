package service

import (
	"errors"
	"strings"

	"github.com/coaching-dashboard/internal/validation"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with existing data
	ErrConflict = errors.New("conflict")
)

// ValidationFailed is returned when a request fails validation
type ValidationFailed struct {
	Errors []validation.ValidationError
}

func (e *ValidationFailed) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		fields = append(fields, ve.Field+": "+ve.Message)
	}
	return "validation failed: " + strings.Join(fields, "; ")
}

func invalid(errs []validation.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationFailed{Errors: errs}
}
