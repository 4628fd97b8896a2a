package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors used across layers. Match with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// FieldError describes a validation failure of a single input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries field-level messages for rejected input.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// OrNil returns e when it holds at least one field error.
func (e *ValidationError) OrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// NotFoundError reports references to entities that do not exist.
type NotFoundError struct {
	Entity string
	IDs    []uuid.UUID
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return e.Entity + " not found"
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, strings.Join(ids, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func newNotFound(entity string, ids ...uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, IDs: ids}
}

// ConflictError reports a uniqueness violation: a duplicate name or a
// membership that already exists.
type ConflictError struct {
	Entity  string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func newConflict(entity, message string) *ConflictError {
	return &ConflictError{Entity: entity, Message: message}
}

// isUniqueViolation recognizes duplicate-key failures from either driver.
// The sqlite driver does not translate every constraint error, so its
// message is matched as well.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// mapStorageError turns gorm errors into the service taxonomy. Errors that
// are already classified pass through untouched.
func mapStorageError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newNotFound(entity)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return newNotFound(entity)
	case isUniqueViolation(err):
		return newConflict(entity, entity+" already exists")
	default:
		return fmt.Errorf("%s: %w", entity, err)
	}
}
