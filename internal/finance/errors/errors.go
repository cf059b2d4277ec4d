package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the finance services. Handlers translate these
// into HTTP statuses: access denied is always surfaced as 403, never 404.
var (
	ErrAccessDenied = errors.New("access denied: user does not own this record")
	ErrNotFound     = errors.New("record not found")
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

func NewIndexedValidationError(index int, msg string) error {
	return &ValidationError{Msg: fmt.Sprintf("Validation error at row %d: %s", index, msg)}
}

// ReferentialError marks an attempt to reference a nonexistent or
// foreign-owned record. It is rejected before anything is persisted.
type ReferentialError struct {
	Msg string
}

func (e *ReferentialError) Error() string {
	return e.Msg
}

func NewReferentialError(msg string) error {
	return &ReferentialError{Msg: msg}
}

func IsReferentialError(err error) bool {
	var referentialError *ReferentialError
	ok := errors.As(err, &referentialError)
	return ok
}

var ErrInvalidCategory = NewReferentialError("Invalid category reference")

type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	ok := errors.As(err, &validationErrors)
	return ok
}
