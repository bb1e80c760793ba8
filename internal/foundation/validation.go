// Package foundation holds small generic building blocks shared by the
// configuration and build layers.
package foundation

import (
	"fmt"
	"strings"

	"github.com/hydessg/hyde/internal/foundation/errors"
)

// Validator checks a value and reports every problem it finds.
type Validator[T any] func(T) ValidationResult

// ValidationResult contains the result of a validation operation.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError represents a single validation failure.
type FieldError struct {
	Field   string `yaml:"field"`
	Code    string `yaml:"code"`
	Message string `yaml:"message"`
	Value   any    `yaml:"value,omitempty"`
}

func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid creates a successful validation result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid creates a failed validation result with errors.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// NewFieldError creates a field error.
func NewFieldError(field, code, message string, value any) FieldError {
	return FieldError{Field: field, Code: code, Message: message, Value: value}
}

// Combine merges two validation results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return Valid()
	}
	all := make([]FieldError, 0, len(vr.Errors)+len(other.Errors))
	all = append(all, vr.Errors...)
	all = append(all, other.Errors...)
	return Invalid(all...)
}

// ToError converts an invalid result into a classified validation error.
func (vr ValidationResult) ToError(message string) error {
	if vr.Valid {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, err.Error())
	}
	return errors.ValidationError(message).
		WithContext("problems", strings.Join(messages, "; ")).
		Build()
}

// ValidatorChain runs several validators and collects all failures.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator to the chain.
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators in the chain.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	result := Valid()
	for _, validator := range vc.validators {
		result = result.Combine(validator(value))
	}
	return result
}

// OneOf validates that a value is in a set of allowed values.
func OneOf[T comparable](field string, allowed []T) Validator[T] {
	set := make(map[T]bool, len(allowed))
	for _, item := range allowed {
		set[item] = true
	}
	return func(value T) ValidationResult {
		if !set[value] {
			return Invalid(NewFieldError(field, "one_of", fmt.Sprintf("must be one of: %v", allowed), value))
		}
		return Valid()
	}
}

// AtLeast validates that an integer is not below min.
func AtLeast(field string, min int) Validator[int] {
	return func(value int) ValidationResult {
		if value < min {
			return Invalid(NewFieldError(field, "min", fmt.Sprintf("must be at least %d", min), value))
		}
		return Valid()
	}
}

// NotBlank validates that a string has non-whitespace content.
func NotBlank(field string) Validator[string] {
	return func(value string) ValidationResult {
		if strings.TrimSpace(value) == "" {
			return Invalid(NewFieldError(field, "required", "must not be empty", value))
		}
		return Valid()
	}
}
