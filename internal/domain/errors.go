package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidCredentials is returned when a sign-in is missing its email or
// credential.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError collects one message per offending field. It is surfaced
// next to the field and never ends the session.
type ValidationError struct {
	Fields map[string]string
	cause  error
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add records message for field unless the field already has one.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, ok := v.Fields[field]; ok {
		return
	}
	v.Fields[field] = message
}

// Wrap attaches a sentinel so callers can match with errors.Is.
func (v *ValidationError) Wrap(cause error) *ValidationError {
	v.cause = cause
	return v
}

// Err returns nil when no field failed, so callers can write
// `return v.Err()` at the end of a validation pass.
func (v *ValidationError) Err() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Unwrap() error {
	return v.cause
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// AuthorizationError means the session has no identity, or one whose role is
// not in Required. Callers redirect to sign-in rather than showing a message.
type AuthorizationError struct {
	Required []Role
}

func (e *AuthorizationError) Error() string {
	if len(e.Required) == 0 {
		return "sign in required"
	}
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return "sign in required as " + strings.Join(names, " or ")
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
