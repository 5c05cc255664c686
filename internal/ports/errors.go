// Package ports holds the external-facing contracts of the core: input/
// output shapes, configuration, logging, error kinds, and debug helpers.
// Grounded on noah-isme-sma-adp-api's pkg/config, pkg/logger, and
// pkg/errors, with the HTTP-status field dropped since the core has no
// transport layer of its own.
package ports

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds named in spec.md §7.
type Kind string

const (
	InputSchemaError    Kind = "INPUT_SCHEMA_ERROR"
	InvariantBreach     Kind = "INVARIANT_BREACH"
	InfeasibleSearch    Kind = "INFEASIBLE_SEARCH"
	ConfigurationError  Kind = "CONFIGURATION_ERROR"
)

// Error is a typed domain error. UnresolvedViolation is deliberately absent
// here: per spec.md §7 it is not an error, it is a field on Result.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind/message to an existing error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FromError normalises any error into a *Error, defaulting to InvariantBreach
// since an un-kinded error escaping the core is itself a programming defect.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, InvariantBreach, "unclassified internal error")
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
