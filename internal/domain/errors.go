// Package domain contains business logic types and errors.
// Domain errors describe what went wrong for the collection and the quote
// fetcher; adapters map them to HTTP statuses or CLI messages.
package domain

import (
	"errors"
	"fmt"
)

// Kinds of failure. Every typed error below matches exactly one of them
// with errors.Is; ErrQuotaExceeded is carried inside a StorageError.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrValidation    = errors.New("validation failed")
	ErrUnavailable   = errors.New("unavailable")
	ErrQuotaExceeded = errors.New("quota exceeded")
)

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool      { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool   { return errors.Is(err, ErrUnavailable) }
func IsQuotaExceeded(err error) bool { return errors.Is(err, ErrQuotaExceeded) }

// NotFoundError names a missing entity. ID is optional.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a state clash, such as a fetch superseded by a
// newer one.
type ConflictError struct {
	Entity string
	Reason string
}

func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError rejects an input. Field is empty when the whole value is
// wrong, such as a persisted collection that is not a JSON array.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnavailableError reports a dependency that cannot serve, such as the
// quote API with its circuit open.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service %q unavailable", e.Service)
	}
	return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// StorageError records a failed key-value operation against a storage
// backend. It unwraps to the backend's cause and also matches ErrUnavailable.
type StorageError struct {
	Backend string
	Op      string
	Key     string
	Err     error
}

func NewStorageError(backend, op, key string, err error) error {
	return &StorageError{Backend: backend, Op: op, Key: key, Err: err}
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrUnavailable }
