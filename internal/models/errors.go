package models

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyKeywords = errors.New("at least one keyword is required")
	ErrEmptyInput    = errors.New("no results to export")
	ErrEmptyBrand    = errors.New("brand name is required")
)

// ValidationError reports caller input that violates a precondition
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// ErrorKind classifies failures of the remote service
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindTimeout     ErrorKind = "timeout"
	KindServer      ErrorKind = "server"
	KindRateLimited ErrorKind = "rate_limited"
	KindClient      ErrorKind = "client"
	KindCanceled    ErrorKind = "canceled"
)

const (
	MsgTimeout     = "Request timeout. The server is taking too long to respond."
	MsgRateLimited = "Rate limit exceeded. Please wait a moment before trying again."
	MsgServer      = "Server error. Please try again later."
	MsgNetwork     = "Network error. Please check your connection and try again."
	MsgCanceled    = "Request canceled."
)

// ServiceError is a failed call to the remote search or sentiment service
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is a network, timeout or 5xx error.
func (e *ServiceError) Transient() bool {
	return e.Kind == KindNetwork || e.Kind == KindTimeout || e.Kind == KindServer
}

// IsTransient reports whether err is a transient service error
func IsTransient(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Transient()
}

// IsRateLimited reports whether err is an HTTP 429 from the remote service
func IsRateLimited(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Kind == KindRateLimited
}

// IsCanceled reports whether err comes from a request the caller abandoned
func IsCanceled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Kind == KindCanceled
}

// StorageCorruptionError marks persisted data that could not be decoded
type StorageCorruptionError struct {
	Key string
	Err error
}

func (e *StorageCorruptionError) Error() string {
	return fmt.Sprintf("corrupted data under key %q: %v", e.Key, e.Err)
}

func (e *StorageCorruptionError) Unwrap() error {
	return e.Err
}

// UserMessage turns an error into the text shown in a notification
func UserMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}

	return err.Error()
}
