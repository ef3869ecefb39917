package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError represents a missing user, server, account or config
type NotFoundError struct {
	Entity string
	Key    string
}

// Error returns the error message
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// ConflictError represents an operation rejected by the current state,
// such as a duplicate create or an action on a deleted account
type ConflictError struct {
	Entity string
	Key    string
	Reason string
}

// Error returns the error message
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict for %s: %s", e.Entity, e.Key, e.Reason)
}

// ValidationError represents an error when validation fails
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// RemoteAPIError represents a non-2xx status or an unreadable body
// returned by a remote VPN server
type RemoteAPIError struct {
	Operation string
	Status    int
	Message   string
}

// Error returns the error message
func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("remote API error during %s (status %d): %s", e.Operation, e.Status, e.Message)
}

// TransportError represents a failure to reach a remote VPN server at all
type TransportError struct {
	Operation string
	URL       string
	Cause     error
}

// Error returns the error message
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s to %s: %v", e.Operation, e.URL, e.Cause)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// PersistenceError represents a failed local store read or write
type PersistenceError struct {
	Operation string
	Cause     error
}

// Error returns the error message
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// StateError represents an error related to a chat conversation state
type StateError struct {
	UserID  int64
	Message string
}

// Error returns the error message
func (e *StateError) Error() string {
	return fmt.Sprintf("state error for user %d: %s", e.UserID, e.Message)
}

// PermissionError represents an error related to permissions
type PermissionError struct {
	Subject        string
	RequiredAccess string
}

// Error returns the error message
func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission error for %s: requires %s access", e.Subject, e.RequiredAccess)
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Section string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is or wraps a ConflictError
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsRemote reports whether err came from talking to a remote server
func IsRemote(err error) bool {
	var apiErr *RemoteAPIError
	var transportErr *TransportError
	return errors.As(err, &apiErr) || errors.As(err, &transportErr)
}

// HTTPStatus maps an error to the status code the API answers with
func HTTPStatus(err error) int {
	var (
		notFound   *NotFoundError
		conflict   *ConflictError
		validation *ValidationError
		permission *PermissionError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &permission):
		return http.StatusForbidden
	case IsRemote(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
