// Package errors provides custom error types for the partsync system.
// These errors enable programmatic error checking and carry enough context
// to produce the human-readable explanations that accompany every degraded
// import outcome.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the partsync system.
var (
	// ErrNotFound indicates that a requested repository entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a repository entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSupplierUnavailable indicates that a supplier backend could not be
	// reached or refused the request.
	ErrSupplierUnavailable = errors.New("supplier unavailable")

	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = errors.New("operation canceled")

	// ErrDryRun indicates an attempted mutation while running in dry-run mode.
	ErrDryRun = errors.New("dry run")
)

// NotFoundError represents an error when a repository entity is not found.
type NotFoundError struct {
	Resource string
	Key      string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// APIError represents a failed HTTP call against the inventory repository
// or a supplier backend. Body holds the raw response payload so callers can
// extract structured detail after the fact.
type APIError struct {
	Service    string // "inventree" or a supplier name
	Endpoint   string
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *APIError) Is(target error) bool {
	if e.StatusCode >= 500 {
		return target == ErrSupplierUnavailable
	}
	return false
}

// Detail extracts structured error information from the response payload.
// InvenTree reports field-level problems as a flat JSON object; when the
// body parses as one, every key/value pair is rendered on its own line.
// Anything else falls back to the plain message.
func (e *APIError) Detail() string {
	var fields map[string]any
	if len(e.Body) > 0 && json.Unmarshal(e.Body, &fields) == nil && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s: %v\n", k, fields[k])
		}
		return b.String()
	}
	if e.Message != "" {
		return e.Message
	}
	return "unknown API error"
}

// NewAPIError creates a new APIError.
func NewAPIError(service, endpoint string, statusCode int, body []byte) *APIError {
	return &APIError{
		Service:    service,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("%s returned status %d", endpoint, statusCode),
		Body:       body,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// MatchError represents a matching failure: a supplier-provided category
// path or parameter name that could not be resolved against the local
// configuration.
type MatchError struct {
	Kind  string // "category" or "parameter"
	Input string
	Err   error
}

// Error implements the error interface.
func (e *MatchError) Error() string {
	return fmt.Sprintf("failed to match %s for %q", e.Kind, e.Input)
}

// Unwrap implements errors.Unwrap.
func (e *MatchError) Unwrap() error {
	return e.Err
}

// NewMatchError creates a new MatchError.
func NewMatchError(kind, input string) *MatchError {
	return &MatchError{Kind: kind, Input: input}
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string // "json", "yaml", "html"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError.
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Message: err.Error(), Err: err}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAPIError reports whether err is (or wraps) an APIError, returning it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCanceled checks if an error is a cancellation error.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}
