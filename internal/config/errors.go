package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a single invalid or missing configuration value.
// It is fatal: the realm refuses to start rather than failing on first use.
type ConfigurationError struct {
	Field       string   `json:"field"`       // dotted path, e.g. "uaa.clientId"
	Message     string   `json:"message"`     // human-readable problem
	Suggestions []string `json:"suggestions"` // actionable fixes
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ce.Field, ce.Message)
}

// DetailedError returns a multi-line description including suggestions.
func (ce *ConfigurationError) DetailedError() string {
	parts := []string{fmt.Sprintf("Configuration Error in %s", ce.Field), fmt.Sprintf("  Error: %s", ce.Message)}
	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}
	return strings.Join(parts, "\n")
}

// NewConfigurationError creates a configuration error for field.
func NewConfigurationError(field, message string, suggestions ...string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message, Suggestions: suggestions}
}

// ConfigurationErrorCollection holds every problem found in one validation pass.
type ConfigurationErrorCollection struct {
	Errors []*ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec *ConfigurationErrorCollection) Error() string {
	switch len(cec.Errors) {
	case 0:
		return "no configuration errors"
	case 1:
		return cec.Errors[0].Error()
	}
	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (cec *ConfigurationErrorCollection) Unwrap() []error {
	errs := make([]error, len(cec.Errors))
	for i, e := range cec.Errors {
		errs[i] = e
	}
	return errs
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add adds a new error to the collection
func (cec *ConfigurationErrorCollection) Add(err *ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// GetDetailedReport returns a detailed report of all errors
func (cec *ConfigurationErrorCollection) GetDetailedReport() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors to report"
	}

	parts := []string{fmt.Sprintf("Detailed Configuration Error Report (%d errors):", len(cec.Errors))}
	for _, err := range cec.Errors {
		parts = append(parts, err.DetailedError())
	}
	return strings.Join(parts, "\n")
}

// ErrOrNil returns the collection as an error, or nil when it is empty.
func (cec *ConfigurationErrorCollection) ErrOrNil() error {
	if !cec.HasErrors() {
		return nil
	}
	return cec
}
