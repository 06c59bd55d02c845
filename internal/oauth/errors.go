package oauth

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason classifies a rejected callback.
type Reason string

const (
	ReasonNoSession     Reason = "no_session"
	ReasonInvalidState  Reason = "invalid_state"
	ReasonProviderError Reason = "provider_error"
	ReasonMissingCode   Reason = "missing_code"
)

// Sentinels matched by errors.Is against a *ValidationError of the same reason.
var (
	ErrNoSession     = errors.New("no login in progress")
	ErrInvalidState  = errors.New("state is invalid")
	ErrProviderError = errors.New("login server returned an error")
	ErrMissingCode   = errors.New("missing authorization code")
)

var reasonErrors = map[Reason]error{
	ReasonNoSession:     ErrNoSession,
	ReasonInvalidState:  ErrInvalidState,
	ReasonProviderError: ErrProviderError,
	ReasonMissingCode:   ErrMissingCode,
}

// ValidationError rejects an OAuth callback. Status is the HTTP status the
// host should answer with.
type ValidationError struct {
	Status        int
	Reason        Reason
	ProviderError string
	Description   string
}

func newValidationError(reason Reason) *ValidationError {
	status := http.StatusUnauthorized
	if reason == ReasonMissingCode {
		status = http.StatusNotFound
	}
	return &ValidationError{Status: status, Reason: reason}
}

func (e *ValidationError) Error() string {
	msg := reasonErrors[e.Reason].Error()
	if e.ProviderError == "" {
		return msg
	}
	if e.Description != "" {
		return fmt.Sprintf("%s: %s (%s)", msg, e.ProviderError, e.Description)
	}
	return fmt.Sprintf("%s: %s", msg, e.ProviderError)
}

func (e *ValidationError) Is(target error) bool {
	return reasonErrors[e.Reason] == target
}
