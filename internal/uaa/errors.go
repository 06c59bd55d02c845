package uaa

import (
	"errors"
	"fmt"
)

// ErrAuthService matches every AuthServiceError via errors.Is.
var ErrAuthService = errors.New("auth service error")

// ErrUserNotFound matches every UserLookupError via errors.Is.
var ErrUserNotFound = errors.New("user not found")

// AuthServiceError reports a failed call to UAA or the cloud controller.
// StatusCode is set when the provider answered with something other than
// 200; otherwise Err holds the transport, timeout or decoding failure.
type AuthServiceError struct {
	Op         string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *AuthServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("uaa %s %s: unexpected status %d", e.Op, e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("uaa %s %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("uaa %s %s: failed", e.Op, e.Endpoint)
}

func (e *AuthServiceError) Unwrap() error {
	return e.Err
}

func (e *AuthServiceError) Is(target error) bool {
	return target == ErrAuthService
}

// UserLookupError is returned when a user name does not resolve to exactly
// one user id.
type UserLookupError struct {
	UserName string
	Matches  int
}

func (e *UserLookupError) Error() string {
	return fmt.Sprintf("user %q not found (%d matches)", e.UserName, e.Matches)
}

func (e *UserLookupError) Is(target error) bool {
	return target == ErrUserNotFound
}

// IsAuthServiceError reports whether err is or wraps an AuthServiceError.
func IsAuthServiceError(err error) bool {
	var ae *AuthServiceError
	return errors.As(err, &ae)
}

// StatusCode returns the provider status carried by err, or 0.
func StatusCode(err error) int {
	var ae *AuthServiceError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}
