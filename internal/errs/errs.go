// ABOUTME: Error taxonomy shared by every layer of the service
// ABOUTME: Typed errors matched with errors.As so HTTP/MCP/CLI can map them
package errs

import (
	"errors"
	"fmt"
)

// ValidationError is a client-caused input problem (bad shape, size or
// range). Never retried, never reaches the network.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError means a collection id is unknown to the local registry.
type NotFoundError struct {
	CollectionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("collection %q not found", e.CollectionID)
}

// AuthError is a credential or token failure against a remote service.
// Fatal for the current request; retrying with the same credentials would
// only burn budget, so it is surfaced immediately.
type AuthError struct {
	Service string
	Msg     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Service, e.Msg)
}

// UnavailableError means a remote service kept failing transiently
// (timeouts, 5xx, rate limits) until the retry budget ran out. Wraps the
// last underlying error.
type UnavailableError struct {
	Service  string
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: unavailable after %d attempts: %v", e.Service, e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// RemoteError means a remote service rejected a well-formed-looking request
// (unsupported model, quota exceeded, store-side size limit). Carries the
// remote diagnostic; never retried.
type RemoteError struct {
	Service string
	Status  int
	Msg     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: request rejected (status %d): %s", e.Service, e.Status, e.Msg)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

// IsRemote reports whether err is (or wraps) a RemoteError.
func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}
