package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrLoginRejected is returned when a login endpoint answers with isError
// set. The session is left unchanged; the caller presents the failure and
// the user retries manually.
var ErrLoginRejected = errors.New("login rejected by server")

// Error is a remote rejection: the server answered with a non-2xx status.
// Transport failures are reported as plain wrapped errors instead; callers
// are not expected to distinguish the two (both end the operation, leave the
// collection unmodified, and surface a message).
type Error struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *Error) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: server returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: server returned %d", e.Method, e.Path, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401-class remote rejection,
// meaning the stored credential is no longer accepted. The session store
// clears itself when it sees this; the gateway itself never redirects.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 remote rejection.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
