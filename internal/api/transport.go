package api

import "net/http"

// ProtectedPrefix is the path prefix under which requests require the bearer
// credential. Requests outside it (the auth endpoints) pass through
// untouched.
const ProtectedPrefix = "/api/"

// CredentialSource supplies the current bearer credential at send time. The
// transport is constructed before a session exists, so it must not capture a
// credential value; it asks the source on every request. An empty string
// means "no credential" and nothing is attached.
type CredentialSource interface {
	Credential() string
}

// CredentialFunc adapts a function to the CredentialSource interface.
type CredentialFunc func() string

// Credential returns f().
func (f CredentialFunc) Credential() string { return f() }

// authTransport attaches the bearer credential to requests addressed to the
// protected API surface. It does not retry, refresh, or react to 401s; those
// failures surface to the caller unchanged.
type authTransport struct {
	base   http.RoundTripper
	source CredentialSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.source == nil || !isProtected(req.URL.Path) {
		return base.RoundTrip(req)
	}

	token := t.source.Credential()
	if token == "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(clone)
}

func isProtected(path string) bool {
	return len(path) >= len(ProtectedPrefix) && path[:len(ProtectedPrefix)] == ProtectedPrefix
}
