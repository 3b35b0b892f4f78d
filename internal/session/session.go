// Package session holds the current identity, bearer credential, and derived
// role set, persisted across process restarts.
//
// The store is the only writer of durable session state. The role set is a
// non-authoritative client cache of the server-side assignment: it is set
// from the most recent successful login response and never invented locally.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/model"
	"github.com/byronguina/taskdeck/internal/state"
)

// State is the session lifecycle state. Authenticating is transient and
// never persisted; a restart observes only Anonymous or Authenticated.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Store owns the session. Its Credential method satisfies
// api.CredentialSource, so the gateway reads the live token at send time
// even though it is constructed before any session exists.
type Store struct {
	mu         sync.Mutex
	state      State
	identity   *model.Identity
	credential string
	roles      model.RoleSet

	db     *state.DB
	logger *logrus.Logger
}

// NewStore creates an anonymous session backed by the given durable store.
func NewStore(db *state.DB, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		state:  Anonymous,
		roles:  model.NewRoleSet(),
		db:     db,
		logger: logger,
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether an identity is present.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

// Identity returns a copy of the current identity, or nil when anonymous.
func (s *Store) Identity() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Roles returns a copy of the current role set.
func (s *Store) Roles() model.RoleSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.NewRoleSet(s.roles.Slice()...)
}

// Credential returns the current bearer token, or "" when anonymous.
// Implements api.CredentialSource.
func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// Restore rehydrates the session from durable storage at process start. The
// credential is not re-validated against the remote side; it only has to
// look valid (well-formed JWT, not past its expiry). Requests may therefore
// carry a credential the server has since revoked, until a 401 surfaces.
//
// Returns true when a session was restored. Roles stay empty: this path is
// never the source of role truth.
func (s *Store) Restore() (bool, error) {
	creds, ok, err := s.db.LoadCredentials()
	if err != nil {
		return false, fmt.Errorf("failed to restore session: %w", err)
	}
	if !ok {
		return false, nil
	}

	if !looksValid(creds.Token) {
		// A stale or mangled credential is cleared rather than carried into
		// requests that are certain to fail.
		s.logger.WithField("user_id", creds.UserID).Info("discarding expired stored credential")
		if err := s.db.ClearCredentials(); err != nil {
			return false, fmt.Errorf("failed to clear stale credentials: %w", err)
		}
		return false, nil
	}

	s.SetCredentials(model.Identity{ID: creds.UserID, DisplayName: creds.FullName}, creds.Token)
	return true, nil
}

// looksValid reports whether the stored token parses as a JWT and has not
// expired. The signature is deliberately not checked; that is the server's
// job.
func looksValid(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp != nil && exp.Before(time.Now()) {
		return false
	}
	return true
}

// Login runs one authentication attempt through the given function (email or
// Google exchange) and completes the session on success. A failed attempt
// leaves the store exactly as it was: anonymous, with no partial session.
//
// Any previously stored credential is cleared first, mirroring the login
// view's behavior of starting from a clean slate.
func (s *Store) Login(ctx context.Context, authenticate func(context.Context) (*api.AuthResponse, error)) error {
	if err := s.Logout(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = Authenticating
	s.mu.Unlock()

	resp, err := authenticate(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = Anonymous
		s.mu.Unlock()
		return err
	}

	return s.CompleteLogin(resp)
}

// CompleteLogin installs a successful authentication response: identity,
// credential, and the role set derived from the response booleans. The
// durable pair is written before memory is touched, so a persistence failure
// leaves the store unchanged.
func (s *Store) CompleteLogin(resp *api.AuthResponse) error {
	creds := state.Credentials{
		UserID:   resp.UserID,
		FullName: resp.Name,
		Token:    resp.JWT,
	}
	if err := s.db.SaveCredentials(creds); err != nil {
		s.mu.Lock()
		s.state = Anonymous
		s.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.identity = &model.Identity{ID: resp.UserID, DisplayName: resp.Name}
	s.credential = resp.JWT
	s.roles = resp.Roles()
	s.state = Authenticated
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id": resp.UserID,
		"roles":   resp.Roles().String(),
	}).Info("session established")
	return nil
}

// SetCredentials installs a known identity and credential without touching
// the role set. Used by the restore path, where roles are unknown until the
// next login.
func (s *Store) SetCredentials(identity model.Identity, credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &identity
	s.credential = credential
	s.state = Authenticated
}

// Logout clears the session and durable storage. Idempotent: logging out of
// an anonymous session succeeds and changes nothing.
func (s *Store) Logout() error {
	if err := s.db.ClearCredentials(); err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}

	s.mu.Lock()
	s.identity = nil
	s.credential = ""
	s.roles = model.NewRoleSet()
	s.state = Anonymous
	s.mu.Unlock()
	return nil
}

// InvalidateOnAuthFailure clears the session when err is a 401-class remote
// rejection, matching the credential-loss lifecycle rule. Other errors are
// left for the caller to present.
func (s *Store) InvalidateOnAuthFailure(err error) {
	if !api.IsUnauthorized(err) {
		return
	}
	s.logger.Warn("credential rejected by server, clearing session")
	if clearErr := s.Logout(); clearErr != nil {
		s.logger.WithError(clearErr).Error("failed to clear rejected session")
	}
}
