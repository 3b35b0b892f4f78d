package store

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/session"
	"github.com/byronguina/taskdeck/internal/state"
)

// recorder keeps the method+path of every request the fake API saw.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	r.calls = append(r.calls, req.Method+" "+req.URL.Path)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// env wires a fake API server, a gateway, and a session store together the
// way the client boots them.
type env struct {
	client  *api.Client
	session *session.Store
	rec     *recorder
}

func newEnv(t *testing.T, handler http.Handler) *env {
	t.Helper()

	db, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open state db: %v", err)
	}
	if err := db.Init(); err != nil {
		t.Fatalf("failed to init state db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sess := session.NewStore(db, nil)

	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:     server.URL,
		Credentials: sess,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	return &env{client: client, session: sess, rec: rec}
}

// login establishes an authenticated session with the given role booleans.
func (e *env) login(t *testing.T, userID int64, name string, admin, creator, readonly bool) {
	t.Helper()
	err := e.session.CompleteLogin(&api.AuthResponse{
		UserID: userID, Name: name, JWT: "test-token",
		IsAdmin: admin, IsTaskCreator: creator, Readonly: readonly,
	})
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	var l lifecycle

	if l.Phase() != Idle || l.Loading() {
		t.Fatal("fresh lifecycle should be idle and not loading")
	}

	l.begin()
	if l.Phase() != Pending || !l.Loading() {
		t.Error("expected pending while in flight")
	}

	if err := l.finish(nil); err != nil {
		t.Errorf("finish(nil) = %v", err)
	}
	if l.Phase() != Fulfilled || l.Loading() {
		t.Error("expected fulfilled after success")
	}

	l.begin()
	wantErr := l.finish(http.ErrServerClosed)
	if wantErr != http.ErrServerClosed {
		t.Errorf("finish should return its argument, got %v", wantErr)
	}
	if l.Phase() != Rejected || l.Err() == nil {
		t.Error("expected rejected with recorded error")
	}
}

func TestLifecycle_OverlappingOperations(t *testing.T) {
	var l lifecycle

	// Loading is the disjunction of in-flight operations.
	l.begin()
	l.begin()
	_ = l.finish(nil)
	if !l.Loading() {
		t.Error("still one operation in flight, Loading must be true")
	}
	if l.Phase() != Pending {
		t.Errorf("phase = %s, want pending while an operation remains", l.Phase())
	}
	_ = l.finish(nil)
	if l.Loading() {
		t.Error("no operations in flight, Loading must be false")
	}
	if l.Phase() != Fulfilled {
		t.Errorf("phase = %s, want fulfilled", l.Phase())
	}
}
