// Package store holds the client-side collections (projects, tasks, users)
// and keeps them consistent with the remote store through request/response
// cycles issued via the api gateway.
//
// Every operation is pessimistic: a collection changes only after the remote
// side confirms the mutation. Which freshness action follows a successful
// mutation is declared per operation as a RefreshScope rather than decided
// ad hoc at call sites.
package store

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Phase is the observable lifecycle of one store operation.
type Phase int

const (
	// Idle means no operation has run yet.
	Idle Phase = iota
	// Pending means a request is in flight.
	Pending
	// Fulfilled means the most recent operation succeeded.
	Fulfilled
	// Rejected means the most recent operation failed.
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// RefreshScope declares what a mutation re-fetches on success.
type RefreshScope int

const (
	// RefreshNone trusts the mutation response (or the confirmed id) and
	// patches the collection directly.
	RefreshNone RefreshScope = iota
	// RefreshRecord re-fetches the single mutated record for server-computed
	// denormalized fields, then splices it in.
	RefreshRecord
	// RefreshCollection re-fetches the whole owning scope.
	RefreshCollection
)

// lifecycle tracks in-flight operations for one store. Loading is the
// disjunction of any in-flight operation; overlapping operations neither
// queue nor cancel each other, so the last response to land wins.
type lifecycle struct {
	mu       sync.Mutex
	inflight int
	phase    Phase
	err      error
}

// begin marks an operation as started.
func (l *lifecycle) begin() {
	l.mu.Lock()
	l.inflight++
	l.phase = Pending
	l.err = nil
	l.mu.Unlock()
}

// finish records the operation outcome and returns err unchanged so callers
// can write `return s.finish(err)`.
func (l *lifecycle) finish(err error) error {
	l.mu.Lock()
	l.inflight--
	if err != nil {
		l.phase = Rejected
		l.err = err
	} else if l.inflight == 0 {
		l.phase = Fulfilled
	}
	l.mu.Unlock()
	return err
}

// Loading reports whether any operation is in flight.
func (l *lifecycle) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight > 0
}

// Phase returns the lifecycle phase of the most recent operation.
func (l *lifecycle) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Err returns the most recent rejection, or nil.
func (l *lifecycle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// validate checks request structs before any network call; failures are the
// local validation-failure error class.
var validate = validator.New()
