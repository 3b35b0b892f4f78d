package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/model"
)

// ErrRoleRequired is the local validation failure for a role-less edit. The
// users edit operation is role-only; without a role there is nothing it
// could change, so it fails before any network call.
var ErrRoleRequired = errors.New("role is required to update a user")

// Users caches the account collection. Every user mutation declares
// RefreshNone: the create and role responses are authoritative and delete
// only needs the confirmed id.
type Users struct {
	lifecycle

	client *api.Client
	logger *logrus.Logger

	itemsMu sync.Mutex
	items   []model.User
}

// NewUsers creates an empty users store.
func NewUsers(client *api.Client, logger *logrus.Logger) *Users {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Users{client: client, logger: logger}
}

// Items returns a copy of the cached collection.
func (u *Users) Items() []model.User {
	u.itemsMu.Lock()
	defer u.itemsMu.Unlock()
	out := make([]model.User, len(u.items))
	copy(out, u.items)
	return out
}

// Fetch replaces the collection with every account.
func (u *Users) Fetch(ctx context.Context) error {
	u.begin()
	resp, err := u.client.ListUsers(ctx)
	if err != nil {
		return u.finish(err)
	}

	items := make([]model.User, 0, len(resp))
	for i := range resp {
		items = append(items, resp[i].Model())
	}
	u.itemsMu.Lock()
	u.items = items
	u.itemsMu.Unlock()
	return u.finish(nil)
}

// Create adds an account. The remote side models creation and role
// assignment as separate calls, so this is a two-step operation: create the
// account, then assign the role when one is given. The appended record is
// the create response with the assigned role patched in.
func (u *Users) Create(ctx context.Context, name, email string, role model.Role) (model.User, error) {
	req := api.CreateUserRequest{Name: name, Email: email}
	if err := validate.Struct(req); err != nil {
		return model.User{}, fmt.Errorf("invalid user: %w", err)
	}
	if role != "" && !role.IsValid() {
		return model.User{}, fmt.Errorf("unknown role: %q", role)
	}

	u.begin()
	resp, err := u.client.CreateUser(ctx, req)
	if err != nil {
		return model.User{}, u.finish(err)
	}
	created := resp.Model()

	if role != "" {
		roleResp, err := u.client.SetUserRole(ctx, created.ID, role)
		if err != nil {
			// The account exists but holds no role; surface the failure so
			// the user can retry the assignment via edit.
			return created, u.finish(fmt.Errorf("user %d created but role assignment failed: %w", created.ID, err))
		}
		created.Role = roleResp.Model().Role
	}

	u.itemsMu.Lock()
	u.items = append(u.items, created)
	u.itemsMu.Unlock()
	u.logger.WithFields(logrus.Fields{
		"user_id": created.ID,
		"role":    created.Role,
	}).Info("user created")
	return created, u.finish(nil)
}

// Edit changes an account's role. Despite the name this is the operation's
// whole contract: name and email are immutable through this path. A missing
// role fails fast, before any network call.
func (u *Users) Edit(ctx context.Context, id int64, role model.Role) (model.User, error) {
	if role == "" {
		return model.User{}, ErrRoleRequired
	}
	if !role.IsValid() {
		return model.User{}, fmt.Errorf("unknown role: %q", role)
	}

	u.begin()
	resp, err := u.client.SetUserRole(ctx, id, role)
	if err != nil {
		return model.User{}, u.finish(err)
	}

	updated := resp.Model()
	u.itemsMu.Lock()
	for i := range u.items {
		if u.items[i].ID == updated.ID {
			u.items[i] = updated
			break
		}
	}
	u.itemsMu.Unlock()
	return updated, u.finish(nil)
}

// Delete removes an account after remote confirmation.
func (u *Users) Delete(ctx context.Context, id int64) error {
	u.begin()
	if err := u.client.DeleteUser(ctx, id); err != nil {
		return u.finish(err)
	}

	u.itemsMu.Lock()
	kept := u.items[:0]
	for _, user := range u.items {
		if user.ID != id {
			kept = append(kept, user)
		}
	}
	u.items = kept
	u.itemsMu.Unlock()
	u.logger.WithField("user_id", id).Info("user deleted")
	return u.finish(nil)
}

// TaskCreators returns the cached accounts holding the task-creator role:
// the accounts eligible to own projects.
func (u *Users) TaskCreators() []model.User {
	return u.withRole(model.RoleTaskCreator)
}

// ReadOnlyUsers returns the cached accounts holding the read-only role: the
// accounts eligible to be task assignees.
func (u *Users) ReadOnlyUsers() []model.User {
	return u.withRole(model.RoleReadOnly)
}

func (u *Users) withRole(role model.Role) []model.User {
	u.itemsMu.Lock()
	defer u.itemsMu.Unlock()
	var out []model.User
	for _, user := range u.items {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out
}
