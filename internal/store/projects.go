package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/authz"
	"github.com/byronguina/taskdeck/internal/model"
	"github.com/byronguina/taskdeck/internal/session"
)

// Declared refresh behavior per project mutation. Create and edit trust the
// response body (it already carries the denormalized owner name); delete
// only needs the confirmed id; assignment re-fetches the single record
// because the assign call returns no body.
const (
	createProjectRefresh = RefreshNone
	editProjectRefresh   = RefreshNone
	deleteProjectRefresh = RefreshNone
	assignProjectRefresh = RefreshRecord
)

// Projects caches the project collection for the session.
type Projects struct {
	lifecycle

	client  *api.Client
	session *session.Store
	logger  *logrus.Logger

	itemsMu sync.Mutex
	items   []model.Project
}

// NewProjects creates an empty projects store.
func NewProjects(client *api.Client, sess *session.Store, logger *logrus.Logger) *Projects {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Projects{client: client, session: sess, logger: logger}
}

// Items returns a copy of the cached collection.
func (p *Projects) Items() []model.Project {
	p.itemsMu.Lock()
	defer p.itemsMu.Unlock()
	out := make([]model.Project, len(p.items))
	copy(out, p.items)
	return out
}

// Get returns the cached project with the given id.
func (p *Projects) Get(id int64) (model.Project, bool) {
	p.itemsMu.Lock()
	defer p.itemsMu.Unlock()
	for _, project := range p.items {
		if project.ID == id {
			return project, true
		}
	}
	return model.Project{}, false
}

// Fetch lists projects in the scope the session's roles entitle it to:
// every project for an admin, owned projects for anyone else. The scope is
// re-evaluated on every call, so a role change is picked up immediately.
func (p *Projects) Fetch(ctx context.Context) error {
	identity := p.session.Identity()
	if identity == nil {
		return fmt.Errorf("not authenticated")
	}

	switch authz.ProjectScopeFor(p.session.Roles()) {
	case authz.ScopeAllProjects:
		return p.FetchAll(ctx)
	default:
		return p.FetchOwned(ctx, identity.ID)
	}
}

// FetchAll replaces the collection with every project. Admin scope.
func (p *Projects) FetchAll(ctx context.Context) error {
	p.begin()
	resp, err := p.client.ListProjects(ctx)
	if err != nil {
		return p.finish(err)
	}
	p.replace(resp)
	return p.finish(nil)
}

// FetchOwned replaces the collection with the projects owned by the user.
func (p *Projects) FetchOwned(ctx context.Context, userID int64) error {
	p.begin()
	resp, err := p.client.ListUserProjects(ctx, userID)
	if err != nil {
		return p.finish(err)
	}
	p.replace(resp)
	return p.finish(nil)
}

// Create adds a project and appends the confirmed record.
func (p *Projects) Create(ctx context.Context, req api.ProjectRequest) (model.Project, error) {
	if err := validate.Struct(req); err != nil {
		return model.Project{}, fmt.Errorf("invalid project: %w", err)
	}

	p.begin()
	resp, err := p.client.CreateProject(ctx, req)
	if err != nil {
		return model.Project{}, p.finish(err)
	}

	created := resp.Model()
	p.itemsMu.Lock()
	p.items = append(p.items, created)
	p.itemsMu.Unlock()
	p.logger.WithField("project_id", created.ID).Info("project created")

	if err := p.refresh(ctx, createProjectRefresh, created.ID); err != nil {
		return created, p.finish(err)
	}
	return created, p.finish(nil)
}

// Edit updates a project and splices the confirmed record into place.
func (p *Projects) Edit(ctx context.Context, id int64, req api.ProjectRequest) (model.Project, error) {
	if err := validate.Struct(req); err != nil {
		return model.Project{}, fmt.Errorf("invalid project: %w", err)
	}

	p.begin()
	resp, err := p.client.UpdateProject(ctx, id, req)
	if err != nil {
		return model.Project{}, p.finish(err)
	}

	updated := resp.Model()
	p.splice(updated)

	if err := p.refresh(ctx, editProjectRefresh, id); err != nil {
		return updated, p.finish(err)
	}
	return updated, p.finish(nil)
}

// Delete removes a project. The record leaves the local collection only
// after the remote side confirms; there is no optimistic removal.
func (p *Projects) Delete(ctx context.Context, id int64) error {
	p.begin()
	if err := p.client.DeleteProject(ctx, id); err != nil {
		return p.finish(err)
	}

	p.itemsMu.Lock()
	kept := p.items[:0]
	for _, project := range p.items {
		if project.ID != id {
			kept = append(kept, project)
		}
	}
	p.items = kept
	p.itemsMu.Unlock()
	p.logger.WithField("project_id", id).Info("project deleted")

	if err := p.refresh(ctx, deleteProjectRefresh, id); err != nil {
		return p.finish(err)
	}
	return p.finish(nil)
}

// AssignUser assigns a user to a project. The assign call returns no body,
// so the declared record refresh fetches fresh denormalized fields.
func (p *Projects) AssignUser(ctx context.Context, projectID, userID int64) (model.Project, error) {
	p.begin()
	if err := p.client.AssignUserToProject(ctx, projectID, userID); err != nil {
		return model.Project{}, p.finish(err)
	}

	if err := p.refresh(ctx, assignProjectRefresh, projectID); err != nil {
		return model.Project{}, p.finish(err)
	}

	updated, _ := p.Get(projectID)
	return updated, p.finish(nil)
}

// refresh applies a mutation's declared freshness action.
func (p *Projects) refresh(ctx context.Context, scope RefreshScope, id int64) error {
	switch scope {
	case RefreshNone:
		return nil
	case RefreshRecord:
		resp, err := p.client.GetProject(ctx, id)
		if err != nil {
			return err
		}
		p.spliceOrAppend(resp.Model())
		return nil
	default:
		return p.Fetch(ctx)
	}
}

// replace swaps in a freshly fetched collection.
func (p *Projects) replace(resp []api.ProjectResponse) {
	items := make([]model.Project, 0, len(resp))
	for i := range resp {
		items = append(items, resp[i].Model())
	}
	p.itemsMu.Lock()
	p.items = items
	p.itemsMu.Unlock()
}

// splice replaces the record with a matching id, if present.
func (p *Projects) splice(updated model.Project) {
	p.itemsMu.Lock()
	defer p.itemsMu.Unlock()
	for i := range p.items {
		if p.items[i].ID == updated.ID {
			p.items[i] = updated
			return
		}
	}
}

// spliceOrAppend replaces a matching record, or appends when the collection
// has not listed it yet.
func (p *Projects) spliceOrAppend(updated model.Project) {
	p.itemsMu.Lock()
	defer p.itemsMu.Unlock()
	for i := range p.items {
		if p.items[i].ID == updated.ID {
			p.items[i] = updated
			return
		}
	}
	p.items = append(p.items, updated)
}
