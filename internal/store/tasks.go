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

// Declared refresh behavior per task mutation. Create and delete re-fetch
// the owning scope so list-level server-computed fields (owner and assignee
// names) stay fresh; the two update paths return the fully updated record
// and splice it in directly.
const (
	createTaskRefresh = RefreshCollection
	updateTaskRefresh = RefreshNone
	statusTaskRefresh = RefreshNone
	deleteTaskRefresh = RefreshCollection
)

// ErrNoTaskScope is returned when a project-scoped operation is attempted by
// a session whose roles only entitle it to the personal task list.
var ErrNoTaskScope = fmt.Errorf("session roles do not permit the project task scope")

// taskScope remembers which listing the collection currently mirrors, so a
// collection refresh re-fetches the same scope.
type taskScope struct {
	kind authz.TaskScope
	id   int64 // project id or owner id, depending on kind
	set  bool
}

// Tasks caches one task listing (a project's list or the personal list).
type Tasks struct {
	lifecycle

	client  *api.Client
	session *session.Store
	logger  *logrus.Logger

	itemsMu sync.Mutex
	items   []model.Task
	scope   taskScope
}

// NewTasks creates an empty tasks store.
func NewTasks(client *api.Client, sess *session.Store, logger *logrus.Logger) *Tasks {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Tasks{client: client, session: sess, logger: logger}
}

// Items returns a copy of the cached collection.
func (t *Tasks) Items() []model.Task {
	t.itemsMu.Lock()
	defer t.itemsMu.Unlock()
	out := make([]model.Task, len(t.items))
	copy(out, t.items)
	return out
}

// Get returns the cached task with the given id.
func (t *Tasks) Get(id int64) (model.Task, bool) {
	t.itemsMu.Lock()
	defer t.itemsMu.Unlock()
	for _, task := range t.items {
		if task.ID == id {
			return task, true
		}
	}
	return model.Task{}, false
}

// Fetch lists tasks in the scope the session's roles entitle it to. A
// read-only identity gets its personal list (projectID is ignored);
// admin and task-creator identities get the project list. The scope is
// re-evaluated on every call.
func (t *Tasks) Fetch(ctx context.Context, projectID int64) error {
	identity := t.session.Identity()
	if identity == nil {
		return fmt.Errorf("not authenticated")
	}

	switch authz.TaskScopeFor(t.session.Roles()) {
	case authz.ScopePersonalTasks:
		return t.FetchByOwner(ctx, identity.ID)
	default:
		return t.FetchByProject(ctx, projectID)
	}
}

// FetchByProject replaces the collection with one project's task list. A
// purely read-only session is refused before any request goes out: its
// entitlement is the personal scope, never the project scope.
func (t *Tasks) FetchByProject(ctx context.Context, projectID int64) error {
	if authz.TaskScopeFor(t.session.Roles()) == authz.ScopePersonalTasks {
		return ErrNoTaskScope
	}

	t.begin()
	resp, err := t.client.ListProjectTasks(ctx, projectID)
	if err != nil {
		return t.finish(err)
	}
	t.replace(resp, taskScope{kind: authz.ScopeProjectTasks, id: projectID, set: true})
	return t.finish(nil)
}

// FetchByOwner replaces the collection with the tasks visible to one user.
func (t *Tasks) FetchByOwner(ctx context.Context, userID int64) error {
	t.begin()
	resp, err := t.client.ListOwnerTasks(ctx, userID)
	if err != nil {
		return t.finish(err)
	}
	t.replace(resp, taskScope{kind: authz.ScopePersonalTasks, id: userID, set: true})
	return t.finish(nil)
}

// Create adds a task. The server assigns NOT_STARTED; the confirmed record
// is appended and the owning scope re-fetched per the declared refresh.
func (t *Tasks) Create(ctx context.Context, req api.CreateTaskRequest) (model.Task, error) {
	if err := validate.Struct(req); err != nil {
		return model.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	t.begin()
	resp, err := t.client.CreateTask(ctx, req)
	if err != nil {
		return model.Task{}, t.finish(err)
	}

	created := resp.Model()
	t.itemsMu.Lock()
	t.items = append(t.items, created)
	t.itemsMu.Unlock()
	t.logger.WithFields(logrus.Fields{
		"task_id":    created.ID,
		"project_id": created.ProjectID,
	}).Info("task created")

	if err := t.refresh(ctx, createTaskRefresh); err != nil {
		return created, t.finish(err)
	}
	return created, t.finish(nil)
}

// Update is the administrative override: description, due date, assignee,
// and status change together, without the forward-only constraint. The
// response carries the fully updated record and is spliced in directly.
func (t *Tasks) Update(ctx context.Context, id int64, req api.UpdateTaskRequest) (model.Task, error) {
	if !req.Status.IsValid() {
		return model.Task{}, fmt.Errorf("invalid status: %s", req.Status)
	}

	t.begin()
	resp, err := t.client.UpdateTask(ctx, id, req)
	if err != nil {
		return model.Task{}, t.finish(err)
	}

	updated := resp.Model()
	t.splice(updated)

	if err := t.refresh(ctx, updateTaskRefresh); err != nil {
		return updated, t.finish(err)
	}
	return updated, t.finish(nil)
}

// UpdateStatus is the dedicated forward-only status path. A regression is a
// hard error raised before any network call. The displayed status changes
// only after the remote side confirms: the confirmed record is spliced in,
// and a failure leaves the cached record untouched.
func (t *Tasks) UpdateStatus(ctx context.Context, taskID int64, target model.TaskStatus) (model.Task, error) {
	identity := t.session.Identity()
	if identity == nil {
		return model.Task{}, fmt.Errorf("not authenticated")
	}

	current, ok := t.Get(taskID)
	if !ok {
		return model.Task{}, fmt.Errorf("task %d not in the fetched collection", taskID)
	}
	if err := model.CheckAdvance(current.Status, target); err != nil {
		return model.Task{}, err
	}

	t.begin()
	resp, err := t.client.UpdateTaskStatus(ctx, api.UpdateTaskStatusRequest{
		TaskID:    taskID,
		UserID:    identity.ID,
		ProjectID: current.ProjectID,
		Status:    target,
	})
	if err != nil {
		return model.Task{}, t.finish(err)
	}

	updated := resp.Model()
	t.splice(updated)
	t.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"status":  updated.Status,
	}).Info("task status updated")

	if err := t.refresh(ctx, statusTaskRefresh); err != nil {
		return updated, t.finish(err)
	}
	return updated, t.finish(nil)
}

// Delete removes a task after remote confirmation and re-fetches the owning
// scope.
func (t *Tasks) Delete(ctx context.Context, id int64) error {
	t.begin()
	if err := t.client.DeleteTask(ctx, id); err != nil {
		return t.finish(err)
	}

	t.itemsMu.Lock()
	kept := t.items[:0]
	for _, task := range t.items {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	t.items = kept
	t.itemsMu.Unlock()
	t.logger.WithField("task_id", id).Info("task deleted")

	if err := t.refresh(ctx, deleteTaskRefresh); err != nil {
		return t.finish(err)
	}
	return t.finish(nil)
}

// refresh applies a mutation's declared freshness action. A collection
// refresh re-fetches whatever scope the store last listed; if nothing was
// listed yet there is nothing to make fresh.
func (t *Tasks) refresh(ctx context.Context, scope RefreshScope) error {
	if scope != RefreshCollection {
		return nil
	}

	t.itemsMu.Lock()
	owning := t.scope
	t.itemsMu.Unlock()
	if !owning.set {
		return nil
	}

	if owning.kind == authz.ScopePersonalTasks {
		return t.FetchByOwner(ctx, owning.id)
	}
	return t.FetchByProject(ctx, owning.id)
}

// replace swaps in a freshly fetched collection and records its scope.
func (t *Tasks) replace(resp []api.TaskResponse, scope taskScope) {
	items := make([]model.Task, 0, len(resp))
	for i := range resp {
		items = append(items, resp[i].Model())
	}
	t.itemsMu.Lock()
	t.items = items
	t.scope = scope
	t.itemsMu.Unlock()
}

// splice replaces the record with a matching id, if present.
func (t *Tasks) splice(updated model.Task) {
	t.itemsMu.Lock()
	defer t.itemsMu.Unlock()
	for i := range t.items {
		if t.items[i].ID == updated.ID {
			t.items[i] = updated
			return
		}
	}
}
