package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/model"
)

// taskAPI is a minimal fake of the remote task endpoints. Tests mutate its
// fields to shape responses.
type taskAPI struct {
	projectTasks map[string][]api.TaskResponse // keyed by project id path segment
	ownerTasks   map[string][]api.TaskResponse
	createResp   *api.TaskResponse
	updateResp   *api.TaskResponse
	statusResp   *api.TaskResponse
	statusCode   int // non-zero forces this status on /update-status
}

func (f *taskAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/tasks" && r.Method == http.MethodPost:
		_ = json.NewEncoder(w).Encode(f.createResp)
	case path == "/api/tasks/update-status" && r.Method == http.MethodPut:
		if f.statusCode != 0 {
			http.Error(w, "rejected", f.statusCode)
			return
		}
		_ = json.NewEncoder(w).Encode(f.statusResp)
	case strings.HasPrefix(path, "/api/tasks/owner/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/api/tasks/owner/")
		_ = json.NewEncoder(w).Encode(f.ownerTasks[id])
	case strings.HasPrefix(path, "/api/tasks/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/api/tasks/")
		_ = json.NewEncoder(w).Encode(f.projectTasks[id])
	case strings.HasPrefix(path, "/api/tasks/") && r.Method == http.MethodPut:
		_ = json.NewEncoder(w).Encode(f.updateResp)
	case strings.HasPrefix(path, "/api/tasks/") && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func task(id int64, status model.TaskStatus, projectID int64) api.TaskResponse {
	return api.TaskResponse{
		ID: id, Description: "task", Status: status,
		ProjectID: projectID, OwnerID: 7, OwnerName: "Ann",
	}
}

func TestTasks_Fetch_ReadOnlyUsesPersonalScope(t *testing.T) {
	fake := &taskAPI{ownerTasks: map[string][]api.TaskResponse{
		"9": {task(1, model.StatusNotStarted, 3)},
	}}
	e := newEnv(t, fake)
	e.login(t, 9, "Ro", false, false, true)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.Fetch(context.Background(), 3); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	for _, call := range e.rec.list() {
		if strings.HasPrefix(call, "GET /api/tasks/") && !strings.HasPrefix(call, "GET /api/tasks/owner/") {
			t.Errorf("read-only session hit the project scope: %s", call)
		}
	}
	if got := e.rec.list(); len(got) != 1 || got[0] != "GET /api/tasks/owner/9" {
		t.Errorf("calls = %v, want exactly the personal scope", got)
	}
	if len(tasks.Items()) != 1 {
		t.Errorf("cached %d tasks, want 1", len(tasks.Items()))
	}
}

func TestTasks_Fetch_CreatorUsesProjectScope(t *testing.T) {
	fake := &taskAPI{projectTasks: map[string][]api.TaskResponse{
		"3": {task(1, model.StatusNotStarted, 3), task(2, model.StatusCompleted, 3)},
	}}
	e := newEnv(t, fake)
	e.login(t, 7, "Ann", false, true, false)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.Fetch(context.Background(), 3); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got := e.rec.list(); len(got) != 1 || got[0] != "GET /api/tasks/3" {
		t.Errorf("calls = %v, want the project scope", got)
	}
	if len(tasks.Items()) != 2 {
		t.Errorf("cached %d tasks, want 2", len(tasks.Items()))
	}
}

func TestTasks_FetchByProject_RefusedForReadOnly(t *testing.T) {
	e := newEnv(t, &taskAPI{})
	e.login(t, 9, "Ro", false, false, true)

	tasks := NewTasks(e.client, e.session, nil)
	err := tasks.FetchByProject(context.Background(), 3)
	if !errors.Is(err, ErrNoTaskScope) {
		t.Fatalf("expected ErrNoTaskScope, got %v", err)
	}
	if e.rec.count() != 0 {
		t.Errorf("refusal must happen before any request, saw %v", e.rec.list())
	}
}

func TestTasks_Create(t *testing.T) {
	created := task(42, model.StatusNotStarted, 3)
	created.Description = "x"
	fake := &taskAPI{
		createResp: &created,
		projectTasks: map[string][]api.TaskResponse{
			"3": {task(1, model.StatusInProgress, 3), created},
		},
	}
	e := newEnv(t, fake)
	e.login(t, 7, "Ann", false, true, false)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.FetchByProject(context.Background(), 3); err != nil {
		t.Fatalf("FetchByProject: %v", err)
	}

	got, err := tasks.Create(context.Background(), api.CreateTaskRequest{
		Description: "x", ProjectID: 3, OwnerID: 7, AssigneeID: nil,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Status != model.StatusNotStarted {
		t.Errorf("created status = %s, want NOT_STARTED", got.Status)
	}

	// The owning scope was re-fetched after the create.
	calls := e.rec.list()
	if calls[len(calls)-1] != "GET /api/tasks/3" {
		t.Errorf("expected trailing collection re-fetch, calls = %v", calls)
	}
	if cached, ok := tasks.Get(42); !ok || cached.Status != model.StatusNotStarted {
		t.Errorf("collection should contain the created record, got %+v ok=%v", cached, ok)
	}
}

func TestTasks_Create_ValidationBeforeNetwork(t *testing.T) {
	e := newEnv(t, &taskAPI{})
	e.login(t, 7, "Ann", false, true, false)

	tasks := NewTasks(e.client, e.session, nil)
	_, err := tasks.Create(context.Background(), api.CreateTaskRequest{ProjectID: 3, OwnerID: 7})
	if err == nil {
		t.Fatal("expected validation error for missing description")
	}
	if e.rec.count() != 0 {
		t.Errorf("validation failure must precede any request, saw %v", e.rec.list())
	}
}

func TestTasks_UpdateStatus_SplicesConfirmedRecord(t *testing.T) {
	updated := task(10, model.StatusInProgress, 3)
	fake := &taskAPI{
		projectTasks: map[string][]api.TaskResponse{
			"3": {task(5, model.StatusCompleted, 3), task(10, model.StatusNotStarted, 3)},
		},
		statusResp: &updated,
	}
	e := newEnv(t, fake)
	e.login(t, 7, "Ann", false, true, false)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.FetchByProject(context.Background(), 3); err != nil {
		t.Fatalf("FetchByProject: %v", err)
	}

	got, err := tasks.UpdateStatus(context.Background(), 10, model.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != model.StatusInProgress {
		t.Errorf("returned status = %s", got.Status)
	}

	// The record at the matching index was replaced; its neighbor was not.
	items := tasks.Items()
	if items[0].ID != 5 || items[0].Status != model.StatusCompleted {
		t.Errorf("neighbor record disturbed: %+v", items[0])
	}
	if items[1].ID != 10 || items[1].Status != model.StatusInProgress {
		t.Errorf("record not spliced: %+v", items[1])
	}
	// Splice only; no follow-up fetch after a status update.
	calls := e.rec.list()
	if calls[len(calls)-1] != "PUT /api/tasks/update-status" {
		t.Errorf("unexpected follow-up request: %v", calls)
	}
}

func TestTasks_UpdateStatus_RegressionIsLocalHardError(t *testing.T) {
	fake := &taskAPI{projectTasks: map[string][]api.TaskResponse{
		"3": {task(10, model.StatusCompleted, 3)},
	}}
	e := newEnv(t, fake)
	e.login(t, 7, "Ann", false, true, false)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.FetchByProject(context.Background(), 3); err != nil {
		t.Fatalf("FetchByProject: %v", err)
	}
	before := e.rec.count()

	_, err := tasks.UpdateStatus(context.Background(), 10, model.StatusInProgress)
	if !errors.Is(err, model.ErrStatusRegression) {
		t.Fatalf("expected ErrStatusRegression, got %v", err)
	}
	if e.rec.count() != before {
		t.Error("regression must be refused before any network call")
	}
	if cached, _ := tasks.Get(10); cached.Status != model.StatusCompleted {
		t.Errorf("cached status changed to %s", cached.Status)
	}
}

func TestTasks_UpdateStatus_RemoteFailureLeavesRecordUnchanged(t *testing.T) {
	fake := &taskAPI{
		projectTasks: map[string][]api.TaskResponse{
			"3": {task(10, model.StatusNotStarted, 3)},
		},
		statusCode: http.StatusInternalServerError,
	}
	e := newEnv(t, fake)
	e.login(t, 7, "Ann", false, true, false)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.FetchByProject(context.Background(), 3); err != nil {
		t.Fatalf("FetchByProject: %v", err)
	}

	_, err := tasks.UpdateStatus(context.Background(), 10, model.StatusInProgress)
	if err == nil {
		t.Fatal("expected remote rejection")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500 *api.Error, got %v", err)
	}

	// No optimistic transition: the displayed status is unchanged.
	if cached, _ := tasks.Get(10); cached.Status != model.StatusNotStarted {
		t.Errorf("cached status = %s, want NOT_STARTED", cached.Status)
	}
	if tasks.Phase() != Rejected {
		t.Errorf("phase = %s, want rejected", tasks.Phase())
	}
}

func TestTasks_Update_AdminOverrideMayRegress(t *testing.T) {
	reverted := task(10, model.StatusNotStarted, 3)
	fake := &taskAPI{
		projectTasks: map[string][]api.TaskResponse{
			"3": {task(10, model.StatusCompleted, 3)},
		},
		updateResp: &reverted,
	}
	e := newEnv(t, fake)
	e.login(t, 1, "Root", true, false, false)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.FetchByProject(context.Background(), 3); err != nil {
		t.Fatalf("FetchByProject: %v", err)
	}

	got, err := tasks.Update(context.Background(), 10, api.UpdateTaskRequest{
		Description: "task", Status: model.StatusNotStarted,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != model.StatusNotStarted {
		t.Errorf("general update should accept any status, got %s", got.Status)
	}
}

func TestTasks_Delete(t *testing.T) {
	fake := &taskAPI{projectTasks: map[string][]api.TaskResponse{
		"3": {task(1, model.StatusNotStarted, 3)},
	}}
	e := newEnv(t, fake)
	e.login(t, 7, "Ann", false, true, false)

	tasks := NewTasks(e.client, e.session, nil)
	if err := tasks.FetchByProject(context.Background(), 3); err != nil {
		t.Fatalf("FetchByProject: %v", err)
	}

	// The fake now answers the post-delete re-fetch with the shrunk list.
	fake.projectTasks["3"] = nil

	if err := tasks.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(tasks.Items()) != 0 {
		t.Errorf("collection = %+v, want empty", tasks.Items())
	}

	calls := e.rec.list()
	if calls[len(calls)-1] != "GET /api/tasks/3" {
		t.Errorf("expected trailing collection re-fetch, calls = %v", calls)
	}
}
