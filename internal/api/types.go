package api

import "github.com/byronguina/taskdeck/internal/model"

// AuthResponse is the body returned by both login endpoints. Each role is
// reported as an independent boolean; all three may be true at once.
type AuthResponse struct {
	IsError       bool   `json:"isError"`
	JWT           string `json:"jwt"`
	UserID        int64  `json:"userId"`
	Name          string `json:"name"`
	IsAdmin       bool   `json:"isAdmin"`
	IsTaskCreator bool   `json:"isTaskCreator"`
	Readonly      bool   `json:"readonly"`
}

// Roles derives the session role set from the response booleans. The set is
// a union, not an exclusive choice.
func (r *AuthResponse) Roles() model.RoleSet {
	roles := model.NewRoleSet()
	if r.IsAdmin {
		roles[model.RoleAdmin] = struct{}{}
	}
	if r.IsTaskCreator {
		roles[model.RoleTaskCreator] = struct{}{}
	}
	if r.Readonly {
		roles[model.RoleReadOnly] = struct{}{}
	}
	return roles
}

// GoogleLoginRequest carries the Google ID token to exchange for a session.
type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// ProjectRequest is the create/edit payload for a project. OwnerID must
// reference a task-creator account; that invariant is enforced remotely.
type ProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	OwnerID     int64  `json:"ownerId" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate,omitempty"`
}

// ProjectResponse is the server's representation of a project, including the
// denormalized owner name the client cannot compute locally.
type ProjectResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	OwnerID     int64  `json:"ownerId"`
	OwnerName   string `json:"ownerName"`
	CreatedAt   string `json:"createdAt"`
}

// Model converts the wire shape to the client entity.
func (r *ProjectResponse) Model() model.Project {
	return model.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		OwnerID:     r.OwnerID,
		OwnerName:   r.OwnerName,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateTaskRequest is the create payload for a task. The server assigns
// NOT_STARTED regardless of input, so no status field exists here.
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"dueDate,omitempty"`
	ProjectID   int64  `json:"projectId" validate:"required"`
	OwnerID     int64  `json:"ownerId" validate:"required"`
	AssigneeID  *int64 `json:"assigneeId"`
}

// UpdateTaskRequest is the general update payload. It is an administrative
// override: it may change status in any direction.
type UpdateTaskRequest struct {
	Description string           `json:"description"`
	DueDate     string           `json:"dueDate,omitempty"`
	AssigneeID  *int64           `json:"assigneeId"`
	Status      model.TaskStatus `json:"status"`
}

// UpdateTaskStatusRequest is the dedicated forward-only status change.
type UpdateTaskStatusRequest struct {
	TaskID    int64            `json:"taskId"`
	UserID    int64            `json:"userId"`
	ProjectID int64            `json:"projectId"`
	Status    model.TaskStatus `json:"status"`
}

// TaskResponse is the server's representation of a task.
type TaskResponse struct {
	ID           int64            `json:"id"`
	Description  string           `json:"description"`
	DueDate      string           `json:"dueDate,omitempty"`
	Status       model.TaskStatus `json:"status"`
	ProjectID    int64            `json:"projectId"`
	OwnerID      int64            `json:"ownerId"`
	OwnerName    string           `json:"ownerName"`
	AssigneeID   *int64           `json:"assigneeId"`
	AssigneeName string           `json:"assigneeName,omitempty"`
}

// Model converts the wire shape to the client entity.
func (r *TaskResponse) Model() model.Task {
	t := model.Task{
		ID:           r.ID,
		Description:  r.Description,
		DueDate:      r.DueDate,
		Status:       r.Status,
		ProjectID:    r.ProjectID,
		OwnerID:      r.OwnerID,
		OwnerName:    r.OwnerName,
		AssigneeName: r.AssigneeName,
	}
	if r.AssigneeID != nil {
		t.AssigneeID = *r.AssigneeID
	}
	return t
}

// CreateUserRequest creates an account. Role assignment is a separate call;
// the remote side models the two as distinct operations.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UserResponse is the account-management view of a user: exactly one role.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Model converts the wire shape to the client entity.
func (r *UserResponse) Model() model.User {
	return model.User{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
		Role:  model.Role(r.Role),
	}
}
