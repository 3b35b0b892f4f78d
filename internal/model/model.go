// Package model defines the entities the client tracks: the authenticated
// identity, projects, tasks, and user accounts, plus the role and task-status
// enumerations with their transition rules.
package model

// Identity is the authenticated principal. It exists only while a session is
// active: created on successful login, destroyed on logout or credential loss.
type Identity struct {
	ID          int64
	DisplayName string
}

// Project is a unit of work owned by a task-creator account. The owner fields
// are denormalized by the server; the client never joins collections locally.
type Project struct {
	ID          int64
	Name        string
	Description string
	StartDate   string
	EndDate     string // optional, empty when open-ended
	OwnerID     int64
	OwnerName   string
	CreatedAt   string
}

// Task belongs to exactly one project. AssigneeID, when set, references an
// account holding the read-only role. Name fields are server-computed.
type Task struct {
	ID           int64
	Description  string
	DueDate      string // optional
	Status       TaskStatus
	ProjectID    int64
	OwnerID      int64
	OwnerName    string
	AssigneeID   int64 // zero when unassigned
	AssigneeName string
}

// User is the account-management view of a user. Unlike the session, which
// carries a role set, an account has exactly one role. The two shapes are
// both part of the remote contract and are deliberately not unified.
type User struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}
