// Package authz decides, per authenticated identity, which views may be
// entered and which collection scope a fetch is entitled to request. The
// gate itself is pure; it holds no session state.
package authz

import "github.com/byronguina/taskdeck/internal/model"

// Permit reports whether a session holding current may enter a surface that
// requires any of required. Defined as non-empty intersection.
func Permit(required, current model.RoleSet) bool {
	return required.Intersects(current)
}

// Decision is the outcome of the navigation guard.
type Decision int

const (
	// Allow renders the view.
	Allow Decision = iota
	// DenyUnauthenticated redirects to login. Checked before roles.
	DenyUnauthenticated
	// DenyRole redirects to the unauthorized view.
	DenyRole
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyRole:
		return "forbidden"
	}
	return "unknown"
}

// Authorize is the navigation guard. The authentication check strictly
// precedes the role check: an anonymous caller is sent to login, never to
// the unauthorized view.
func Authorize(authenticated bool, required, current model.RoleSet) Decision {
	if !authenticated {
		return DenyUnauthenticated
	}
	if !Permit(required, current) {
		return DenyRole
	}
	return Allow
}

// View names a guarded surface of the client.
type View string

const (
	ViewDashboard    View = "dashboard"
	ViewProjects     View = "projects"
	ViewProjectTasks View = "project-tasks"
	ViewMyTasks      View = "my-tasks"
	ViewUsers        View = "users"
	ViewRoles        View = "roles"
)

// viewRequirements mirrors the product's route table: which roles may enter
// each view.
var viewRequirements = map[View]model.RoleSet{
	ViewDashboard:    model.NewRoleSet(model.RoleAdmin, model.RoleTaskCreator, model.RoleReadOnly),
	ViewProjects:     model.NewRoleSet(model.RoleAdmin, model.RoleTaskCreator),
	ViewProjectTasks: model.NewRoleSet(model.RoleAdmin, model.RoleTaskCreator),
	ViewMyTasks:      model.NewRoleSet(model.RoleReadOnly),
	ViewUsers:        model.NewRoleSet(model.RoleAdmin, model.RoleTaskCreator),
	ViewRoles:        model.NewRoleSet(model.RoleAdmin),
}

// Required returns the role set that may enter the view.
func Required(view View) (model.RoleSet, bool) {
	required, ok := viewRequirements[view]
	return required, ok
}

// AuthorizeView runs the navigation guard against the route table.
func AuthorizeView(view View, authenticated bool, current model.RoleSet) Decision {
	required, ok := Required(view)
	if !ok {
		return DenyRole
	}
	return Authorize(authenticated, required, current)
}

// ProjectScope is the subset of the projects collection a fetch may request.
type ProjectScope int

const (
	// ScopeAllProjects requests every project. Admin only.
	ScopeAllProjects ProjectScope = iota
	// ScopeOwnedProjects requests the projects owned by the identity.
	ScopeOwnedProjects
)

// ProjectScopeFor selects the project listing scope for the given roles.
// This is a data-scoping decision, not a visibility one, and must be
// re-evaluated whenever the session's roles change.
func ProjectScopeFor(roles model.RoleSet) ProjectScope {
	if roles.Has(model.RoleAdmin) {
		return ScopeAllProjects
	}
	return ScopeOwnedProjects
}

// TaskScope is the subset of the tasks collection a fetch may request.
type TaskScope int

const (
	// ScopeProjectTasks requests one project's task list.
	ScopeProjectTasks TaskScope = iota
	// ScopePersonalTasks requests the tasks visible to the identity itself.
	ScopePersonalTasks
)

// TaskScopeFor selects the task listing scope. A purely read-only identity
// may only request its personal list, never a project list. When the role
// set also carries admin or task-creator (the login response allows the
// union), the broader project scope wins.
func TaskScopeFor(roles model.RoleSet) TaskScope {
	if roles.Has(model.RoleAdmin) || roles.Has(model.RoleTaskCreator) {
		return ScopeProjectTasks
	}
	return ScopePersonalTasks
}
