// Package render formats entities for terminal output using lipgloss.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/byronguina/taskdeck/internal/model"
)

// Status icons
const (
	iconNotStarted = "○"
	iconInProgress = "◐"
	iconCompleted  = "●"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusColors = map[model.TaskStatus]lipgloss.Color{
		model.StatusNotStarted: lipgloss.Color("252"),
		model.StatusInProgress: lipgloss.Color("214"),
		model.StatusCompleted:  lipgloss.Color("42"),
	}

	roleColors = map[model.Role]lipgloss.Color{
		model.RoleAdmin:       lipgloss.Color("196"),
		model.RoleTaskCreator: lipgloss.Color("214"),
		model.RoleReadOnly:    lipgloss.Color("42"),
	}
)

func statusIcon(s model.TaskStatus) string {
	switch s {
	case model.StatusNotStarted:
		return iconNotStarted
	case model.StatusInProgress:
		return iconInProgress
	case model.StatusCompleted:
		return iconCompleted
	default:
		return "?"
	}
}

// Status renders a task status with its icon and color.
func Status(s model.TaskStatus) string {
	color, ok := statusColors[s]
	if !ok {
		return string(s)
	}
	return lipgloss.NewStyle().Foreground(color).Render(statusIcon(s) + " " + string(s))
}

// Role renders a role name in its color.
func Role(r model.Role) string {
	color, ok := roleColors[r]
	if !ok {
		return string(r)
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(r))
}

// Error renders a failure line for stderr.
func Error(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}

// Session renders the whoami view.
func Session(identity model.Identity, roles model.RoleSet) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(identity.DisplayName))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (user %d)", identity.ID)))
	b.WriteString("\n")
	if len(roles) == 0 {
		b.WriteString(dimStyle.Render("roles unknown until next login"))
	} else {
		parts := make([]string, 0, len(roles))
		for _, r := range roles.Slice() {
			parts = append(parts, Role(r))
		}
		b.WriteString("roles: " + strings.Join(parts, " "))
	}
	return b.String()
}

// Projects renders the project collection as a table.
func Projects(items []model.Project) string {
	if len(items) == 0 {
		return dimStyle.Render("no projects")
	}
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		end := p.EndDate
		if end == "" {
			end = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.ID), p.Name, p.OwnerName, p.StartDate, end,
		})
	}
	return table([]string{"ID", "NAME", "OWNER", "START", "END"}, rows)
}

// Tasks renders a task listing as a table.
func Tasks(items []model.Task) string {
	if len(items) == 0 {
		return dimStyle.Render("no tasks")
	}
	rows := make([][]string, 0, len(items))
	for _, t := range items {
		assignee := t.AssigneeName
		if assignee == "" {
			assignee = "-"
		}
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.ID), Status(t.Status), t.Description, assignee, due,
		})
	}
	return table([]string{"ID", "STATUS", "DESCRIPTION", "ASSIGNEE", "DUE"}, rows)
}

// Users renders the account collection as a table.
func Users(items []model.User) string {
	if len(items) == 0 {
		return dimStyle.Render("no users")
	}
	rows := make([][]string, 0, len(items))
	for _, u := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", u.ID), u.Name, u.Email, Role(u.Role),
		})
	}
	return table([]string{"ID", "NAME", "EMAIL", "ROLE"}, rows)
}

// table lays out rows under a styled header, sizing each column to its
// widest cell. Widths use the visible length so styled cells line up.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(headerStyle.Render(padToWidth(h, widths[i])))
		if i < len(header)-1 {
			b.WriteString("  ")
		}
	}
	for _, row := range rows {
		b.WriteString("\n")
		for i, cell := range row {
			b.WriteString(padToWidth(cell, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
	}
	return b.String()
}

// padToWidth pads a string to the given width with spaces, measuring the
// visible length so ANSI escapes don't count.
func padToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
