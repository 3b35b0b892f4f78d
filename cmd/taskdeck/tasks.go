package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/authz"
	"github.com/byronguina/taskdeck/internal/model"
	"github.com/byronguina/taskdeck/internal/render"
)

var (
	flagTaskProject  int64
	flagTaskDesc     string
	flagTaskDue      string
	flagTaskOwner    int64
	flagTaskAssignee int64
	flagTaskStatus   string
)

// TaskJSON is the --json shape for a task row.
type TaskJSON struct {
	ID           int64  `json:"id"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	ProjectID    int64  `json:"projectId"`
	OwnerName    string `json:"ownerName,omitempty"`
	AssigneeID   int64  `json:"assigneeId,omitempty"`
	AssigneeName string `json:"assigneeName,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
}

func taskJSON(t model.Task) TaskJSON {
	return TaskJSON{
		ID: t.ID, Description: t.Description, Status: string(t.Status),
		ProjectID: t.ProjectID, OwnerName: t.OwnerName,
		AssigneeID: t.AssigneeID, AssigneeName: t.AssigneeName,
		DueDate: t.DueDate,
	}
}

func printTasks(items []model.Task) error {
	if flagJSON {
		out := make([]TaskJSON, 0, len(items))
		for _, t := range items {
			out = append(out, taskJSON(t))
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}
	fmt.Println(render.Tasks(items))
	return nil
}

// taskListView picks the view the session's roles entitle it to open: the
// personal list for read-only accounts, the project list otherwise.
func taskListView() authz.View {
	if authz.TaskScopeFor(deck.session.Roles()) == authz.ScopePersonalTasks {
		return authz.ViewMyTasks
	}
	return authz.ViewProjectTasks
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Browse and manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in your scope",
	Long:  `Admins and task creators list a project's tasks with --project; read-only users get their personal list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(taskListView()); err != nil {
			return err
		}
		if err := deck.tasks.Fetch(context.Background(), flagTaskProject); err != nil {
			return err
		}
		return printTasks(deck.tasks.Items())
	},
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	Long:  `Creates a task in NOT_STARTED; the status is assigned remotely and cannot be chosen here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewProjectTasks); err != nil {
			return err
		}
		req := api.CreateTaskRequest{
			Description: flagTaskDesc,
			DueDate:     flagTaskDue,
			ProjectID:   flagTaskProject,
			OwnerID:     flagTaskOwner,
		}
		if req.OwnerID == 0 {
			if identity := deck.session.Identity(); identity != nil {
				req.OwnerID = identity.ID
			}
		}
		if flagTaskAssignee != 0 {
			req.AssigneeID = &flagTaskAssignee
		}
		created, err := deck.tasks.Create(context.Background(), req)
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(taskJSON(created))
		}
		fmt.Printf("Created task %d in project %d\n", created.ID, created.ProjectID)
		return nil
	},
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task (admin)",
	Long:  `The administrative override: description, due date, assignee, and status change together, and the status may move in any direction.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deck.session.Authenticated() {
			return fmt.Errorf("not logged in")
		}
		admin := model.NewRoleSet(model.RoleAdmin)
		if authz.Authorize(true, admin, deck.session.Roles()) != authz.Allow {
			return fmt.Errorf("only admins may use the full update")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		req := api.UpdateTaskRequest{
			Description: flagTaskDesc,
			DueDate:     flagTaskDue,
			Status:      model.TaskStatus(flagTaskStatus),
		}
		if flagTaskAssignee != 0 {
			req.AssigneeID = &flagTaskAssignee
		}
		updated, err := deck.tasks.Update(context.Background(), id, req)
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(taskJSON(updated))
		}
		fmt.Printf("Updated task %d\n", updated.ID)
		return nil
	},
}

var tasksStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Advance a task's status",
	Long:  `Moves a task forward through NOT_STARTED, IN_PROGRESS, COMPLETED. Moving backwards is refused; use the admin update for corrections.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(taskListView()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		target, err := model.ParseTaskStatus(args[1])
		if err != nil {
			return err
		}
		// The transition is checked against the cached record, so the
		// listing must come first.
		if err := deck.tasks.Fetch(context.Background(), flagTaskProject); err != nil {
			return err
		}
		updated, err := deck.tasks.UpdateStatus(context.Background(), id, target)
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(taskJSON(updated))
		}
		fmt.Printf("Task %d is now %s\n", updated.ID, render.Status(updated.Status))
		return nil
	},
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewProjectTasks); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deck.tasks.Delete(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted task %d\n", id)
		return nil
	},
}

func init() {
	tasksListCmd.Flags().Int64Var(&flagTaskProject, "project", 0, "project id to list")

	tasksCreateCmd.Flags().Int64Var(&flagTaskProject, "project", 0, "project id")
	tasksCreateCmd.Flags().StringVar(&flagTaskDesc, "description", "", "task description")
	tasksCreateCmd.Flags().StringVar(&flagTaskDue, "due", "", "due date (YYYY-MM-DD)")
	tasksCreateCmd.Flags().Int64Var(&flagTaskOwner, "owner", 0, "owner user id (defaults to you)")
	tasksCreateCmd.Flags().Int64Var(&flagTaskAssignee, "assignee", 0, "assignee user id")

	tasksUpdateCmd.Flags().StringVar(&flagTaskDesc, "description", "", "task description")
	tasksUpdateCmd.Flags().StringVar(&flagTaskDue, "due", "", "due date (YYYY-MM-DD)")
	tasksUpdateCmd.Flags().Int64Var(&flagTaskAssignee, "assignee", 0, "assignee user id")
	tasksUpdateCmd.Flags().StringVar(&flagTaskStatus, "status", "", "status (any direction)")

	tasksStatusCmd.Flags().Int64Var(&flagTaskProject, "project", 0, "project id holding the task")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksCreateCmd)
	tasksCmd.AddCommand(tasksUpdateCmd)
	tasksCmd.AddCommand(tasksStatusCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	rootCmd.AddCommand(tasksCmd)
}
