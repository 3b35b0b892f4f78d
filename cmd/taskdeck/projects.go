package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/authz"
	"github.com/byronguina/taskdeck/internal/model"
	"github.com/byronguina/taskdeck/internal/render"
)

var (
	flagProjectName  string
	flagProjectDesc  string
	flagProjectOwner int64
	flagProjectStart string
	flagProjectEnd   string
)

// ProjectJSON is the --json shape for a project row.
type ProjectJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     int64  `json:"ownerId"`
	OwnerName   string `json:"ownerName"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
}

func projectJSON(p model.Project) ProjectJSON {
	return ProjectJSON{
		ID: p.ID, Name: p.Name, Description: p.Description,
		OwnerID: p.OwnerID, OwnerName: p.OwnerName,
		StartDate: p.StartDate, EndDate: p.EndDate,
	}
}

func printProjects(items []model.Project) error {
	if flagJSON {
		out := make([]ProjectJSON, 0, len(items))
		for _, p := range items {
			out = append(out, projectJSON(p))
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}
	fmt.Println(render.Projects(items))
	return nil
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse and manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects in your scope",
	Long:  `Admins see every project; task creators see the projects they own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewProjects); err != nil {
			return err
		}
		if err := deck.projects.Fetch(context.Background()); err != nil {
			return err
		}
		return printProjects(deck.projects.Items())
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewProjects); err != nil {
			return err
		}
		created, err := deck.projects.Create(context.Background(), api.ProjectRequest{
			Name:        flagProjectName,
			Description: flagProjectDesc,
			OwnerID:     flagProjectOwner,
			StartDate:   flagProjectStart,
			EndDate:     flagProjectEnd,
		})
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(projectJSON(created))
		}
		fmt.Printf("Created project %d: %s\n", created.ID, created.Name)
		return nil
	},
}

var projectsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewProjects); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		updated, err := deck.projects.Edit(context.Background(), id, api.ProjectRequest{
			Name:        flagProjectName,
			Description: flagProjectDesc,
			OwnerID:     flagProjectOwner,
			StartDate:   flagProjectStart,
			EndDate:     flagProjectEnd,
		})
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(projectJSON(updated))
		}
		fmt.Printf("Updated project %d\n", updated.ID)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewProjects); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deck.projects.Delete(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted project %d\n", id)
		return nil
	},
}

var projectsAssignCmd = &cobra.Command{
	Use:   "assign <project-id> <user-id>",
	Short: "Assign a user to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewProjects); err != nil {
			return err
		}
		projectID, err := parseID(args[0])
		if err != nil {
			return err
		}
		userID, err := parseID(args[1])
		if err != nil {
			return err
		}
		updated, err := deck.projects.AssignUser(context.Background(), projectID, userID)
		if err != nil {
			return err
		}
		fmt.Printf("Assigned user %d to project %d\n", userID, updated.ID)
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func init() {
	for _, c := range []*cobra.Command{projectsCreateCmd, projectsEditCmd} {
		c.Flags().StringVar(&flagProjectName, "name", "", "project name")
		c.Flags().StringVar(&flagProjectDesc, "description", "", "project description")
		c.Flags().Int64Var(&flagProjectOwner, "owner", 0, "owner user id (must hold TASK_CREATOR)")
		c.Flags().StringVar(&flagProjectStart, "start", "", "start date (YYYY-MM-DD)")
		c.Flags().StringVar(&flagProjectEnd, "end", "", "end date (YYYY-MM-DD)")
	}

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsEditCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsAssignCmd)
	rootCmd.AddCommand(projectsCmd)
}
