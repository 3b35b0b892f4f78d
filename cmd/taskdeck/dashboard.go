package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/byronguina/taskdeck/internal/authz"
	"github.com/byronguina/taskdeck/internal/render"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your landing view",
	Long:  `Every role may open the dashboard. Admins and task creators land on their project list; read-only users land on their personal task list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewDashboard); err != nil {
			return err
		}
		ctx := context.Background()
		identity := deck.session.Identity()
		fmt.Println(render.Session(*identity, deck.session.Roles()))
		fmt.Println()

		if authz.TaskScopeFor(deck.session.Roles()) == authz.ScopePersonalTasks {
			if err := deck.tasks.Fetch(ctx, 0); err != nil {
				return err
			}
			return printTasks(deck.tasks.Items())
		}
		if err := deck.projects.Fetch(ctx); err != nil {
			return err
		}
		return printProjects(deck.projects.Items())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
