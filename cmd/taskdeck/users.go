package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/byronguina/taskdeck/internal/authz"
	"github.com/byronguina/taskdeck/internal/model"
	"github.com/byronguina/taskdeck/internal/render"
)

var (
	flagUserName  string
	flagUserEmail string
	flagUserRole  string
)

// UserJSON is the --json shape for an account row.
type UserJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func userJSON(u model.User) UserJSON {
	return UserJSON{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func printUsers(items []model.User) error {
	if flagJSON {
		out := make([]UserJSON, 0, len(items))
		for _, u := range items {
			out = append(out, userJSON(u))
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}
	fmt.Println(render.Users(items))
	return nil
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewUsers); err != nil {
			return err
		}
		if err := deck.users.Fetch(context.Background()); err != nil {
			return err
		}
		return printUsers(deck.users.Items())
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	Long:  `Creates the account, then assigns the role as a second call when --role is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewUsers); err != nil {
			return err
		}
		var role model.Role
		if flagUserRole != "" {
			parsed, err := model.ParseRole(flagUserRole)
			if err != nil {
				return err
			}
			role = parsed
		}
		created, err := deck.users.Create(context.Background(), flagUserName, flagUserEmail, role)
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(userJSON(created))
		}
		fmt.Printf("Created user %d: %s\n", created.ID, created.Name)
		return nil
	},
}

var usersEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an account's role",
	Long:  `Name and email are immutable; the role is the only editable field and --role is required.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewUsers); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var role model.Role
		if flagUserRole != "" {
			parsed, err := model.ParseRole(flagUserRole)
			if err != nil {
				return err
			}
			role = parsed
		}
		updated, err := deck.users.Edit(context.Background(), id, role)
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(userJSON(updated))
		}
		fmt.Printf("User %d is now %s\n", updated.ID, render.Role(updated.Role))
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewUsers); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deck.users.Delete(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted user %d\n", id)
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the assignable roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireView(authz.ViewRoles); err != nil {
			return err
		}
		roles := []model.Role{model.RoleAdmin, model.RoleTaskCreator, model.RoleReadOnly}
		if flagJSON {
			names := make([]string, 0, len(roles))
			for _, r := range roles {
				names = append(names, string(r))
			}
			return json.NewEncoder(os.Stdout).Encode(names)
		}
		for _, r := range roles {
			fmt.Println(render.Role(r))
		}
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&flagUserName, "name", "", "full name")
	usersCreateCmd.Flags().StringVar(&flagUserEmail, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&flagUserRole, "role", "", "role to assign (ADMIN, TASK_CREATOR, READ_ONLY_USER)")

	usersEditCmd.Flags().StringVar(&flagUserRole, "role", "", "role to assign (required)")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersEditCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(rolesCmd)
}
