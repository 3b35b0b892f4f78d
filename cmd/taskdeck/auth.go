package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/render"
)

var flagGoogleToken string

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Authenticate and start a session",
	Long:  `Authenticate with an email address, or exchange a Google ID token with --google-token. Any previous session is cleared first.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var authenticate func(context.Context) (*api.AuthResponse, error)
		switch {
		case flagGoogleToken != "":
			authenticate = func(ctx context.Context) (*api.AuthResponse, error) {
				return deck.client.LoginGoogle(ctx, flagGoogleToken)
			}
		case len(args) == 1:
			email := args[0]
			authenticate = func(ctx context.Context) (*api.AuthResponse, error) {
				return deck.client.Login(ctx, email)
			}
		default:
			return fmt.Errorf("an email or --google-token is required")
		}

		if err := deck.session.Login(ctx, authenticate); err != nil {
			return err
		}

		identity := deck.session.Identity()
		fmt.Printf("Logged in as %s (user %d), roles: %s\n",
			identity.DisplayName, identity.ID, deck.session.Roles())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := deck.session.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deck.session.Authenticated() {
			return fmt.Errorf("not logged in")
		}
		identity := deck.session.Identity()

		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(struct {
				UserID int64    `json:"userId"`
				Name   string   `json:"name"`
				Roles  []string `json:"roles"`
			}{
				UserID: identity.ID,
				Name:   identity.DisplayName,
				Roles:  roleNames(),
			})
		}
		fmt.Println(render.Session(*identity, deck.session.Roles()))
		return nil
	},
}

func roleNames() []string {
	roles := deck.session.Roles().Slice()
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func init() {
	loginCmd.Flags().StringVar(&flagGoogleToken, "google-token", "", "Google ID token to exchange instead of an email login")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
