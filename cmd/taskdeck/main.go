package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/byronguina/taskdeck/internal/api"
	"github.com/byronguina/taskdeck/internal/authz"
	"github.com/byronguina/taskdeck/internal/config"
	"github.com/byronguina/taskdeck/internal/render"
	"github.com/byronguina/taskdeck/internal/session"
	"github.com/byronguina/taskdeck/internal/state"
	"github.com/byronguina/taskdeck/internal/store"
)

var (
	flagConfig  string
	flagJSON    bool
	flagVerbose bool
)

// app holds the wired client: config, durable state, session, gateway, and
// the three entity stores. Built once per invocation in the root pre-run.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	db       *state.DB
	session  *session.Store
	client   *api.Client
	projects *store.Projects
	tasks    *store.Tasks
	users    *store.Users
}

var deck *app

var rootCmd = &cobra.Command{
	Use:           "taskdeck",
	Short:         "Project and task tracking from the terminal",
	Long:          `A client for the project tracking service: log in, browse projects and tasks in the scope your roles allow, and manage accounts as an admin.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		deck = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deck != nil && deck.db != nil {
			_ = deck.db.Close()
		}
	},
}

func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := state.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}
	if err := db.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	sess := session.NewStore(db, logger)
	if _, err := sess.Restore(); err != nil {
		logger.WithError(err).Warn("could not restore stored session")
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:     cfg.BaseURL,
		Credentials: sess,
		Logger:      logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		session:  sess,
		client:   client,
		projects: store.NewProjects(client, sess, logger),
		tasks:    store.NewTasks(client, sess, logger),
		users:    store.NewUsers(client, logger),
	}, nil
}

// requireView refuses the command when the session may not open the view.
func requireView(view authz.View) error {
	d := authz.AuthorizeView(view, deck.session.Authenticated(), deck.session.Roles())
	switch d {
	case authz.Allow:
		return nil
	case authz.DenyUnauthenticated:
		return fmt.Errorf("not logged in, run: taskdeck login <email>")
	default:
		return fmt.Errorf("your roles (%s) do not allow this", deck.session.Roles())
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default is $HOME/.taskdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if deck != nil {
			// A 401 means the stored credential is dead; drop it so the
			// next invocation starts clean.
			deck.session.InvalidateOnAuthFailure(err)
		}
		fmt.Fprintln(os.Stderr, render.Error(err))
		os.Exit(1)
	}
}
