package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"records-service/common/logger"
	"records-service/internal/roster"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const networkFailureMessage = "Network error. Please check that the server is running and try again."

var errNotLoggedIn = errors.New("not logged in: run `rosterctl login` first")

type cli struct {
	v      *viper.Viper
	out    io.Writer
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Manage student records from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.logger = logger.NewWithOptions(logger.Options{
				Format: "text",
				Level:  c.v.GetString("log_level"),
				Output: errOut,
			})
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:3000", "records API base URL")
	flags.String("session", "", "session file (default: user config dir)")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	c.v.SetEnvPrefix("ROSTER")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlag("server", flags.Lookup("server"))
	_ = c.v.BindPFlag("session", flags.Lookup("session"))
	_ = c.v.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.seedCmd(),
		c.listCmd(),
		c.coursesCmd(),
		c.gradingCmd(),
		c.addCmd(),
		c.editCmd(),
		c.statusCmd(),
		c.deleteCmd(),
	)
	return root
}

func (c *cli) sessionStore() (*roster.SessionStore, error) {
	path := c.v.GetString("session")
	if path == "" {
		var err error
		if path, err = roster.DefaultSessionPath(); err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
	}
	return roster.NewSessionStore(path), nil
}

func (c *cli) newClient(token string) *roster.Client {
	opts := []roster.ClientOption{}
	if token != "" {
		opts = append(opts, roster.WithToken(token))
	}
	return roster.NewClient(c.v.GetString("server"), opts...)
}

func (c *cli) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.v.GetDuration("timeout"))
}

// authenticated loads the stored session. Every command except login and seed goes through it.
func (c *cli) authenticated() (*roster.Session, *roster.Client, error) {
	store, err := c.sessionStore()
	if err != nil {
		return nil, nil, err
	}
	session, err := store.Load()
	if errors.Is(err, roster.ErrNoSession) {
		return nil, nil, errNotLoggedIn
	}
	if err != nil {
		return nil, nil, err
	}
	return session, c.newClient(session.Token), nil
}

// manager loads the full list into a fresh state.
func (c *cli) manager(cmd *cobra.Command) (*roster.Manager, error) {
	_, client, err := c.authenticated()
	if err != nil {
		return nil, err
	}
	mgr := roster.NewManager(client, roster.NewState())

	ctx, cancel := c.requestContext(cmd)
	defer cancel()
	if err := mgr.Load(ctx); err != nil {
		return nil, c.checkSession(err)
	}
	return mgr, nil
}

// checkSession drops a session the server no longer accepts.
func (c *cli) checkSession(err error) error {
	if !roster.IsStatus(err, http.StatusUnauthorized) {
		return err
	}
	if store, serr := c.sessionStore(); serr == nil {
		if cerr := store.Clear(); cerr != nil {
			c.logger.Warn("failed to clear rejected session", "error", cerr)
		}
	}
	return errors.New("session expired: run `rosterctl login` again")
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	var netErr *roster.NetworkError
	if errors.As(err, &netErr) {
		return networkFailureMessage
	}
	var apiErr *roster.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
