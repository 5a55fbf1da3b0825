package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"records-service/internal/roster"

	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a teacher and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			store, err := c.sessionStore()
			if err != nil {
				return err
			}

			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			session, err := c.newClient("").Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := store.Save(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			c.logger.Debug("session stored", "path", store.Path())
			fmt.Fprintf(c.out, "Welcome, %s %s (%s)\n", session.Teacher.FirstName, session.Teacher.LastName, session.Teacher.Department)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "teacher email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.sessionStore()
			if err != nil {
				return err
			}
			session, err := store.Load()
			if errors.Is(err, roster.ErrNoSession) {
				return errNotLoggedIn
			}
			if err != nil {
				return err
			}

			ctx, cancel := c.requestContext(cmd)
			defer cancel()
			if err := c.newClient(session.Token).Logout(ctx); err != nil {
				c.logger.Warn("server logout failed", "error", err)
			}

			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in teacher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := c.authenticated()
			if err != nil {
				return err
			}

			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			me, err := client.Me(ctx)
			if err != nil {
				return c.checkSession(err)
			}
			fmt.Fprintf(c.out, "%s %s <%s>\n%s\n", me.FirstName, me.LastName, me.Email, me.Department)
			return nil
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default teacher accounts if none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			result, err := c.newClient("").SeedDefaults(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s (%d teachers)\n", result.Message, result.Count)
			return nil
		},
	}
}
