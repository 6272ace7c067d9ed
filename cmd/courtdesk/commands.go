package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goCourt "github.com/MrEthical07/goCourt"
	"github.com/MrEthical07/goCourt/portal"
	"github.com/spf13/pflag"
)

func loginCommand() *Command {
	var (
		session      sessionFlags
		passwordFile string
	)
	return &Command{
		Name:    "login",
		Summary: "Log in and persist the session",
		Usage:   "courtdesk login <email> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			session.register(fs)
			fs.StringVar(&passwordFile, "password-file", "", "read the password from this file (\"-\" or empty prompts)")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("login takes exactly one email argument")
			}
			password, err := readPassword(passwordFile)
			if err != nil {
				return err
			}

			ctx := context.Background()
			m, _, err := session.open(ctx, nil)
			if err != nil {
				return err
			}
			defer m.Close()

			user, err := m.Login(ctx, args[0], password)
			if err != nil {
				return err
			}
			if !m.Session().Authenticated() {
				return errors.New("the backend issued an already expired token")
			}
			fmt.Fprintf(stdout, "Logged in as %s (%s)\n", user.Email, user.Role)
			fmt.Fprintf(stdout, "Home: %s\n", user.Role.HomePath())
			return nil
		},
	}
}

func logoutCommand() *Command {
	var session sessionFlags
	return &Command{
		Name:    "logout",
		Summary: "Forget the persisted session",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("logout", pflag.ContinueOnError)
			session.register(fs)
			return fs
		},
		Run: func(args []string) error {
			ctx := context.Background()
			m, _, err := session.open(ctx, nil)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Logged out")
			return nil
		},
	}
}

func whoamiCommand() *Command {
	var (
		session sessionFlags
		verify  bool
	)
	return &Command{
		Name:    "whoami",
		Summary: "Show the persisted session",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
			session.register(fs)
			fs.BoolVar(&verify, "verify", false, "ask the backend who the token belongs to")
			return fs
		},
		Run: func(args []string) error {
			ctx := context.Background()
			m, _, err := session.open(ctx, nil)
			if err != nil {
				return err
			}
			defer m.Close()

			user := m.User()
			if user == nil {
				return goCourt.ErrNotAuthenticated
			}
			fmt.Fprintf(stdout, "%s (%s)\n", user.Email, user.PrimaryRole())

			if verify {
				account, err := m.Client().Auth.Me(ctx)
				if err != nil {
					return fmt.Errorf("verify session: %w", err)
				}
				fmt.Fprintf(stdout, "Backend account: %s #%d (%s)\n", account.Email, account.ID, account.Role)
			}
			return nil
		},
	}
}

func serveCommand() *Command {
	var (
		session sessionFlags
		addr    string
	)
	return &Command{
		Name:    "serve",
		Summary: "Run the portal server",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			session.register(fs)
			fs.StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
			return fs
		},
		Run: func(args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := session.config()
			if err != nil {
				return err
			}
			logger := newLogger(session.debug)
			notices := portal.NewNoticeBoard(logger)

			b := goCourt.New().WithConfig(cfg).WithLogger(logger).WithNotifier(notices)
			if cfg.Audit.Enabled {
				b = b.WithAuditSink(goCourt.NewJSONWriterSink(stderr))
			}
			m, err := b.Build()
			if err != nil {
				return err
			}
			defer m.Close()

			// The guard answers 503 until this finishes.
			go func() {
				if err := m.Restore(ctx); err != nil {
					logger.Warn("session restore failed", "error", err)
				}
			}()

			return portal.New(m, notices, logger).ListenAndServe(ctx, addr)
		},
	}
}
