package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/example/roombook-console/internal/application"
)

type sessionOutput struct {
	Role     application.Role `json:"role" yaml:"role"`
	Username string           `json:"username" yaml:"username"`
}

func (s sessionOutput) table() table {
	return table{headers: []string{"ROLE", "USERNAME"}, rows: [][]string{{string(s.Role), s.Username}}}
}

func roleFlag(set *pflag.FlagSet, role *string) {
	set.StringVar(role, "role", string(application.RoleAdmin), "session role: admin or meeting")
}

func (a *app) loginCommand() *command {
	var role, username, token string
	var tokenStdin bool
	return &command{
		name:    "login",
		summary: "Validate a token with the backend and store it",
		usage:   "--role admin|meeting --username NAME (--token TOKEN | --token-stdin)",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("login")
			roleFlag(set, &role)
			set.StringVar(&username, "username", "", "account username")
			set.StringVar(&token, "token", "", "bearer token issued by the booking API")
			set.BoolVar(&tokenStdin, "token-stdin", false, "read the token from the first line of stdin")
			return set
		},
		run: func(ctx context.Context, args []string) error {
			r, err := application.ParseRole(role)
			if err != nil {
				return usagef("login: %v", err)
			}
			if tokenStdin {
				if token, err = readLine(a); err != nil {
					return err
				}
			}
			session := application.Session{Role: r, Username: strings.TrimSpace(username), Token: strings.TrimSpace(token)}
			if !session.Complete() {
				return usagef("login: --username and a token are required")
			}
			if err := a.begin(ctx); err != nil {
				return err
			}

			if err := a.store.SaveSession(ctx, session); err != nil {
				return err
			}
			// The guard clears the stored credential again when the backend
			// refuses it.
			checked, err := a.guard(r).Check(ctx)
			if err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "signed in", "role", r, "username", checked.Username)
			out := sessionOutput{Role: r, Username: checked.Username}
			return a.render(out, out.table)
		},
	}
}

func (a *app) logoutCommand() *command {
	var role string
	return &command{
		name:    "logout",
		summary: "Forget the stored token of a role",
		usage:   "[--role admin|meeting]",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("logout")
			roleFlag(set, &role)
			return set
		},
		run: func(ctx context.Context, args []string) error {
			r, err := application.ParseRole(role)
			if err != nil {
				return usagef("logout: %v", err)
			}
			if err := a.begin(ctx); err != nil {
				return err
			}
			if err := a.store.ClearSession(ctx, r); err != nil {
				return err
			}
			fmt.Fprintf(a.env.stdout, "signed out of %s\n", r)
			return nil
		},
	}
}

func (a *app) whoamiCommand() *command {
	var role string
	return &command{
		name:    "whoami",
		summary: "Show the stored session of a role after revalidating it",
		usage:   "[--role admin|meeting]",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("whoami")
			roleFlag(set, &role)
			return set
		},
		run: func(ctx context.Context, args []string) error {
			r, err := application.ParseRole(role)
			if err != nil {
				return usagef("whoami: %v", err)
			}
			if err := a.begin(ctx); err != nil {
				return err
			}
			session, err := a.guard(r).Check(ctx)
			if err != nil {
				return err
			}
			out := sessionOutput{Role: r, Username: session.Username}
			return a.render(out, out.table)
		},
	}
}

func readLine(a *app) (string, error) {
	if a.env.stdin == nil {
		return "", usagef("login: stdin is not available")
	}
	line, err := bufio.NewReader(a.env.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}
