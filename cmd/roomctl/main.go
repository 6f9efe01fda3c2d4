// Command roomctl is the operator CLI of the meeting-room booking console.
// Credentials and remembered screen settings live in a local SQLite file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], environment{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin})
	stop()
	os.Exit(code)
}

// run executes one roomctl invocation and returns its exit code: 0 on
// success, 2 for usage errors, 1 otherwise.
func run(ctx context.Context, args []string, env environment) int {
	a := newApp(env)
	defer a.close()

	global := a.newFlagSet("roomctl")
	global.SetInterspersed(false)
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			a.root().printHelp(a.env.stderr)
			return 0
		}
		fmt.Fprintf(a.env.stderr, "roomctl: %v\n", err)
		return 2
	}

	err := a.root().execute(ctx, global.Args(), a.env.stderr)
	a.flushNotices()
	if err == nil {
		return 0
	}
	fmt.Fprintf(a.env.stderr, "roomctl: %s\n", describe(err))
	var uErr *usageError
	if errors.As(err, &uErr) {
		return 2
	}
	return 1
}

// newFlagSet returns a flag set carrying the flags every command accepts.
func (a *app) newFlagSet(name string) *pflag.FlagSet {
	set := pflag.NewFlagSet(name, pflag.ContinueOnError)
	set.SetOutput(io.Discard)
	set.StringVarP(&a.output, "output", "o", a.output, "output format: table, json, or yaml")
	set.BoolVarP(&a.verbose, "verbose", "v", a.verbose, "log debug output to stderr")
	return set
}

// begin validates the shared flags and opens the invocation's dependencies.
func (a *app) begin(ctx context.Context) error {
	format, err := parseFormat(a.output)
	if err != nil {
		return err
	}
	a.output = format
	return a.open(ctx)
}

func (a *app) root() *command {
	return &command{
		name:    "roomctl",
		summary: "Administer meeting accounts, directory users, and meeting schedules.",
		subcommands: []*command{
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.meetingsCommand(),
			a.usersCommand(),
			a.scheduleCommand(),
		},
	}
}
