package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command is one node of the roomctl command tree.
type command struct {
	// name is what the operator types.
	name string
	// summary is the one-line description shown in the parent's help.
	summary string
	// usage is the argument synopsis after the command path, e.g. "<id> [flags]".
	usage string
	// flags builds the command's flag set. Nil means the command takes none.
	flags       func() *pflag.FlagSet
	subcommands []*command
	run         func(ctx context.Context, args []string) error

	parent *command
}

// usageError reports a command line the tree could not dispatch or parse.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// execute parses args and dispatches to the matching subcommand or run.
func (c *command) execute(ctx context.Context, args []string, help io.Writer) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.printHelp(help)
		return nil
	}

	if len(c.subcommands) > 0 {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			c.printHelp(help)
			return usagef("%s: subcommand required", c.fullName())
		}
		for _, sub := range c.subcommands {
			if sub.name == args[0] {
				sub.parent = c
				return sub.execute(ctx, args[1:], help)
			}
		}
		if suggestion := suggestCommand(args[0], c.subcommands); suggestion != "" {
			return usagef("unknown command %q (did you mean %q?)", args[0], suggestion)
		}
		return usagef("unknown command %q; run '%s --help' for usage", args[0], c.fullName())
	}

	if c.flags != nil {
		set := c.flags()
		set.SetOutput(io.Discard)
		if err := set.Parse(args); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				c.printHelp(help)
				return nil
			}
			return usagef("%s: %v", c.fullName(), err)
		}
		args = set.Args()
	}
	if c.run == nil {
		return usagef("%s: nothing to run", c.fullName())
	}
	return c.run(ctx, args)
}

func (c *command) fullName() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.fullName() + " " + c.name
}

func (c *command) printHelp(w io.Writer) {
	if w == nil {
		return
	}
	usage := c.usage
	if usage == "" && len(c.subcommands) > 0 {
		usage = "<command> [flags]"
	}
	fmt.Fprintf(w, "Usage: %s %s\n", c.fullName(), usage)
	if c.summary != "" {
		fmt.Fprintf(w, "\n%s\n", c.summary)
	}
	if len(c.subcommands) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, sub := range c.subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.name, sub.summary)
		}
		_ = tw.Flush()
	}
	if c.flags != nil {
		if usages := c.flags().FlagUsages(); usages != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", usages)
		}
	}
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// suggestCommand returns the subcommand sharing the longest prefix with
// name, if any shares at least two characters.
func suggestCommand(name string, commands []*command) string {
	best, bestLen := "", 1
	for _, cmd := range commands {
		n := 0
		for n < len(name) && n < len(cmd.name) && name[n] == cmd.name[n] {
			n++
		}
		if n > bestLen {
			best, bestLen = cmd.name, n
		}
	}
	return best
}
