package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/persistence/sqlite"
)

// listScreen is what the list commands need from an admin screen.
type listScreen[T any] interface {
	Mount(ctx context.Context) error
	Profile() application.AdminProfile
	List() *application.ListController[T]
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context) (application.Artifact, error)
	Toggle(ctx context.Context, id string, current application.Status) error
}

// resource describes one admin list screen to the generic commands.
type resource[T any] struct {
	// name is the command group and the scope of remembered settings.
	name       string
	categories []string
	build      func(a *app, state sqlite.ScreenState) listScreen[T]
	id         func(T) string
	status     func(T) application.Status
	headers    []string
	row        func(T) []string
}

// openScreen mounts the screen and replays the remembered search.
func openScreen[T any](ctx context.Context, a *app, r resource[T]) (listScreen[T], error) {
	if err := a.begin(ctx); err != nil {
		return nil, err
	}
	state, err := a.store.ScreenState(ctx, r.name)
	if err != nil {
		return nil, err
	}
	screen := r.build(a, state)
	if err := screen.Mount(ctx); err != nil {
		return nil, err
	}
	if state.Filtered() {
		// The replayed search is not news to the operator.
		quiet := application.WithNotifier(ctx, &application.NoticeBoard{})
		if _, err := screen.List().Search(quiet, state.Filter); err != nil {
			return nil, err
		}
	}
	return screen, nil
}

func (r resource[T]) page(screen listScreen[T], page application.Page[T]) (pageOutput[T], func() table) {
	filter := screen.List().Filter()
	out := newPageOutput(screen.Profile().Username, filter, page)
	return out, func() table {
		rows := make([][]string, 0, len(page.Items))
		for _, item := range page.Items {
			rows = append(rows, r.row(item))
		}
		return table{
			headers: r.headers,
			rows:    rows,
			footer:  pageFooter(page.Number, page.TotalPages, page.TotalItems, page.Size, filter),
		}
	}
}

func (r resource[T]) show(a *app, screen listScreen[T], page application.Page[T]) error {
	out, tbl := r.page(screen, page)
	return a.render(out, tbl)
}

func (r resource[T]) find(screen listScreen[T], id string) (T, error) {
	for _, item := range screen.List().Items() {
		if r.id(item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %q is not in the current list; run 'roomctl %s reset' to clear the search", strings.TrimSuffix(r.name, "s"), id, r.name)
}

func oneID(name string, args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", usagef("%s: exactly one record id is required", name)
	}
	return strings.TrimSpace(args[0]), nil
}

func listCommand[T any](a *app, r resource[T]) *command {
	var page, size int
	return &command{
		name:    "list",
		summary: "Show one page of the list; --size is remembered",
		usage:   "[--page N] [--size N]",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("list")
			set.IntVar(&page, "page", 0, "page number")
			set.IntVar(&size, "size", 0, "page size")
			return set
		},
		run: func(ctx context.Context, args []string) error {
			screen, err := openScreen(ctx, a, r)
			if err != nil {
				return err
			}
			list := screen.List()
			if size > 0 {
				if err := list.SetPageSize(size); err != nil {
					return err
				}
				if err := a.store.SavePageSize(ctx, r.name, size); err != nil {
					return err
				}
			}
			view := list.View()
			if page > 0 {
				view = list.GoTo(page)
			}
			return r.show(a, screen, view)
		},
	}
}

func searchCommand[T any](a *app, r resource[T]) *command {
	var category, text string
	return &command{
		name:    "search",
		summary: "Search the backend; the filter is remembered until reset",
		usage:   "--text TEXT [--category NAME]",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("search")
			set.StringVar(&text, "text", "", "search text")
			if len(r.categories) > 0 {
				set.StringVar(&category, "category", "", "field to search: "+strings.Join(r.categories, ", "))
			}
			return set
		},
		run: func(ctx context.Context, args []string) error {
			if strings.TrimSpace(text) == "" {
				return usagef("%s search: --text is required", r.name)
			}
			if category != "" && len(r.categories) > 0 && !containsFold(r.categories, category) {
				return usagef("%s search: unknown category %q", r.name, category)
			}
			screen, err := openScreen(ctx, a, r)
			if err != nil {
				return err
			}
			filter := application.Filter{Category: canonical(r.categories, category), Text: text}
			if _, err := screen.List().Search(ctx, filter); err != nil {
				return err
			}
			if err := a.store.SaveFilter(ctx, r.name, filter); err != nil {
				return err
			}
			return r.show(a, screen, screen.List().View())
		},
	}
}

func resetCommand[T any](a *app, r resource[T]) *command {
	return &command{
		name:    "reset",
		summary: "Clear the search and restore the default page size",
		flags:   func() *pflag.FlagSet { return a.newFlagSet("reset") },
		run: func(ctx context.Context, args []string) error {
			screen, err := openScreen(ctx, a, r)
			if err != nil {
				return err
			}
			if err := a.store.ForgetScreen(ctx, r.name); err != nil {
				return err
			}
			if _, err := screen.List().Reset(ctx); err != nil {
				return err
			}
			// Later invocations keep the restored size instead of the
			// screen's starting one.
			if err := a.store.SavePageSize(ctx, r.name, screen.List().PageSize()); err != nil {
				return err
			}
			return r.show(a, screen, screen.List().View())
		},
	}
}

func exportCommand[T any](a *app, r resource[T]) *command {
	var file string
	return &command{
		name:    "export",
		summary: "Write the whole current list to an xlsx workbook",
		usage:   "[--file PATH]",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("export")
			set.StringVar(&file, "file", "", "destination; defaults to the workbook's name in the working directory")
			return set
		},
		run: func(ctx context.Context, args []string) error {
			screen, err := openScreen(ctx, a, r)
			if err != nil {
				return err
			}
			artifact, err := screen.Export(ctx)
			if errors.Is(err, application.ErrNothingToExport) {
				return nil
			}
			if err != nil {
				return err
			}
			path := file
			if path == "" {
				path = artifact.FileName
			}
			if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			fmt.Fprintln(a.env.stdout, abs)
			return nil
		},
	}
}

func deleteCommand[T any](a *app, r resource[T]) *command {
	return &command{
		name:    "delete",
		summary: "Delete a record",
		usage:   "<id>",
		flags:   func() *pflag.FlagSet { return a.newFlagSet("delete") },
		run: func(ctx context.Context, args []string) error {
			id, err := oneID(r.name+" delete", args)
			if err != nil {
				return err
			}
			screen, err := openScreen(ctx, a, r)
			if err != nil {
				return err
			}
			if err := screen.Delete(ctx, id); err != nil {
				return err
			}
			return r.show(a, screen, screen.List().View())
		},
	}
}

func toggleCommand[T any](a *app, r resource[T]) *command {
	return &command{
		name:    "toggle",
		summary: "Enable a disabled record or disable an enabled one",
		usage:   "<id>",
		flags:   func() *pflag.FlagSet { return a.newFlagSet("toggle") },
		run: func(ctx context.Context, args []string) error {
			id, err := oneID(r.name+" toggle", args)
			if err != nil {
				return err
			}
			screen, err := openScreen(ctx, a, r)
			if err != nil {
				return err
			}
			current, err := r.find(screen, id)
			if err != nil {
				return err
			}
			if err := screen.Toggle(ctx, id, r.status(current)); err != nil {
				return err
			}
			return r.show(a, screen, screen.List().View())
		},
	}
}

func containsFold(values []string, want string) bool {
	return canonical(values, want) != ""
}

// canonical returns the entry of values equal to want ignoring case.
func canonical(values []string, want string) string {
	for _, v := range values {
		if strings.EqualFold(v, strings.TrimSpace(want)) {
			return v
		}
	}
	return ""
}
