package main

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/persistence/sqlite"
)

var userResource = resource[application.User]{
	name: "users",
	build: func(a *app, state sqlite.ScreenState) listScreen[application.User] {
		return application.NewUserScreen(a.guard(application.RoleAdmin), a.client, a.client, a.screenOptions(state))
	},
	id:      func(u application.User) string { return u.ID },
	status:  func(u application.User) application.Status { return u.Status },
	headers: []string{"ID", "NAME", "DIVISION", "DESIGNATION", "EMAIL", "STATUS"},
	row: func(u application.User) []string {
		return []string{u.ID, u.Name, u.Division, u.Designation, u.Email, u.Status.String()}
	},
}

func (a *app) usersCommand() *command {
	r := userResource
	return &command{
		name:    "users",
		summary: "Manage directory users",
		subcommands: []*command{
			listCommand(a, r),
			searchCommand(a, r),
			resetCommand(a, r),
			exportCommand(a, r),
			a.userFormCommand("create"),
			a.userFormCommand("edit"),
			deleteCommand(a, r),
			toggleCommand(a, r),
		},
	}
}

func (a *app) userFormCommand(name string) *command {
	var (
		set   *pflag.FlagSet
		draft application.UserDraft
	)
	usage := "--name NAME --email ADDRESS [--division NAME] [--designation TITLE]"
	summary := "Create a directory user"
	if name == "edit" {
		usage = "<id> [--name NAME] [--email ADDRESS] [--division NAME] [--designation TITLE]"
		summary = "Edit a directory user"
	}
	return &command{
		name:    name,
		summary: summary,
		usage:   usage,
		flags: func() *pflag.FlagSet {
			set = a.newFlagSet(name)
			set.StringVar(&draft.Name, "name", "", "display name")
			set.StringVar(&draft.Email, "email", "", "email address")
			set.StringVar(&draft.Division, "division", "", "division")
			set.StringVar(&draft.Designation, "designation", "", "designation")
			return set
		},
		run: func(ctx context.Context, args []string) error {
			var id string
			if name == "edit" {
				var err error
				if id, err = oneID("users edit", args); err != nil {
					return err
				}
			} else if len(args) > 0 {
				return usagef("users create: unexpected argument %q", args[0])
			}

			screen, err := openScreen(ctx, a, userResource)
			if err != nil {
				return err
			}
			users := screen.(*application.UserScreen)

			var form *application.UserForm
			if name == "edit" {
				current, err := userResource.find(screen, id)
				if err != nil {
					return err
				}
				form = users.NewEditForm(current, application.FormOptions{})
			} else {
				form = users.NewCreateForm(application.FormOptions{})
			}
			form.Edit(func(d *application.UserDraft) {
				if set.Changed("name") {
					d.Name = draft.Name
				}
				if set.Changed("email") {
					d.Email = draft.Email
				}
				if set.Changed("division") {
					d.Division = draft.Division
				}
				if set.Changed("designation") {
					d.Designation = draft.Designation
				}
			})
			if err := form.Submit(ctx); err != nil {
				return err
			}
			return userResource.show(a, screen, screen.List().View())
		},
	}
}
