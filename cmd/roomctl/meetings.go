package main

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/persistence/sqlite"
)

var meetingResource = resource[application.Meeting]{
	name:       "meetings",
	categories: application.MeetingCategories(),
	build: func(a *app, state sqlite.ScreenState) listScreen[application.Meeting] {
		return application.NewMeetingScreen(a.guard(application.RoleAdmin), a.client, a.client, a.screenOptions(state))
	},
	id:      func(m application.Meeting) string { return m.ID },
	status:  func(m application.Meeting) application.Status { return m.Status },
	headers: []string{"ID", "ROOM", "APPROVER", "USERNAME", "WINDOW", "DAYS", "STATUS"},
	row: func(m application.Meeting) []string {
		window := ""
		if m.StartTime != "" || m.EndTime != "" {
			window = m.StartTime + "-" + m.EndTime
		}
		return []string{m.ID, m.RoomName, m.AuthorityName, m.Username, window, m.DaysLabel(), m.Status.String()}
	},
}

func (a *app) meetingsCommand() *command {
	r := meetingResource
	return &command{
		name:    "meetings",
		summary: "Manage meeting accounts",
		subcommands: []*command{
			listCommand(a, r),
			searchCommand(a, r),
			resetCommand(a, r),
			exportCommand(a, r),
			a.meetingFormCommand("create"),
			a.meetingFormCommand("edit"),
			deleteCommand(a, r),
			toggleCommand(a, r),
		},
	}
}

// meetingFormCommand builds "create" and "edit". Edit only changes the
// fields given on the command line.
func (a *app) meetingFormCommand(name string) *command {
	var (
		set   *pflag.FlagSet
		draft application.MeetingDraft
	)
	usage := "--room NAME --approver NAME --username NAME --password PASS [--start HH:MM --end HH:MM --days Mon,Fri]"
	summary := "Create a meeting account"
	if name == "edit" {
		usage = "<id> [--room NAME] [--approver NAME] [--username NAME] [--password PASS] [--start HH:MM] [--end HH:MM] [--days Mon,Fri]"
		summary = "Edit a meeting account"
	}
	return &command{
		name:    name,
		summary: summary,
		usage:   usage,
		flags: func() *pflag.FlagSet {
			set = a.newFlagSet(name)
			set.StringVar(&draft.RoomName, "room", "", "room name")
			set.StringVar(&draft.AuthorityName, "approver", "", "approver (authority) name")
			set.StringVar(&draft.Username, "username", "", "meeting username, no spaces")
			set.StringVar(&draft.Password, "password", "", "meeting password, no spaces")
			set.StringVar(&draft.StartTime, "start", "", "window start, HH:MM")
			set.StringVar(&draft.EndTime, "end", "", "window end, HH:MM")
			set.StringSliceVar(&draft.Days, "days", nil, "comma separated weekdays")
			return set
		},
		run: func(ctx context.Context, args []string) error {
			var id string
			if name == "edit" {
				var err error
				if id, err = oneID("meetings edit", args); err != nil {
					return err
				}
			} else if len(args) > 0 {
				return usagef("meetings create: unexpected argument %q", args[0])
			}

			screen, err := openScreen(ctx, a, meetingResource)
			if err != nil {
				return err
			}
			meetings := screen.(*application.MeetingScreen)

			var form *application.MeetingForm
			if name == "edit" {
				current, err := meetingResource.find(screen, id)
				if err != nil {
					return err
				}
				form = meetings.NewEditForm(current, application.FormOptions{})
			} else {
				form = meetings.NewCreateForm(application.FormOptions{})
			}
			form.Edit(func(d *application.MeetingDraft) { applyMeetingFlags(set, draft, d) })
			if err := form.Submit(ctx); err != nil {
				return err
			}
			return meetingResource.show(a, screen, screen.List().View())
		},
	}
}

func applyMeetingFlags(set *pflag.FlagSet, from application.MeetingDraft, to *application.MeetingDraft) {
	if set.Changed("room") {
		to.RoomName = from.RoomName
	}
	if set.Changed("approver") {
		to.AuthorityName = from.AuthorityName
	}
	if set.Changed("username") {
		to.Username = from.Username
	}
	if set.Changed("password") {
		to.Password = from.Password
	}
	if set.Changed("start") {
		to.StartTime = strings.TrimSpace(from.StartTime)
	}
	if set.Changed("end") {
		to.EndTime = strings.TrimSpace(from.EndTime)
	}
	if set.Changed("days") {
		to.Days = append([]string(nil), from.Days...)
	}
}
