package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/availability"
)

const defaultUpcoming = 5

type scheduleOutput struct {
	application.ScheduleView `yaml:",inline"`
	Upcoming                 []availability.Slot `json:"upcoming" yaml:"upcoming"`
}

func (s scheduleOutput) table() table {
	saved := s.Saved
	rows := [][]string{
		{"meeting", s.Profile.Username},
		{"days", strings.Join(saved.Days, ", ")},
		{"window", saved.StartTime + "-" + saved.EndTime},
		{"pending requests", strconv.Itoa(s.PendingCount)},
	}
	if saved.Empty() {
		rows[1][1], rows[2][1] = "(none)", "(none)"
	}
	for _, slot := range s.Upcoming {
		rows = append(rows, []string{"next", slot.Start.Format("Mon 02 Jan 15:04") + "-" + slot.End.Format("15:04")})
	}
	return table{headers: []string{"SCHEDULE", ""}, rows: rows}
}

func (a *app) scheduleCommand() *command {
	return &command{
		name:    "schedule",
		summary: "Show or set the signed in meeting account's weekly availability",
		subcommands: []*command{
			a.scheduleShowCommand(),
			a.scheduleSetCommand(),
		},
	}
}

func (a *app) scheduleShowCommand() *command {
	upcoming := defaultUpcoming
	return &command{
		name:    "show",
		summary: "Show the saved schedule and its next occurrences",
		usage:   "[--upcoming N]",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("show")
			set.IntVar(&upcoming, "upcoming", defaultUpcoming, "number of upcoming slots to preview")
			return set
		},
		run: func(ctx context.Context, args []string) error {
			if err := a.begin(ctx); err != nil {
				return err
			}
			dashboard := a.dashboard()
			if err := dashboard.Mount(ctx); err != nil {
				return err
			}
			return a.showSchedule(ctx, dashboard, upcoming)
		},
	}
}

func (a *app) scheduleSetCommand() *command {
	var (
		days       []string
		start, end string
	)
	return &command{
		name:    "set",
		summary: "Add the schedule, or update it when one is saved",
		usage:   "--days Mon,Fri --start HH:MM --end HH:MM",
		flags: func() *pflag.FlagSet {
			set := a.newFlagSet("set")
			set.StringSliceVar(&days, "days", nil, "comma separated weekdays")
			set.StringVar(&start, "start", "", "window start, HH:MM")
			set.StringVar(&end, "end", "", "window end, HH:MM")
			return set
		},
		run: func(ctx context.Context, args []string) error {
			if err := a.begin(ctx); err != nil {
				return err
			}
			dashboard := a.dashboard()
			if err := dashboard.Mount(ctx); err != nil {
				return err
			}
			if err := dashboard.SetDays(days); err != nil {
				return err
			}
			dashboard.SetWindow(start, end)
			if err := dashboard.Submit(ctx); err != nil {
				return err
			}
			return a.showSchedule(ctx, dashboard, defaultUpcoming)
		},
	}
}

func (a *app) showSchedule(ctx context.Context, dashboard *application.ScheduleDashboard, n int) error {
	slots, err := dashboard.Upcoming(n)
	if err != nil {
		a.logger.WarnContext(ctx, "saved schedule cannot be previewed", "error", err)
	}
	if slots == nil {
		slots = []availability.Slot{}
	}
	out := scheduleOutput{ScheduleView: dashboard.View(), Upcoming: slots}
	return a.render(out, out.table)
}
