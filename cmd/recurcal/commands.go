package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/cyp0633/recurcal/events"
	"github.com/cyp0633/recurcal/export"
	"github.com/cyp0633/recurcal/recurrence"
)

// ruleFlags collects the repeat rule options shared by several commands
type ruleFlags struct {
	unit     string
	interval int
	until    string
	weekdays []int
	exclude  []string
}

func (r *ruleFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&r.unit, "repeat", string(recurrence.UnitNone), "none, daily, weekly, monthly or yearly")
	fs.IntVar(&r.interval, "interval", 1, "repeat every N units (1-99)")
	fs.StringVar(&r.until, "until", "", "inclusive end date YYYY-MM-DD")
	fs.IntSliceVar(&r.weekdays, "weekdays", nil, "weekly only: weekday numbers, 0=Sunday")
	fs.StringSliceVar(&r.exclude, "exclude", nil, "dates to skip, YYYY-MM-DD")
}

func (r *ruleFlags) rule() recurrence.Rule {
	return recurrence.Rule{
		Unit:         recurrence.Unit(r.unit),
		Interval:     r.interval,
		EndDate:      r.until,
		Weekdays:     r.weekdays,
		ExcludeDates: r.exclude,
	}
}

func (a *app) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func runPreview(_ context.Context, a *app, args []string) error {
	var rf ruleFlags
	fs := a.flagSet("preview")
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rule := rf.rule()
	if err := recurrence.NewValidator(nil).Check(rule); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, recurrence.FormatPreview(rule))
	return nil
}

func runGenerate(_ context.Context, a *app, args []string) error {
	var rf ruleFlags
	var date string
	fs := a.flagSet("generate")
	rf.register(fs)
	fs.StringVar(&date, "date", "", "anchor date YYYY-MM-DD (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if date == "" {
		return errors.New("--date is required")
	}

	dates, err := a.engine.Generate(rf.rule(), date)
	if err != nil {
		return err
	}
	for _, d := range dates {
		fmt.Fprintln(a.stdout, d)
	}
	return nil
}

func runCreate(ctx context.Context, a *app, args []string) error {
	var rf ruleFlags
	var ev recurrence.Event
	fs := a.flagSet("create")
	rf.register(fs)
	fs.StringVar(&ev.Title, "title", "", "event title (required)")
	fs.StringVar(&ev.Date, "date", "", "first date YYYY-MM-DD (required)")
	fs.StringVar(&ev.StartTime, "start", "", "start time HH:MM (required)")
	fs.StringVar(&ev.EndTime, "end", "", "end time HH:MM (required)")
	fs.StringVar(&ev.Description, "description", "", "description")
	fs.StringVar(&ev.Location, "location", "", "location")
	fs.StringVar(&ev.Category, "category", "", "category")
	fs.IntVar(&ev.NotificationTime, "notify", 10, "reminder lead time in minutes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if ev.Title == "" || ev.Date == "" {
		return errors.New("--title and --date are required")
	}
	ev.Repeat = rf.rule()

	if stored, err := a.manager.List(ctx); err == nil {
		for _, hit := range events.Overlaps(stored, ev) {
			a.logger.Warn("event overlaps an existing event",
				"id", hit.ID,
				"title", hit.Title,
				"date", hit.Date,
				"start", hit.StartTime,
				"end", hit.EndTime)
		}
	}

	created, err := a.manager.Create(ctx, ev)
	if err != nil {
		return err
	}
	if group := created[0].Repeat.GroupID; group != "" {
		fmt.Fprintf(a.stdout, "created %d events in group %s (%s)\n", len(created), group, recurrence.FormatPreview(created[0].Repeat))
	} else {
		fmt.Fprintf(a.stdout, "created event %s\n", created[0].ID)
	}
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	var group string
	fs := a.flagSet("list")
	fs.StringVar(&group, "group", "", "only list instances of this series")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var list []recurrence.Event
	var err error
	if group != "" {
		list, err = a.manager.Group(ctx, group)
	} else {
		list, err = a.manager.List(ctx)
	}
	if err != nil {
		return err
	}

	slices.SortStableFunc(list, func(x, y recurrence.Event) int {
		if c := strings.Compare(x.Date, y.Date); c != 0 {
			return c
		}
		return strings.Compare(x.StartTime, y.StartTime)
	})
	for _, ev := range list {
		line := fmt.Sprintf("%s %s-%s %s\t%s", ev.Date, ev.StartTime, ev.EndTime, ev.Title, ev.ID)
		if ev.Repeat.GroupID != "" {
			line += "\tgroup=" + ev.Repeat.GroupID
		}
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: recurcal delete <event-id>")
	}
	if err := a.manager.DeleteEvent(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted event %s\n", args[0])
	return nil
}

func runDeleteGroup(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: recurcal delete-group <group-id>")
	}
	n, err := a.manager.DeleteGroup(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted %d events\n", n)
	return nil
}

func runExclude(ctx context.Context, a *app, args []string) error {
	var group, from, to string
	fs := a.flagSet("exclude")
	fs.StringVar(&group, "group", "", "series group id (required)")
	fs.StringVar(&from, "from", "", "first excluded date YYYY-MM-DD (required)")
	fs.StringVar(&to, "to", "", "last excluded date YYYY-MM-DD (default: --from)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if group == "" || from == "" {
		return errors.New("--group and --from are required")
	}
	if to == "" {
		to = from
	}

	n, err := a.manager.ExcludeFromGroup(ctx, group, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "removed %d events\n", n)
	return nil
}

func runUpcoming(ctx context.Context, a *app, args []string) error {
	var at string
	fs := a.flagSet("upcoming")
	fs.StringVar(&at, "now", "", "reference time, RFC 3339 (default: current time)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	now := time.Now()
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = t
	}

	list, err := a.manager.List(ctx)
	if err != nil {
		return err
	}
	for _, ev := range events.Upcoming(list, now, nil) {
		fmt.Fprintln(a.stdout, events.NotificationMessage(ev))
	}
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	var format, output string
	fs := a.flagSet("export")
	fs.StringVarP(&format, "format", "f", "ics", "ics (one VEVENT per instance), series (RRULE per series) or xcal")
	fs.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := a.manager.List(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = a.stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	now := time.Now()
	switch format {
	case "ics":
		err = export.WriteICS(w, list, now)
	case "series":
		err = export.WriteSeriesICS(w, list, a.engine, now)
	case "xcal":
		err = export.WriteXCal(w, list, now)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	a.logger.Debug("exported events", "format", format, "count", len(list))
	return nil
}

func runImport(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: recurcal import <file.ics>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	imported, err := export.ReadICS(f)
	if err != nil {
		return err
	}

	total := 0
	for _, ev := range imported {
		created, err := a.manager.Create(ctx, ev)
		if err != nil {
			return fmt.Errorf("import %q: %w", ev.Title, err)
		}
		total += len(created)
	}
	fmt.Fprintf(a.stdout, "imported %d events\n", total)
	return nil
}
