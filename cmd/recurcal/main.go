// recurcal manages repeating calendar events from the command line.
//
// Events live in a JSON file (or in memory for a single invocation) chosen by
// the configuration file. Repeating events are stored expanded: one record per
// occurrence, with the records of one series sharing a group id.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/cyp0633/recurcal/config"
	"github.com/cyp0633/recurcal/events"
	"github.com/cyp0633/recurcal/recurrence"
	"github.com/cyp0633/recurcal/storage"
	"github.com/cyp0633/recurcal/storage/file"
	"github.com/cyp0633/recurcal/storage/memory"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	engine  *recurrence.Engine
	manager *events.Manager
	stdout  io.Writer
	stderr  io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"preview":      {"describe a repeat rule", runPreview},
	"generate":     {"print the occurrence dates of a rule", runGenerate},
	"create":       {"create an event, expanding repeats", runCreate},
	"list":         {"list stored events", runList},
	"delete":       {"delete one event by id", runDelete},
	"delete-group": {"delete every instance of a series", runDeleteGroup},
	"exclude":      {"drop a date range from a series", runExclude},
	"upcoming":     {"print due reminders", runUpcoming},
	"export":       {"write events as iCalendar or xCal", runExport},
	"import":       {"read events from an iCalendar file", runImport},
}

var commandOrder = []string{
	"preview", "generate", "create", "list", "delete", "delete-group",
	"exclude", "upcoming", "export", "import",
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var configPath string
	var logLevel string

	flagSet := pflag.NewFlagSet("recurcal", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: user config dir)")
	flagSet.StringVar(&logLevel, "log-level", "", "override log.level from the config")
	flagSet.SetInterspersed(false)
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return errors.New("no command given")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}

	a, err := setup(configPath, logLevel, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.engine.Close()

	return cmd.run(ctx, a, rest[1:])
}

func setup(configPath, logLevel string, stdout, stderr io.Writer) (*app, error) {
	var cfg *config.Config
	var err error
	if configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(configPath)
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var store storage.Storage
	switch cfg.Storage.Type {
	case config.StorageMemory:
		store = memory.New()
	default:
		store = file.New(cfg.Storage.Path, logger.With("component", "storage"))
	}

	engine := recurrence.NewEngineWithConfig(cfg.EngineConfig())
	manager, err := events.NewManager(store,
		events.WithEngine(engine),
		events.WithLogger(logger.With("component", "events")))
	if err != nil {
		engine.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		engine:  engine,
		manager: manager,
		stdout:  stdout,
		stderr:  stderr,
	}, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "recurcal manages repeating calendar events.\n\nUsage:\n  recurcal [flags] <command> [command flags]\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-13s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nFlags:\n%s", flagSet.FlagUsages())
}
