// calgrid is a terminal client for a calendar backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/cpuguy83/calgrid/internal/config"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{
	"login":     {"login [-email addr] [-password pw]", runLogin},
	"register":  {"register -name name [-email addr] [-password pw]", runRegister},
	"google":    {"google -credential id-token", runGoogle},
	"logout":    {"logout", runLogout},
	"whoami":    {"whoami", runWhoami},
	"view":      {"view [-mode day|week|month|schedule] [-date 2006-01-02] [-prev|-next|-today]", runView},
	"calendars": {"calendars list|create|update|delete|toggle|share|shares|unshare", runCalendars},
	"events":    {"events create|edit|delete|show", runEvents},
	"search":    {"search query", runSearch},
	"export":    {"export [-o file.ics]", runExport},
	"import":    {"import [-calendar id] file.ics", runImport},
	"pick":      {"pick [-open] [view flags]", runPick},
	"watch":     {"watch [-q]", runWatch},
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: calgrid [-config path] [-v] <command> [args]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(flag.CommandLine.Output(), "  %s\n", commands[name].usage)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nflags:\n")
	flag.PrintDefaults()
}

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: ~/.config/calgrid/config.yaml)")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Usage = usage
	flag.Parse()

	// Setup logging
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "calgrid: unknown command %q\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Debug("config loaded", "api", cfg.API.URL, "timezone", cfg.Events.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, os.Stdout, os.Stdin)
	if err := cmd.run(ctx, app, flag.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error(flag.Arg(0)+" failed", "error", err)
		os.Exit(1)
	}
}
