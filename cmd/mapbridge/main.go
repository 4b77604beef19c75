// Package main is the entry point for the mapbridge host.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/app"
	"github.com/dshills/mapbridge/internal/config"
	"github.com/dshills/mapbridge/internal/hud"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath   string
	maps         string
	scriptPath   string
	actionsPath  string
	logLevel     string
	hud          bool
	watch        bool
	allowReplace bool
	set          map[string]bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	applyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	// Ensure cleanup on all exit paths
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: shutdown: %v\n", err)
		}
	}()

	for _, id := range mapIDs(opts.maps) {
		if _, err := application.NewMap(id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.watch {
		if opts.scriptPath == "" {
			fmt.Fprintf(os.Stderr, "Error: -watch requires -script\n")
			return 1
		}
		// Rerun the script on every save until interrupted.
		if err := application.WatchScript(ctx, opts.scriptPath, 0); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if opts.scriptPath != "" {
		if err := application.RunScript(ctx, opts.scriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.actionsPath != "" {
		if err := replay(ctx, application, opts.actionsPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if cfg.HUD {
		// Keep the display up until interrupted.
		<-ctx.Done()
		return 0
	}

	for _, view := range application.State().Views() {
		fmt.Println(strings.TrimSpace(hud.FormatRow(view)))
	}
	return 0
}

func replay(ctx context.Context, application *app.Application, path string) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	n, err := application.Replay(ctx, r)
	application.Logger().Info("replayed %d actions from %s", n, path)
	return err
}

// mapIDs splits a comma-separated id list. An empty list yields one
// generated id.
func mapIDs(list string) []action.MapID {
	var ids []action.MapID
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, action.MapID(part))
		}
	}
	if len(ids) == 0 {
		ids = append(ids, action.MapID(uuid.NewString()))
	}
	return ids
}

// applyOverrides copies explicitly set flags over the loaded configuration.
func applyOverrides(cfg *config.Config, opts options) {
	if opts.set["log-level"] {
		cfg.LogLevel = opts.logLevel
	}
	if opts.set["hud"] {
		cfg.HUD = opts.hud
	}
	if opts.set["allow-replace"] {
		cfg.AllowReplace = opts.allowReplace
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.maps, "maps", "", "Comma-separated map ids to create (default: one generated id)")
	flag.StringVar(&opts.scriptPath, "script", "", "Lua script to run after the maps are attached")
	flag.StringVar(&opts.scriptPath, "s", "", "Lua script to run (shorthand)")
	flag.StringVar(&opts.actionsPath, "actions", "", "JSON-lines action file to replay, or - for stdin")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.hud, "hud", false, "Show the terminal display until interrupted")
	flag.BoolVar(&opts.watch, "watch", false, "Rerun the script whenever it changes, until interrupted")
	flag.BoolVar(&opts.allowReplace, "allow-replace", false, "Let a new map take over an id that is in use")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "mapbridge - drive map widgets through a unidirectional store\n\n")
		fmt.Fprintf(os.Stderr, "Usage: mapbridge [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mapbridge -maps main -s tour.lua          Run a script against map main\n")
		fmt.Fprintf(os.Stderr, "  mapbridge -maps a,b -actions actions.jsonl  Replay recorded actions\n")
		fmt.Fprintf(os.Stderr, "  mapbridge -maps main -actions - -hud       Stream actions from stdin\n")
		fmt.Fprintf(os.Stderr, "  mapbridge -maps main -s tour.lua -watch -hud  Live-edit a script\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("mapbridge %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})

	return opts
}
