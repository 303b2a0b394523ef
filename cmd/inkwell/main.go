// Package main is the entry point for the Inkwell script runner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/inkwell/internal/app"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	scriptPath string
	format     string
	query      string
	watch      bool
	logFile    string
	verbose    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}

	format, err := app.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := newLogger(cfg, opts)
	defer logger.Sync() //nolint:errcheck

	application := app.New(
		app.WithConfig(cfg),
		app.WithConfigPath(opts.configPath),
		app.WithLogger(logger),
	)

	if opts.watch {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := application.Watch(ctx, os.Stdout, opts.scriptPath, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	report, err := replay(application, opts.scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.query != "" {
		out, err := app.Query(report, opts.query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else if err := app.Render(os.Stdout, report, format, cfg.Preview); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if report.Failed() {
		return 2
	}
	return 0
}

// replay runs the script at path, or an empty script without one.
func replay(application *app.Application, path string) (*app.Report, error) {
	if path == "" {
		return application.Replay(&app.Script{})
	}
	return application.ReplayFile(path)
}

func newLogger(cfg *config.Config, opts options) *zap.Logger {
	lo := logging.Options{
		Level:      cfg.LogLevel(),
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	if opts.logFile != "" {
		lo.File = opts.logFile
	}
	if cfg.Log.Console || opts.verbose {
		lo.Console = os.Stderr
	}
	if opts.verbose {
		lo.Level = zapcore.DebugLevel
	}
	return logging.New(lo)
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.scriptPath, "script", "", "Path to the script to replay")
	flag.StringVar(&opts.scriptPath, "s", "", "Path to the script to replay (shorthand)")
	flag.StringVar(&opts.format, "format", string(app.FormatText), "Output format (text, tree, json)")
	flag.StringVar(&opts.query, "query", "", "Print the value at a JSON path of the report instead")
	flag.BoolVar(&opts.watch, "watch", false, "Replay whenever the script or config changes")
	flag.StringVar(&opts.logFile, "log", "", "Write JSON logs to this file")
	flag.BoolVar(&opts.verbose, "v", false, "Log at debug level to stderr")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Inkwell - rich-text editing engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwell [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  inkwell -script edit.yaml               Replay a script\n")
		fmt.Fprintf(os.Stderr, "  inkwell -script edit.toml -format tree  Show the document structure\n")
		fmt.Fprintf(os.Stderr, "  inkwell -script edit.yaml -watch        Replay on every save\n")
		fmt.Fprintf(os.Stderr, "  inkwell -script edit.yaml -query text   Print the final text\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Inkwell %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() > 0 && opts.scriptPath == "" {
		opts.scriptPath = flag.Arg(0)
	}
	return opts
}
