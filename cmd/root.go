// Package cmd implements the CLI command structure for spec-view.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/spec-view-go/internal/config"
	"github.com/nibzard/spec-view-go/internal/logging"
	"github.com/nibzard/spec-view-go/internal/scanner"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams. Tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// env bundles what every subcommand needs.
type env struct {
	cfg     *config.Config
	sources map[string]config.ConfigSource
	logger  *log.Logger
}

// scan runs one scan with the configured paths.
func (e *env) scan() (*scanner.Result, error) {
	return scanner.Scan(scanner.Options{
		Root:      e.cfg.Root,
		SpecPaths: e.cfg.SpecPaths,
		Include:   e.cfg.Include,
		Exclude:   e.cfg.Exclude,
		Logger:    e.logger,
	})
}

// Run executes the spec-view CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("spec-view", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	cfg := cws.Config
	e := &env{
		cfg:     cfg,
		sources: cws.Sources,
		logger:  logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
	}
	if cfg.AutoDetected {
		e.logger.Info("auto-detected spec locations", "paths", strings.Join(cfg.SpecPaths, ", "))
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "tui" as default
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, e, remainingArgs)
	case "list", "ls":
		return listCommand(e, remainingArgs)
	case "serve":
		return serveCommand(ctx, e, remainingArgs)
	case "watch":
		return watchCommand(ctx, e, remainingArgs)
	case "history":
		return historyCommand(ctx, e, remainingArgs)
	case "validate":
		return validateCommand(e, remainingArgs)
	case "detect":
		return detectCommand(e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	case "init":
		return initCommand(e, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// noArgs rejects positional arguments left after flag parsing.
func noArgs(fs *flag.FlagSet) error {
	if rest := fs.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}
	return nil
}

// relTo returns path relative to root with forward slashes, or path itself
// when it is not below root.
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "spec-view version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "spec-view - A dashboard for spec-driven development")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  spec-view [options] [command] [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui           Launch the terminal dashboard (default command)")
	fmt.Fprintln(w, "  list, ls      List spec groups with status and progress")
	fmt.Fprintln(w, "  serve         Start the web dashboard")
	fmt.Fprintln(w, "  watch         Rescan on every change and print a summary line")
	fmt.Fprintln(w, "  history       Show recent commits and the plan tasks they completed")
	fmt.Fprintln(w, "  validate      Check spec files for common format issues")
	fmt.Fprintln(w, "  detect        Show every spec location found in the project")
	fmt.Fprintln(w, "  config        Show, save or check the configuration")
	fmt.Fprintln(w, "  init          Create specs/ with an example spec group")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tui Options:")
	fmt.Fprintln(w, "  -no-watch     Do not rescan when spec files change")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options:")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Filter by status (draft|ready|in-progress|done|blocked)")
	fmt.Fprintln(w, "  -tag string")
	fmt.Fprintln(w, "        Filter by tag")
	fmt.Fprintln(w, "  -v    Show tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve Options:")
	fmt.Fprintln(w, "  -port int")
	fmt.Fprintln(w, "        Port to serve on (default 8080)")
	fmt.Fprintln(w, "  -host string")
	fmt.Fprintln(w, "        Interface to bind (default 127.0.0.1)")
	fmt.Fprintln(w, "  -no-browser")
	fmt.Fprintln(w, "        Do not open a browser")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "History Options:")
	fmt.Fprintln(w, "  -n int        Number of commits to read (default 50)")
	fmt.Fprintln(w, "  -json         Print commits as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -save         Write the effective spec paths to .spec-view/config.yaml")
	fmt.Fprintln(w, "  -check [file] Validate a config file (default: the project config file)")
	fmt.Fprintln(w, "  -example      Print an example config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Init Options:")
	fmt.Fprintln(w, "  -force        Overwrite existing example files")
}
