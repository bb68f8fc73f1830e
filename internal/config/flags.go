package config

import (
	"flag"

	"github.com/nibzard/spec-view-go/internal/utils"
)

// flagValues holds global flag values until the lower layers are loaded.
// Only flags that were set on the command line are applied.
type flagValues struct {
	set map[string]bool

	root          string
	specPaths     string
	include       string
	exclude       string
	logLevel      string
	logFormat     string
	logTimestamps bool
	logCaller     bool
}

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"root":           "root",
	"spec-paths":     "spec_paths",
	"include":        "include",
	"exclude":        "exclude",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs and parses args. Flag defaults
// are shown in usage output, so they mirror the built-in defaults.
func parseFlags(fs *flag.FlagSet, args []string) (*flagValues, error) {
	if fs == nil {
		fs = flag.NewFlagSet("spec-view", flag.ContinueOnError)
	}
	fv := &flagValues{set: make(map[string]bool)}

	// Paths
	fs.StringVar(&fv.root, "root", "", "Project root (default: current directory)")
	fs.StringVar(&fv.specPaths, "spec-paths", "", "Comma-separated spec directories (default: auto-detect or specs/)")
	fs.StringVar(&fv.include, "include", "", "Comma-separated extra glob patterns to include")
	fs.StringVar(&fv.exclude, "exclude", "", "Comma-separated glob patterns to exclude")

	// Logging
	fs.StringVar(&fv.logLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&fv.logFormat, "log-format", DefaultLogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&fv.logTimestamps, "log-timestamps", false, "Show timestamps in logs")
	fs.BoolVar(&fv.logCaller, "log-caller", false, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		fv.set[f.Name] = true
	})
	return fv, nil
}

// apply copies every explicitly set flag into cfg.
func (fv *flagValues) apply(cfg *Config, sources map[string]ConfigSource) {
	for name := range fv.set {
		if field, ok := flagToSource[name]; ok && sources != nil {
			sources[field] = SourceFlag
		}
	}

	if fv.set["spec-paths"] {
		cfg.SpecPaths = utils.SplitAndTrim(fv.specPaths, ",")
	}
	if fv.set["include"] {
		cfg.Include = utils.SplitAndTrim(fv.include, ",")
	}
	if fv.set["exclude"] {
		cfg.Exclude = utils.SplitAndTrim(fv.exclude, ",")
	}
	if fv.set["log-level"] {
		cfg.LogLevel = fv.logLevel
	}
	if fv.set["log-format"] {
		cfg.LogFormat = fv.logFormat
	}
	if fv.set["log-timestamps"] {
		cfg.LogTimestamps = fv.logTimestamps
	}
	if fv.set["log-caller"] {
		cfg.LogCaller = fv.logCaller
	}
}
