package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/spec-view-go/internal/logging"
	"github.com/nibzard/spec-view-go/internal/specdir"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.spec-view/config.yaml or OS-specific config dir)
// 3. Project config file (<root>/.spec-view/config.yaml)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range Fields() {
		sources[field] = SourceDefault
	}

	// Flags are parsed up front because -root decides which project file
	// applies. Their values are applied last.
	flags, err := parseFlags(fs, args)
	if err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	root, err := resolveRoot(flags, sources)
	if err != nil {
		return nil, err
	}
	cfg.Root = root

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(root); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		cfg.ConfigFile = projectConfigFile
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. CLI flags override everything
	flags.apply(cfg, sources)

	// 6. Compute derived values
	if err := finalizeConfig(cfg, sources); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
	}, nil
}

// Fields returns the configurable field names used as keys for source
// tracking, in display order.
func Fields() []string {
	return []string{
		"root",
		"spec_paths",
		"include",
		"exclude",
		"serve.port",
		"serve.open_browser",
		"statuses",
		"history.limit",
		"watch.debounce_ms",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// resolveRoot picks the project root from -root, SPEC_VIEW_ROOT or the
// working directory, in that order.
func resolveRoot(flags *flagValues, sources map[string]ConfigSource) (string, error) {
	root := ""
	switch {
	case flags.set["root"] && flags.root != "":
		root = flags.root
		sources["root"] = SourceFlag
	case envRoot() != "":
		root = envRoot()
		sources["root"] = SourceEnv
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(expandPath(root))
	if err != nil {
		return "", fmt.Errorf("resolving project root %s: %w", root, err)
	}
	return abs, nil
}

// decodeFile decodes a YAML or TOML config file, chosen by extension.
func decodeFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, fc); err != nil {
			return nil, err
		}
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, err
	}
	return fc, nil
}

// loadConfigFile loads a config file and updates source tracking for every
// key the file sets.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	fc, err := decodeFile(path)
	if err != nil {
		return err
	}
	set := func(field string) {
		if sources != nil {
			sources[field] = source
		}
	}

	if fc.SpecPaths != nil {
		cfg.SpecPaths = fc.SpecPaths
		set("spec_paths")
	}
	if fc.Include != nil {
		cfg.Include = fc.Include
		set("include")
	}
	if fc.Exclude != nil {
		cfg.Exclude = fc.Exclude
		set("exclude")
	}
	if fc.Statuses != nil {
		cfg.Statuses = fc.Statuses
		set("statuses")
	}
	if fc.Serve != nil {
		if fc.Serve.Port != nil {
			cfg.Serve.Port = *fc.Serve.Port
			set("serve.port")
		}
		if fc.Serve.OpenBrowser != nil {
			cfg.Serve.OpenBrowser = *fc.Serve.OpenBrowser
			set("serve.open_browser")
		}
	}
	if fc.History != nil && fc.History.Limit != nil {
		cfg.History.Limit = *fc.History.Limit
		set("history.limit")
	}
	if fc.Watch != nil && fc.Watch.DebounceMS != nil {
		cfg.Watch.DebounceMS = *fc.Watch.DebounceMS
		set("watch.debounce_ms")
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
		set("log_level")
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
		set("log_format")
	}
	if fc.LogTimestamps != nil {
		cfg.LogTimestamps = *fc.LogTimestamps
		set("log_timestamps")
	}
	if fc.LogCaller != nil {
		cfg.LogCaller = *fc.LogCaller
		set("log_caller")
	}
	return nil
}

// finalizeConfig validates values and auto-detects spec paths when no
// layer named any.
func finalizeConfig(cfg *Config, sources map[string]ConfigSource) error {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory", cfg.Root)
	}

	cfg.SpecPaths = expandSpecPaths(cfg.SpecPaths)

	var errs []error
	if cfg.Serve.Port < 0 || cfg.Serve.Port > 65535 {
		errs = append(errs, fmt.Errorf("serve.port %d out of range", cfg.Serve.Port))
	}
	if cfg.History.Limit < 0 {
		errs = append(errs, fmt.Errorf("history.limit must not be negative, got %d", cfg.History.Limit))
	}
	if cfg.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms must not be negative, got %d", cfg.Watch.DebounceMS))
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log_level %q", cfg.LogLevel))
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		errs = append(errs, fmt.Errorf("unknown log_format %q", cfg.LogFormat))
	}
	if len(cfg.SpecPaths) == 0 && len(cfg.Include) == 0 {
		errs = append(errs, errors.New("spec_paths and include are both empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if cfg.ConfigFile == "" && sources["spec_paths"] == SourceDefault {
		detected, err := specdir.Detect(cfg.Root)
		if err != nil {
			return fmt.Errorf("detecting spec directories: %w", err)
		}
		if len(detected) > 0 {
			cfg.SpecPaths = specdir.Paths(detected)
			cfg.Detected = detected
			cfg.AutoDetected = true
			sources["spec_paths"] = SourceDetected
		}
	}
	return nil
}
