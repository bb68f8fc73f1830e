package config

import (
	"time"

	"github.com/nibzard/spec-view-go/internal/specdir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
	SourceDetected ConfigSource = "auto-detected"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultSpecPath     = "specs/"
	DefaultPort         = 8080
	DefaultOpenBrowser  = true
	DefaultHistoryLimit = 50
	DefaultDebounceMS   = 300
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// DefaultExclude returns the default exclude patterns.
func DefaultExclude() []string {
	return []string{"**/node_modules/**", "**/.git/**"}
}

// DefaultStatuses returns the status names shown by the dashboards.
func DefaultStatuses() []string {
	return []string{"draft", "ready", "in-progress", "done", "blocked"}
}

// Config holds the full configuration for spec-view.
type Config struct {
	// Root is the project root. It is never read from a config file.
	Root string `yaml:"-" toml:"-" json:"-"`

	// Discovery
	SpecPaths []string `yaml:"spec_paths" toml:"spec_paths" json:"spec_paths"`
	Include   []string `yaml:"include" toml:"include" json:"include"`
	Exclude   []string `yaml:"exclude" toml:"exclude" json:"exclude"`

	Serve   ServeConfig   `yaml:"serve" toml:"serve" json:"serve"`
	History HistoryConfig `yaml:"history" toml:"history" json:"history"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch" json:"watch"`

	// Statuses is informational; the parser keeps its own status set.
	Statuses []string `yaml:"statuses" toml:"statuses" json:"statuses"`

	// Logging configuration
	LogLevel      string `yaml:"log_level" toml:"log_level" json:"log_level"`
	LogFormat     string `yaml:"log_format" toml:"log_format" json:"log_format"`
	LogTimestamps bool   `yaml:"log_timestamps" toml:"log_timestamps" json:"log_timestamps"`
	LogCaller     bool   `yaml:"log_caller" toml:"log_caller" json:"log_caller"`

	// AutoDetected is set when SpecPaths came from specdir.Detect.
	AutoDetected bool             `yaml:"-" toml:"-" json:"-"`
	Detected     []specdir.Source `yaml:"-" toml:"-" json:"-"`

	// ConfigFile is the project config file that was loaded, if any.
	ConfigFile string `yaml:"-" toml:"-" json:"-"`
}

// ServeConfig configures the web dashboard.
type ServeConfig struct {
	Port        int  `yaml:"port" toml:"port" json:"port"`
	OpenBrowser bool `yaml:"open_browser" toml:"open_browser" json:"open_browser"`
}

// HistoryConfig configures the git history view.
type HistoryConfig struct {
	Limit int `yaml:"limit" toml:"limit" json:"limit"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms" json:"debounce_ms"`
}

// Debounce returns the watcher debounce interval.
func (c *Config) Debounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// fileConfig mirrors Config for decoding. Pointer and nil-able fields tell
// which keys a file actually sets.
type fileConfig struct {
	SpecPaths     []string     `yaml:"spec_paths" toml:"spec_paths"`
	Include       []string     `yaml:"include" toml:"include"`
	Exclude       []string     `yaml:"exclude" toml:"exclude"`
	Serve         *fileServe   `yaml:"serve" toml:"serve"`
	History       *fileHistory `yaml:"history" toml:"history"`
	Watch         *fileWatch   `yaml:"watch" toml:"watch"`
	Statuses      []string     `yaml:"statuses" toml:"statuses"`
	LogLevel      *string      `yaml:"log_level" toml:"log_level"`
	LogFormat     *string      `yaml:"log_format" toml:"log_format"`
	LogTimestamps *bool        `yaml:"log_timestamps" toml:"log_timestamps"`
	LogCaller     *bool        `yaml:"log_caller" toml:"log_caller"`
}

type fileServe struct {
	Port        *int  `yaml:"port" toml:"port"`
	OpenBrowser *bool `yaml:"open_browser" toml:"open_browser"`
}

type fileHistory struct {
	Limit *int `yaml:"limit" toml:"limit"`
}

type fileWatch struct {
	DebounceMS *int `yaml:"debounce_ms" toml:"debounce_ms"`
}
