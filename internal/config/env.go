package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/spec-view-go/internal/utils"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SPEC_VIEW_"

// envRoot returns SPEC_VIEW_ROOT.
func envRoot() string {
	return os.Getenv(EnvPrefix + "ROOT")
}

// loadFromEnv overrides config from environment variables and records
// each value it applies as coming from the environment.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv(EnvPrefix + "SPEC_PATHS"); v != "" {
		cfg.SpecPaths = utils.SplitAndTrim(v, ",")
		set("spec_paths")
	}
	if v := os.Getenv(EnvPrefix + "INCLUDE"); v != "" {
		cfg.Include = utils.SplitAndTrim(v, ",")
		set("include")
	}
	if v := os.Getenv(EnvPrefix + "EXCLUDE"); v != "" {
		cfg.Exclude = utils.SplitAndTrim(v, ",")
		set("exclude")
	}
	if v := os.Getenv(EnvPrefix + "STATUSES"); v != "" {
		cfg.Statuses = utils.SplitAndTrim(v, ",")
		set("statuses")
	}
	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.Serve.Port = i
			set("serve.port")
		}
	}
	if v := os.Getenv(EnvPrefix + "OPEN_BROWSER"); v != "" {
		cfg.Serve.OpenBrowser = boolFromString(v)
		set("serve.open_browser")
	}
	if v := os.Getenv(EnvPrefix + "HISTORY_LIMIT"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.History.Limit = i
			set("history.limit")
		}
	}
	if v := os.Getenv(EnvPrefix + "DEBOUNCE_MS"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.Watch.DebounceMS = i
			set("watch.debounce_ms")
		}
	}

	// Logging configuration
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv(EnvPrefix + "LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv(EnvPrefix + "LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
