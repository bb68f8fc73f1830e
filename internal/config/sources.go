package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/nibzard/spec-view-go/internal/specdir"
)

// appName names the per-user config directory under the OS config dir.
const appName = "spec-view"

// findProjectConfigFile looks for a config file in root's .spec-view directory.
func findProjectConfigFile(root string) string {
	return firstExisting(filepath.Join(root, specdir.Dir))
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.spec-view first, then falls back to OS-specific
// config directories if ~/.spec-view holds no config.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		if path := firstExisting(filepath.Join(home, specdir.Dir)); path != "" {
			return path
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		if path := firstExisting(filepath.Join(cfgDir, appName)); path != "" {
			return path
		}
	}

	return ""
}

// firstExisting returns the first of specdir.ConfigFiles present in dir.
func firstExisting(dir string) string {
	for _, name := range specdir.ConfigFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.SpecPaths = []string{DefaultSpecPath}
	cfg.Include = []string{}
	cfg.Exclude = DefaultExclude()
	cfg.Serve = ServeConfig{Port: DefaultPort, OpenBrowser: DefaultOpenBrowser}
	cfg.History = HistoryConfig{Limit: DefaultHistoryLimit}
	cfg.Watch = WatchConfig{DebounceMS: DefaultDebounceMS}
	cfg.Statuses = DefaultStatuses()
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// Defaults returns a config holding only built-in defaults for root.
func Defaults(root string) *Config {
	cfg := &Config{Root: root}
	setDefaults(cfg)
	return cfg
}

// GetConfigFile returns the active config file path (project or user).
func (cws *ConfigWithSources) GetConfigFile() string {
	if cws.Config != nil && cws.Config.ConfigFile != "" {
		return cws.Config.ConfigFile
	}
	for _, source := range cws.Sources {
		if source == SourceUserFile {
			return findUserConfigFile()
		}
	}
	return ""
}
