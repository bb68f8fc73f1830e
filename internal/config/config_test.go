// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// isolate points the user config lookup at empty directories and clears
// every SPEC_VIEW_* variable for the duration of the test.
func isolate(t *testing.T) (home string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"ROOT", "SPEC_PATHS", "INCLUDE", "EXCLUDE", "STATUSES", "PORT",
		"OPEN_BROWSER", "HISTORY_LIMIT", "DEBOUNCE_MS", "LOG_LEVEL",
		"LOG_FORMAT", "LOG_TIMESTAMPS", "LOG_CALLER",
	} {
		t.Setenv(EnvPrefix+name, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func load(t *testing.T, args ...string) *ConfigWithSources {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	return cws
}

func TestDefaults(t *testing.T) {
	cfg := Defaults("/p")

	if diff := cmp.Diff([]string{"specs/"}, cfg.SpecPaths); diff != "" {
		t.Errorf("SpecPaths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultExclude(), cfg.Exclude); diff != "" {
		t.Errorf("Exclude mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Include) != 0 {
		t.Errorf("Include: got %v, want empty", cfg.Include)
	}
	if cfg.Serve.Port != 8080 || !cfg.Serve.OpenBrowser {
		t.Errorf("Serve: got %+v", cfg.Serve)
	}
	if cfg.History.Limit != 50 {
		t.Errorf("History.Limit: got %d, want 50", cfg.History.Limit)
	}
	if got := cfg.Debounce().Milliseconds(); got != 300 {
		t.Errorf("Debounce: got %dms, want 300ms", got)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if diff := cmp.Diff([]string{"draft", "ready", "in-progress", "done", "blocked"}, cfg.Statuses); diff != "" {
		t.Errorf("Statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestDebounceFallback(t *testing.T) {
	cfg := &Config{}
	if got := cfg.Debounce().Milliseconds(); got != DefaultDebounceMS {
		t.Errorf("Debounce with zero value: got %dms", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SPEC_VIEW_SPEC_PATHS", "docs/, specs/")
	t.Setenv("SPEC_VIEW_INCLUDE", "PLAN.md")
	t.Setenv("SPEC_VIEW_PORT", "9090")
	t.Setenv("SPEC_VIEW_OPEN_BROWSER", "no")
	t.Setenv("SPEC_VIEW_HISTORY_LIMIT", "not-a-number")
	t.Setenv("SPEC_VIEW_LOG_TIMESTAMPS", "on")

	cfg := &Config{}
	setDefaults(cfg)
	sources := make(map[string]ConfigSource)
	loadFromEnv(cfg, sources)

	if diff := cmp.Diff([]string{"docs/", "specs/"}, cfg.SpecPaths); diff != "" {
		t.Errorf("SpecPaths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"PLAN.md"}, cfg.Include); diff != "" {
		t.Errorf("Include mismatch (-want +got):\n%s", diff)
	}
	if cfg.Serve.Port != 9090 {
		t.Errorf("Port: got %d, want 9090", cfg.Serve.Port)
	}
	if cfg.Serve.OpenBrowser {
		t.Errorf("OpenBrowser: got true, want false")
	}
	if cfg.History.Limit != DefaultHistoryLimit {
		t.Errorf("History.Limit: invalid env should be ignored, got %d", cfg.History.Limit)
	}
	if !cfg.LogTimestamps {
		t.Errorf("LogTimestamps: got false, want true")
	}
	if sources["serve.port"] != SourceEnv {
		t.Errorf("serve.port source: got %q", sources["serve.port"])
	}
	if _, ok := sources["history.limit"]; ok {
		t.Errorf("history.limit should not be tracked for an ignored value")
	}
}

func TestLoadConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "config.yaml",
			content: `spec_paths:
  - docs/specs/
serve:
  port: 9000
log_level: debug
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `spec_paths = ["docs/specs/"]
log_level = "debug"

[serve]
port = 9000
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			cfg := &Config{}
			setDefaults(cfg)
			sources := make(map[string]ConfigSource)
			if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
				t.Fatalf("loadConfigFile() error = %v", err)
			}

			if diff := cmp.Diff([]string{"docs/specs/"}, cfg.SpecPaths); diff != "" {
				t.Errorf("SpecPaths mismatch (-want +got):\n%s", diff)
			}
			if cfg.Serve.Port != 9000 {
				t.Errorf("Port: got %d, want 9000", cfg.Serve.Port)
			}
			if !cfg.Serve.OpenBrowser {
				t.Errorf("OpenBrowser: unset key should keep default true")
			}
			if cfg.LogLevel != "debug" {
				t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
			}
			if diff := cmp.Diff(DefaultExclude(), cfg.Exclude); diff != "" {
				t.Errorf("Exclude should keep default (-want +got):\n%s", diff)
			}
			for _, field := range []string{"spec_paths", "serve.port", "log_level"} {
				if sources[field] != SourceProjFile {
					t.Errorf("source[%s]: got %q, want %q", field, sources[field], SourceProjFile)
				}
			}
			if _, ok := sources["serve.open_browser"]; ok {
				t.Errorf("serve.open_browser should not be tracked")
			}
		})
	}
}

func TestLoadConfigFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "")

	cfg := &Config{}
	setDefaults(cfg)
	if err := loadConfigFile(cfg, path, nil, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile() error = %v", err)
	}
	if diff := cmp.Diff(Defaults(""), cfg); diff != "" {
		t.Errorf("empty file changed config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "spec_paths: [unclosed\n")

	cfg := &Config{}
	if err := loadConfigFile(cfg, path, nil, SourceProjFile); err == nil {
		t.Errorf("loadConfigFile() want error for malformed YAML")
	}
}

func TestLoadLayering(t *testing.T) {
	home := isolate(t)
	root := t.TempDir()

	writeFile(t, filepath.Join(home, ".spec-view", "config.yaml"), `serve:
  port: 9000
  open_browser: false
log_level: debug
history:
  limit: 5
`)
	writeFile(t, filepath.Join(root, ".spec-view", "config.yaml"), `spec_paths: [plans/]
serve:
  port: 9100
`)
	t.Setenv("SPEC_VIEW_LOG_LEVEL", "warn")
	t.Setenv("SPEC_VIEW_HISTORY_LIMIT", "7")

	cws := load(t, "-root", root, "-log-level", "error", "list")
	cfg := cws.Config

	if cfg.Root != root {
		t.Errorf("Root: got %q, want %q", cfg.Root, root)
	}
	if cfg.Serve.Port != 9100 {
		t.Errorf("Port: got %d, want project value 9100", cfg.Serve.Port)
	}
	if cfg.Serve.OpenBrowser {
		t.Errorf("OpenBrowser: want user value false")
	}
	if cfg.History.Limit != 7 {
		t.Errorf("History.Limit: got %d, want env value 7", cfg.History.Limit)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel: got %q, want flag value error", cfg.LogLevel)
	}
	if diff := cmp.Diff([]string{"plans/"}, cfg.SpecPaths); diff != "" {
		t.Errorf("SpecPaths mismatch (-want +got):\n%s", diff)
	}
	if cfg.AutoDetected {
		t.Errorf("AutoDetected: want false with a project file")
	}
	if cfg.ConfigFile != filepath.Join(root, ".spec-view", "config.yaml") {
		t.Errorf("ConfigFile: got %q", cfg.ConfigFile)
	}

	wantSources := map[string]ConfigSource{
		"root":               SourceFlag,
		"spec_paths":         SourceProjFile,
		"serve.port":         SourceProjFile,
		"serve.open_browser": SourceUserFile,
		"history.limit":      SourceEnv,
		"log_level":          SourceFlag,
		"log_format":         SourceDefault,
		"exclude":            SourceDefault,
	}
	for field, want := range wantSources {
		if got := cws.Sources[field]; got != want {
			t.Errorf("source[%s]: got %q, want %q", field, got, want)
		}
	}
	if got := cws.GetConfigFile(); got != cfg.ConfigFile {
		t.Errorf("GetConfigFile: got %q", got)
	}
}

func TestLoadRemainingArgs(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := Load(fs, []string{"-root", root, "list", "-v"}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"list", "-v"}, fs.Args()); diff != "" {
		t.Errorf("remaining args mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRootFromEnv(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	t.Setenv("SPEC_VIEW_ROOT", root)

	cws := load(t)
	if cws.Config.Root != root {
		t.Errorf("Root: got %q, want %q", cws.Config.Root, root)
	}
	if cws.Sources["root"] != SourceEnv {
		t.Errorf("root source: got %q", cws.Sources["root"])
	}
}

func TestLoadAutoDetect(t *testing.T) {
	tests := []struct {
		name         string
		files        map[string]string
		args         []string
		wantPaths    []string
		wantDetected bool
	}{
		{
			name:         "nothing to detect",
			files:        map[string]string{"README.md": "# r"},
			wantPaths:    []string{"specs/"},
			wantDetected: false,
		},
		{
			name:         "docs detected",
			files:        map[string]string{"docs/guide.md": "# g"},
			wantPaths:    []string{"docs"},
			wantDetected: true,
		},
		{
			name: "project file disables detection",
			files: map[string]string{
				"docs/guide.md":          "# g",
				".spec-view/config.yaml": "exclude: []\n",
			},
			wantPaths:    []string{"specs/"},
			wantDetected: false,
		},
		{
			name:         "flag disables detection",
			files:        map[string]string{"docs/guide.md": "# g"},
			args:         []string{"-spec-paths", "notes/"},
			wantPaths:    []string{"notes/"},
			wantDetected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			root := t.TempDir()
			for rel, content := range tt.files {
				writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
			}

			cws := load(t, append([]string{"-root", root}, tt.args...)...)
			cfg := cws.Config
			if diff := cmp.Diff(tt.wantPaths, cfg.SpecPaths); diff != "" {
				t.Errorf("SpecPaths mismatch (-want +got):\n%s", diff)
			}
			if cfg.AutoDetected != tt.wantDetected {
				t.Errorf("AutoDetected: got %v, want %v", cfg.AutoDetected, tt.wantDetected)
			}
			if tt.wantDetected && cws.Sources["spec_paths"] != SourceDetected {
				t.Errorf("spec_paths source: got %q", cws.Sources["spec_paths"])
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		project string
		args    []string
		want    string
	}{
		{"port range", "serve:\n  port: 70000\n", nil, "serve.port"},
		{"log level", "log_level: loud\n", nil, "log_level"},
		{"negative limit", "history:\n  limit: -1\n", nil, "history.limit"},
		{"nothing to scan", "spec_paths: []\n", nil, "spec_paths"},
		{"bad yaml", "serve: [\n", nil, "project config file"},
		{"unknown flag", "", []string{"-nope"}, "parsing flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			root := t.TempDir()
			if tt.project != "" {
				writeFile(t, filepath.Join(root, ".spec-view", "config.yaml"), tt.project)
			}
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(&strings.Builder{})
			_, err := Load(fs, append([]string{"-root", root}, tt.args...))
			if err == nil {
				t.Fatalf("Load() want error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingRoot(t *testing.T) {
	isolate(t)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := Load(fs, []string{"-root", filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Errorf("Load() with missing root: want error")
	}
}

func TestSave(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{
			name: "defaults",
			cfg:  Defaults(""),
			want: "spec_paths:\n  - specs/\n",
		},
		{
			name: "include and exclude",
			cfg: &Config{
				SpecPaths: []string{"docs/"},
				Include:   []string{"PLAN.md"},
				Exclude:   []string{"**/drafts/**"},
			},
			want: "spec_paths:\n  - docs/\ninclude:\n  - PLAN.md\nexclude:\n  - '**/drafts/**'\n",
		},
		{
			name: "empty exclude is kept",
			cfg:  &Config{SpecPaths: []string{"specs/"}, Exclude: []string{}},
			want: "spec_paths:\n  - specs/\nexclude: []\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path, err := Save(root, tt.cfg)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if want := filepath.Join(root, ".spec-view", "config.yaml"); path != want {
				t.Errorf("path: got %q, want %q", path, want)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, string(data)); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "a.md"), "# a")

	detected := load(t, "-root", root).Config
	if !detected.AutoDetected {
		t.Fatalf("expected auto-detection")
	}
	if _, err := Save(root, detected); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := load(t, "-root", root).Config
	if reloaded.AutoDetected {
		t.Errorf("saved config should disable auto-detection")
	}
	if diff := cmp.Diff(detected.SpecPaths, reloaded.SpecPaths); diff != "" {
		t.Errorf("SpecPaths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultExclude(), reloaded.Exclude); diff != "" {
		t.Errorf("Exclude mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantPaths []string
	}{
		{"valid yaml", "config.yaml", "spec_paths: [specs/]\nserve:\n  port: 8080\n", nil},
		{"valid toml", "config.toml", "spec_paths = [\"specs/\"]\n[watch]\ndebounce_ms = 100\n", nil},
		{"empty", "config.yaml", "", nil},
		{"wrong type", "config.yaml", "serve:\n  port: high\n", []string{"serve.port"}},
		{"bad item", "config.yaml", "spec_paths: [specs/, 3]\n", []string{"spec_paths[1]"}},
		{"unknown key", "config.yaml", "spec_path: [specs/]\n", []string{""}},
		{"bad enum", "config.yaml", "log_format: xml\n", []string{"log_format"}},
		{"several", "config.yaml", "history:\n  limit: -2\nlog_caller: maybe\n", []string{"history.limit", "log_caller"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			problems, err := Check(path)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			var got []string
			for _, p := range problems {
				got = append(got, p.Path)
				if p.Message == "" {
					t.Errorf("problem at %q has no message", p.Path)
				}
			}
			if diff := cmp.Diff(tt.wantPaths, got); diff != "" {
				t.Errorf("problem paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Check(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("Check() on missing file: want error")
	}
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "spec_paths: [\n")
	if _, err := Check(bad); err == nil {
		t.Errorf("Check() on malformed file: want error")
	}
}

func TestExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, ExampleConfig())

	problems, err := Check(path)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("example config has problems: %v", problems)
	}

	cfg := Defaults("")
	if err := loadConfigFile(cfg, path, nil, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile() error = %v", err)
	}
	if diff := cmp.Diff(Defaults(""), cfg); diff != "" {
		t.Errorf("example config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestProblemString(t *testing.T) {
	if got := (Problem{Path: "serve.port", Message: "bad"}).String(); got != "serve.port: bad" {
		t.Errorf("got %q", got)
	}
	if got := (Problem{Message: "bad"}).String(); got != "bad" {
		t.Errorf("got %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("SPEC_VIEW_TEST_HOME", home)
		tests = append(tests, struct {
			input string
			want  string
		}{
			input: `%SPEC_VIEW_TEST_HOME%\specs`,
			want:  filepath.Join(home, "specs"),
		})
	} else {
		tests = append(tests, struct {
			input string
			want  string
		}{
			input: `~\test`,
			want:  `~\test`,
		})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandSpecPaths(t *testing.T) {
	t.Setenv("SPEC_VIEW_TEST_DIR", "plans")
	got := expandSpecPaths([]string{"specs/", " ", "$SPEC_VIEW_TEST_DIR/", ""})
	if diff := cmp.Diff([]string{"specs/", "plans/"}, got); diff != "" {
		t.Errorf("expandSpecPaths mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fv, err := parseFlags(fs, []string{"-spec-paths", "a/, b/", "-include", "", "-log-caller", "serve"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	cfg := Defaults("")
	sources := make(map[string]ConfigSource)
	fv.apply(cfg, sources)

	if diff := cmp.Diff([]string{"a/", "b/"}, cfg.SpecPaths); diff != "" {
		t.Errorf("SpecPaths mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Include) != 0 {
		t.Errorf("Include: got %v, want empty", cfg.Include)
	}
	if !cfg.LogCaller {
		t.Errorf("LogCaller: got false, want true")
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel: unset flag should not apply, got %q", cfg.LogLevel)
	}
	for _, field := range []string{"spec_paths", "include", "log_caller"} {
		if sources[field] != SourceFlag {
			t.Errorf("source[%s]: got %q", field, sources[field])
		}
	}
	if _, ok := sources["log_level"]; ok {
		t.Errorf("log_level should not be tracked")
	}
	if diff := cmp.Diff([]string{"serve"}, fs.Args()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{" YES ", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := boolFromString(tt.in); got != tt.want {
			t.Errorf("boolFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
