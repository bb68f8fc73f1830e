package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# spec-view configuration (.spec-view/config.yaml)
# Values can be overridden by SPEC_VIEW_* environment variables or CLI flags.

# Directories searched recursively for markdown specs (relative to the
# project root). Without a config file these are auto-detected.
spec_paths:
  - specs/

# Extra glob patterns to include (** matches across directories)
include: []
#  - IMPLEMENTATION_PLAN.md
#  - docs/**/*.md

# Glob patterns to exclude; exclusion wins over spec_paths and include
exclude:
  - "**/node_modules/**"
  - "**/.git/**"

# Web dashboard
serve:
  port: 8080
  open_browser: true

# Status names shown by the dashboards
statuses: [draft, ready, in-progress, done, blocked]

# Number of commits shown in the history view
history:
  limit: 50

# Quiet period before a burst of file changes triggers a rescan
watch:
  debounce_ms: 300

# Logging: debug, info, warn, error / text, json, logfmt
log_level: info
log_format: text
log_timestamps: false
log_caller: false
`
}
