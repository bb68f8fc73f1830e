// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.spec-view/config.yaml or OS-specific config directory)
// 3. Project config file (.spec-view/config.yaml, config.yml or config.toml
// under the project root)
// 4. Environment variables (SPEC_VIEW_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.spec-view/config.{yaml,yml,toml} (preferred)
// - Windows: %APPDATA%\spec-view\config.yaml
// - macOS: ~/Library/Application Support/spec-view/config.yaml
// - Linux/BSD: $XDG_CONFIG_HOME/spec-view/config.yaml or ~/.config/spec-view/config.yaml
//
// When neither a project file nor any other layer names spec paths, the
// project is searched for well-known spec directories instead.
package config
