// Package specdir provides constants and utilities for the .spec-view
// directory structure and for locating spec folders in a project.
package specdir

import "path/filepath"

const (
	// Dir is the name of the per-project settings directory.
	Dir = ".spec-view"

	// DefaultConfigFile is the default config file name (inside .spec-view).
	DefaultConfigFile = "config.yaml"

	// DefaultSpecsDir is where new specs are created and the default spec path.
	DefaultSpecsDir = "specs"
)

// ConfigFiles lists the config file names accepted inside .spec-view, in
// lookup order.
var ConfigFiles = []string{"config.yaml", "config.yml", "config.toml"}

// ConfigPath returns the full path to the config file within a work directory.
func ConfigPath(workDir string) string {
	return joinPath(workDir, DefaultConfigFile)
}

// DirPath returns the full path to the .spec-view directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return workDir + string(filepath.Separator) + Dir
}

func joinPath(workDir, file string) string {
	if workDir == "." || workDir == "" {
		return Dir + string(filepath.Separator) + file
	}
	return workDir + string(filepath.Separator) + Dir + string(filepath.Separator) + file
}
