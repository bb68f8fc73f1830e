package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/spec-view-go/internal/specdir"
)

// savedConfig is the on-disk shape written by Save. Keys appear in this order.
type savedConfig struct {
	SpecPaths []string  `yaml:"spec_paths"`
	Include   []string  `yaml:"include,omitempty"`
	Exclude   *[]string `yaml:"exclude,omitempty"`
}

// Save writes the discovery settings of cfg to root/.spec-view/config.yaml
// and returns the path written. spec_paths is always written; include only
// when non-empty and exclude only when it differs from the default.
func Save(root string, cfg *Config) (string, error) {
	dir := specdir.DirPath(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	out := savedConfig{SpecPaths: cfg.SpecPaths}
	if out.SpecPaths == nil {
		out.SpecPaths = []string{}
	}
	if len(cfg.Include) > 0 {
		out.Include = cfg.Include
	}
	if !slices.Equal(cfg.Exclude, DefaultExclude()) {
		exclude := append([]string{}, cfg.Exclude...)
		out.Exclude = &exclude
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}

	path := filepath.Join(dir, specdir.DefaultConfigFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
