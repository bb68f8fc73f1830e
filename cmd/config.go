package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/spec-view-go/internal/config"
)

// configCommand shows the effective configuration and where each value came
// from. -save persists the discovery settings and -check validates a file.
func configCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	save := fs.Bool("save", false, "Write the effective spec paths to .spec-view/config.yaml")
	check := fs.Bool("check", false, "Validate a config file (default: the project config file)")
	example := fs.Bool("example", false, "Print an example config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *example:
		if err := noArgs(fs); err != nil {
			return err
		}
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	case *check:
		return checkConfig(e, fs.Args())
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	cfg := e.cfg
	fmt.Fprintln(stdout, "Current config:")
	file := cfg.ConfigFile
	if file == "" {
		file = "(none)"
	}
	fmt.Fprintf(stdout, "  %-20s %s\n", "config file", file)
	for _, field := range config.Fields() {
		source := e.sources[field]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(stdout, "  %-20s %s  (%s)\n", field, cfg.Value(field), source)
	}

	if cfg.AutoDetected && len(cfg.Detected) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Auto-detected spec locations:")
		for _, s := range cfg.Detected {
			fmt.Fprintf(stdout, "  %-24s %s\n", s.Path, s.Description)
		}
	}

	if *save {
		path, err := config.Save(cfg.Root, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nSaved to %s\n", path)
	} else if cfg.AutoDetected {
		fmt.Fprintln(stdout, "\nRun 'spec-view config -save' to persist this config.")
	}
	return nil
}

func checkConfig(e *env, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path := e.cfg.ConfigFile
	if len(args) == 1 {
		path = args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.cfg.Root, path)
		}
	}
	if path == "" {
		return errors.New("no config file to check (pass a path or create .spec-view/config.yaml)")
	}

	problems, err := config.Check(path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if len(problems) == 0 {
		fmt.Fprintf(stdout, "%s: OK\n", relTo(e.cfg.Root, path))
		return nil
	}
	fmt.Fprintf(stdout, "%s: %d problem(s)\n", relTo(e.cfg.Root, path), len(problems))
	for _, p := range problems {
		fmt.Fprintf(stdout, "  %s\n", p)
	}
	return fmt.Errorf("config check found %d problem(s)", len(problems))
}

const exampleSpec = `---
title: Example Feature
status: draft
priority: medium
tags: [example]
---

## Overview
Describe this feature or component.

## Requirements
- [ ] First requirement
- [ ] Second requirement
- [ ] Third requirement

## Acceptance Criteria
- Define what "done" looks like
`

const exampleDesign = `---
title: Example Feature - Design
status: draft
---

## Architecture
Describe the technical approach.

## Components
- Component A: description
- Component B: description

## API
Describe any API changes.
`

const exampleTasks = `---
title: Example Feature - Tasks
status: draft
priority: medium
---

## Tasks
- [ ] Set up project structure
- [ ] Implement core logic
- [ ] Write tests
- [ ] Update documentation
`

const exampleOverview = `---
title: Project Specs
status: draft
---

# Project Specs

Overview of project specifications.
`

// initCommand creates specs/ with an example spec group. Existing files are
// left alone unless -force is given.
func initCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	force := fs.Bool("force", false, "Overwrite existing files")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	specsDir := filepath.Join(e.cfg.Root, "specs")
	groupDir := filepath.Join(specsDir, "example-feature")
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", groupDir, err)
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(groupDir, "spec.md"), exampleSpec},
		{filepath.Join(groupDir, "design.md"), exampleDesign},
		{filepath.Join(groupDir, "tasks.md"), exampleTasks},
		{filepath.Join(specsDir, "overview.md"), exampleOverview},
	}
	for _, f := range files {
		if !*force {
			if _, err := os.Stat(f.path); err == nil {
				e.logger.Debug("skipping existing file", "path", f.path)
				continue
			}
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
	}

	fmt.Fprintf(stdout, "Created spec files in %s\n", groupDir)
	return nil
}
