// Package scanner discovers spec files under a project root and aggregates
// them into groups.
//
// Every call to Scan parses every discovered file again. Nothing is cached
// between calls, so a caller that rescans after a file change always gets a
// result that matches the files on disk at that moment.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/nibzard/spec-view-go/internal/spec"
)

// ArchiveTag marks groups stored under an "archive" directory and plan
// sections that are done.
const ArchiveTag = "archive"

// PlanDoneTag marks plan sections whose tasks are all complete.
const PlanDoneTag = "plan-done"

const markdownExt = ".md"

// Options configures a scan.
type Options struct {
	// Root is the project root. Relative spec paths and patterns are
	// resolved against it.
	Root string
	// SpecPaths are directories searched recursively for markdown files.
	SpecPaths []string
	// Include are extra doublestar patterns relative to Root.
	Include []string
	// Exclude are doublestar patterns matched against root-relative paths.
	// Exclusion wins over both SpecPaths and Include.
	Exclude []string
	// Logger receives skipped-file warnings. Nil disables logging.
	Logger *log.Logger
}

// SkippedFile is a discovered file that could not be parsed.
type SkippedFile struct {
	Path string
	Err  error
}

// Result is the outcome of one scan.
type Result struct {
	Root string
	// Groups holds directory groups sorted by name, followed by plan section
	// groups in file order.
	Groups  []*spec.Group
	Skipped []SkippedFile
	Files   []string
}

// Group returns the group with the given name, or nil.
func (r *Result) Group(name string) *spec.Group {
	if r == nil {
		return nil
	}
	for _, g := range r.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Scan discovers, parses and groups spec files. Unreadable files are
// recorded in Result.Skipped; only problems with the root or the patterns
// are returned as errors.
func Scan(opts Options) (*Result, error) {
	root, err := resolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}
	opts.Root = root

	files, err := Discover(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Root: root, Files: files}
	groups := make(map[string]*spec.Group)
	var order []string
	var planGroups []*spec.Group

	for _, path := range files {
		doc, err := spec.ParseFile(path)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Path: path, Err: err})
			if opts.Logger != nil {
				opts.Logger.Warn("skipping unreadable spec file", "path", path, "err", err)
			}
			continue
		}

		archived := inArchiveDir(root, path)
		if archived && !doc.HasTag(ArchiveTag) {
			doc.Tags = append(doc.Tags, ArchiveTag)
		}

		if doc.Dialect == spec.DialectWiggum {
			planGroups = append(planGroups, expandPlan(doc, archived)...)
			continue
		}

		parent := filepath.Dir(path)
		name := filepath.Base(parent)
		if parent == root || isSpecPathRoot(parent, root, opts.SpecPaths) {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		g, ok := groups[name]
		if !ok {
			g = spec.NewGroup(name, parent)
			groups[name] = g
			order = append(order, name)
		}
		g.Add(doc)
	}

	sorted := make([]*spec.Group, 0, len(order)+len(planGroups))
	for _, name := range order {
		sorted = append(sorted, groups[name])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	taken := make(map[string]bool, len(order)+len(planGroups))
	for _, name := range order {
		taken[name] = true
	}
	for _, g := range planGroups {
		g.Name = uniqueName(taken, g.Name)
	}
	result.Groups = append(sorted, planGroups...)

	if opts.Logger != nil {
		opts.Logger.Debug("scan complete",
			"root", root,
			"files", len(files),
			"groups", len(result.Groups),
			"skipped", len(result.Skipped))
	}
	return result, nil
}

// expandPlan turns every qualifying section of a plan document into its own
// single-document group.
func expandPlan(doc *spec.Document, archived bool) []*spec.Group {
	sections := spec.SplitSections(doc.Body, doc.Path)
	groups := make([]*spec.Group, 0, len(sections))
	for i, s := range sections {
		tags := append([]string(nil), s.Tags...)
		progress := s.Progress()
		if progress.Total > 0 && progress.Done == progress.Total {
			tags = appendTag(tags, PlanDoneTag)
		}
		if archived || s.Status == spec.StatusDone {
			tags = appendTag(tags, ArchiveTag)
		}

		name := spec.Slugify(s.Title)
		if name == "" {
			name = fmt.Sprintf("section-%d", i+1)
		}
		g := spec.NewGroup(name, filepath.Dir(doc.Path))
		g.Add(&spec.Document{
			Path:     doc.Path,
			Title:    s.Title,
			Status:   s.Status,
			Priority: s.Priority,
			Tags:     tags,
			Content:  s.Body,
			Body:     s.Body,
			Tasks:    s.Tasks,
			TaskTree: s.TaskTree,
			Role:     spec.RoleSpec,
			Dialect:  spec.DialectWiggum,
		})
		groups = append(groups, g)
	}
	return groups
}

// uniqueName returns name, or name with the first free "-N" suffix when it is
// already taken, and marks the result as taken.
func uniqueName(taken map[string]bool, name string) string {
	candidate := name
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", name, n)
	}
	taken[candidate] = true
	return candidate
}

func appendTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

// Discover returns the markdown files selected by opts: every *.md file under
// each spec path, then every regular file matching an include pattern, minus
// excluded paths. Each batch is sorted lexicographically and files are
// de-duplicated by their resolved location.
func Discover(opts Options) ([]string, error) {
	root, err := resolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}
	for _, pattern := range append(append([]string(nil), opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	var files []string
	seen := make(map[string]bool)
	add := func(batch []string) {
		sort.Strings(batch)
		for _, path := range batch {
			if excluded(root, path, opts.Exclude) {
				continue
			}
			id := fileIdentity(path)
			if seen[id] {
				continue
			}
			seen[id] = true
			files = append(files, path)
		}
	}

	for _, specPath := range opts.SpecPaths {
		dir := resolveUnder(root, specPath)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		batch, err := walkMarkdown(dir)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
		add(batch)
	}

	fsys := os.DirFS(root)
	for _, pattern := range opts.Include {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		batch := make([]string, 0, len(matches))
		for _, m := range matches {
			path := filepath.Join(root, filepath.FromSlash(m))
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			batch = append(batch, path)
		}
		add(batch)
	}
	return files, nil
}

func walkMarkdown(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// Unreadable subdirectories are left out of the scan.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == markdownExt {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func excluded(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), rel); ok {
			return true
		}
	}
	return false
}

func fileIdentity(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func isSpecPathRoot(dir, root string, specPaths []string) bool {
	for _, specPath := range specPaths {
		candidate := resolveUnder(root, specPath)
		if dir == candidate {
			return true
		}
		if resolved, err := filepath.EvalSymlinks(candidate); err == nil && dir == resolved {
			return true
		}
	}
	return false
}

// inArchiveDir reports whether any directory between root and path is named
// "archive".
func inArchiveDir(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if segment == ArchiveTag {
			return true
		}
	}
	return false
}

func resolveUnder(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s: %w", abs, errNotDir)
	}
	return abs, nil
}

var errNotDir = errors.New("not a directory")
