package specdir

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxDepth is how deep Detect descends looking for marker directories.
const MaxDepth = 4

// markerDirs maps directory names that signal spec content to their source.
var markerDirs = map[string]string{
	"specs":     "spec-view",
	".kiro":     "kiro",
	"openspec":  "openspec",
	".openspec": "openspec",
	".spec":     "generic",
	"docs":      "generic",
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".tox":         true,
	"dist":         true,
	"build":        true,
	".next":        true,
}

// SkipDir reports whether a directory name is never searched for specs.
func SkipDir(name string) bool {
	return skipDirs[name]
}

// Source is a detected spec location.
type Source struct {
	Path        string // slash-separated, relative to the project root
	Kind        string // spec-view, kiro, openspec or generic
	Description string
	Markdown    int // number of markdown files below Path
}

// Detect walks root looking for known spec directories. Results are sorted
// by markdown file count, largest first. When both a directory and one of
// its descendants are detected only the descendant is kept.
func Detect(root string) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	d := &detector{root: root, seen: make(map[string]bool)}
	d.scan(root, 0)

	sources := dropParents(d.found)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Markdown > sources[j].Markdown
	})
	return sources, nil
}

type detector struct {
	root  string
	seen  map[string]bool
	found []Source
}

func (d *detector) add(s Source) {
	if d.seen[s.Path] {
		return
	}
	d.seen[s.Path] = true
	d.found = append(d.found, s)
}

func (d *detector) scan(dir string, depth int) {
	if depth > MaxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || SkipDir(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		kind, ok := markerDirs[entry.Name()]
		if !ok {
			d.scan(path, depth+1)
			continue
		}
		switch kind {
		case "openspec":
			d.openSpec(path)
		case "kiro":
			d.kiro(path)
		default:
			if n := countMarkdown(path); n > 0 {
				d.add(Source{
					Path:        d.rel(path),
					Kind:        kind,
					Description: entry.Name() + "/ directory",
					Markdown:    n,
				})
			}
		}
	}
}

func (d *detector) kiro(dir string) {
	best := dir
	specs := filepath.Join(dir, "specs")
	if isDir(specs) && countMarkdown(specs) > 0 {
		best = specs
	}
	n := countMarkdown(best)
	if n == 0 {
		return
	}
	desc := "Kiro specs"
	if label := d.label(dir); label != ".kiro" {
		desc = fmt.Sprintf("Kiro (%s)", label)
	}
	d.add(Source{Path: d.rel(best), Kind: "kiro", Description: desc, Markdown: n})
}

// openSpec expands an openspec directory into changes/<name>/specs,
// changes/<name> (for its top-level markdown) and specs.
func (d *detector) openSpec(dir string) {
	label := d.label(dir)
	changes := filepath.Join(dir, "changes")
	if entries, err := os.ReadDir(changes); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() || entry.Name() == "archive" {
				continue
			}
			change := filepath.Join(changes, entry.Name())
			specs := filepath.Join(change, "specs")
			if isDir(specs) {
				if n := countMarkdown(specs); n > 0 {
					d.add(Source{
						Path:        d.rel(specs),
						Kind:        "openspec",
						Description: fmt.Sprintf("OpenSpec (%s): %s/specs", label, entry.Name()),
						Markdown:    n,
					})
				}
			}
			if n := countTopMarkdown(change); n > 0 {
				d.add(Source{
					Path:        d.rel(change),
					Kind:        "openspec",
					Description: fmt.Sprintf("OpenSpec (%s): %s", label, entry.Name()),
					Markdown:    n,
				})
			}
		}
	}
	specs := filepath.Join(dir, "specs")
	if isDir(specs) {
		if n := countMarkdown(specs); n > 0 {
			d.add(Source{
				Path:        d.rel(specs),
				Kind:        "openspec",
				Description: fmt.Sprintf("OpenSpec (%s): specs", label),
				Markdown:    n,
			})
		}
	}
}

func (d *detector) rel(path string) string {
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// label is the first non-hidden segment of the path relative to root.
func (d *detector) label(path string) string {
	rel := d.rel(path)
	for _, part := range strings.Split(rel, "/") {
		if !strings.HasPrefix(part, ".") {
			return part
		}
	}
	return filepath.Base(path)
}

// dropParents removes sources that have another detected source below them.
func dropParents(sources []Source) []Source {
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		parent := false
		for _, other := range sources {
			if other.Path != s.Path && strings.HasPrefix(other.Path, s.Path+"/") {
				parent = true
				break
			}
		}
		if !parent {
			out = append(out, s)
		}
	}
	return out
}

func countMarkdown(dir string) int {
	n := 0
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() && filepath.Ext(path) == ".md" {
			n++
		}
		return nil
	})
	return n
}

func countTopMarkdown(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".md" {
			n++
		}
	}
	return n
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Paths returns the paths of sources, in order.
func Paths(sources []Source) []string {
	paths := make([]string, 0, len(sources))
	for _, s := range sources {
		paths = append(paths, s.Path)
	}
	return paths
}
