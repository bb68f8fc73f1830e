// Package watcher turns file-system events under the spec directories into
// debounced change notifications.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/nibzard/spec-view-go/internal/logging"
	"github.com/nibzard/spec-view-go/internal/specdir"
)

// DefaultDebounce is the quiet period used when no debounce is configured.
const DefaultDebounce = 300 * time.Millisecond

// watchedExts are the file extensions whose changes trigger a rescan.
var watchedExts = map[string]bool{
	".md":   true,
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period that must pass after the last relevant
// event before subscribers are notified.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for watch errors.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithExclude skips directories matched by the scan's exclude patterns,
// which are relative to root. A watched tree that is root itself also skips
// the directories specdir.SkipDir names.
func WithExclude(root string, patterns []string) Option {
	return func(w *Watcher) {
		if root != "" {
			w.root = filepath.Clean(root)
		}
		w.exclude = patterns
	}
}

// Watcher watches directory trees and notifies a Notifier after each burst
// of relevant changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	notifier *Notifier
	debounce time.Duration
	logger   *log.Logger

	root    string
	exclude []string
	trees   []string

	mu      sync.Mutex
	watched map[string]bool
}

// New creates a watcher over every directory below paths. Paths that do not
// exist are skipped with a warning; it is an error only when none can be
// watched.
func New(paths []string, notifier *Notifier, opts ...Option) (*Watcher, error) {
	if notifier == nil {
		return nil, errors.New("watcher: nil notifier")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		notifier: notifier,
		debounce: DefaultDebounce,
		logger:   logging.Discard(),
		watched:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, path := range paths {
		w.trees = append(w.trees, filepath.Clean(path))
	}

	var errs []error
	for _, path := range paths {
		if err := w.addTree(path); err != nil {
			w.logger.Warn("cannot watch path", "path", path, "err", err)
			errs = append(errs, err)
		}
	}
	if len(w.Watched()) == 0 {
		fsw.Close()
		if err := errors.Join(errs...); err != nil {
			return nil, fmt.Errorf("no watchable paths: %w", err)
		}
		return nil, errors.New("no watchable paths")
	}
	return w, nil
}

// Watched returns the watched directories, sorted.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := make([]string, 0, len(w.watched))
	for dir := range w.watched {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// addTree watches root and every directory below it that skip allows.
func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && w.skip(path) {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

// skip reports whether dir is left out of the watch set. Without
// WithExclude every directory is watched.
func (w *Watcher) skip(dir string) bool {
	if w.root == "" {
		return false
	}
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.exclude {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), rel); ok {
			return true
		}
	}
	return w.ownedByRoot(dir) && specdir.SkipDir(filepath.Base(dir))
}

// ownedByRoot reports whether the innermost watched tree holding dir is the
// project root.
func (w *Watcher) ownedByRoot(dir string) bool {
	owner := ""
	for _, tree := range w.trees {
		if tree == dir || strings.HasPrefix(dir, tree+string(filepath.Separator)) {
			if len(tree) > len(owner) {
				owner = tree
			}
		}
	}
	return owner == w.root
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watched[dir] = true
	return nil
}

func (w *Watcher) forget(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watched[dir] {
		return false
	}
	delete(w.watched, dir)
	return true
}

// Run processes events until ctx is done, then closes the underlying
// watcher. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "err", err)

		case <-fire:
			fire = nil
			w.logger.Debug("spec files changed")
			w.notifier.Notify()
		}
	}
}

// handle updates the watch set for directory events and reports whether
// the event should schedule a notification.
func (w *Watcher) handle(event fsnotify.Event) bool {
	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.skip(event.Name) {
				return false
			}
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("cannot watch new directory", "path", event.Name, "err", err)
			}
			return true
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.forget(event.Name) {
			return true
		}
	case event.Has(fsnotify.Write):
	default:
		return false
	}
	return Relevant(event.Name)
}

// Relevant reports whether a change to path can affect a scan.
func Relevant(path string) bool {
	return watchedExts[filepath.Ext(path)]
}

// WatchPaths returns the directories to watch for a project: every existing
// spec path plus the parent directory of each include match (the match
// itself when it is a directory). Directories that resolve to the same
// place are listed once. When nothing qualifies the root itself is watched.
func WatchPaths(root string, specPaths, include []string) []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(dir string) {
		resolved, err := filepath.EvalSymlinks(dir)
		if err != nil {
			resolved = dir
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		paths = append(paths, dir)
	}

	for _, p := range specPaths {
		dir := p
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, filepath.FromSlash(p))
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			add(filepath.Clean(dir))
		}
	}

	for _, pattern := range include {
		matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern))
		if err != nil {
			continue
		}
		for _, match := range matches {
			full := filepath.Join(root, filepath.FromSlash(match))
			info, err := os.Stat(full)
			if err != nil {
				continue
			}
			if info.IsDir() {
				add(full)
			} else {
				add(filepath.Dir(full))
			}
		}
	}

	if len(paths) == 0 {
		paths = append(paths, root)
	}
	return paths
}
