// Package history reads a project's git log and correlates commits with the
// implementation plan: which commits came from an agent loop and which plan
// tasks each commit checked off.
package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// PlanFile is the plan whose checked tasks are credited to commits.
const PlanFile = "IMPLEMENTATION_PLAN.md"

// DefaultLimit is the number of commits read when no limit is given.
const DefaultLimit = 50

const (
	fieldSep  = "---FIELD---"
	recordSep = "---RECORD---"

	revParseTimeout = 5 * time.Second
	logTimeout      = 30 * time.Second
	showTimeout     = 10 * time.Second

	// maxShows bounds concurrent git show processes.
	maxShows = 4
)

var (
	numstatRe = regexp.MustCompile(`^(\d+|-)\t(\d+|-)\t(.+)$`)
	loopRe    = regexp.MustCompile(`(?i)Co-Authored-By:.*Claude`)

	checkedLineRe = regexp.MustCompile(`(?i)^\+\s*-\s*\[x\]\s+(.+)`)
	boldRe        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	linkRe        = regexp.MustCompile(`\[(.+?)\]\(.+?\)`)
	codeRe        = regexp.MustCompile("`(.+?)`")
	doneMarkRe    = regexp.MustCompile(`(?i)\s*—\s*DONE\s*$`)
)

// Commit is one git commit with the metadata the dashboards show.
type Commit struct {
	Hash           string    `json:"hash"`
	Timestamp      time.Time `json:"timestamp"`
	Message        string    `json:"message"`
	Body           string    `json:"body"`
	IsLoop         bool      `json:"is_loop"`
	FilesChanged   int       `json:"files_changed"`
	Insertions     int       `json:"insertions"`
	Deletions      int       `json:"deletions"`
	ChangedFiles   []string  `json:"changed_files"`
	TasksCompleted []string  `json:"tasks_completed"`
}

// TouchesPlan reports whether the commit changed a plan file.
func (c Commit) TouchesPlan() bool {
	return c.planPath() != ""
}

func (c Commit) planPath() string {
	for _, f := range c.ChangedFiles {
		if path.Base(f) == PlanFile {
			return f
		}
	}
	return ""
}

// Get returns up to limit commits of the repository containing root, newest
// first. A directory outside any git work tree, a repository without
// commits, or a missing git binary all yield no commits and no error; only
// context cancellation is reported.
func Get(ctx context.Context, root string, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, nil
	}
	if !isWorkTree(ctx, gitPath, root) {
		return nil, ctx.Err()
	}

	format := recordSep + strings.Join([]string{"%h", "%aI", "%s", "%b"}, fieldSep)
	out, err := git(ctx, logTimeout, gitPath, root,
		"log", fmt.Sprintf("-%d", limit), "--format="+format, "--numstat")
	if err != nil {
		return nil, ctx.Err()
	}

	commits := parseLog(out)
	if err := fillTasksCompleted(ctx, gitPath, root, commits); err != nil {
		return nil, err
	}
	return commits, nil
}

func isWorkTree(ctx context.Context, gitPath, root string) bool {
	out, err := git(ctx, revParseTimeout, gitPath, root, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// git runs one git command in dir and returns its stdout.
func git(ctx context.Context, timeout time.Duration, gitPath, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

// fillTasksCompleted reads the plan diff of every commit that touched it.
// Failing git show calls leave TasksCompleted empty.
func fillTasksCompleted(ctx context.Context, gitPath, root string, commits []Commit) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxShows)
	for i := range commits {
		plan := commits[i].planPath()
		if plan == "" {
			continue
		}
		c := &commits[i]
		g.Go(func() error {
			// numstat paths are relative to the top of the repository, not root.
			out, err := git(gctx, showTimeout, gitPath, root, "show", c.Hash, "--", topPathspec(plan))
			if err != nil {
				if errors.Is(gctx.Err(), context.Canceled) {
					return gctx.Err()
				}
				return nil
			}
			c.TasksCompleted = completedTasksFromDiff(out)
			return nil
		})
	}
	return g.Wait()
}

// topPathspec anchors a repository-relative path at the work tree top so it
// resolves the same from any subdirectory.
func topPathspec(rel string) string {
	return ":(top)" + rel
}

// parseLog splits raw git log output into commits. Malformed records are
// dropped.
func parseLog(raw string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(raw, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		if c, ok := parseRecord(record); ok {
			commits = append(commits, c)
		}
	}
	return commits
}

// parseRecord parses "<hash>SEP<iso time>SEP<subject>SEP<body>" followed by
// numstat lines.
func parseRecord(record string) (Commit, bool) {
	parts := strings.SplitN(record, fieldSep, 4)
	if len(parts) < 4 {
		return Commit{}, false
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[1]))
	if err != nil {
		return Commit{}, false
	}

	c := Commit{
		Hash:      strings.TrimSpace(parts[0]),
		Timestamp: ts,
		Message:   strings.TrimSpace(parts[2]),
	}

	// git appends the numstat block after the body; once it starts, only
	// numstat lines are kept.
	var body []string
	inNumstat := false
	for _, line := range strings.Split(parts[3], "\n") {
		m := numstatRe.FindStringSubmatch(line)
		if m != nil {
			inNumstat = true
			c.ChangedFiles = append(c.ChangedFiles, m[3])
			c.Insertions += numstatCount(m[1])
			c.Deletions += numstatCount(m[2])
			continue
		}
		if !inNumstat {
			body = append(body, line)
		}
	}
	c.Body = strings.TrimSpace(strings.Join(body, "\n"))
	c.FilesChanged = len(c.ChangedFiles)
	c.IsLoop = loopRe.MatchString(c.Body)
	return c, true
}

// numstatCount parses a numstat column; binary files report "-".
func numstatCount(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// completedTasksFromDiff returns the text of every checked task added by a
// diff, with inline markdown and a trailing "— DONE" marker removed.
func completedTasksFromDiff(diff string) []string {
	var tasks []string
	for _, line := range strings.Split(diff, "\n") {
		m := checkedLineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		text = boldRe.ReplaceAllString(text, "$1")
		text = linkRe.ReplaceAllString(text, "$1")
		text = codeRe.ReplaceAllString(text, "$1")
		text = doneMarkRe.ReplaceAllString(text, "")
		if text != "" {
			tasks = append(tasks, text)
		}
	}
	return tasks
}

// Summary aggregates a commit list.
type Summary struct {
	Commits        int `json:"commits"`
	LoopCommits    int `json:"loop_commits"`
	TasksCompleted int `json:"tasks_completed"`
	Insertions     int `json:"insertions"`
	Deletions      int `json:"deletions"`
}

// Summarize totals commits.
func Summarize(commits []Commit) Summary {
	var s Summary
	for _, c := range commits {
		s.Commits++
		if c.IsLoop {
			s.LoopCommits++
		}
		s.TasksCompleted += len(c.TasksCompleted)
		s.Insertions += c.Insertions
		s.Deletions += c.Deletions
	}
	return s
}
