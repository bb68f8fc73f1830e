package spec

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle status of a spec.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Statuses returns the known statuses in display order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusReady, StatusInProgress, StatusDone, StatusBlocked}
}

// ParseStatus matches value case-insensitively against the known statuses.
// Unknown or empty values resolve to StatusDraft.
func ParseStatus(value string) Status {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, s := range Statuses() {
		if string(s) == normalized {
			return s
		}
	}
	return StatusDraft
}

// Priority represents the priority of a spec.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities returns the known priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ParsePriority matches value case-insensitively against the known priorities.
// Unknown or empty values resolve to PriorityMedium.
func ParsePriority(value string) Priority {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, p := range Priorities() {
		if string(p) == normalized {
			return p
		}
	}
	return PriorityMedium
}

// Role is the part a file plays inside a group.
type Role string

const (
	RoleSpec   Role = "spec"
	RoleDesign Role = "design"
	RoleTasks  Role = "tasks"
)

// Dialect identifies the markdown convention a document follows.
type Dialect string

const (
	DialectSpecKit  Dialect = "spec-kit"
	DialectKiro     Dialect = "kiro"
	DialectWiggum   Dialect = "wiggum"
	DialectOpenSpec Dialect = "openspec"
	DialectGeneric  Dialect = "generic"
)

// AllDialects returns every dialect in detection precedence order.
func AllDialects() []Dialect {
	return []Dialect{DialectKiro, DialectSpecKit, DialectWiggum, DialectOpenSpec, DialectGeneric}
}

// Label returns a human-readable name for the dialect.
func (d Dialect) Label() string {
	switch d {
	case DialectSpecKit:
		return "Spec Kit"
	case DialectKiro:
		return "Kiro"
	case DialectWiggum:
		return "Implementation Plan"
	case DialectOpenSpec:
		return "OpenSpec"
	case DialectGeneric:
		return "Generic"
	default:
		return string(d)
	}
}

// Task is a single checkbox item.
type Task struct {
	Text       string
	Done       bool
	Owner      string // group or section name the task belongs to
	SourceFile string
	Depth      int
	Children   []*Task
	ID         string // e.g. "T001"
	Parallel   bool   // "[P]" marker
	Story      string // e.g. "US1"
}

// SubtaskTotal returns the number of descendant tasks.
func (t *Task) SubtaskTotal() int {
	count := len(t.Children)
	for _, child := range t.Children {
		count += child.SubtaskTotal()
	}
	return count
}

// SubtaskDone returns the number of completed descendant tasks.
func (t *Task) SubtaskDone() int {
	count := 0
	for _, child := range t.Children {
		if child.Done {
			count++
		}
		count += child.SubtaskDone()
	}
	return count
}

// Progress is a done/total pair.
type Progress struct {
	Total int
	Done  int
}

// Percent returns floor(Done / Total * 100), or 0 when Total is 0.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}

// String formats the progress as "done/total".
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}

// ProgressOf counts tasks in a flat list.
func ProgressOf(tasks []*Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			p.Done++
		}
	}
	return p
}

// Flatten returns the tree in pre-order, which is document order.
func Flatten(tree []*Task) []*Task {
	var out []*Task
	var walk func([]*Task)
	walk = func(nodes []*Task) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(tree)
	return out
}

// Phase is a "## Phase N: title" span of a spec-kit document.
type Phase struct {
	Number     int
	Title      string
	Subtitle   string
	Tasks      []*Task // shared with the owning document's flat list
	Checkpoint string
}

// Progress returns the phase's task counts.
func (p *Phase) Progress() Progress {
	return ProgressOf(p.Tasks)
}

// PlanSection is one status-bearing "## " section of a wiggum plan file.
type PlanSection struct {
	Title      string
	Status     Status
	Priority   Priority
	Tags       []string // always starts with "plan"
	Tasks      []*Task
	TaskTree   []*Task
	Body       string // section text including its heading line
	SourcePath string
}

// Progress returns the section's task counts.
func (s *PlanSection) Progress() Progress {
	return ProgressOf(s.Tasks)
}

// Document is one parsed markdown file.
type Document struct {
	Path     string
	Title    string
	Status   Status
	Priority Priority
	Tags     []string
	Content  string // full file text
	Body     string // text after frontmatter
	Tasks    []*Task
	TaskTree []*Task
	Role     Role
	Dialect  Dialect
	Phases   []*Phase // only for DialectSpecKit
}

// Progress returns the document's task counts.
func (d *Document) Progress() Progress {
	return ProgressOf(d.Tasks)
}

// HasTag reports whether the document carries tag.
func (d *Document) HasTag(tag string) bool {
	return containsString(d.Tags, tag)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// appendUnique appends values not already present, preserving first-seen order.
func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !containsString(list, v) {
			list = append(list, v)
		}
	}
	return list
}
