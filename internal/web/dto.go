package web

import (
	"path/filepath"
	"time"

	"github.com/nibzard/spec-view-go/internal/history"
	"github.com/nibzard/spec-view-go/internal/scanner"
	"github.com/nibzard/spec-view-go/internal/spec"
)

type progressJSON struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

func progressOf(p spec.Progress) progressJSON {
	return progressJSON{Done: p.Done, Total: p.Total, Percent: p.Percent()}
}

type groupJSON struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Status   spec.Status   `json:"status"`
	Priority spec.Priority `json:"priority"`
	Dialect  spec.Dialect  `json:"dialect"`
	Tags     []string      `json:"tags"`
	Stories  []string      `json:"stories,omitempty"`
	Path     string        `json:"path"`
	Archived bool          `json:"archived"`
	Plan     bool          `json:"plan"`
	Progress progressJSON  `json:"progress"`
}

type taskJSON struct {
	Text     string      `json:"text"`
	Done     bool        `json:"done"`
	ID       string      `json:"id,omitempty"`
	Parallel bool        `json:"parallel,omitempty"`
	Story    string      `json:"story,omitempty"`
	Children []*taskJSON `json:"children,omitempty"`
}

type phaseJSON struct {
	Number     int          `json:"number"`
	Title      string       `json:"title"`
	Subtitle   string       `json:"subtitle,omitempty"`
	Checkpoint string       `json:"checkpoint,omitempty"`
	Progress   progressJSON `json:"progress"`
	Tasks      []*taskJSON  `json:"tasks"`
}

type documentJSON struct {
	Path    string       `json:"path"`
	Role    spec.Role    `json:"role"`
	Title   string       `json:"title"`
	Dialect spec.Dialect `json:"dialect"`
	Body    string       `json:"body"`
}

type groupDetailJSON struct {
	groupJSON
	Documents []documentJSON `json:"documents"`
	Phases    []phaseJSON    `json:"phases,omitempty"`
	Tasks     []*taskJSON    `json:"tasks"`
}

type summaryJSON struct {
	Groups   int                 `json:"groups"`
	Archived int                 `json:"archived"`
	ByStatus map[spec.Status]int `json:"by_status"`
	Progress progressJSON        `json:"progress"`
}

type skippedJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type specsJSON struct {
	Root      string        `json:"root"`
	ScannedAt time.Time     `json:"scanned_at"`
	Summary   summaryJSON   `json:"summary"`
	Groups    []groupJSON   `json:"groups"`
	Skipped   []skippedJSON `json:"skipped"`
}

type historyJSON struct {
	Commits []history.Commit `json:"commits"`
	Summary history.Summary  `json:"summary"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func newGroupJSON(g *spec.Group, root string) groupJSON {
	tags := g.Tags()
	if tags == nil {
		tags = []string{}
	}
	return groupJSON{
		Name:     g.Name,
		Title:    g.Title(),
		Status:   g.Status(),
		Priority: g.Priority(),
		Dialect:  g.Dialect(),
		Tags:     tags,
		Stories:  g.Stories(),
		Path:     relPath(root, g.Path),
		Archived: g.HasTag(scanner.ArchiveTag),
		Plan:     g.HasTag(spec.PlanTag),
		Progress: progressOf(g.Progress()),
	}
}

func newGroupDetailJSON(g *spec.Group, root string) groupDetailJSON {
	d := groupDetailJSON{
		groupJSON: newGroupJSON(g, root),
		Documents: []documentJSON{},
		Tasks:     newTaskTree(g.TaskTrees()),
	}
	for _, doc := range g.Documents() {
		d.Documents = append(d.Documents, documentJSON{
			Path:    relPath(root, doc.Path),
			Role:    doc.Role,
			Title:   doc.Title,
			Dialect: doc.Dialect,
			Body:    doc.Body,
		})
	}
	for _, ph := range g.Phases() {
		d.Phases = append(d.Phases, phaseJSON{
			Number:     ph.Number,
			Title:      ph.Title,
			Subtitle:   ph.Subtitle,
			Checkpoint: ph.Checkpoint,
			Progress:   progressOf(ph.Progress()),
			Tasks:      newTaskList(ph.Tasks),
		})
	}
	return d
}

// newTaskTree converts a task tree, keeping the nesting.
func newTaskTree(tasks []*spec.Task) []*taskJSON {
	out := make([]*taskJSON, 0, len(tasks))
	for _, t := range tasks {
		tj := newTask(t)
		if len(t.Children) > 0 {
			tj.Children = newTaskTree(t.Children)
		}
		out = append(out, tj)
	}
	return out
}

// newTaskList converts tasks without their children.
func newTaskList(tasks []*spec.Task) []*taskJSON {
	out := make([]*taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTask(t))
	}
	return out
}

func newTask(t *spec.Task) *taskJSON {
	return &taskJSON{
		Text:     t.Text,
		Done:     t.Done,
		ID:       t.ID,
		Parallel: t.Parallel,
		Story:    t.Story,
	}
}

func newSpecsJSON(snap *snapshot) specsJSON {
	result := snap.result
	s := scanner.Summarize(result.Groups)
	out := specsJSON{
		Root:      result.Root,
		ScannedAt: snap.at,
		Summary: summaryJSON{
			Groups:   s.Groups,
			Archived: s.Archived,
			ByStatus: s.ByStatus,
			Progress: progressOf(s.Progress),
		},
		Groups:  make([]groupJSON, 0, len(result.Groups)),
		Skipped: make([]skippedJSON, 0, len(result.Skipped)),
	}
	for _, g := range result.Groups {
		out.Groups = append(out.Groups, newGroupJSON(g, result.Root))
	}
	for _, sk := range result.Skipped {
		out.Skipped = append(out.Skipped, skippedJSON{Path: relPath(result.Root, sk.Path), Error: sk.Err.Error()})
	}
	return out
}

func relPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
