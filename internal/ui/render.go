package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/nibzard/spec-view-go/internal/scanner"
	"github.com/nibzard/spec-view-go/internal/spec"
)

const (
	barWidth       = 20
	detailBarWidth = 30

	// autoStyle picks a glamour style from the terminal background.
	autoStyle = "auto"
)

type rowKind int

const (
	rowHeader rowKind = iota
	rowGroup
	rowEmpty
)

// row is one line of the group list.
type row struct {
	kind  rowKind
	text  string
	group *spec.Group
	depth int
}

// buildRows lays out the group list: regular groups, then the plan sections
// under an "Implementation Plan" header, then archived groups under an
// "Archive" header, where archived plan sections get their own nested
// "Implementation Plan" header. A non-empty filter keeps only groups with that status.
func buildRows(groups []*spec.Group, filter spec.Status) []row {
	var kept []*spec.Group
	for _, g := range groups {
		if filter == "" || g.Status() == filter {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		text := "No specs found. Run spec-view init"
		if len(groups) > 0 {
			text = fmt.Sprintf("No %s specs", filter)
		}
		return []row{{kind: rowEmpty, text: text}}
	}

	p := scanner.PartitionGroups(kept)
	var rows []row
	for _, g := range p.Active {
		rows = append(rows, row{kind: rowGroup, group: g})
	}
	if len(p.Plan) > 0 {
		progress := groupsProgress(p.Plan)
		rows = append(rows, row{kind: rowHeader, text: fmt.Sprintf("▸ Implementation Plan (%s)", progress)})
		for _, g := range p.Plan {
			rows = append(rows, row{kind: rowGroup, group: g, depth: 1})
		}
	}
	if len(p.Archived) > 0 {
		rows = append(rows, row{kind: rowHeader, text: fmt.Sprintf("▸ Archive (%d)", len(p.Archived))})
		for _, g := range p.ArchivedOther() {
			rows = append(rows, row{kind: rowGroup, group: g, depth: 1})
		}
		if plan := p.ArchivedPlan(); len(plan) > 0 {
			progress := groupsProgress(plan)
			rows = append(rows, row{kind: rowHeader, text: fmt.Sprintf("▸ Implementation Plan (%s)", progress), depth: 1})
			for _, g := range plan {
				rows = append(rows, row{kind: rowGroup, group: g, depth: 2})
			}
		}
	}
	return rows
}

func groupsProgress(groups []*spec.Group) spec.Progress {
	var p spec.Progress
	for _, g := range groups {
		gp := g.Progress()
		p.Total += gp.Total
		p.Done += gp.Done
	}
	return p
}

// groupLabel is the plain list label of a group: icon, title, task counts
// and a dialect badge for anything but generic markdown.
func groupLabel(g *spec.Group) string {
	var b strings.Builder
	b.WriteString(statusIcon(g.Status()))
	b.WriteString(" ")
	b.WriteString(g.Title())
	if p := g.Progress(); p.Total > 0 {
		fmt.Fprintf(&b, " (%s)", p)
	}
	if d := g.Dialect(); d != spec.DialectGeneric {
		fmt.Fprintf(&b, " [%s]", d)
	}
	return b.String()
}

// barCells splits width cells into filled and empty parts for p.
func barCells(p spec.Progress, width int) (filled, empty int) {
	filled = int(math.Round(float64(width) * float64(p.Percent()) / 100))
	if filled > width {
		filled = width
	}
	return filled, width - filled
}

// progressBar renders a bar of width cells.
func progressBar(p spec.Progress, width int) string {
	filled, empty := barCells(p, width)
	return barFullStyle.Render(strings.Repeat("━", filled)) +
		barEmptyStyle.Render(strings.Repeat("─", empty))
}

// statusBarText summarizes active groups: overall progress, group counts by
// status and the number of archived groups.
func statusBarText(groups []*spec.Group) string {
	s := scanner.Summarize(groups)
	var parts []string
	for _, status := range spec.Statuses() {
		if n := s.ByStatus[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	text := fmt.Sprintf("%d%%  %s tasks | %d specs", s.Progress.Percent(), s.Progress, s.Groups)
	if len(parts) > 0 {
		text += ": " + strings.Join(parts, ", ")
	}
	if s.Archived > 0 {
		text += fmt.Sprintf(" | %d archived", s.Archived)
	}
	return text
}

// taskLine renders one task without indentation.
func taskLine(t *spec.Task) string {
	box := "[ ]"
	if t.Done {
		box = "[x]"
	}
	parts := []string{box}
	if t.ID != "" {
		parts = append(parts, t.ID)
	}
	parts = append(parts, t.Text)
	if t.Parallel {
		parts = append(parts, "[P]")
	}
	if t.Story != "" {
		parts = append(parts, "["+t.Story+"]")
	}
	line := strings.Join(parts, " ")
	if n := t.SubtaskTotal(); n > 0 {
		line += fmt.Sprintf(" (%d/%d)", t.SubtaskDone(), n)
	}
	return line
}

// writeTaskTree writes tasks and their subtasks, two spaces per level.
func writeTaskTree(b *strings.Builder, tasks []*spec.Task, indent int) {
	for _, t := range tasks {
		b.WriteString(strings.Repeat("  ", indent))
		b.WriteString(taskLine(t))
		b.WriteString("\n")
		writeTaskTree(b, t.Children, indent+1)
	}
}

// phaseHeading renders a phase title. Title already carries the subtitle.
func phaseHeading(ph *spec.Phase) string {
	heading := fmt.Sprintf("Phase %d: %s", ph.Number, ph.Title)
	p := ph.Progress()
	if p.Total > 0 {
		heading += fmt.Sprintf(" (%s)", p)
		if p.Done == p.Total {
			heading += " ✓"
		}
	}
	return heading
}

// renderDetail renders everything known about a group. Markdown bodies of
// spec and design documents go through glamour; task documents are shown
// as their task structure.
func renderDetail(g *spec.Group, root, style string, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(g.Title()))
	b.WriteString("\n\n")

	p := g.Progress()
	fmt.Fprintf(&b, "%s %s | priority %s | %s\n",
		styledStatusIcon(g.Status()), g.Status(), g.Priority(), g.Dialect().Label())
	if p.Total > 0 {
		fmt.Fprintf(&b, "%s %d%% %s tasks\n", progressBar(p, detailBarWidth), p.Percent(), p)
	}
	if tags := g.Tags(); len(tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(tags, ", "))
	}
	if stories := g.Stories(); len(stories) > 0 {
		fmt.Fprintf(&b, "stories: %s\n", strings.Join(stories, ", "))
	}
	b.WriteString("\n")

	if phases := g.Phases(); len(phases) > 0 {
		for _, ph := range phases {
			b.WriteString(headerStyle.Render(phaseHeading(ph)))
			b.WriteString("\n")
			for _, t := range ph.Tasks {
				b.WriteString("  " + taskLine(t) + "\n")
			}
			if ph.Checkpoint != "" {
				b.WriteString(dimStyle.Render("  Checkpoint: "+ph.Checkpoint) + "\n")
			}
			b.WriteString("\n")
		}
	} else if trees := g.TaskTrees(); len(trees) > 0 {
		b.WriteString(headerStyle.Render("Tasks"))
		b.WriteString("\n")
		writeTaskTree(&b, trees, 1)
		b.WriteString("\n")
	}

	for _, doc := range g.Documents() {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("── %s: %s (%s)", doc.Role, doc.Title, relPath(root, doc.Path))))
		if doc.Role == spec.RoleTasks {
			continue
		}
		b.WriteString(renderMarkdown(doc.Body, style, width))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMarkdown renders body with glamour, falling back to the raw text.
func renderMarkdown(body, style string, width int) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == autoStyle {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return out
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
