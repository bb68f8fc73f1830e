package cmd

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nibzard/spec-view-go/internal/scanner"
	"github.com/nibzard/spec-view-go/internal/spec"
	"github.com/nibzard/spec-view-go/internal/specdir"
	"github.com/nibzard/spec-view-go/internal/utils"
)

const noSpecsHint = "No specs found. Run 'spec-view init' to create an example, or set spec_paths in .spec-view/config.yaml."

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// listCommand lists spec groups with deterministic ordering.
func listCommand(e *env, args []string) error {
	// Parse list-specific flags
	fs := flag.NewFlagSet("spec-view list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	statusFilter := fs.String("status", "", "Filter by status (draft|ready|in-progress|done|blocked)")
	tagFilter := fs.String("tag", "", "Filter by tag")
	verbose := fs.Bool("v", false, "Show tasks")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	var status spec.Status
	if *statusFilter != "" {
		normalized, _ := utils.NormalizeStatus(*statusFilter)
		if !slices.Contains(spec.Statuses(), spec.Status(normalized)) {
			return fmt.Errorf("invalid status %q (expected draft|ready|in-progress|done|blocked)", *statusFilter)
		}
		status = spec.Status(normalized)
	}
	tag := utils.NormalizeTag(*tagFilter)

	result, err := e.scan()
	if err != nil {
		return err
	}
	if len(result.Groups) == 0 {
		fmt.Fprintln(stdout, noSpecsHint)
		return nil
	}

	var groups []*spec.Group
	for _, g := range result.Groups {
		if status != "" && g.Status() != status {
			continue
		}
		if tag != "" && !hasTag(g, tag) {
			continue
		}
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		fmt.Fprintln(stdout, "No specs match the filter.")
		return nil
	}

	printGroupTable(stdout, groups)
	if *verbose {
		for _, g := range groups {
			printGroupTasks(stdout, g)
		}
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, summaryLine(groups))
	return nil
}

func hasTag(g *spec.Group, tag string) bool {
	for _, t := range g.Tags() {
		if utils.NormalizeTag(t) == tag {
			return true
		}
	}
	return false
}

// printGroupTable prints active groups first, then plan sections, then the
// archive, one row per group.
func printGroupTable(w io.Writer, groups []*spec.Group) {
	p := scanner.PartitionGroups(groups)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Name", "Status", "Priority", "Tasks", "Files", "Tags").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, section := range [][]*spec.Group{p.Active, p.Plan, p.Archived} {
		for _, g := range section {
			t.Row(groupRow(g)...)
		}
	}
	fmt.Fprintln(w, t.String())
}

func groupRow(g *spec.Group) []string {
	tasks := "-"
	if p := g.Progress(); p.Total > 0 {
		tasks = fmt.Sprintf("%s (%d%%)", p, p.Percent())
	}
	var roles []string
	for _, doc := range g.Documents() {
		roles = append(roles, string(doc.Role))
	}
	slices.Sort(roles)
	tags := "-"
	if t := g.Tags(); len(t) > 0 {
		tags = strings.Join(t, ", ")
	}
	return []string{
		g.Title(),
		string(g.Status()),
		string(g.Priority()),
		tasks,
		strings.Join(roles, ", "),
		tags,
	}
}

func printGroupTasks(w io.Writer, g *spec.Group) {
	trees := g.TaskTrees()
	if len(trees) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", g.Title())
	writeTasks(w, trees, 1)
}

func writeTasks(w io.Writer, tasks []*spec.Task, depth int) {
	for _, t := range tasks {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		}
		text := t.Text
		if t.ID != "" {
			text = t.ID + " " + text
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), box, text)
		writeTasks(w, t.Children, depth+1)
	}
}

// summaryLine counts non-archived groups by status in display order.
func summaryLine(groups []*spec.Group) string {
	s := scanner.Summarize(groups)
	var parts []string
	for _, status := range spec.Statuses() {
		if n := s.ByStatus[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	line := fmt.Sprintf("%d specs", s.Groups)
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}
	if s.Progress.Total > 0 {
		line += fmt.Sprintf(" | %s tasks (%d%%)", s.Progress, s.Progress.Percent())
	}
	if s.Archived > 0 {
		line += fmt.Sprintf(" | %d archived", s.Archived)
	}
	return line
}

// validateCommand reports common format issues in spec files.
func validateCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	result, err := e.scan()
	if err != nil {
		return err
	}
	if len(result.Groups) == 0 {
		fmt.Fprintln(stdout, noSpecsHint)
		return nil
	}

	issues := validationIssues(result)
	if len(issues) == 0 {
		fmt.Fprintf(stdout, "All %d spec group(s) look good!\n", len(result.Groups))
		return nil
	}
	fmt.Fprintf(stdout, "Found %d issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(stdout, "  %s\n", issue)
	}
	return fmt.Errorf("validation found %d issue(s)", len(issues))
}

// validationIssues checks every document once. Plan sections share a file,
// so each path is only reported for its first document.
func validationIssues(result *scanner.Result) []string {
	var issues []string
	seen := make(map[string]bool)
	for _, sk := range result.Skipped {
		issues = append(issues, fmt.Sprintf("%s: %v", relTo(result.Root, sk.Path), sk.Err))
	}
	for _, g := range result.Groups {
		if g.HasTag(spec.PlanTag) {
			continue
		}
		for _, doc := range g.Documents() {
			if seen[doc.Path] {
				continue
			}
			seen[doc.Path] = true
			path := relTo(result.Root, doc.Path)
			if !hasFrontmatterKey(doc.Content, "title") && !hasHeading(doc.Body) {
				issues = append(issues, path+": missing explicit title")
			}
			if doc.Status == spec.StatusDraft && !hasFrontmatterKey(doc.Content, "status") {
				issues = append(issues, path+": no status in frontmatter (defaulting to draft)")
			}
			if strings.TrimSpace(doc.Body) == "" {
				issues = append(issues, path+": empty body content")
			}
		}
	}
	return issues
}

func hasFrontmatterKey(content, key string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, key+":") || strings.HasPrefix(line, key+" =") || strings.HasPrefix(line, key+"=") {
			return true
		}
	}
	return false
}

func hasHeading(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "# ") {
			return true
		}
	}
	return false
}

// detectCommand shows every spec location found under the root.
func detectCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	sources, err := specdir.Detect(e.cfg.Root)
	if err != nil {
		return fmt.Errorf("detecting spec sources: %w", err)
	}
	if len(sources) == 0 {
		fmt.Fprintln(stdout, "No spec files detected in this project.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Path", "Source", "Files", "Description").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, s := range sources {
		t.Row(s.Path, s.Kind, fmt.Sprint(s.Markdown), s.Description)
	}
	fmt.Fprintln(stdout, t.String())
	return nil
}
