package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/spec-view-go/internal/scanner"
	"github.com/nibzard/spec-view-go/internal/spec"
)

func group(t *testing.T, name string, docs ...*spec.Document) *spec.Group {
	t.Helper()
	g := spec.NewGroup(name, "/project/specs/"+name)
	for _, d := range docs {
		g.Add(d)
	}
	return g
}

func doc(name, file, text string, tags ...string) *spec.Document {
	d := spec.Parse("/project/specs/"+name+"/"+file, text)
	d.Tags = append(d.Tags, tags...)
	return d
}

func fixtureGroups(t *testing.T) []*spec.Group {
	t.Helper()
	return []*spec.Group{
		group(t, "auth", doc("auth", "spec.md", "---\nstatus: in-progress\n---\n# Auth\n\n- [x] Login\n- [ ] Logout\n")),
		group(t, "billing", doc("billing", "spec.md", "---\nstatus: ready\n---\n# Billing\n")),
		group(t, "core", doc("core", "spec.md", "---\nstatus: done\n---\n# Core\n- [x] Parse\n", spec.PlanTag)),
		group(t, "old", doc("old", "spec.md", "# Old\n", scanner.ArchiveTag)),
	}
}

func rowTexts(rows []row) []string {
	var out []string
	for _, r := range rows {
		switch r.kind {
		case rowGroup:
			out = append(out, strings.Repeat("  ", r.depth)+r.group.Name)
		default:
			out = append(out, strings.Repeat("  ", r.depth)+r.text)
		}
	}
	return out
}

func TestBuildRows(t *testing.T) {
	groups := fixtureGroups(t)

	tests := []struct {
		name   string
		groups []*spec.Group
		filter spec.Status
		want   []string
	}{
		{
			name:   "all sections",
			groups: groups,
			want: []string{
				"auth",
				"billing",
				"▸ Implementation Plan (1/1)",
				"  core",
				"▸ Archive (1)",
				"  old",
			},
		},
		{
			name: "archived plan sections nest under their own header",
			groups: append(fixtureGroups(t),
				group(t, "phase-1", doc("phase-1", "spec.md", "# Phase 1\n- [x] Scaffold\n- [x] Wire\n", spec.PlanTag, scanner.ArchiveTag)),
				group(t, "phase-2", doc("phase-2", "spec.md", "# Phase 2\n- [ ] Ship\n", spec.PlanTag, scanner.ArchiveTag)),
			),
			want: []string{
				"auth",
				"billing",
				"▸ Implementation Plan (1/1)",
				"  core",
				"▸ Archive (3)",
				"  old",
				"  ▸ Implementation Plan (2/3)",
				"    phase-1",
				"    phase-2",
			},
		},
		{
			name:   "filter",
			groups: groups,
			filter: spec.StatusReady,
			want:   []string{"billing"},
		},
		{
			name:   "filter with no match",
			groups: groups,
			filter: spec.StatusBlocked,
			want:   []string{"No blocked specs"},
		},
		{
			name: "no groups",
			want: []string{"No specs found. Run spec-view init"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowTexts(buildRows(tt.groups, tt.filter))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("buildRows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroupLabel(t *testing.T) {
	tests := []struct {
		name string
		g    *spec.Group
		want string
	}{
		{
			name: "with tasks",
			g:    group(t, "auth", doc("auth", "spec.md", "---\nstatus: in-progress\n---\n# Auth\n- [x] a\n- [ ] b\n")),
			want: "◔ Auth (1/2)",
		},
		{
			name: "without tasks",
			g:    group(t, "notes", doc("notes", "spec.md", "# Notes\n")),
			want: "○ Notes",
		},
		{
			name: "dialect badge",
			g: group(t, "api", doc("api", "tasks.md",
				"# API\n\n## Phase 1: Setup\n\n- [ ] T001 Create project\n")),
			want: "○ API (0/1) [spec-kit]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := groupLabel(tt.g); got != tt.want {
				t.Errorf("groupLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBarCells(t *testing.T) {
	tests := []struct {
		p      spec.Progress
		width  int
		filled int
	}{
		{spec.Progress{}, 20, 0},
		{spec.Progress{Total: 2, Done: 1}, 20, 10},
		{spec.Progress{Total: 3, Done: 1}, 20, 7},
		{spec.Progress{Total: 4, Done: 4}, 20, 20},
		{spec.Progress{Total: 3, Done: 2}, 30, 20},
	}
	for _, tt := range tests {
		filled, empty := barCells(tt.p, tt.width)
		if filled != tt.filled || filled+empty != tt.width {
			t.Errorf("barCells(%v, %d) = %d, %d; want %d filled", tt.p, tt.width, filled, empty, tt.filled)
		}
	}
}

func TestStatusBarText(t *testing.T) {
	got := statusBarText(fixtureGroups(t))
	want := "66%  2/3 tasks | 3 specs: 1 ready, 1 in-progress, 1 done | 1 archived"
	if got != want {
		t.Errorf("statusBarText() = %q, want %q", got, want)
	}
	if got := statusBarText(nil); got != "0%  0/0 tasks | 0 specs" {
		t.Errorf("statusBarText(nil) = %q", got)
	}
}

func TestTaskTree(t *testing.T) {
	d := doc("api", "tasks.md", "# Tasks\n- [ ] T001 [P] [US1] Build parser\n  - [x] Lexer\n  - [ ] Grammar\n- [x] Ship\n")
	var b strings.Builder
	writeTaskTree(&b, d.TaskTree, 0)
	want := "[ ] T001 Build parser [P] [US1] (1/2)\n" +
		"  [x] Lexer\n" +
		"  [ ] Grammar\n" +
		"[x] Ship\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("writeTaskTree() mismatch (-want +got):\n%s", diff)
	}
}

func TestPhaseHeading(t *testing.T) {
	done := &spec.Task{Done: true}
	open := &spec.Task{}
	tests := []struct {
		ph   *spec.Phase
		want string
	}{
		{&spec.Phase{Number: 1, Title: "Setup"}, "Phase 1: Setup"},
		{&spec.Phase{Number: 2, Title: "Core - Priority P1", Subtitle: "Priority P1", Tasks: []*spec.Task{done, open}}, "Phase 2: Core - Priority P1 (1/2)"},
		{&spec.Phase{Number: 3, Title: "Polish", Tasks: []*spec.Task{done}}, "Phase 3: Polish (1/1) ✓"},
	}
	for _, tt := range tests {
		if got := phaseHeading(tt.ph); got != tt.want {
			t.Errorf("phaseHeading() = %q, want %q", got, tt.want)
		}
	}
}

func TestRenderDetail(t *testing.T) {
	g := group(t, "auth",
		doc("auth", "spec.md", "---\nstatus: ready\npriority: high\ntags: [security]\n---\n# Auth\n\nUsers sign in with tokens.\n"),
		doc("auth", "tasks.md", "# Tasks\n- [x] Login\n- [ ] Logout\n"),
	)
	out := renderDetail(g, "/project", "notty", 80)
	for _, want := range []string{
		"Auth",
		"ready | priority high | Generic",
		"50% 1/2 tasks",
		"tags: security",
		"Tasks",
		"[x] Login",
		"[ ] Logout",
		"spec: Auth (specs/auth/spec.md)",
		"Users sign in with tokens.",
		"tasks: Tasks (specs/auth/tasks.md)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderDetail() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderDetailPhases(t *testing.T) {
	g := group(t, "api", doc("api", "tasks.md",
		"# API\n\n## Phase 1: Setup\n\n- [x] T001 Create project\n\n**Checkpoint**: project builds\n\n## Phase 2: Core\n\n- [ ] T002 Add routes\n"))
	out := renderDetail(g, "", "notty", 80)
	for _, want := range []string{"Phase 1: Setup (1/1) ✓", "T001 Create project", "Phase 2: Core (0/1)", "T002 Add routes"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderDetail() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	if got := renderMarkdown("  \n", "notty", 80); got != "" {
		t.Errorf("renderMarkdown(blank) = %q", got)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) *tuiModel {
	t.Helper()
	result := &scanner.Result{Root: "/project", Groups: fixtureGroups(t)}
	m := newTUIModel(func() (*scanner.Result, error) { return result, nil }, &tuiConfig{style: "notty"})
	m.Update(scanMsg{result: result})
	return m
}

func TestModelNavigation(t *testing.T) {
	m := newTestModel(t)

	if g := m.selected(); g == nil || g.Name != "auth" {
		t.Fatalf("initial selection = %v, want auth", g)
	}

	var names []string
	for range 4 {
		m.Update(key("j"))
		names = append(names, m.selected().Name)
	}
	if diff := cmp.Diff([]string{"billing", "core", "old", "old"}, names); diff != "" {
		t.Errorf("moving down mismatch (-want +got):\n%s", diff)
	}

	m.Update(key("k"))
	if got := m.selected().Name; got != "core" {
		t.Errorf("after up: selected %q, want core", got)
	}
}

func TestModelFilter(t *testing.T) {
	m := newTestModel(t)

	m.Update(key("2"))
	if m.filter != spec.StatusReady {
		t.Fatalf("filter = %q, want ready", m.filter)
	}
	if got := m.selected(); got == nil || got.Name != "billing" {
		t.Errorf("filtered selection = %v, want billing", got)
	}
	if !strings.Contains(m.View(), "Filter: ready") {
		t.Errorf("View() does not show the filter")
	}

	m.Update(key("5"))
	if got := m.selected(); got != nil {
		t.Errorf("selection with no matches = %q, want none", got.Name)
	}

	m.Update(key("0"))
	if m.filter != "" || len(m.rows) != 6 {
		t.Errorf("clearing filter: filter=%q rows=%d", m.filter, len(m.rows))
	}
}

func TestModelDetail(t *testing.T) {
	m := newTestModel(t)

	m.Update(key("enter"))
	if m.detail == nil || m.detail.Name != "auth" {
		t.Fatalf("enter did not open auth")
	}
	if !strings.Contains(m.View(), "[x] Login") {
		t.Errorf("detail view missing tasks:\n%s", m.View())
	}

	m.Update(key("esc"))
	if m.detail != nil {
		t.Errorf("esc did not close the detail pane")
	}
}

func TestModelRescanKeepsSelection(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("j"))
	m.Update(key("enter"))

	groups := fixtureGroups(t)
	refreshed := &scanner.Result{Root: "/project", Groups: append([]*spec.Group{
		group(t, "aaa", doc("aaa", "spec.md", "# First\n")),
	}, groups...)}
	m.Update(scanMsg{result: refreshed})

	if got := m.selected().Name; got != "billing" {
		t.Errorf("selection after rescan = %q, want billing", got)
	}
	if m.detail == nil || m.detail != refreshed.Group("billing") {
		t.Errorf("detail pane not moved to the refreshed group")
	}
}

func TestModelScanError(t *testing.T) {
	m := newTUIModel(nil, &tuiConfig{style: "notty"})
	m.Update(scanMsg{err: errors.New("boom")})
	view := m.View()
	if !strings.Contains(view, "Error scanning specs:") || !strings.Contains(view, "boom") {
		t.Errorf("View() does not show the scan error:\n%s", view)
	}
}

func TestModelChangeTriggersRescan(t *testing.T) {
	scans := 0
	result := &scanner.Result{}
	ch := make(chan struct{}, 1)
	m := newTUIModel(func() (*scanner.Result, error) {
		scans++
		return result, nil
	}, &tuiConfig{style: "notty", changes: ch})

	_, cmd := m.Update(changeMsg{})
	if cmd == nil {
		t.Fatal("changeMsg returned no command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("changeMsg command = %T, want a batch of two", cmd())
	}
	if msg, ok := batch[0]().(scanMsg); !ok || msg.result != result {
		t.Errorf("first command did not rescan")
	}
	ch <- struct{}{}
	if _, ok := batch[1]().(changeMsg); !ok {
		t.Errorf("second command did not wait for the next change")
	}
	if scans != 1 {
		t.Errorf("scans = %d, want 1", scans)
	}
}

func TestModelHelpAndQuit(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Errorf("help screen not shown")
	}
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q did not quit")
	}
}
