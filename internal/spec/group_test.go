package spec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGroupAddLastWriteWins(t *testing.T) {
	g := NewGroup("auth", "/p/specs/auth")
	first := &Document{Path: "/p/specs/auth/spec.md", Role: RoleSpec, Title: "First"}
	design := &Document{Path: "/p/specs/auth/design.md", Role: RoleDesign, Title: "Design"}
	second := &Document{Path: "/p/specs/auth/requirements.md", Role: RoleSpec, Title: "Second"}

	g.Add(first)
	g.Add(design)
	g.Add(second)

	docs := g.Documents()
	if len(docs) != 2 {
		t.Fatalf("Documents(): got %d, want 2", len(docs))
	}
	if docs[0] != second || docs[1] != design {
		t.Errorf("replacement should keep the role's original position")
	}
	if g.File(RoleSpec) != second {
		t.Errorf("File(spec) should be the last added spec document")
	}
	if g.File(RoleTasks) != nil {
		t.Errorf("File(tasks) should be nil")
	}
}

func TestGroupDerivedFields(t *testing.T) {
	tasksFlat, tasksTree := ExtractTasks("- [x] T001 [US1] a\n  - [ ] b\n- [ ] T002 [US2] c\n", "auth", "tasks.md")
	specFlat, specTree := ExtractTasks("- [x] d\n", "auth", "spec.md")

	g := NewGroup("auth", "/p/specs/auth")
	g.Add(&Document{
		Role:     RoleTasks,
		Title:    "Tasks",
		Status:   StatusReady,
		Priority: PriorityLow,
		Tags:     []string{"backend", "api"},
		Tasks:    tasksFlat,
		TaskTree: tasksTree,
		Dialect:  DialectSpecKit,
		Phases:   []*Phase{{Number: 1, Title: "Setup"}},
	})
	g.Add(&Document{
		Role:     RoleSpec,
		Title:    "User Auth",
		Status:   StatusInProgress,
		Priority: PriorityHigh,
		Tags:     []string{"api", "security"},
		Tasks:    specFlat,
		TaskTree: specTree,
		Dialect:  DialectGeneric,
	})

	if got := g.Title(); got != "User Auth" {
		t.Errorf("Title(): got %q", got)
	}
	if got := g.Status(); got != StatusInProgress {
		t.Errorf("Status(): got %q", got)
	}
	if got := g.Priority(); got != PriorityHigh {
		t.Errorf("Priority(): got %q", got)
	}
	if diff := cmp.Diff([]string{"backend", "api", "security"}, g.Tags()); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
	if !g.HasTag("security") || g.HasTag("archive") {
		t.Errorf("HasTag mismatch")
	}
	p := g.Progress()
	if p.Total != 4 || p.Done != 2 || p.Percent() != 50 {
		t.Errorf("Progress(): got %s (%d%%)", p, p.Percent())
	}
	if got := len(g.TaskTrees()); got != 3 {
		t.Errorf("TaskTrees(): got %d roots, want 3", got)
	}
	if got := len(g.Phases()); got != 1 {
		t.Errorf("Phases(): got %d, want 1", got)
	}
	if got := g.Dialect(); got != DialectSpecKit {
		t.Errorf("Dialect(): got %q", got)
	}
	if diff := cmp.Diff([]string{"US1", "US2"}, g.Stories()); diff != "" {
		t.Errorf("Stories() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupFallbacks(t *testing.T) {
	empty := NewGroup("user-auth", "/p/specs/user-auth")
	if got := empty.Title(); got != "User Auth" {
		t.Errorf("empty Title(): got %q", got)
	}
	if empty.Status() != StatusDraft || empty.Priority() != PriorityMedium {
		t.Errorf("empty defaults: got %s/%s", empty.Status(), empty.Priority())
	}
	if empty.Dialect() != DialectGeneric {
		t.Errorf("empty Dialect(): got %q", empty.Dialect())
	}
	if p := empty.Progress(); p.Total != 0 || p.Percent() != 0 {
		t.Errorf("empty Progress(): got %s", p)
	}

	g := NewGroup("auth", "/p/specs/auth")
	g.Add(&Document{Role: RoleDesign, Title: "", Status: StatusBlocked, Priority: PriorityCritical, Dialect: DialectGeneric})
	g.Add(&Document{Role: RoleTasks, Title: "Task List", Status: StatusDone, Dialect: DialectGeneric})
	g.Add(&Document{Role: RoleSpec, Title: "", Status: StatusReady, Priority: PriorityLow, Dialect: DialectOpenSpec})

	if got := g.Title(); got != "Task List" {
		t.Errorf("Title(): got %q, want first non-empty", got)
	}
	if got := g.Status(); got != StatusReady {
		t.Errorf("Status(): got %q, want spec document's", got)
	}
	if got := g.Dialect(); got != DialectOpenSpec {
		t.Errorf("Dialect(): got %q, want first non-generic", got)
	}

	noSpec := NewGroup("x", "/p/x")
	noSpec.Add(&Document{Role: RoleDesign, Status: StatusBlocked, Priority: PriorityCritical})
	noSpec.Add(&Document{Role: RoleTasks, Status: StatusDone, Priority: PriorityLow})
	if noSpec.Status() != StatusBlocked || noSpec.Priority() != PriorityCritical {
		t.Errorf("without spec: got %s/%s, want first document's", noSpec.Status(), noSpec.Priority())
	}
}

func TestGroupPhasesFallBackToAnyDocument(t *testing.T) {
	g := NewGroup("x", "/p/x")
	g.Add(&Document{Role: RoleTasks})
	g.Add(&Document{Role: RoleSpec, Phases: []*Phase{{Number: 1}, {Number: 2}}})
	if got := len(g.Phases()); got != 2 {
		t.Errorf("Phases(): got %d, want 2", got)
	}
}
