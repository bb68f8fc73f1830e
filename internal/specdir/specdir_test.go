package specdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("# x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dir default", DirPath(""), ".spec-view"},
		{"dir dot", DirPath("."), ".spec-view"},
		{"dir nested", DirPath("/p"), filepath.Join("/p", ".spec-view")},
		{"config default", ConfigPath(""), filepath.Join(".spec-view", "config.yaml")},
		{"config nested", ConfigPath("/p"), filepath.Join("/p", ".spec-view", "config.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "nothing",
			files: []string{"README.md", "src/main.go"},
			want:  []string{},
		},
		{
			name:  "specs dir",
			files: []string{"specs/auth/spec.md", "specs/auth/tasks.md"},
			want:  []string{"specs"},
		},
		{
			name:  "empty marker ignored",
			files: []string{"docs/diagram.png"},
			want:  []string{},
		},
		{
			name:  "kiro prefers specs",
			files: []string{".kiro/specs/auth/tasks.md", ".kiro/steering/product.md"},
			want:  []string{".kiro/specs"},
		},
		{
			name:  "kiro without specs",
			files: []string{".kiro/steering/product.md"},
			want:  []string{".kiro"},
		},
		{
			name: "openspec expansion",
			files: []string{
				"openspec/changes/add-auth/specs/auth/spec.md",
				"openspec/changes/add-auth/tasks.md",
				"openspec/changes/fix-ui/proposal.md",
				"openspec/changes/archive/old/tasks.md",
				"openspec/specs/core/spec.md",
			},
			want: []string{
				"openspec/changes/add-auth/specs",
				"openspec/changes/fix-ui",
				"openspec/specs",
			},
		},
		{
			name:  "nested project",
			files: []string{"packages/api/specs/a.md", "packages/api/specs/b.md", "docs/guide.md"},
			want:  []string{"packages/api/specs", "docs"},
		},
		{
			name:  "skipped dirs",
			files: []string{"node_modules/pkg/specs/a.md", "build/docs/b.md"},
			want:  []string{},
		},
		{
			name:  "too deep",
			files: []string{"a/b/c/d/e/specs/x.md"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			touch(t, root, tt.files...)
			sources, err := Detect(root)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, Paths(sources)); diff != "" {
				t.Errorf("paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectSortsByMarkdownCount(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "docs/a.md", "specs/a.md", "specs/b.md", "specs/c.md")
	sources, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources: got %d, want 2", len(sources))
	}
	if sources[0].Path != "specs" || sources[0].Markdown != 3 || sources[0].Kind != "spec-view" {
		t.Errorf("first source: got %+v", sources[0])
	}
	if sources[1].Description != "docs/ directory" {
		t.Errorf("second description: got %q", sources[1].Description)
	}
}

func TestDetectMissingRoot(t *testing.T) {
	if _, err := Detect(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("Detect() on missing root: want error")
	}
}
