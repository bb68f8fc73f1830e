package spec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nibzard/spec-view-go/internal/frontmatter"
)

// ErrNotUTF8 is wrapped by ParseError when a file is not valid UTF-8 text.
var ErrNotUTF8 = errors.New("file is not valid UTF-8")

// ParseError is returned when a file cannot be read as text.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// genericStems are file names too generic to serve as a title; the parent
// directory name is used instead.
var genericStems = map[string]bool{
	"spec":         true,
	"design":       true,
	"tasks":        true,
	"todo":         true,
	"requirements": true,
	"index":        true,
	"readme":       true,
}

// ParseFile reads and parses one markdown file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &ParseError{Path: path, Err: ErrNotUTF8}
	}
	return Parse(path, string(data)), nil
}

// Parse builds a Document from already-read file text. Malformed frontmatter
// degrades to empty metadata.
func Parse(path, text string) *Document {
	matter, body, _ := frontmatter.Split(text)

	stem := fileStem(path)
	parent := parentName(path)

	owner := parent
	if owner == "" {
		owner = stem
	}
	flat, tree := ExtractTasks(body, owner, path)

	doc := &Document{
		Path:     path,
		Title:    resolveTitle(matter, body, stem, parent),
		Status:   ParseStatus(matter.String("status")),
		Priority: ParsePriority(matter.String("priority")),
		Tags:     matter.Strings("tags"),
		Content:  text,
		Body:     body,
		Tasks:    flat,
		TaskTree: tree,
		Role:     RoleFromPath(path),
		Dialect:  DetectDialect(path, body),
	}

	doc.Phases = phasesFor(doc.Dialect, body, flat)
	return doc
}

// phasesFor returns the phase list for dialects that have phases.
func phasesFor(d Dialect, body string, flat []*Task) []*Phase {
	switch d {
	case DialectSpecKit:
		return SplitPhases(body, flat)
	default:
		return nil
	}
}

// RoleFromPath derives the document role from the file name.
func RoleFromPath(path string) Role {
	switch strings.ToLower(fileStem(path)) {
	case "design":
		return RoleDesign
	case "tasks", "todo":
		return RoleTasks
	default:
		return RoleSpec
	}
}

func resolveTitle(matter frontmatter.Matter, body, stem, parent string) string {
	if title := matter.String("title"); title != "" {
		return title
	}
	if title := firstH1(body); title != "" {
		return title
	}
	if genericStems[strings.ToLower(stem)] && parent != "" {
		return titleFromName(parent)
	}
	return titleFromName(stem)
}

func firstH1(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// titleFromName turns "user-auth_flow" into "User Auth Flow".
func titleFromName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	var b strings.Builder
	prevLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parentName(path string) string {
	name := filepath.Base(filepath.Dir(path))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
