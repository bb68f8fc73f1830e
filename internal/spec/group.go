package spec

// Group is a set of documents sharing a directory, or a single synthetic
// document produced from a plan section. Documents are keyed by role; adding
// a second document with the same role replaces the first in place.
type Group struct {
	Name string
	Path string

	files map[Role]*Document
	order []Role
}

// NewGroup creates an empty group.
func NewGroup(name, path string) *Group {
	return &Group{
		Name:  name,
		Path:  path,
		files: make(map[Role]*Document),
	}
}

// Add stores doc under its role. Last write wins.
func (g *Group) Add(doc *Document) {
	if g.files == nil {
		g.files = make(map[Role]*Document)
	}
	if _, exists := g.files[doc.Role]; !exists {
		g.order = append(g.order, doc.Role)
	}
	g.files[doc.Role] = doc
}

// File returns the document stored for role, or nil.
func (g *Group) File(role Role) *Document {
	return g.files[role]
}

// Documents returns the group's documents in insertion order.
func (g *Group) Documents() []*Document {
	docs := make([]*Document, 0, len(g.order))
	for _, role := range g.order {
		docs = append(docs, g.files[role])
	}
	return docs
}

// Title prefers the spec document's title, then any document's title, then
// the group name.
func (g *Group) Title() string {
	if spec := g.File(RoleSpec); spec != nil && spec.Title != "" {
		return spec.Title
	}
	for _, doc := range g.Documents() {
		if doc.Title != "" {
			return doc.Title
		}
	}
	return titleFromName(g.Name)
}

// Status prefers the spec document, then the first document.
func (g *Group) Status() Status {
	if spec := g.File(RoleSpec); spec != nil {
		return spec.Status
	}
	for _, doc := range g.Documents() {
		return doc.Status
	}
	return StatusDraft
}

// Priority prefers the spec document, then the first document.
func (g *Group) Priority() Priority {
	if spec := g.File(RoleSpec); spec != nil {
		return spec.Priority
	}
	for _, doc := range g.Documents() {
		return doc.Priority
	}
	return PriorityMedium
}

// Tags returns the union of all document tags in first-seen order.
func (g *Group) Tags() []string {
	var tags []string
	for _, doc := range g.Documents() {
		tags = appendUnique(tags, doc.Tags...)
	}
	return tags
}

// HasTag reports whether any document in the group carries tag.
func (g *Group) HasTag(tag string) bool {
	return containsString(g.Tags(), tag)
}

// Tasks concatenates the flat task lists of all documents.
func (g *Group) Tasks() []*Task {
	var tasks []*Task
	for _, doc := range g.Documents() {
		tasks = append(tasks, doc.Tasks...)
	}
	return tasks
}

// TaskTrees concatenates the task trees of all documents.
func (g *Group) TaskTrees() []*Task {
	var trees []*Task
	for _, doc := range g.Documents() {
		trees = append(trees, doc.TaskTree...)
	}
	return trees
}

// Progress returns task counts across all documents.
func (g *Group) Progress() Progress {
	return ProgressOf(g.Tasks())
}

// Phases returns the tasks document's phases, or the first document's that
// has any.
func (g *Group) Phases() []*Phase {
	if tasks := g.File(RoleTasks); tasks != nil && len(tasks.Phases) > 0 {
		return tasks.Phases
	}
	for _, doc := range g.Documents() {
		if len(doc.Phases) > 0 {
			return doc.Phases
		}
	}
	return nil
}

// Dialect returns the tasks document's dialect when it is not generic, or
// the first non-generic dialect of any document.
func (g *Group) Dialect() Dialect {
	if tasks := g.File(RoleTasks); tasks != nil && tasks.Dialect != DialectGeneric {
		return tasks.Dialect
	}
	for _, doc := range g.Documents() {
		if doc.Dialect != DialectGeneric {
			return doc.Dialect
		}
	}
	return DialectGeneric
}

// Stories returns the unique story references of all tasks, first-seen order.
func (g *Group) Stories() []string {
	var stories []string
	for _, t := range g.Tasks() {
		stories = appendUnique(stories, t.Story)
	}
	return stories
}
