// Package spec parses markdown specification files into structured documents.
//
// A document is one markdown file with optional frontmatter. The body is
// classified into one of five dialects:
//
//   - "spec-kit": "## Phase N: title" headings plus checkbox lines carrying
//     task ids such as "T001"
//   - "kiro": any file stored under a .kiro directory (nested checkboxes)
//   - "wiggum": several "## " sections each carrying a "**Status:**" line
//   - "openspec": numbered "## 1." section headings
//   - "generic": everything else
//
// Detection order is fixed and is itself the disambiguation rule: path
// signals first, then phase+task-id, then status-per-section, then numbered
// sections.
//
// # Tasks
//
// Every "- [ ] text" / "- [x] text" line becomes a Task. Nesting depth comes
// from leading spaces: the first indented task sets the indent unit and all
// later depths are round(indent / unit). The flat task list and the task tree
// returned by ExtractTasks share the same *Task values.
//
// Parsed values are never mutated after construction. Consumers must treat
// documents, groups and tasks as read-only.
package spec
