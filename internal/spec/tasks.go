package spec

import "math"

// ExtractTasks finds every checkbox line in text. It returns the tasks in
// document order and the forest built from their indentation. Both views
// hold the same *Task values.
func ExtractTasks(text, owner, sourceFile string) (flat, tree []*Task) {
	type frame struct {
		depth int
		task  *Task
	}
	var (
		stack      []frame
		indentUnit int
	)

	for _, m := range findCheckboxes(text) {
		var depth int
		switch {
		case m.indent == 0:
			depth = 0
		case indentUnit == 0:
			indentUnit = m.indent
			depth = 1
		default:
			depth = int(math.RoundToEven(float64(m.indent) / float64(indentUnit)))
		}

		clean, id, parallel, story := stripMarkers(m.text)
		task := &Task{
			Text:       clean,
			Done:       m.done,
			Owner:      owner,
			SourceFile: sourceFile,
			Depth:      depth,
			ID:         id,
			Parallel:   parallel,
			Story:      story,
		}
		flat = append(flat, task)

		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1].task
			parent.Children = append(parent.Children, task)
		} else {
			tree = append(tree, task)
		}
		stack = append(stack, frame{depth: depth, task: task})
	}
	return flat, tree
}
