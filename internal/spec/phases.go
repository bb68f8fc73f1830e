package spec

import (
	"strconv"
	"strings"
)

const subtitleSeparator = " - "

// SplitPhases cuts body into "## Phase N: title" spans and attributes the
// tasks of flat to them by the byte offset of their checkbox line. flat must
// have been extracted from the same body.
func SplitPhases(body string, flat []*Task) []*Phase {
	headings := phaseRe.FindAllStringSubmatchIndex(body, -1)
	if len(headings) == 0 {
		return nil
	}
	checkboxes := findCheckboxes(body)

	phases := make([]*Phase, 0, len(headings))
	for i, h := range headings {
		start := h[0]
		end := len(body)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}

		number, _ := strconv.Atoi(body[h[2]:h[3]])
		title := strings.TrimSpace(body[h[4]:h[5]])
		phase := &Phase{
			Number:     number,
			Title:      title,
			Checkpoint: checkpointLine(body[start:end]),
		}
		if _, sub, ok := strings.Cut(title, subtitleSeparator); ok {
			phase.Subtitle = strings.TrimSpace(sub)
		}

		for j, cb := range checkboxes {
			if cb.offset >= start && cb.offset < end && j < len(flat) {
				phase.Tasks = append(phase.Tasks, flat[j])
			}
		}
		phases = append(phases, phase)
	}
	return phases
}
