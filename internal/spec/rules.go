package spec

import (
	"regexp"
	"strings"
)

var (
	taskLineRe     = regexp.MustCompile(`(?m)^( *)- \[([ xX])\]\*? (.+)$`)
	taskIDLineRe   = regexp.MustCompile(`- \[[ xX]\]\*? T\d+`)
	phaseRe        = regexp.MustCompile(`(?m)^## Phase (\d+):\s*(.+)$`)
	checkpointRe   = regexp.MustCompile(`(?m)^\*\*Checkpoint\*\*:\s*(.+)$`)
	taskIDRe       = regexp.MustCompile(`^(T\d+)\s+`)
	storyRe        = regexp.MustCompile(`\[(US\d+)\]`)
	numberedH2Re   = regexp.MustCompile(`(?m)^## \d+\.`)
	h2Re           = regexp.MustCompile(`(?m)^## (.+)$`)
	h2StartRe      = regexp.MustCompile(`(?m)^## `)
	statusLineRe   = regexp.MustCompile(`(?m)^\*\*Status:\*\*\s*(\S+)`)
	priorityLineRe = regexp.MustCompile(`\*\*Priority:\*\*\s*(\S+)`)
	tagsLineRe     = regexp.MustCompile(`(?m)\*\*Tags:\*\*\s*(.+?)(?:\s*\||\s*$)`)
	doneSuffixRe   = regexp.MustCompile(`(?i)\s*[—–-]+\s*DONE\s*$`)
	mdRefRe        = regexp.MustCompile(`\s*\([^)]*\.md\)`)
	slugRe         = regexp.MustCompile(`[^a-z0-9]+`)
)

const parallelMarker = "[P]"

// checkboxMatch is one checkbox line found in a body.
type checkboxMatch struct {
	offset int
	indent int
	done   bool
	text   string
}

// findCheckboxes returns every checkbox line in document order.
func findCheckboxes(text string) []checkboxMatch {
	var out []checkboxMatch
	for _, m := range taskLineRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, checkboxMatch{
			offset: m[0],
			indent: m[3] - m[2],
			done:   strings.EqualFold(text[m[4]:m[5]], "x"),
			text:   strings.TrimSpace(strings.TrimRight(text[m[6]:m[7]], "\r")),
		})
	}
	return out
}

func hasCheckbox(text string) bool {
	return taskLineRe.MatchString(text)
}

func hasTaskIDCheckbox(text string) bool {
	return taskIDLineRe.MatchString(text)
}

func hasPhaseHeading(text string) bool {
	return phaseRe.MatchString(text)
}

func hasNumberedSection(text string) bool {
	return numberedH2Re.MatchString(text)
}

func countH2(text string) int {
	return len(h2Re.FindAllStringIndex(text, -1))
}

func countStatusLines(text string) int {
	return len(statusLineRe.FindAllStringIndex(text, -1))
}

// statusLine returns the value of the first "**Status:**" line.
func statusLine(text string) (string, bool) {
	m := statusLineRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// priorityLine returns the value of the first "**Priority:**" annotation.
func priorityLine(text string) (string, bool) {
	m := priorityLineRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// tagsLine returns the raw comma list of the first "**Tags:**" annotation.
// The list ends at a "|" separator or the end of the line.
func tagsLine(text string) (string, bool) {
	m := tagsLineRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimRight(m[1], "\r"), true
}

func checkpointLine(text string) string {
	m := checkpointRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func hasDoneSuffix(heading string) bool {
	return doneSuffixRe.MatchString(heading)
}

// stripMarkers removes the task id prefix, the parallel marker and the story
// reference from a checkbox text.
func stripMarkers(text string) (clean, id string, parallel bool, story string) {
	if m := taskIDRe.FindStringSubmatchIndex(text); m != nil {
		id = text[m[2]:m[3]]
		text = text[m[1]:]
	}
	if strings.Contains(text, parallelMarker) {
		parallel = true
		text = strings.TrimSpace(strings.ReplaceAll(text, parallelMarker, ""))
	}
	if m := storyRe.FindStringSubmatch(text); m != nil {
		story = m[1]
		text = strings.TrimSpace(strings.ReplaceAll(text, m[0], ""))
	}
	return strings.TrimSpace(text), id, parallel, story
}

// Slugify lowercases text and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slugify(text string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(text), "-"), "-")
}
