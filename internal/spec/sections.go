package spec

import (
	"strings"

	"github.com/nibzard/spec-view-go/internal/utils"
)

// PlanTag is the tag carried by every plan section.
const PlanTag = "plan"

const specTitlePrefix = "spec:"

// SplitSections splits a plan body at "## " headings. Only sections that
// carry a "**Status:**" line or at least one checkbox are returned, in
// heading order.
func SplitSections(body, sourcePath string) []*PlanSection {
	var sections []*PlanSection
	for _, part := range splitAtH2(body) {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "## ") {
			continue
		}

		heading, sectionBody := part[3:], ""
		if nl := strings.IndexByte(part, '\n'); nl >= 0 {
			heading, sectionBody = part[3:nl], part[nl+1:]
		}
		heading = strings.TrimRight(heading, "\r")

		rawStatus, hasStatus := statusLine(sectionBody)
		if !hasStatus && !hasCheckbox(sectionBody) {
			continue
		}

		title := cleanSectionTitle(heading)
		status := StatusDraft
		switch {
		case hasDoneSuffix(heading):
			status = StatusDone
		case hasStatus:
			status = ParseStatus(rawStatus)
		}

		priority := PriorityMedium
		if raw, ok := priorityLine(sectionBody); ok {
			priority = ParsePriority(raw)
		}

		tags := []string{PlanTag}
		if raw, ok := tagsLine(sectionBody); ok {
			tags = appendUnique(tags, utils.SplitAndTrim(raw, ",")...)
		}

		flat, tree := ExtractTasks(sectionBody, Slugify(title), sourcePath)
		sections = append(sections, &PlanSection{
			Title:      title,
			Status:     status,
			Priority:   priority,
			Tags:       tags,
			Tasks:      flat,
			TaskTree:   tree,
			Body:       part,
			SourcePath: sourcePath,
		})
	}
	return sections
}

// splitAtH2 cuts body in front of every line starting with "## ". The text
// before the first heading is returned as the first part.
func splitAtH2(body string) []string {
	starts := h2StartRe.FindAllStringIndex(body, -1)
	parts := make([]string, 0, len(starts)+1)
	prev := 0
	for _, s := range starts {
		if s[0] > prev {
			parts = append(parts, body[prev:s[0]])
		}
		prev = s[0]
	}
	return append(parts, body[prev:])
}

// cleanSectionTitle drops a trailing "— DONE" marker, a leading "Spec:" label
// and parenthesised markdown file references.
func cleanSectionTitle(heading string) string {
	title := strings.TrimSpace(doneSuffixRe.ReplaceAllString(heading, ""))
	if strings.HasPrefix(strings.ToLower(title), specTitlePrefix) {
		title = strings.TrimSpace(title[len(specTitlePrefix):])
	}
	return strings.TrimSpace(mdRefRe.ReplaceAllString(title, ""))
}
