package utils

import (
	"strings"
)

// NormalizeStatus normalizes a status filter value typed on the command line.
// Accepts various aliases for the multi-word status:
// - "in_progress", "in progress", "inprogress", "wip" -> "in-progress"
// Other values are lowercased and trimmed. Returns false for empty input.
func NormalizeStatus(input string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "in_progress", "in progress", "inprogress", "in-progress", "wip":
		return "in-progress", true
	case "":
		return "", false
	default:
		return s, true
	}
}

// NormalizeTag normalizes a tag by converting to lowercase and trimming whitespace.
func NormalizeTag(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
