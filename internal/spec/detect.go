package spec

import (
	"path/filepath"
	"strings"
)

const kiroDirName = ".kiro"

// DetectDialect classifies a document body. The first matching rule wins:
// a .kiro path segment, then phase headings with task ids, then several
// status-bearing sections, then numbered sections.
func DetectDialect(path, body string) Dialect {
	switch {
	case isKiroPath(path):
		return DialectKiro
	case hasPhaseHeading(body) && hasTaskIDCheckbox(body):
		return DialectSpecKit
	case countH2(body) >= 2 && countStatusLines(body) >= 2:
		return DialectWiggum
	case hasNumberedSection(body):
		return DialectOpenSpec
	default:
		return DialectGeneric
	}
}

func isKiroPath(path string) bool {
	slashed := filepath.ToSlash(path)
	if strings.Contains(slashed, kiroDirName+"/") {
		return true
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == kiroDirName {
			return true
		}
	}
	return false
}
