package scanner

import "github.com/nibzard/spec-view-go/internal/spec"

// Partition splits groups the way the dashboards list them. Archived groups
// are kept apart regardless of their other tags; plan sections are listed
// after regular groups.
type Partition struct {
	Active   []*spec.Group
	Plan     []*spec.Group
	Archived []*spec.Group
}

// ArchivedPlan returns the archived groups that came from plan sections.
func (p Partition) ArchivedPlan() []*spec.Group {
	var out []*spec.Group
	for _, g := range p.Archived {
		if g.HasTag(spec.PlanTag) {
			out = append(out, g)
		}
	}
	return out
}

// ArchivedOther returns the archived groups that did not come from plan
// sections.
func (p Partition) ArchivedOther() []*spec.Group {
	var out []*spec.Group
	for _, g := range p.Archived {
		if !g.HasTag(spec.PlanTag) {
			out = append(out, g)
		}
	}
	return out
}

// PartitionGroups sorts groups into active, plan and archived lists,
// preserving their relative order.
func PartitionGroups(groups []*spec.Group) Partition {
	var p Partition
	for _, g := range groups {
		switch {
		case g.HasTag(ArchiveTag):
			p.Archived = append(p.Archived, g)
		case g.HasTag(spec.PlanTag):
			p.Plan = append(p.Plan, g)
		default:
			p.Active = append(p.Active, g)
		}
	}
	return p
}

// Summary counts groups by status, skipping archived groups.
type Summary struct {
	Groups   int
	Archived int
	ByStatus map[spec.Status]int
	Progress spec.Progress
}

// Summarize computes dashboard totals over groups.
func Summarize(groups []*spec.Group) Summary {
	s := Summary{ByStatus: make(map[spec.Status]int)}
	for _, g := range groups {
		if g.HasTag(ArchiveTag) {
			s.Archived++
			continue
		}
		s.Groups++
		s.ByStatus[g.Status()]++
		p := g.Progress()
		s.Progress.Total += p.Total
		s.Progress.Done += p.Done
	}
	return s
}
