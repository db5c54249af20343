package timeline

import (
	"sort"

	"github.com/atelierworks/timberline/internal/domain"
)

// Item is a schedule item decorated with derived, non-persisted fields.
// Progress and normalized parent spans are recomputed on every call to
// Decorate and never written back to storage.
type Item struct {
	domain.ScheduleItem
	Progress int // 0-100, derived
}

// Decorate applies progress derivation and parent-span normalization to a
// snapshot of items. The input is not mutated; callers receive fresh
// copies. Running Decorate twice on the same input yields identical
// output.
//
// Progress rules, first match wins, applied leaves-first:
//  1. milestone: 100 when completed, else 0
//  2. linked measurements: unweighted mean of their completion percentages
//  3. explicit override value
//  4. children: mean of their already-derived progress
//  5. zero
//
// Phase items skip rules 1-3: they are pure containers and always roll up
// from children. Any item with children gets its span replaced by the
// envelope of its children's (already normalized) spans.
func Decorate(items []*domain.ScheduleItem, links map[string][]domain.Measurement) []*Item {
	decorated := make([]*Item, len(items))
	byID := make(map[string]*Item, len(items))
	for i, src := range items {
		copied := *src
		it := &Item{ScheduleItem: copied}
		decorated[i] = it
		byID[it.ID] = it
	}

	children := make(map[string][]*Item)
	for _, it := range decorated {
		if it.ParentID != nil {
			children[*it.ParentID] = append(children[*it.ParentID], it)
		}
	}

	// Deepest first: children are resolved before their parents.
	order := make([]*Item, len(decorated))
	copy(order, decorated)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].HierarchyLevel > order[j].HierarchyLevel
	})

	for _, it := range order {
		kids := children[it.ID]
		it.Progress = deriveProgress(it, kids, links[it.ID])
		if len(kids) > 0 {
			normalizeSpan(it, kids)
		}
	}
	return decorated
}

func deriveProgress(it *Item, kids []*Item, measurements []domain.Measurement) int {
	if it.IsPhase() {
		return childMean(kids)
	}
	if it.IsMilestone() {
		if it.Completed {
			return 100
		}
		return 0
	}
	if len(measurements) > 0 {
		sum := 0
		for _, m := range measurements {
			sum += m.CompletionPct
		}
		return sum / len(measurements)
	}
	if it.ProgressOverride != nil {
		return *it.ProgressOverride
	}
	return childMean(kids)
}

func childMean(kids []*Item) int {
	if len(kids) == 0 {
		return 0
	}
	sum := 0
	for _, k := range kids {
		sum += k.Progress
	}
	return sum / len(kids)
}

// normalizeSpan replaces the parent's span with the envelope of its
// children's spans. Children at deeper levels were processed first, so
// the envelope cascades up through grandparents.
func normalizeSpan(it *Item, kids []*Item) {
	start, end := kids[0].StartDate, kids[0].EndDate
	for _, k := range kids[1:] {
		if k.StartDate.Before(start) {
			start = k.StartDate
		}
		if k.EndDate.After(end) {
			end = k.EndDate
		}
	}
	it.StartDate = start
	it.EndDate = end
}

// DisplayOrder arranges decorated items for rendering: the four phases in
// canonical order each followed by their descendants depth-first by sort
// order, then top-level milestones, then orphaned top-level tasks. Ties
// break by name, so the ordering is stable for a given input.
func DisplayOrder(items []*Item) []*Item {
	children := make(map[string][]*Item)
	var phases, rootMilestones, rootTasks []*Item
	for _, it := range items {
		if it.ParentID != nil {
			children[*it.ParentID] = append(children[*it.ParentID], it)
			continue
		}
		switch {
		case it.IsPhase():
			phases = append(phases, it)
		case it.IsMilestone():
			rootMilestones = append(rootMilestones, it)
		default:
			rootTasks = append(rootTasks, it)
		}
	}
	bySortOrder := func(group []*Item) {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].SortOrder != group[j].SortOrder {
				return group[i].SortOrder < group[j].SortOrder
			}
			return group[i].Name < group[j].Name
		})
	}
	for key := range children {
		bySortOrder(children[key])
	}
	bySortOrder(rootMilestones)
	bySortOrder(rootTasks)

	sort.SliceStable(phases, func(i, j int) bool {
		return phaseRank(phases[i]) < phaseRank(phases[j])
	})

	var out []*Item
	var appendSubtree func(it *Item)
	appendSubtree = func(it *Item) {
		out = append(out, it)
		for _, child := range children[it.ID] {
			appendSubtree(child)
		}
	}
	for _, p := range phases {
		appendSubtree(p)
	}
	for _, m := range rootMilestones {
		appendSubtree(m)
	}
	for _, t := range rootTasks {
		appendSubtree(t)
	}
	return out
}

func phaseRank(it *Item) int {
	if it.PhaseKey != nil {
		for i, key := range domain.CanonicalPhaseOrder {
			if *it.PhaseKey == key {
				return i
			}
		}
	}
	return len(domain.CanonicalPhaseOrder)
}

// VisibleItems filters a display-ordered list down to items with no
// collapsed ancestor.
func VisibleItems(ordered []*Item, collapsed map[string]bool) []*Item {
	if len(collapsed) == 0 {
		return ordered
	}
	byID := make(map[string]*Item, len(ordered))
	for _, it := range ordered {
		byID[it.ID] = it
	}
	var out []*Item
	for _, it := range ordered {
		if !hiddenByCollapse(it, byID, collapsed) {
			out = append(out, it)
		}
	}
	return out
}

func hiddenByCollapse(it *Item, byID map[string]*Item, collapsed map[string]bool) bool {
	cur := it
	for i := 0; i < domain.MaxHierarchyDepth && cur.ParentID != nil; i++ {
		if collapsed[*cur.ParentID] {
			return true
		}
		parent := byID[*cur.ParentID]
		if parent == nil {
			return false
		}
		cur = parent
	}
	return false
}
