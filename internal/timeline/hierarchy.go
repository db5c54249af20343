package timeline

import (
	"sort"

	"github.com/atelierworks/timberline/internal/domain"
)

// Forest is a flat, parent-pointer index over a snapshot of schedule
// items. It is rebuilt per operation rather than kept as a nested owned
// structure, so mutations never have to maintain a cyclic object graph.
type Forest struct {
	ByID     map[string]*domain.ScheduleItem
	Children map[string][]*domain.ScheduleItem // keyed by parent id, "" for roots
}

// NewForest builds the id and children indexes. Child slices are ordered
// by sort order with name as tie-break, which makes every derived
// ordering stable for a given input.
func NewForest(items []*domain.ScheduleItem) *Forest {
	f := &Forest{
		ByID:     make(map[string]*domain.ScheduleItem, len(items)),
		Children: make(map[string][]*domain.ScheduleItem),
	}
	for _, item := range items {
		f.ByID[item.ID] = item
	}
	for _, item := range items {
		key := ""
		if item.ParentID != nil {
			key = *item.ParentID
		}
		f.Children[key] = append(f.Children[key], item)
	}
	for key := range f.Children {
		siblings := f.Children[key]
		sort.SliceStable(siblings, func(i, j int) bool {
			if siblings[i].SortOrder != siblings[j].SortOrder {
				return siblings[i].SortOrder < siblings[j].SortOrder
			}
			return siblings[i].Name < siblings[j].Name
		})
	}
	return f
}

// Siblings returns the ordered sibling group containing the item
// (including the item itself).
func (f *Forest) Siblings(item *domain.ScheduleItem) []*domain.ScheduleItem {
	key := ""
	if item.ParentID != nil {
		key = *item.ParentID
	}
	return f.Children[key]
}

// PrevSibling returns the sibling immediately before the item in sort
// order, or nil at the head of the group.
func (f *Forest) PrevSibling(item *domain.ScheduleItem) *domain.ScheduleItem {
	siblings := f.Siblings(item)
	for i, s := range siblings {
		if s.ID == item.ID {
			if i == 0 {
				return nil
			}
			return siblings[i-1]
		}
	}
	return nil
}

// AncestorIDs walks the parent chain from the item upward. The walk is
// bounded by MaxHierarchyDepth so it terminates even if the stored tree
// is cyclic.
func (f *Forest) AncestorIDs(itemID string) []string {
	var chain []string
	item := f.ByID[itemID]
	for i := 0; i < domain.MaxHierarchyDepth && item != nil && item.ParentID != nil; i++ {
		chain = append(chain, *item.ParentID)
		item = f.ByID[*item.ParentID]
	}
	return chain
}

// WouldCreateCycle reports whether reparenting itemID under newParentID
// would make the item its own ancestor.
func (f *Forest) WouldCreateCycle(itemID string, newParentID *string) bool {
	if newParentID == nil {
		return false
	}
	if *newParentID == itemID {
		return true
	}
	for _, id := range f.AncestorIDs(*newParentID) {
		if id == itemID {
			return true
		}
	}
	return false
}

// DepthUnder returns the hierarchy level the item would occupy under the
// candidate parent, and whether that level fits within the depth limit.
// The subtree below the item must also fit, so the deepest descendant is
// taken into account.
func (f *Forest) DepthUnder(itemID string, newParentID *string) (int, bool) {
	level := 0
	if newParentID != nil {
		if parent := f.ByID[*newParentID]; parent != nil {
			level = parent.HierarchyLevel + 1
		}
	}
	deepest := f.subtreeDepth(itemID)
	return level, level+deepest <= domain.MaxHierarchyDepth
}

// subtreeDepth returns the depth of the deepest descendant below the
// item, 0 for a leaf. Iterative traversal keeps the stack bounded for
// pathological trees.
func (f *Forest) subtreeDepth(itemID string) int {
	type frame struct {
		id    string
		depth int
	}
	deepest := 0
	stack := []frame{{id: itemID}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.depth > deepest {
			deepest = top.depth
		}
		if top.depth >= domain.MaxHierarchyDepth {
			continue
		}
		for _, child := range f.Children[top.id] {
			stack = append(stack, frame{id: child.ID, depth: top.depth + 1})
		}
	}
	return deepest
}

// Descendants returns every item below the given one, iteratively.
func (f *Forest) Descendants(itemID string) []*domain.ScheduleItem {
	var out []*domain.ScheduleItem
	stack := []string{itemID}
	visited := map[string]bool{itemID: true}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range f.Children[id] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			out = append(out, child)
			stack = append(stack, child.ID)
		}
	}
	return out
}
