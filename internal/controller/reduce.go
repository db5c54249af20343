package controller

import (
	"math"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/timeline"
)

// Reduce applies one event to the state and returns the next state plus
// any persistence effects to dispatch. Invalid interactions leave the
// state unchanged apart from ErrMsg and emit no effect; they never reach
// persistence.
func Reduce(s State, ev Event) (State, []Effect) {
	s.ErrMsg = ""

	switch ev := ev.(type) {
	case DragStart:
		return reduceDragStart(s, ev)
	case DragMove:
		return reduceDragMove(s, ev)
	case DragEnd:
		return reduceDragEnd(s)
	case Click:
		return reduceClick(s, ev)
	case ToggleCollapse:
		collapsed := cloneCollapsed(s.Collapsed)
		if collapsed[ev.ItemID] {
			delete(collapsed, ev.ItemID)
		} else {
			collapsed[ev.ItemID] = true
		}
		s.Collapsed = collapsed
		return s, nil
	case Indent:
		return reduceIndent(s, ev)
	case Outdent:
		return reduceOutdent(s, ev)
	case MoveUp:
		return reduceMove(s, ev.ItemID, -1)
	case MoveDown:
		return reduceMove(s, ev.ItemID, +1)
	case DropReorder:
		return reduceDropReorder(s, ev)
	case OpenLinkEditor:
		return reduceOpenLinkEditor(s)
	case EditDependency:
		return reduceEditDependency(s, ev)
	case SaveLink:
		return reduceSaveLink(s, ev)
	case DeleteLink:
		if s.Editor == nil || s.Editor.DependencyID == "" {
			return s, nil
		}
		return s, []Effect{DeleteDependency{DependencyID: s.Editor.DependencyID}}
	case CloseLinkEditor:
		s.Editor = nil
		return s, nil
	case SetViewMode:
		s.ViewMode = ev.Mode
		return s, nil
	case Resize:
		if ev.TotalWidthPx > 0 {
			s.TotalWidthPx = ev.TotalWidthPx
		}
		if ev.RowHeightPx > 0 {
			s.RowHeightPx = ev.RowHeightPx
		}
		return s, nil
	case SaveCompleted:
		// Transient state is cleared whether the call succeeded or not;
		// on failure the next refresh is authoritative.
		s.Drag = nil
		s.Editor = nil
		if ev.Err != nil {
			s.ErrMsg = ev.Err.Error()
		}
		return s, nil
	case Refresh:
		return reduceRefresh(s, ev)
	}
	return s, nil
}

func reduceDragStart(s State, ev DragStart) (State, []Effect) {
	if s.Drag != nil {
		return s, nil
	}
	item := s.item(ev.ItemID)
	if !draggable(item) {
		return s, nil
	}
	s.Drag = &DragState{
		ItemID:        item.ID,
		Edge:          ev.Edge,
		OriginalStart: item.StartDate,
		OriginalEnd:   item.EndDate,
		PreviewStart:  item.StartDate,
		PreviewEnd:    item.EndDate,
	}
	return s, nil
}

func reduceDragMove(s State, ev DragMove) (State, []Effect) {
	if s.Drag == nil {
		return s, nil
	}
	days := int(math.Round(ev.DeltaPx * s.DaysPerPixel()))
	drag := *s.Drag
	switch drag.Edge {
	case EdgeLeft:
		start := drag.OriginalStart.AddDate(0, 0, days)
		if start.After(drag.OriginalEnd) {
			start = drag.OriginalEnd
		}
		drag.PreviewStart, drag.PreviewEnd = start, drag.OriginalEnd
	case EdgeRight:
		end := drag.OriginalEnd.AddDate(0, 0, days)
		if end.Before(drag.OriginalStart) {
			end = drag.OriginalStart
		}
		drag.PreviewStart, drag.PreviewEnd = drag.OriginalStart, end
	default: // middle: shift the whole bar
		drag.PreviewStart = drag.OriginalStart.AddDate(0, 0, days)
		drag.PreviewEnd = drag.OriginalEnd.AddDate(0, 0, days)
	}
	s.Drag = &drag
	return s, nil
}

func reduceDragEnd(s State) (State, []Effect) {
	drag := s.Drag
	if drag == nil {
		return s, nil
	}
	// The preview is cleared no matter what; persistence owns the rest.
	s.Drag = nil
	if drag.PreviewStart.Equal(drag.OriginalStart) && drag.PreviewEnd.Equal(drag.OriginalEnd) {
		return s, nil
	}
	return s, []Effect{UpdateItemSpan{
		ItemID: drag.ItemID,
		Start:  drag.PreviewStart,
		End:    drag.PreviewEnd,
	}}
}

func reduceClick(s State, ev Click) (State, []Effect) {
	item := s.item(ev.ItemID)
	if item == nil {
		return s, nil
	}
	if !item.Editable {
		if !ev.Ctrl && !ev.Shift {
			return s, []Effect{ShowItem{ItemID: item.ID}}
		}
		return s, nil
	}

	switch {
	case ev.Shift && s.LastSelected != "":
		s.Selected = visibleRange(&s, s.LastSelected, item.ID)
		return s, nil
	case ev.Ctrl:
		sel := cloneSelected(s.Selected)
		if s.IsSelected(item.ID) {
			sel = removeID(sel, item.ID)
		} else {
			sel = append(sel, item.ID)
			s.LastSelected = item.ID
		}
		s.Selected = sel
		return s, nil
	default:
		if len(s.Selected) == 1 && s.Selected[0] == item.ID {
			s.Selected = nil
			s.LastSelected = ""
			return s, nil
		}
		s.Selected = []string{item.ID}
		s.LastSelected = item.ID
		return s, nil
	}
}

// visibleRange returns the editable item ids between two anchors in the
// currently visible, order-preserved list (collapsed subtrees excluded).
func visibleRange(s *State, fromID, toID string) []string {
	visible := s.VisibleItems()
	from, to := -1, -1
	for i, it := range visible {
		if it.ID == fromID {
			from = i
		}
		if it.ID == toID {
			to = i
		}
	}
	if from == -1 || to == -1 {
		return []string{toID}
	}
	if from > to {
		from, to = to, from
	}
	var ids []string
	for _, it := range visible[from : to+1] {
		if it.Editable {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func reduceIndent(s State, ev Indent) (State, []Effect) {
	item := s.item(ev.ItemID)
	if item == nil || !item.Editable {
		return s, nil
	}
	forest := timeline.NewForest(s.Items)
	prev := forest.PrevSibling(item)
	if prev == nil {
		s.ErrMsg = "no preceding sibling to indent under"
		return s, nil
	}
	if prev.IsMilestone() {
		s.ErrMsg = "milestones cannot have children"
		return s, nil
	}
	parentID := prev.ID
	return reparent(s, forest, item, &parentID)
}

func reduceOutdent(s State, ev Outdent) (State, []Effect) {
	item := s.item(ev.ItemID)
	if item == nil || !item.Editable {
		return s, nil
	}
	if item.ParentID == nil {
		s.ErrMsg = "item is already at the top level"
		return s, nil
	}
	forest := timeline.NewForest(s.Items)
	parent := forest.ByID[*item.ParentID]
	var newParentID *string
	if parent != nil && parent.ParentID != nil {
		id := *parent.ParentID
		newParentID = &id
	}
	return reparent(s, forest, item, newParentID)
}

// reparent validates acyclicity and the depth bound, then emits the
// persistence effect. Validation failures never reach the collaborator.
func reparent(s State, forest *timeline.Forest, item *domain.ScheduleItem, newParentID *string) (State, []Effect) {
	if forest.WouldCreateCycle(item.ID, newParentID) {
		s.ErrMsg = "an item cannot become its own ancestor"
		return s, nil
	}
	level, ok := forest.DepthUnder(item.ID, newParentID)
	if !ok {
		s.ErrMsg = "maximum nesting depth exceeded"
		return s, nil
	}
	return s, []Effect{ReparentItem{ItemID: item.ID, ParentID: newParentID, Level: level}}
}

func reduceMove(s State, itemID string, dir int) (State, []Effect) {
	item := s.item(itemID)
	if item == nil || !item.Editable {
		return s, nil
	}
	forest := timeline.NewForest(s.Items)
	siblings := siblingGroup(forest, item)
	ids := make([]string, len(siblings))
	idx := -1
	for i, sib := range siblings {
		ids[i] = sib.ID
		if sib.ID == itemID {
			idx = i
		}
	}
	swap := idx + dir
	if idx == -1 || swap < 0 || swap >= len(ids) {
		return s, nil
	}
	ids[idx], ids[swap] = ids[swap], ids[idx]
	return s, []Effect{ReorderSiblings{ProjectID: s.ProjectID, OrderedIDs: ids}}
}

func reduceDropReorder(s State, ev DropReorder) (State, []Effect) {
	if ev.ItemID == ev.TargetID {
		return s, nil
	}
	item := s.item(ev.ItemID)
	target := s.item(ev.TargetID)
	if item == nil || target == nil || !item.Editable {
		return s, nil
	}
	if !sameParent(item, target) {
		s.ErrMsg = "items can only be reordered within their sibling group"
		return s, nil
	}
	forest := timeline.NewForest(s.Items)
	var ids []string
	targetIdx := -1
	for _, sib := range siblingGroup(forest, item) {
		if sib.ID == ev.ItemID {
			continue
		}
		if sib.ID == ev.TargetID {
			targetIdx = len(ids)
		}
		ids = append(ids, sib.ID)
	}
	if targetIdx == -1 {
		return s, nil
	}
	at := targetIdx
	if ev.After {
		at++
	}
	ids = append(ids[:at], append([]string{ev.ItemID}, ids[at:]...)...)
	return s, []Effect{ReorderSiblings{ProjectID: s.ProjectID, OrderedIDs: ids}}
}

// siblingGroup returns the reorderable group for an item. At the root
// level phases, milestones and plain tasks are ordered independently, so
// the group is restricted to items of the same shape.
func siblingGroup(forest *timeline.Forest, item *domain.ScheduleItem) []*domain.ScheduleItem {
	siblings := forest.Siblings(item)
	if item.ParentID != nil {
		return siblings
	}
	var group []*domain.ScheduleItem
	for _, sib := range siblings {
		if sib.IsPhase() == item.IsPhase() && sib.IsMilestone() == item.IsMilestone() {
			group = append(group, sib)
		}
	}
	return group
}

func sameParent(a, b *domain.ScheduleItem) bool {
	if (a.ParentID == nil) != (b.ParentID == nil) {
		return false
	}
	return a.ParentID == nil || *a.ParentID == *b.ParentID
}

func reduceOpenLinkEditor(s State) (State, []Effect) {
	if len(s.Selected) != 2 {
		s.ErrMsg = "select exactly two items to link"
		return s, nil
	}
	s.Editor = &LinkEditor{
		SourceID: s.Selected[0],
		TargetID: s.Selected[1],
		Type:     domain.FinishToStart,
	}
	return s, nil
}

func reduceEditDependency(s State, ev EditDependency) (State, []Effect) {
	for _, dep := range s.Deps {
		if dep.ID == ev.DependencyID {
			s.Editor = &LinkEditor{
				DependencyID: dep.ID,
				SourceID:     dep.SourceID,
				TargetID:     dep.TargetID,
				Type:         dep.Type,
				LagDays:      dep.LagDays,
			}
			return s, nil
		}
	}
	return s, nil
}

func reduceSaveLink(s State, ev SaveLink) (State, []Effect) {
	ed := s.Editor
	if ed == nil {
		return s, nil
	}
	if ed.SourceID == ed.TargetID {
		s.ErrMsg = domain.ErrSelfDependency.Error()
		return s, nil
	}
	return s, []Effect{SaveDependency{
		DependencyID: ed.DependencyID,
		ProjectID:    s.ProjectID,
		SourceID:     ed.SourceID,
		TargetID:     ed.TargetID,
		Type:         ev.Type,
		LagDays:      ev.LagDays,
	}}
}

func reduceRefresh(s State, ev Refresh) (State, []Effect) {
	s.Items = ev.Items
	s.Deps = ev.Deps
	s.Links = ev.Links
	if !ev.Today.IsZero() {
		s.Today = ev.Today
	}
	s.Range = timeline.RangeFromItems(ev.Items, s.Today)

	// Drop selection and collapse entries for items that no longer exist.
	present := make(map[string]bool, len(ev.Items))
	for _, it := range ev.Items {
		present[it.ID] = true
	}
	var sel []string
	for _, id := range s.Selected {
		if present[id] {
			sel = append(sel, id)
		}
	}
	s.Selected = sel
	if !present[s.LastSelected] {
		s.LastSelected = ""
	}
	collapsed := map[string]bool{}
	for id := range s.Collapsed {
		if present[id] {
			collapsed[id] = true
		}
	}
	s.Collapsed = collapsed
	return s, nil
}
