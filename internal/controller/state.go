// Package controller is the interaction state machine behind the Gantt
// view: drag-to-reschedule, multi-select, collapse/expand, hierarchy
// mutation, reordering, and dependency authoring. It is a pure reducer —
// Reduce(state, event) returns the next state plus the persistence
// effects to run — so the whole machine is testable without a rendering
// surface, and a single event loop owns all mutable state.
package controller

import (
	"time"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/timeline"
)

type DragEdge string

const (
	EdgeLeft   DragEdge = "left"
	EdgeRight  DragEdge = "right"
	EdgeMiddle DragEdge = "middle"
)

// DragState is the transient preview of an in-progress reschedule. The
// committed item is never touched while dragging; the preview span shadows
// it until DragEnd submits or abandons the change.
type DragState struct {
	ItemID        string
	Edge          DragEdge
	OriginalStart time.Time
	OriginalEnd   time.Time
	PreviewStart  time.Time
	PreviewEnd    time.Time
}

// LinkEditor is the open dependency dialog. DependencyID is empty when
// authoring a new link.
type LinkEditor struct {
	DependencyID string
	SourceID     string
	TargetID     string
	Type         domain.DependencyType
	LagDays      int
}

// State is the controller's full world: the immutable data snapshot fed
// by the persistence layer plus the transient interaction state. Values
// are updated copy-on-write; a render cycle always sees a consistent
// snapshot.
type State struct {
	ProjectID string
	Items     []*domain.ScheduleItem
	Deps      []*domain.Dependency
	Links     map[string][]domain.Measurement

	ViewMode     timeline.ViewMode
	Range        timeline.DateRange
	TotalWidthPx float64
	RowHeightPx  float64
	Today        time.Time

	// Selected holds item ids in selection order; the order seeds the
	// dependency editor (first pick is the source).
	Selected     []string
	LastSelected string
	Collapsed    map[string]bool
	Drag         *DragState
	Editor       *LinkEditor

	// ErrMsg carries the last validation or persistence failure for the
	// surface to display; cleared on the next event.
	ErrMsg string
}

// NewState builds an initial state over a data snapshot.
func NewState(projectID string, items []*domain.ScheduleItem, deps []*domain.Dependency, links map[string][]domain.Measurement, today time.Time) State {
	return State{
		ProjectID:    projectID,
		Items:        items,
		Deps:         deps,
		Links:        links,
		ViewMode:     timeline.ViewDay,
		Range:        timeline.RangeFromItems(items, today),
		TotalWidthPx: 800,
		RowHeightPx:  32,
		Today:        today,
		Collapsed:    map[string]bool{},
	}
}

// item returns the committed item by id, nil when unknown.
func (s *State) item(id string) *domain.ScheduleItem {
	for _, it := range s.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// IsSelected reports selection membership.
func (s *State) IsSelected(id string) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// VisibleItems returns the decorated, display-ordered item list with
// collapsed subtrees removed. Recomputed per call: there is no caching
// layer that can go stale.
func (s *State) VisibleItems() []*timeline.Item {
	ordered := timeline.DisplayOrder(timeline.Decorate(s.Items, s.Links))
	return timeline.VisibleItems(ordered, s.Collapsed)
}

// SpanFor returns the span to render for an item: the drag preview when
// one is active for it, the committed span otherwise.
func (s *State) SpanFor(item *timeline.Item) (time.Time, time.Time) {
	if s.Drag != nil && s.Drag.ItemID == item.ID {
		return s.Drag.PreviewStart, s.Drag.PreviewEnd
	}
	return item.StartDate, item.EndDate
}

// DaysPerPixel converts a horizontal pixel delta into schedule days.
func (s *State) DaysPerPixel() float64 {
	if s.TotalWidthPx == 0 {
		return 0
	}
	return float64(s.Range.TotalDays()) / s.TotalWidthPx
}

// draggable reports whether an item may enter the dragging state:
// explicitly editable and of a kind that spans time.
func draggable(item *domain.ScheduleItem) bool {
	return item != nil && item.Editable && !item.IsMilestone()
}

// cloneSelected copies the selection slice for copy-on-write updates.
func cloneSelected(sel []string) []string {
	out := make([]string, len(sel))
	copy(out, sel)
	return out
}

// cloneCollapsed copies the collapsed set for copy-on-write updates.
func cloneCollapsed(c map[string]bool) map[string]bool {
	out := make(map[string]bool, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
