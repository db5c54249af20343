package controller

import (
	"time"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/timeline"
)

// Event is a discrete interaction fed to Reduce. Events come from the
// rendering surface (pointer/keyboard) or from persistence completions.
type Event interface {
	isEvent()
}

// DragStart begins a reschedule on one edge of an item's bar.
type DragStart struct {
	ItemID string
	Edge   DragEdge
}

// DragMove carries the cumulative horizontal pixel delta since DragStart.
type DragMove struct {
	DeltaPx float64
}

// DragEnd commits (or abandons) the preview span.
type DragEnd struct{}

// Click selects an item; modifier flags mirror ctrl/cmd and shift.
type Click struct {
	ItemID string
	Ctrl   bool
	Shift  bool
}

// ToggleCollapse flips an item's membership in the collapsed set.
type ToggleCollapse struct {
	ItemID string
}

// Indent makes the item a child of its immediately preceding sibling.
type Indent struct {
	ItemID string
}

// Outdent lifts the item to its grandparent.
type Outdent struct {
	ItemID string
}

// MoveUp swaps the item with its previous sibling.
type MoveUp struct {
	ItemID string
}

// MoveDown swaps the item with its next sibling.
type MoveDown struct {
	ItemID string
}

// DropReorder relocates the item next to a target within the same
// sibling group. After is true when the pointer was below the target
// row's vertical midpoint.
type DropReorder struct {
	ItemID   string
	TargetID string
	After    bool
}

// OpenLinkEditor opens the dependency dialog for the current two-item
// selection, seeded with FS and zero lag.
type OpenLinkEditor struct{}

// EditDependency opens the dialog seeded from an existing dependency.
type EditDependency struct {
	DependencyID string
}

// SaveLink submits the open dialog with the chosen type and lag.
type SaveLink struct {
	Type    domain.DependencyType
	LagDays int
}

// DeleteLink deletes the dependency held by the open dialog.
type DeleteLink struct{}

// CloseLinkEditor abandons the open dialog.
type CloseLinkEditor struct{}

// SetViewMode switches the column granularity.
type SetViewMode struct {
	Mode timeline.ViewMode
}

// Resize updates the pixel dimensions geometry is computed against.
type Resize struct {
	TotalWidthPx float64
	RowHeightPx  float64
}

// SaveCompleted reports a persistence call finishing. Err is non-nil on
// failure; either way the transient state tied to the call is cleared
// and the next Refresh is authoritative.
type SaveCompleted struct {
	Err error
}

// Refresh replaces the data snapshot after a persistence round-trip.
type Refresh struct {
	Items []*domain.ScheduleItem
	Deps  []*domain.Dependency
	Links map[string][]domain.Measurement
	Today time.Time
}

func (DragStart) isEvent()      {}
func (DragMove) isEvent()       {}
func (DragEnd) isEvent()        {}
func (Click) isEvent()          {}
func (ToggleCollapse) isEvent() {}
func (Indent) isEvent()         {}
func (Outdent) isEvent()        {}
func (MoveUp) isEvent()         {}
func (MoveDown) isEvent()       {}
func (DropReorder) isEvent()    {}
func (OpenLinkEditor) isEvent() {}
func (EditDependency) isEvent() {}
func (SaveLink) isEvent()       {}
func (DeleteLink) isEvent()     {}
func (CloseLinkEditor) isEvent() {}
func (SetViewMode) isEvent()    {}
func (Resize) isEvent()         {}
func (SaveCompleted) isEvent()  {}
func (Refresh) isEvent()        {}
