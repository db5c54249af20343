package controller

import (
	"time"

	"github.com/atelierworks/timberline/internal/domain"
)

// Effect is a persistence request the event loop must dispatch. Effects
// are fire-and-await: the controller never retries, and the loop feeds
// back a SaveCompleted (and later a Refresh) when the call resolves.
type Effect interface {
	isEffect()
}

// UpdateItemSpan persists a rescheduled start/end pair.
type UpdateItemSpan struct {
	ItemID string
	Start  time.Time
	End    time.Time
}

// ReparentItem persists a hierarchy move.
type ReparentItem struct {
	ItemID   string
	ParentID *string
	Level    int
}

// ReorderSiblings persists a complete sibling order; positions are
// assigned 1-based from the slice.
type ReorderSiblings struct {
	ProjectID  string
	OrderedIDs []string
}

// SaveDependency creates or updates a dependency; DependencyID empty
// means create.
type SaveDependency struct {
	DependencyID string
	ProjectID    string
	SourceID     string
	TargetID     string
	Type         domain.DependencyType
	LagDays      int
}

// DeleteDependency removes a dependency.
type DeleteDependency struct {
	DependencyID string
}

// ShowItem notifies the surface to open a read-only item view; fired
// when a non-editable item is clicked singly.
type ShowItem struct {
	ItemID string
}

func (UpdateItemSpan) isEffect()   {}
func (ReparentItem) isEffect()     {}
func (ReorderSiblings) isEffect()  {}
func (SaveDependency) isEffect()   {}
func (DeleteDependency) isEffect() {}
func (ShowItem) isEffect()         {}
