package domain

import "time"

// MaxHierarchyDepth is the deepest supported nesting level, counted from 0
// at the roots. Ancestor-chain walks are bounded by this constant so they
// terminate even against a corrupted (cyclic) stored tree.
const MaxHierarchyDepth = 5

// MinBarWidthPx keeps every rendered bar visible and clickable regardless
// of duration or zoom.
const MinBarWidthPx = 20.0

type ScheduleItem struct {
	ID        string
	ProjectID string
	// ExternalID is set when the item is a view wrapper over a different
	// backing entity (e.g. a production order surfaced on the timeline).
	ExternalID *string
	Name       string
	Kind       ItemKind
	PhaseKey   *PhaseKey // set only when Kind == KindPhase

	StartDate time.Time // inclusive, UTC midnight
	EndDate   time.Time // inclusive, UTC midnight

	ParentID       *string
	HierarchyLevel int // 0 at roots; parent's level + 1 otherwise
	SortOrder      int // unique among siblings

	// ProgressOverride is an explicit 0-100 value; nil means progress is
	// derived from links, children, or the completed flag.
	ProgressOverride *int
	Completed        bool
	Priority         Priority
	Editable         bool
	Color            string

	// LinkedIDs reference external measurement sources whose completion
	// percentages feed derived progress.
	LinkedIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *ScheduleItem) IsPhase() bool     { return s.Kind == KindPhase }
func (s *ScheduleItem) IsMilestone() bool { return s.Kind == KindMilestone }

// DurationDays returns the inclusive calendar-day span of the item,
// never less than 1.
func (s *ScheduleItem) DurationDays() int {
	d := int(s.EndDate.Sub(s.StartDate).Hours()/24) + 1
	if d < 1 {
		return 1
	}
	return d
}

// SpanValid reports whether the temporal span is well-formed.
func (s *ScheduleItem) SpanValid() bool {
	return !s.EndDate.Before(s.StartDate)
}

// Measurement is an external measurement source linked to an item; its
// completion percentage feeds the item's derived progress.
type Measurement struct {
	ID            string
	CompletionPct int
	Description   string
}
