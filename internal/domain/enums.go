package domain

type ItemKind string

const (
	KindPhase     ItemKind = "phase"
	KindTask      ItemKind = "task"
	KindMilestone ItemKind = "milestone"
)

// ValidItemKinds is the canonical set of accepted item kind strings.
var ValidItemKinds = map[string]bool{
	"phase": true, "task": true, "milestone": true,
}

type PhaseKey string

const (
	PhaseDesign       PhaseKey = "design"
	PhaseProduction   PhaseKey = "production"
	PhaseShipping     PhaseKey = "shipping"
	PhaseInstallation PhaseKey = "installation"
)

// CanonicalPhaseOrder is the fixed display order of the four
// manufacturing phases, independent of their stored sort order.
var CanonicalPhaseOrder = []PhaseKey{
	PhaseDesign, PhaseProduction, PhaseShipping, PhaseInstallation,
}

type DependencyType int

const (
	FinishToStart  DependencyType = 0
	StartToStart   DependencyType = 1
	FinishToFinish DependencyType = 2
	StartToFinish  DependencyType = 3
)

// ValidDependencyTypes is the canonical set of accepted relationship types.
var ValidDependencyTypes = map[DependencyType]bool{
	FinishToStart: true, StartToStart: true, FinishToFinish: true, StartToFinish: true,
}

// Label returns the conventional two-letter abbreviation for the type.
func (t DependencyType) Label() string {
	switch t {
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		return "FS"
	}
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RolePM     Role = "pm"
	RoleViewer Role = "viewer"
)

type Priority int

const (
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)
