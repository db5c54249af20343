package domain

import (
	"errors"
	"time"
)

// ErrSelfDependency is returned when a dependency's source and target are
// the same item. The message is surfaced verbatim to the user.
var ErrSelfDependency = errors.New("Cannot create a dependency to itself")

// Dependency is a directed timing relationship between two schedule items.
type Dependency struct {
	ID        string
	ProjectID string
	SourceID  string
	TargetID  string
	Type      DependencyType
	// LagDays shifts the dependent item's effective timing: positive
	// delays, negative allows overlap. Convention bounds it to ±365 but
	// the engine does not hard-enforce the range.
	LagDays   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks structural validity before the dependency reaches
// persistence.
func (d *Dependency) Validate() error {
	if d.SourceID == d.TargetID {
		return ErrSelfDependency
	}
	if !ValidDependencyTypes[d.Type] {
		return errors.New("unknown dependency type")
	}
	return nil
}
