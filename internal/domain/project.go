package domain

import (
	"fmt"
	"time"
)

type Project struct {
	ID         string
	Name       string
	ClientName string
	Status     ProjectStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks required fields before the project reaches persistence.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	return nil
}

// DisplayID returns a short identifier for display, truncating the UUID.
func (p *Project) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
