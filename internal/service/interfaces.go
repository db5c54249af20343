package service

import (
	"context"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/domain"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// TimelineService owns every mutation of schedule items and
// dependencies. Structural rules (fixed phases, hierarchy bounds,
// sibling-scoped ordering, no self-dependencies) are enforced here, so
// no caller can persist an invalid timeline.
type TimelineService interface {
	ListItems(ctx context.Context, projectID string) ([]*domain.ScheduleItem, error)
	ListDependencies(ctx context.Context, projectID string) ([]*domain.Dependency, error)
	ListLinks(ctx context.Context, projectID string) (map[string][]domain.Measurement, error)

	CreateItem(ctx context.Context, role domain.Role, in contract.CreateItemInput) (*domain.ScheduleItem, error)
	UpdateItem(ctx context.Context, id string, in contract.UpdateItemInput) (*domain.ScheduleItem, error)
	DeleteItem(ctx context.Context, id string) error
	// ReorderItems assigns 1-based sort order positionally; the ids must
	// form one complete sibling group.
	ReorderItems(ctx context.Context, projectID string, orderedIDs []string) error

	CreateDependency(ctx context.Context, in contract.CreateDependencyInput) (*domain.Dependency, error)
	UpdateDependency(ctx context.Context, id string, in contract.UpdateDependencyInput) (*domain.Dependency, error)
	DeleteDependency(ctx context.Context, id string) error
}
