package repository

import (
	"context"

	"github.com/atelierworks/timberline/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type ScheduleItemRepo interface {
	Create(ctx context.Context, item *domain.ScheduleItem) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleItem, error)
	// ListByProject returns all items of a project ordered by
	// hierarchy level then sort order, with link sets populated.
	ListByProject(ctx context.Context, projectID string) ([]*domain.ScheduleItem, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.ScheduleItem, error)
	Update(ctx context.Context, item *domain.ScheduleItem) error
	// UpdateParent moves an item under a new parent at the given depth.
	UpdateParent(ctx context.Context, id string, parentID *string, level int) error
	// UpdateSortOrders assigns 1-based sort order positionally.
	UpdateSortOrders(ctx context.Context, orderedIDs []string) error
	// ReplaceLinks swaps the item's linked measurement set wholesale.
	ReplaceLinks(ctx context.Context, itemID string, links []domain.Measurement) error
	// ListLinks returns every linked measurement of a project keyed by
	// item id.
	ListLinks(ctx context.Context, projectID string) (map[string][]domain.Measurement, error)
	Delete(ctx context.Context, id string) error
}

type DependencyRepo interface {
	Create(ctx context.Context, d *domain.Dependency) error
	GetByID(ctx context.Context, id string) (*domain.Dependency, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Dependency, error)
	ListByItem(ctx context.Context, itemID string) ([]*domain.Dependency, error)
	Update(ctx context.Context, d *domain.Dependency) error
	Delete(ctx context.Context, id string) error
	// DeleteByItem removes every dependency touching the item, in either
	// direction. Used when an item is deleted.
	DeleteByItem(ctx context.Context, itemID string) error
}
