package service

import (
	"context"
	"time"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/db"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/repository"
	"github.com/atelierworks/timberline/internal/timeline"
	"github.com/google/uuid"
)

type timelineService struct {
	items repository.ScheduleItemRepo
	deps  repository.DependencyRepo
	uow   db.UnitOfWork
}

func NewTimelineService(items repository.ScheduleItemRepo, deps repository.DependencyRepo, uow db.UnitOfWork) TimelineService {
	return &timelineService{items: items, deps: deps, uow: uow}
}

func (s *timelineService) ListItems(ctx context.Context, projectID string) ([]*domain.ScheduleItem, error) {
	return s.items.ListByProject(ctx, projectID)
}

func (s *timelineService) ListDependencies(ctx context.Context, projectID string) ([]*domain.Dependency, error) {
	return s.deps.ListByProject(ctx, projectID)
}

func (s *timelineService) ListLinks(ctx context.Context, projectID string) (map[string][]domain.Measurement, error) {
	return s.items.ListLinks(ctx, projectID)
}

func (s *timelineService) CreateItem(ctx context.Context, role domain.Role, in contract.CreateItemInput) (*domain.ScheduleItem, error) {
	if role != domain.RolePM && role != domain.RoleAdmin {
		return nil, contract.UnauthorizedError("only PM and Admin can create timeline items")
	}
	if in.Kind == domain.KindPhase {
		return nil, contract.ValidationError("phases are fixed and cannot be created manually")
	}
	if !domain.ValidItemKinds[string(in.Kind)] {
		return nil, contract.ValidationError("unknown item kind: " + string(in.Kind))
	}
	if in.Name == "" {
		return nil, contract.ValidationError("item name is required")
	}

	now := time.Now().UTC()
	item := &domain.ScheduleItem{
		ID:        uuid.New().String(),
		ProjectID: in.ProjectID,
		Name:      in.Name,
		Kind:      in.Kind,
		StartDate: domain.DateOnly(in.StartDate),
		EndDate:   domain.DateOnly(in.EndDate),
		ParentID:  in.ParentID,
		Priority:  in.Priority,
		Editable:  true,
		Color:     in.Color,
		LinkedIDs: in.LinkedIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Priority == 0 {
		item.Priority = domain.PriorityMedium
	}
	if item.Kind == domain.KindMilestone {
		item.EndDate = item.StartDate
	}
	if !item.SpanValid() {
		return nil, contract.ValidationError("end date precedes start date")
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteScheduleItemRepo(tx)
		siblings, err := txItems.ListByProject(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		if in.ParentID != nil {
			parent := findItem(siblings, *in.ParentID)
			if parent == nil {
				return contract.NotFoundError("parent item not found")
			}
			if parent.IsMilestone() {
				return contract.ValidationError("milestones cannot have children")
			}
			if parent.HierarchyLevel+1 > domain.MaxHierarchyDepth {
				return contract.ValidationError("maximum nesting depth exceeded")
			}
			item.HierarchyLevel = parent.HierarchyLevel + 1
		}
		item.SortOrder = nextSortOrder(siblings, in.ParentID)
		return txItems.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *timelineService) UpdateItem(ctx context.Context, id string, in contract.UpdateItemInput) (*domain.ScheduleItem, error) {
	var updated *domain.ScheduleItem
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteScheduleItemRepo(tx)
		item, err := txItems.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			if *in.Name == "" {
				return contract.ValidationError("item name is required")
			}
			item.Name = *in.Name
		}
		if in.StartDate != nil {
			item.StartDate = domain.DateOnly(*in.StartDate)
		}
		if in.EndDate != nil {
			item.EndDate = domain.DateOnly(*in.EndDate)
		}
		if item.IsMilestone() {
			item.EndDate = item.StartDate
		}
		if !item.SpanValid() {
			return contract.ValidationError("end date precedes start date")
		}
		if in.Priority != nil {
			if *in.Priority < domain.PriorityLow || *in.Priority > domain.PriorityCritical {
				return contract.ValidationError("priority out of range")
			}
			item.Priority = *in.Priority
		}
		if in.Progress != nil {
			if v := in.Progress.Value; v != nil && (*v < 0 || *v > 100) {
				return contract.ValidationError("progress override must be between 0 and 100")
			}
			item.ProgressOverride = in.Progress.Value
		}
		if in.Completed != nil {
			item.Completed = *in.Completed
		}
		if in.Color != nil {
			item.Color = *in.Color
		}

		item.UpdatedAt = time.Now().UTC()
		if err := txItems.Update(ctx, item); err != nil {
			return err
		}
		if in.Parent != nil {
			if err := reparentInTx(ctx, txItems, item, in.Parent.ParentID); err != nil {
				return err
			}
		}
		if in.Links != nil {
			if err := txItems.ReplaceLinks(ctx, item.ID, in.Links); err != nil {
				return err
			}
			item.LinkedIDs = item.LinkedIDs[:0]
			for _, l := range in.Links {
				item.LinkedIDs = append(item.LinkedIDs, l.ID)
			}
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// reparentInTx moves an item under a new parent, revalidating the
// structural rules and shifting every descendant's hierarchy level by
// the same delta. The walk is iterative so a corrupted parent chain
// cannot blow the stack.
func reparentInTx(ctx context.Context, txItems repository.ScheduleItemRepo, item *domain.ScheduleItem, newParentID *string) error {
	if item.IsPhase() {
		return contract.ValidationError("phases are fixed at the top level")
	}
	all, err := txItems.ListByProject(ctx, item.ProjectID)
	if err != nil {
		return err
	}
	forest := timeline.NewForest(all)
	if newParentID != nil {
		parent := forest.ByID[*newParentID]
		if parent == nil {
			return contract.NotFoundError("parent item not found")
		}
		if parent.IsMilestone() {
			return contract.ValidationError("milestones cannot have children")
		}
	}
	if forest.WouldCreateCycle(item.ID, newParentID) {
		return contract.ValidationError("an item cannot become its own ancestor")
	}
	newLevel, ok := forest.DepthUnder(item.ID, newParentID)
	if !ok {
		return contract.ValidationError("maximum nesting depth exceeded")
	}
	if err := txItems.UpdateParent(ctx, item.ID, newParentID, newLevel); err != nil {
		return err
	}
	delta := newLevel - item.HierarchyLevel
	item.ParentID = newParentID
	item.HierarchyLevel = newLevel
	if delta == 0 {
		return nil
	}
	for _, desc := range forest.Descendants(item.ID) {
		desc.HierarchyLevel += delta
		desc.UpdatedAt = time.Now().UTC()
		if err := txItems.Update(ctx, desc); err != nil {
			return err
		}
	}
	return nil
}

// DeleteItem removes an item after reparenting its children to the
// item's own parent, and cascades its dependencies, all in one
// transaction.
func (s *timelineService) DeleteItem(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteScheduleItemRepo(tx)
		txDeps := repository.NewSQLiteDependencyRepo(tx)

		item, err := txItems.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item.IsPhase() {
			return contract.ValidationError("fixed phases cannot be deleted")
		}

		children, err := txItems.ListChildren(ctx, id)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := reparentInTx(ctx, txItems, child, item.ParentID); err != nil {
				return err
			}
		}
		if err := txDeps.DeleteByItem(ctx, id); err != nil {
			return err
		}
		return txItems.Delete(ctx, id)
	})
}

func (s *timelineService) ReorderItems(ctx context.Context, projectID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return contract.ValidationError("order must name at least one item")
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteScheduleItemRepo(tx)
		all, err := txItems.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		var parentID *string
		for i, id := range orderedIDs {
			item := findItem(all, id)
			if item == nil {
				return contract.NotFoundError("schedule item not found: " + id)
			}
			if i == 0 {
				parentID = item.ParentID
				continue
			}
			if !sameParentID(parentID, item.ParentID) {
				return contract.ValidationError("items must belong to the same sibling group")
			}
		}
		return txItems.UpdateSortOrders(ctx, orderedIDs)
	})
}

func (s *timelineService) CreateDependency(ctx context.Context, in contract.CreateDependencyInput) (*domain.Dependency, error) {
	now := time.Now().UTC()
	dep := &domain.Dependency{
		ID:        uuid.New().String(),
		ProjectID: in.ProjectID,
		SourceID:  in.SourceID,
		TargetID:  in.TargetID,
		Type:      in.Type,
		LagDays:   in.LagDays,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := dep.Validate(); err != nil {
		return nil, contract.ValidationError(err.Error())
	}
	for _, endpoint := range []string{in.SourceID, in.TargetID} {
		item, err := s.items.GetByID(ctx, endpoint)
		if err != nil {
			return nil, contract.NotFoundError("schedule item not found: " + endpoint)
		}
		if item.ProjectID != in.ProjectID {
			return nil, contract.ValidationError("dependency endpoints must belong to the project")
		}
	}
	if err := s.deps.Create(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

func (s *timelineService) UpdateDependency(ctx context.Context, id string, in contract.UpdateDependencyInput) (*domain.Dependency, error) {
	dep, err := s.deps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Type != nil {
		if !domain.ValidDependencyTypes[*in.Type] {
			return nil, contract.ValidationError("unknown dependency type")
		}
		dep.Type = *in.Type
	}
	if in.LagDays != nil {
		dep.LagDays = *in.LagDays
	}
	dep.UpdatedAt = time.Now().UTC()
	if err := s.deps.Update(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

func (s *timelineService) DeleteDependency(ctx context.Context, id string) error {
	return s.deps.Delete(ctx, id)
}

func findItem(items []*domain.ScheduleItem, id string) *domain.ScheduleItem {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func nextSortOrder(items []*domain.ScheduleItem, parentID *string) int {
	max := 0
	for _, it := range items {
		if sameParentID(it.ParentID, parentID) && it.SortOrder > max {
			max = it.SortOrder
		}
	}
	return max + 1
}

func sameParentID(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
