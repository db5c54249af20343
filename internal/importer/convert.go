package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierworks/timberline/internal/domain"
)

// Bundle holds a converted import ready for transactional persistence.
type Bundle struct {
	Project      *domain.Project
	Items        []*domain.ScheduleItem
	Dependencies []*domain.Dependency
}

// Convert transforms a validated ImportSchema into domain objects.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) (*Bundle, error) {
	now := time.Now().UTC()

	project := &domain.Project{
		ID:         uuid.New().String(),
		Name:       schema.Project.Name,
		ClientName: schema.Project.ClientName,
		Status:     domain.ProjectActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	refMap := make(map[string]string) // ref -> UUID
	levels := make(map[string]int)
	siblingCount := make(map[string]int) // parent ref ("" = root) -> items so far

	items := make([]*domain.ScheduleItem, 0, len(schema.Items))
	for _, in := range schema.Items {
		realID := uuid.New().String()
		refMap[in.Ref] = realID

		kind := domain.ItemKind(domain.CoalesceStr(in.Kind, string(domain.KindTask)))

		var parentID *string
		parentRef := ""
		level := 0
		if in.ParentRef != nil && *in.ParentRef != "" {
			pid, ok := refMap[*in.ParentRef]
			if !ok {
				return nil, fmt.Errorf("parent_ref %q not found for item %q", *in.ParentRef, in.Ref)
			}
			parentID = &pid
			parentRef = *in.ParentRef
			level = levels[parentRef] + 1
		}
		levels[in.Ref] = level
		siblingCount[parentRef]++

		start, err := time.Parse("2006-01-02", in.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date for item %q: %w", in.Ref, err)
		}
		end := start
		if kind != domain.KindMilestone && in.EndDate != "" {
			end, err = time.Parse("2006-01-02", in.EndDate)
			if err != nil {
				return nil, fmt.Errorf("parsing end_date for item %q: %w", in.Ref, err)
			}
		}

		var phaseKey *domain.PhaseKey
		if kind == domain.KindPhase {
			pk := domain.PhaseKey(in.PhaseKey)
			phaseKey = &pk
		}

		item := &domain.ScheduleItem{
			ID:               realID,
			ProjectID:        project.ID,
			Name:             in.Name,
			Kind:             kind,
			PhaseKey:         phaseKey,
			StartDate:        domain.DateOnly(start),
			EndDate:          domain.DateOnly(end),
			ParentID:         parentID,
			HierarchyLevel:   level,
			SortOrder:        siblingCount[parentRef],
			ProgressOverride: in.Progress,
			Completed:        in.Completed,
			Priority:         domain.Priority(domain.IntFromPtrWithDefault(int(domain.PriorityMedium), in.Priority)),
			Editable:         true,
			Color:            in.Color,
			LinkedIDs:        in.LinkedIDs,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		items = append(items, item)
	}

	deps := make([]*domain.Dependency, 0, len(schema.Dependencies))
	for _, d := range schema.Dependencies {
		srcID, ok := refMap[d.SourceRef]
		if !ok {
			return nil, fmt.Errorf("source_ref %q not found", d.SourceRef)
		}
		dstID, ok := refMap[d.TargetRef]
		if !ok {
			return nil, fmt.Errorf("target_ref %q not found", d.TargetRef)
		}
		deps = append(deps, &domain.Dependency{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			SourceID:  srcID,
			TargetID:  dstID,
			Type:      depTypeFromLabel(d.Type),
			LagDays:   d.LagDays,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return &Bundle{Project: project, Items: items, Dependencies: deps}, nil
}

func depTypeFromLabel(label string) domain.DependencyType {
	switch label {
	case "SS":
		return domain.StartToStart
	case "FF":
		return domain.FinishToFinish
	case "SF":
		return domain.StartToFinish
	default:
		return domain.FinishToStart
	}
}
