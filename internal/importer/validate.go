package importer

import (
	"fmt"
	"time"

	"github.com/atelierworks/timberline/internal/domain"
)

var validDepTypes = map[string]bool{"": true, "FS": true, "SS": true, "FF": true, "SF": true}

// ValidateImportSchema checks the schema against the timeline's
// structural rules before conversion. Returns every violation found so
// a user can fix the file in one pass.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if schema.Project.Name == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}

	itemRefs := make(map[string]bool)
	errs = append(errs, validateItems(schema.Items, itemRefs)...)
	errs = append(errs, validateDependencies(schema.Dependencies, itemRefs)...)

	return errs
}

func validateItems(items []ItemImport, itemRefs map[string]bool) []error {
	var errs []error

	levels := make(map[string]int)
	kinds := make(map[string]string)
	phaseKeys := make(map[string]bool)

	for i, it := range items {
		prefix := fmt.Sprintf("items[%d]", i)

		if it.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if itemRefs[it.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, it.Ref))
		} else {
			itemRefs[it.Ref] = true
		}

		if it.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		kind := it.Kind
		if kind == "" {
			kind = string(domain.KindTask)
		}
		if !domain.ValidItemKinds[kind] {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", prefix, it.Kind))
		}
		kinds[it.Ref] = kind

		if kind == string(domain.KindPhase) {
			if !validPhaseKey(it.PhaseKey) {
				errs = append(errs, fmt.Errorf("%s.phase_key: invalid value %q", prefix, it.PhaseKey))
			} else if phaseKeys[it.PhaseKey] {
				errs = append(errs, fmt.Errorf("%s.phase_key: duplicate phase %q", prefix, it.PhaseKey))
			} else {
				phaseKeys[it.PhaseKey] = true
			}
			if it.ParentRef != nil && *it.ParentRef != "" {
				errs = append(errs, fmt.Errorf("%s: phases must stay at the top level", prefix))
			}
		} else if it.PhaseKey != "" {
			errs = append(errs, fmt.Errorf("%s.phase_key is only valid on phases", prefix))
		}

		level := 0
		if it.ParentRef != nil && *it.ParentRef != "" {
			parent := *it.ParentRef
			switch {
			case !itemRefs[parent] || parent == it.Ref:
				errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in items list)", prefix, parent))
			case kinds[parent] == string(domain.KindMilestone):
				errs = append(errs, fmt.Errorf("%s.parent_ref: milestones cannot have children", prefix))
			default:
				level = levels[parent] + 1
				if level > domain.MaxHierarchyDepth {
					errs = append(errs, fmt.Errorf("%s: maximum nesting depth exceeded", prefix))
				}
			}
		}
		levels[it.Ref] = level

		errs = append(errs, validateSpan(prefix, it)...)

		if it.Priority != nil && (*it.Priority < int(domain.PriorityLow) || *it.Priority > int(domain.PriorityCritical)) {
			errs = append(errs, fmt.Errorf("%s.priority: must be between 1 and 4", prefix))
		}
		if it.Progress != nil && (*it.Progress < 0 || *it.Progress > 100) {
			errs = append(errs, fmt.Errorf("%s.progress: must be between 0 and 100", prefix))
		}
	}

	return errs
}

func validateSpan(prefix string, it ItemImport) []error {
	var errs []error

	if it.StartDate == "" {
		errs = append(errs, fmt.Errorf("%s.start_date is required", prefix))
		return errs
	}
	start, err := time.Parse("2006-01-02", it.StartDate)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s.start_date: invalid date format %q (expected YYYY-MM-DD)", prefix, it.StartDate))
	}
	if it.EndDate != "" {
		end, endErr := time.Parse("2006-01-02", it.EndDate)
		if endErr != nil {
			errs = append(errs, fmt.Errorf("%s.end_date: invalid date format %q (expected YYYY-MM-DD)", prefix, it.EndDate))
		} else if err == nil && end.Before(start) {
			errs = append(errs, fmt.Errorf("%s: end_date %q is before start_date %q", prefix, it.EndDate, it.StartDate))
		}
	}

	return errs
}

func validateDependencies(deps []DependencyImport, itemRefs map[string]bool) []error {
	var errs []error

	for i, d := range deps {
		prefix := fmt.Sprintf("dependencies[%d]", i)

		if d.SourceRef == "" {
			errs = append(errs, fmt.Errorf("%s.source_ref is required", prefix))
		} else if !itemRefs[d.SourceRef] {
			errs = append(errs, fmt.Errorf("%s.source_ref: ref %q not found in items", prefix, d.SourceRef))
		}
		if d.TargetRef == "" {
			errs = append(errs, fmt.Errorf("%s.target_ref is required", prefix))
		} else if !itemRefs[d.TargetRef] {
			errs = append(errs, fmt.Errorf("%s.target_ref: ref %q not found in items", prefix, d.TargetRef))
		}
		if d.SourceRef != "" && d.SourceRef == d.TargetRef {
			errs = append(errs, fmt.Errorf("%s: self-dependency (source_ref == target_ref == %q)", prefix, d.SourceRef))
		}

		if !validDepTypes[d.Type] {
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q (expected FS, SS, FF, or SF)", prefix, d.Type))
		}
		if d.LagDays < -365 || d.LagDays > 365 {
			errs = append(errs, fmt.Errorf("%s.lag_days: must be between -365 and 365", prefix))
		}
	}

	if len(deps) > 1 {
		errs = append(errs, detectCycles(deps)...)
	}

	return errs
}

// detectCycles runs a DFS over the dependency graph. Cyclic imports are
// rejected wholesale: they usually indicate a corrupted export.
func detectCycles(deps []DependencyImport) []error {
	graph := make(map[string][]string)
	nodes := make(map[string]bool)
	for _, d := range deps {
		if d.SourceRef != "" && d.TargetRef != "" && d.SourceRef != d.TargetRef {
			graph[d.SourceRef] = append(graph[d.SourceRef], d.TargetRef)
			nodes[d.SourceRef] = true
			nodes[d.TargetRef] = true
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[string]int)
	var errs []error

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, neighbor := range graph[node] {
			if color[neighbor] == gray {
				errs = append(errs, fmt.Errorf("circular dependency detected involving %q and %q", node, neighbor))
				return true
			}
			if color[neighbor] == white {
				if visit(neighbor) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	for node := range nodes {
		if color[node] == white {
			visit(node)
		}
	}

	return errs
}

func validPhaseKey(key string) bool {
	for _, pk := range domain.CanonicalPhaseOrder {
		if string(pk) == key {
			return true
		}
	}
	return false
}
