package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelierworks/timberline/internal/domain"
)

// resolveProjectID accepts a full UUID, a UUID prefix, or an exact
// project name (case-insensitive) and resolves it to a project id.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project is required")
	}

	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return "", err
	}

	for _, p := range projects {
		if p.ID == input || strings.EqualFold(p.Name, input) {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveItem accepts a full UUID, a UUID prefix, or an exact item name
// (case-insensitive) scoped to one project.
func resolveItem(ctx context.Context, app *App, projectID, input string) (*domain.ScheduleItem, error) {
	if input == "" {
		return nil, fmt.Errorf("item is required")
	}

	items, err := app.Timeline.ListItems(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if it.ID == input || strings.EqualFold(it.Name, input) {
			return it, nil
		}
	}

	var matches []*domain.ScheduleItem
	for _, it := range items {
		if strings.HasPrefix(it.ID, input) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("item not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("item %q is ambiguous (%d matches)", input, len(matches))
	}
}
