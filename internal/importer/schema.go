// Package importer loads whole projects from a JSON interchange file:
// parse, validate against the timeline's structural rules, then convert
// refs into persisted UUIDs. Files are typically exports from the
// web-based planner that preceded this tool.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for project import.
type ImportSchema struct {
	Project      ProjectImport      `json:"project"`
	Items        []ItemImport       `json:"items"`
	Dependencies []DependencyImport `json:"dependencies,omitempty"`
}

type ProjectImport struct {
	Name       string `json:"name"`
	ClientName string `json:"client_name,omitempty"`
}

// ItemImport defines one schedule item. Refs are file-local handles;
// parent_ref must point at an item defined earlier in the list.
type ItemImport struct {
	Ref       string   `json:"ref"`
	ParentRef *string  `json:"parent_ref,omitempty"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind,omitempty"`
	PhaseKey  string   `json:"phase_key,omitempty"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date,omitempty"`
	Priority  *int     `json:"priority,omitempty"`
	Progress  *int     `json:"progress,omitempty"`
	Completed bool     `json:"completed,omitempty"`
	Color     string   `json:"color,omitempty"`
	LinkedIDs []string `json:"linked_ids,omitempty"`
}

// DependencyImport defines a timing relationship between two items by ref.
type DependencyImport struct {
	SourceRef string `json:"source_ref"`
	TargetRef string `json:"target_ref"`
	Type      string `json:"type,omitempty"`
	LagDays   int    `json:"lag_days,omitempty"`
}

// LoadImportSchema reads and parses a project import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
