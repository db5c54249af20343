package testutil

import (
	"time"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/google/uuid"
)

// Project options
type ProjectOption func(*domain.Project)

func WithClientName(name string) ProjectOption {
	return func(p *domain.Project) {
		p.ClientName = name
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    domain.ProjectActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Item options
type ItemOption func(*domain.ScheduleItem)

func WithKind(k domain.ItemKind) ItemOption {
	return func(s *domain.ScheduleItem) {
		s.Kind = k
	}
}

func WithPhaseKey(pk domain.PhaseKey) ItemOption {
	return func(s *domain.ScheduleItem) {
		s.Kind = domain.KindPhase
		s.PhaseKey = &pk
	}
}

func WithSpan(start, end time.Time) ItemOption {
	return func(s *domain.ScheduleItem) {
		s.StartDate = start
		s.EndDate = end
	}
}

func WithParent(parent *domain.ScheduleItem) ItemOption {
	return func(s *domain.ScheduleItem) {
		id := parent.ID
		s.ParentID = &id
		s.HierarchyLevel = parent.HierarchyLevel + 1
	}
}

func WithSortOrder(n int) ItemOption {
	return func(s *domain.ScheduleItem) {
		s.SortOrder = n
	}
}

func WithProgressOverride(pct int) ItemOption {
	return func(s *domain.ScheduleItem) {
		s.ProgressOverride = &pct
	}
}

func WithCompleted() ItemOption {
	return func(s *domain.ScheduleItem) {
		s.Completed = true
	}
}

func WithLinkedIDs(ids ...string) ItemOption {
	return func(s *domain.ScheduleItem) {
		s.LinkedIDs = ids
	}
}

func WithNotEditable() ItemOption {
	return func(s *domain.ScheduleItem) {
		s.Editable = false
	}
}

// NewTestItem builds an editable task spanning the first week of
// March 2026 unless options say otherwise.
func NewTestItem(projectID, name string, opts ...ItemOption) *domain.ScheduleItem {
	now := time.Now().UTC()
	s := &domain.ScheduleItem{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Kind:      domain.KindTask,
		StartDate: domain.Day(2026, time.March, 1),
		EndDate:   domain.Day(2026, time.March, 7),
		SortOrder: 1,
		Priority:  domain.PriorityMedium,
		Editable:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestMilestone builds a zero-duration milestone on the given day.
func NewTestMilestone(projectID, name string, day time.Time, opts ...ItemOption) *domain.ScheduleItem {
	s := NewTestItem(projectID, name, WithKind(domain.KindMilestone), WithSpan(day, day))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dependency options
type DepOption func(*domain.Dependency)

func WithType(t domain.DependencyType) DepOption {
	return func(d *domain.Dependency) {
		d.Type = t
	}
}

func WithLag(days int) DepOption {
	return func(d *domain.Dependency) {
		d.LagDays = days
	}
}

func NewTestDependency(projectID, sourceID, targetID string, opts ...DepOption) *domain.Dependency {
	now := time.Now().UTC()
	d := &domain.Dependency{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      domain.FinishToStart,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
