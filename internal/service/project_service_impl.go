package service

import (
	"context"
	"time"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/db"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	uow      db.UnitOfWork
}

func NewProjectService(projects repository.ProjectRepo, uow db.UnitOfWork) ProjectService {
	return &projectService{projects: projects, uow: uow}
}

var phaseNames = map[domain.PhaseKey]string{
	domain.PhaseDesign:       "Design",
	domain.PhaseProduction:   "Production",
	domain.PhaseShipping:     "Shipping",
	domain.PhaseInstallation: "Installation",
}

var phaseColors = map[domain.PhaseKey]string{
	domain.PhaseDesign:       "#6366f1",
	domain.PhaseProduction:   "#f59e0b",
	domain.PhaseShipping:     "#10b981",
	domain.PhaseInstallation: "#ef4444",
}

// phaseSpanDays is the default length of each seeded phase; the blocks
// are laid out back to back from the creation date and adjusted by
// hand afterwards.
const phaseSpanDays = 14

// Create persists the project and seeds its four fixed phases in one
// transaction: a project without the canonical phase rows is never
// observable.
func (s *projectService) Create(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return contract.ValidationError(err.Error())
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txItems := repository.NewSQLiteScheduleItemRepo(tx)

		if err := txProjects.Create(ctx, p); err != nil {
			return err
		}
		start := domain.DateOnly(now)
		for i, key := range domain.CanonicalPhaseOrder {
			key := key
			end := start.AddDate(0, 0, phaseSpanDays-1)
			phase := &domain.ScheduleItem{
				ID:        uuid.New().String(),
				ProjectID: p.ID,
				Name:      phaseNames[key],
				Kind:      domain.KindPhase,
				PhaseKey:  &key,
				StartDate: start,
				EndDate:   end,
				SortOrder: i + 1,
				Priority:  domain.PriorityMedium,
				Editable:  true,
				Color:     phaseColors[key],
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := txItems.Create(ctx, phase); err != nil {
				return err
			}
			start = end.AddDate(0, 0, 1)
		}
		return nil
	})
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeArchived)
}

func (s *projectService) Update(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return contract.ValidationError(err.Error())
	}
	p.UpdatedAt = time.Now().UTC()
	return s.projects.Update(ctx, p)
}

func (s *projectService) Archive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, domain.ProjectArchived)
}

func (s *projectService) Unarchive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, domain.ProjectActive)
}

func (s *projectService) setStatus(ctx context.Context, id string, status domain.ProjectStatus) error {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return s.projects.Update(ctx, p)
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != domain.ProjectArchived {
		return contract.ValidationError("project must be archived before deletion")
	}
	return s.projects.Delete(ctx, id)
}
