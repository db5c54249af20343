package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/db"
	"github.com/atelierworks/timberline/internal/importer"
	"github.com/atelierworks/timberline/internal/repository"
)

// ImportService persists a whole project from an interchange file in one
// transaction: either everything lands or nothing does.
type ImportService interface {
	Import(ctx context.Context, path string) (*ImportSummary, error)
}

// ImportSummary reports what an import created.
type ImportSummary struct {
	ProjectID    string
	ProjectName  string
	Items        int
	Dependencies int
}

type importService struct {
	uow db.UnitOfWork
}

func NewImportService(uow db.UnitOfWork) ImportService {
	return &importService{uow: uow}
}

func (s *importService) Import(ctx context.Context, path string) (*ImportSummary, error) {
	schema, err := importer.LoadImportSchema(path)
	if err != nil {
		return nil, err
	}

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, contract.ValidationError("import file invalid:\n  " + strings.Join(msgs, "\n  "))
	}

	bundle, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		items := repository.NewSQLiteScheduleItemRepo(tx)
		deps := repository.NewSQLiteDependencyRepo(tx)

		if err := projects.Create(ctx, bundle.Project); err != nil {
			return err
		}
		for _, item := range bundle.Items {
			if err := items.Create(ctx, item); err != nil {
				return err
			}
		}
		for _, dep := range bundle.Dependencies {
			if err := deps.Create(ctx, dep); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportSummary{
		ProjectID:    bundle.Project.ID,
		ProjectName:  bundle.Project.Name,
		Items:        len(bundle.Items),
		Dependencies: len(bundle.Dependencies),
	}, nil
}
