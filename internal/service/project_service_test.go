package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/repository"
	"github.com/atelierworks/timberline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProjectService(t *testing.T) (ProjectService, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	projRepo := repository.NewSQLiteProjectRepo(database)
	return NewProjectService(projRepo, testutil.NewTestUoW(database)), database
}

func TestProjectService_CreateSeedsFixedPhases(t *testing.T) {
	svc, database := setupProjectService(t)
	ctx := context.Background()

	proj := &domain.Project{Name: "Hotel lobby", ClientName: "Grand Pacific"}
	require.NoError(t, svc.Create(ctx, proj))
	assert.NotEmpty(t, proj.ID)
	assert.Equal(t, domain.ProjectActive, proj.Status)

	items, err := repository.NewSQLiteScheduleItemRepo(database).ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, items, 4)

	var keys []domain.PhaseKey
	for _, it := range items {
		assert.Equal(t, domain.KindPhase, it.Kind)
		require.NotNil(t, it.PhaseKey)
		assert.Nil(t, it.ParentID)
		assert.False(t, it.StartDate.After(it.EndDate))
		keys = append(keys, *it.PhaseKey)
	}
	assert.ElementsMatch(t, domain.CanonicalPhaseOrder, keys)
}

func TestProjectService_CreateRollsBackWithPhases(t *testing.T) {
	database := testutil.NewTestDB(t)
	projRepo := repository.NewSQLiteProjectRepo(database)
	ctx := context.Background()

	// Project insert is exec 1, phases are 2..5; failing the last phase
	// must remove the project row too.
	boom := errors.New("constraint violated")
	uow := testutil.BreakOnWrite(database, 5, boom)
	svc := NewProjectService(projRepo, uow)

	err := svc.Create(ctx, &domain.Project{Name: "Doomed"})
	require.ErrorIs(t, err, boom)

	projects, err := projRepo.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectService_CreateRejectsEmptyName(t *testing.T) {
	svc, _ := setupProjectService(t)

	err := svc.Create(context.Background(), &domain.Project{})
	var opErr *contract.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, contract.ErrValidation, opErr.Code)
}

func TestProjectService_ArchiveCycle(t *testing.T) {
	svc, _ := setupProjectService(t)
	ctx := context.Background()

	proj := &domain.Project{Name: "Cafe fit-out"}
	require.NoError(t, svc.Create(ctx, proj))

	require.NoError(t, svc.Archive(ctx, proj.ID))
	fetched, err := svc.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectArchived, fetched.Status)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.Unarchive(ctx, proj.ID))
	fetched, err = svc.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectActive, fetched.Status)
}

func TestProjectService_DeleteRequiresArchived(t *testing.T) {
	svc, _ := setupProjectService(t)
	ctx := context.Background()

	proj := &domain.Project{Name: "Showroom"}
	require.NoError(t, svc.Create(ctx, proj))

	err := svc.Delete(ctx, proj.ID)
	var opErr *contract.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, contract.ErrValidation, opErr.Code)

	require.NoError(t, svc.Archive(ctx, proj.ID))
	require.NoError(t, svc.Delete(ctx, proj.ID))

	_, err = svc.GetByID(ctx, proj.ID)
	assert.Error(t, err)
}
