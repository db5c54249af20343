package repository

import (
	"context"
	"testing"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProjectRepo(t *testing.T) *SQLiteProjectRepo {
	t.Helper()
	return NewSQLiteProjectRepo(testutil.NewTestDB(t))
}

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	repo := setupProjectRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Boutique interior", testutil.WithClientName("Maison Verre"))
	require.NoError(t, repo.Create(ctx, proj))

	got, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boutique interior", got.Name)
	assert.Equal(t, "Maison Verre", got.ClientName)
	assert.Equal(t, domain.ProjectActive, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	repo := setupProjectRepo(t)
	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProjectRepo_ListFiltersArchived(t *testing.T) {
	repo := setupProjectRepo(t)
	ctx := context.Background()

	active := testutil.NewTestProject("Active")
	archived := testutil.NewTestProject("Archived", testutil.WithProjectStatus(domain.ProjectArchived))
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, archived))

	visible, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Active", visible[0].Name)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProjectRepo_Update(t *testing.T) {
	repo := setupProjectRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Before")
	require.NoError(t, repo.Create(ctx, proj))

	proj.Name = "After"
	proj.Status = domain.ProjectArchived
	require.NoError(t, repo.Update(ctx, proj))

	got, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, domain.ProjectArchived, got.Status)
}

func TestProjectRepo_DeleteCascadesItemsAndDependencies(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	itemRepo := NewSQLiteScheduleItemRepo(db)
	depRepo := NewSQLiteDependencyRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Doomed")
	require.NoError(t, repo.Create(ctx, proj))
	a := testutil.NewTestItem(proj.ID, "A")
	b := testutil.NewTestItem(proj.ID, "B", testutil.WithSortOrder(2))
	require.NoError(t, itemRepo.Create(ctx, a))
	require.NoError(t, itemRepo.Create(ctx, b))
	require.NoError(t, depRepo.Create(ctx, testutil.NewTestDependency(proj.ID, a.ID, b.ID)))

	require.NoError(t, repo.Delete(ctx, proj.ID))

	items, err := itemRepo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	deps, err := depRepo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, deps)
}
