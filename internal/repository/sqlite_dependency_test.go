package repository

import (
	"context"
	"testing"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type depFixture struct {
	repo *SQLiteDependencyRepo
	proj *domain.Project
	a    *domain.ScheduleItem
	b    *domain.ScheduleItem
	c    *domain.ScheduleItem
}

func setupDependencyRepo(t *testing.T) depFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Deps")
	require.NoError(t, NewSQLiteProjectRepo(db).Create(ctx, proj))

	itemRepo := NewSQLiteScheduleItemRepo(db)
	a := testutil.NewTestItem(proj.ID, "A", testutil.WithSortOrder(1))
	b := testutil.NewTestItem(proj.ID, "B", testutil.WithSortOrder(2))
	c := testutil.NewTestItem(proj.ID, "C", testutil.WithSortOrder(3))
	for _, it := range []*domain.ScheduleItem{a, b, c} {
		require.NoError(t, itemRepo.Create(ctx, it))
	}
	return depFixture{repo: NewSQLiteDependencyRepo(db), proj: proj, a: a, b: b, c: c}
}

func TestDependencyRepo_CreateAndGetByID(t *testing.T) {
	f := setupDependencyRepo(t)
	ctx := context.Background()

	dep := testutil.NewTestDependency(f.proj.ID, f.a.ID, f.b.ID,
		testutil.WithType(domain.StartToFinish), testutil.WithLag(-3))
	require.NoError(t, f.repo.Create(ctx, dep))

	got, err := f.repo.GetByID(ctx, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, f.a.ID, got.SourceID)
	assert.Equal(t, f.b.ID, got.TargetID)
	assert.Equal(t, domain.StartToFinish, got.Type)
	assert.Equal(t, -3, got.LagDays)
}

func TestDependencyRepo_SelfLoopRejectedBySchema(t *testing.T) {
	f := setupDependencyRepo(t)
	dep := testutil.NewTestDependency(f.proj.ID, f.a.ID, f.a.ID)
	err := f.repo.Create(context.Background(), dep)
	require.Error(t, err)
}

func TestDependencyRepo_ListByItem(t *testing.T) {
	f := setupDependencyRepo(t)
	ctx := context.Background()

	incoming := testutil.NewTestDependency(f.proj.ID, f.a.ID, f.b.ID)
	outgoing := testutil.NewTestDependency(f.proj.ID, f.b.ID, f.c.ID)
	unrelated := testutil.NewTestDependency(f.proj.ID, f.a.ID, f.c.ID)
	for _, d := range []*domain.Dependency{incoming, outgoing, unrelated} {
		require.NoError(t, f.repo.Create(ctx, d))
	}

	deps, err := f.repo.ListByItem(ctx, f.b.ID)
	require.NoError(t, err)
	require.Len(t, deps, 2, "both directions are returned")
}

func TestDependencyRepo_Update(t *testing.T) {
	f := setupDependencyRepo(t)
	ctx := context.Background()

	dep := testutil.NewTestDependency(f.proj.ID, f.a.ID, f.b.ID)
	require.NoError(t, f.repo.Create(ctx, dep))

	dep.Type = domain.FinishToFinish
	dep.LagDays = 5
	require.NoError(t, f.repo.Update(ctx, dep))

	got, err := f.repo.GetByID(ctx, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FinishToFinish, got.Type)
	assert.Equal(t, 5, got.LagDays)
}

func TestDependencyRepo_DeleteByItem(t *testing.T) {
	f := setupDependencyRepo(t)
	ctx := context.Background()

	touching := testutil.NewTestDependency(f.proj.ID, f.a.ID, f.b.ID)
	touched := testutil.NewTestDependency(f.proj.ID, f.c.ID, f.a.ID)
	survivor := testutil.NewTestDependency(f.proj.ID, f.b.ID, f.c.ID)
	for _, d := range []*domain.Dependency{touching, touched, survivor} {
		require.NoError(t, f.repo.Create(ctx, d))
	}

	require.NoError(t, f.repo.DeleteByItem(ctx, f.a.ID))

	deps, err := f.repo.ListByProject(ctx, f.proj.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, survivor.ID, deps[0].ID)
}

func TestDependencyRepo_DeleteMissingRow(t *testing.T) {
	f := setupDependencyRepo(t)
	err := f.repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
