package repository

import (
	"context"
	"testing"
	"time"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupItemRepo(t *testing.T) (*SQLiteScheduleItemRepo, *SQLiteProjectRepo) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewSQLiteScheduleItemRepo(db), NewSQLiteProjectRepo(db)
}

func TestScheduleItemRepo_CreateAndGetByID(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Item Host")
	require.NoError(t, projRepo.Create(ctx, proj))

	parent := testutil.NewTestItem(proj.ID, "Casework")
	require.NoError(t, repo.Create(ctx, parent))

	extID := "po-4711"
	override := 35
	item := testutil.NewTestItem(proj.ID, "Drawer fronts",
		testutil.WithParent(parent),
		testutil.WithSortOrder(2),
		testutil.WithSpan(domain.Day(2026, time.March, 3), domain.Day(2026, time.March, 9)),
		testutil.WithProgressOverride(override),
		testutil.WithLinkedIDs("m-1", "m-2"),
	)
	item.ExternalID = &extID
	item.Priority = domain.PriorityCritical
	item.Color = "#0ea5e9"
	require.NoError(t, repo.Create(ctx, item))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.ID, got.ProjectID)
	require.NotNil(t, got.ExternalID)
	assert.Equal(t, "po-4711", *got.ExternalID)
	assert.Equal(t, domain.KindTask, got.Kind)
	assert.Nil(t, got.PhaseKey)
	assert.Equal(t, domain.Day(2026, time.March, 3), got.StartDate)
	assert.Equal(t, domain.Day(2026, time.March, 9), got.EndDate)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)
	assert.Equal(t, 1, got.HierarchyLevel)
	assert.Equal(t, 2, got.SortOrder)
	require.NotNil(t, got.ProgressOverride)
	assert.Equal(t, 35, *got.ProgressOverride)
	assert.Equal(t, domain.PriorityCritical, got.Priority)
	assert.True(t, got.Editable)
	assert.Equal(t, "#0ea5e9", got.Color)
	assert.Equal(t, []string{"m-1", "m-2"}, got.LinkedIDs)
}

func TestScheduleItemRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := setupItemRepo(t)
	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestScheduleItemRepo_PhaseRoundTrip(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Phases")
	require.NoError(t, projRepo.Create(ctx, proj))

	phase := testutil.NewTestItem(proj.ID, "Production", testutil.WithPhaseKey(domain.PhaseProduction))
	require.NoError(t, repo.Create(ctx, phase))

	got, err := repo.GetByID(ctx, phase.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindPhase, got.Kind)
	require.NotNil(t, got.PhaseKey)
	assert.Equal(t, domain.PhaseProduction, *got.PhaseKey)
	assert.True(t, got.Editable)
}

func TestScheduleItemRepo_CorruptTimestampSurfaces(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteScheduleItemRepo(db)
	projRepo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Corrupt")
	require.NoError(t, projRepo.Create(ctx, proj))
	item := testutil.NewTestItem(proj.ID, "Bench seats")
	require.NoError(t, repo.Create(ctx, item))

	_, err := db.Exec(`UPDATE schedule_items SET created_at = 'last tuesday' WHERE id = ?`, item.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, item.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}

func TestScheduleItemRepo_ListByProject_OrderAndLinks(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Ordering")
	require.NoError(t, projRepo.Create(ctx, proj))

	second := testutil.NewTestItem(proj.ID, "Second", testutil.WithSortOrder(2))
	first := testutil.NewTestItem(proj.ID, "First", testutil.WithSortOrder(1), testutil.WithLinkedIDs("m-9"))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	child := testutil.NewTestItem(proj.ID, "Child", testutil.WithParent(first))
	require.NoError(t, repo.Create(ctx, child))

	items, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "First", items[0].Name, "levels first, then sort order")
	assert.Equal(t, "Second", items[1].Name)
	assert.Equal(t, "Child", items[2].Name)
	assert.Equal(t, []string{"m-9"}, items[0].LinkedIDs, "link sets populated in bulk")
}

func TestScheduleItemRepo_ListChildren(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Children")
	require.NoError(t, projRepo.Create(ctx, proj))

	parent := testutil.NewTestItem(proj.ID, "Parent")
	require.NoError(t, repo.Create(ctx, parent))
	b := testutil.NewTestItem(proj.ID, "B", testutil.WithParent(parent), testutil.WithSortOrder(2))
	a := testutil.NewTestItem(proj.ID, "A", testutil.WithParent(parent), testutil.WithSortOrder(1))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, a))

	children, err := repo.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "A", children[0].Name)
	assert.Equal(t, "B", children[1].Name)
}

func TestScheduleItemRepo_Update(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Update")
	require.NoError(t, projRepo.Create(ctx, proj))
	item := testutil.NewTestItem(proj.ID, "Before")
	require.NoError(t, repo.Create(ctx, item))

	item.Name = "After"
	item.EndDate = domain.Day(2026, time.March, 20)
	item.Completed = true
	override := 80
	item.ProgressOverride = &override
	item.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, item))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, domain.Day(2026, time.March, 20), got.EndDate)
	assert.True(t, got.Completed)
	require.NotNil(t, got.ProgressOverride)
	assert.Equal(t, 80, *got.ProgressOverride)
}

func TestScheduleItemRepo_Update_MissingRow(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Ghost")
	require.NoError(t, projRepo.Create(ctx, proj))
	item := testutil.NewTestItem(proj.ID, "Ghost")

	err := repo.Update(ctx, item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestScheduleItemRepo_UpdateParent(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Move")
	require.NoError(t, projRepo.Create(ctx, proj))
	parent := testutil.NewTestItem(proj.ID, "Parent")
	item := testutil.NewTestItem(proj.ID, "Mover", testutil.WithSortOrder(2))
	require.NoError(t, repo.Create(ctx, parent))
	require.NoError(t, repo.Create(ctx, item))

	require.NoError(t, repo.UpdateParent(ctx, item.ID, &parent.ID, 1))
	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)
	assert.Equal(t, 1, got.HierarchyLevel)

	require.NoError(t, repo.UpdateParent(ctx, item.ID, nil, 0))
	got, err = repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
	assert.Equal(t, 0, got.HierarchyLevel)
}

func TestScheduleItemRepo_UpdateSortOrders(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("SortOrders")
	require.NoError(t, projRepo.Create(ctx, proj))
	a := testutil.NewTestItem(proj.ID, "A", testutil.WithSortOrder(1))
	b := testutil.NewTestItem(proj.ID, "B", testutil.WithSortOrder(2))
	c := testutil.NewTestItem(proj.ID, "C", testutil.WithSortOrder(3))
	for _, it := range []*domain.ScheduleItem{a, b, c} {
		require.NoError(t, repo.Create(ctx, it))
	}

	require.NoError(t, repo.UpdateSortOrders(ctx, []string{c.ID, a.ID, b.ID}))

	items, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "C", items[0].Name)
	assert.Equal(t, 1, items[0].SortOrder)
	assert.Equal(t, "A", items[1].Name)
	assert.Equal(t, "B", items[2].Name)
}

func TestScheduleItemRepo_ReplaceLinksAndListLinks(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Links")
	require.NoError(t, projRepo.Create(ctx, proj))
	item := testutil.NewTestItem(proj.ID, "Linked", testutil.WithLinkedIDs("m-old"))
	require.NoError(t, repo.Create(ctx, item))

	require.NoError(t, repo.ReplaceLinks(ctx, item.ID, []domain.Measurement{
		{ID: "m-1", CompletionPct: 25, Description: "CNC batch"},
		{ID: "m-2", CompletionPct: 75},
	}))

	links, err := repo.ListLinks(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, links[item.ID], 2)
	assert.Equal(t, "m-1", links[item.ID][0].ID)
	assert.Equal(t, 25, links[item.ID][0].CompletionPct)
	assert.Equal(t, "CNC batch", links[item.ID][0].Description)

	require.NoError(t, repo.ReplaceLinks(ctx, item.ID, nil))
	links, err = repo.ListLinks(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, links[item.ID])
}

func TestScheduleItemRepo_DeleteCascadesLinks(t *testing.T) {
	repo, projRepo := setupItemRepo(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("DeleteLinks")
	require.NoError(t, projRepo.Create(ctx, proj))
	item := testutil.NewTestItem(proj.ID, "Doomed", testutil.WithLinkedIDs("m-1"))
	require.NoError(t, repo.Create(ctx, item))

	require.NoError(t, repo.Delete(ctx, item.ID))

	links, err := repo.ListLinks(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}
