package cli

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierworks/timberline/internal/controller"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/repository"
	"github.com/atelierworks/timberline/internal/service"
	"github.com/atelierworks/timberline/internal/teatest"
	"github.com/atelierworks/timberline/internal/testutil"
	"github.com/atelierworks/timberline/internal/timeline"
)

func newGanttApp(t *testing.T) (*App, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	items := repository.NewSQLiteScheduleItemRepo(database)
	deps := repository.NewSQLiteDependencyRepo(database)
	projects := repository.NewSQLiteProjectRepo(database)
	uow := testutil.NewTestUoW(database)
	return &App{
		Projects:      service.NewProjectService(projects, uow),
		Timeline:      service.NewTimelineService(items, deps, uow),
		Role:          domain.RolePM,
		IsInteractive: func() bool { return true },
	}, database
}

// seedGanttProject inserts a bare project through the repository so
// tests control exactly which items exist.
func seedGanttProject(t *testing.T, database *sql.DB, name string) *domain.Project {
	t.Helper()
	proj := testutil.NewTestProject(name)
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(context.Background(), proj))
	return proj
}

func seedGanttItem(t *testing.T, database *sql.DB, item *domain.ScheduleItem) *domain.ScheduleItem {
	t.Helper()
	require.NoError(t, repository.NewSQLiteScheduleItemRepo(database).Create(context.Background(), item))
	return item
}

func startGantt(t *testing.T, app *App, proj *domain.Project) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newGanttModel(app, proj))
	d.Start()
	d.Resize(120, 40)
	return d
}

func ganttState(d *teatest.Driver) controller.State {
	return d.Model.(ganttModel).state
}

func itemNamed(t *testing.T, app *App, projectID, name string) *domain.ScheduleItem {
	t.Helper()
	items, err := app.Timeline.ListItems(context.Background(), projectID)
	require.NoError(t, err)
	for _, it := range items {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("item %q not found", name)
	return nil
}

func TestGanttModel_LoadsSnapshot(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Oak Boardroom")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Veneer pressing"))
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Edge banding",
		testutil.WithSortOrder(2), testutil.WithSpan(mar(8), mar(12))))

	d := startGantt(t, app, proj)

	s := ganttState(d)
	assert.Len(t, s.Items, 2)
	assert.Contains(t, d.View(), "Veneer pressing")
	assert.Contains(t, d.View(), "Edge banding")
	assert.Contains(t, d.View(), "Oak Boardroom")
}

func TestGanttModel_ShiftBarPersists(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Shift")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Veneer pressing",
		testutil.WithSpan(mar(2), mar(6))))
	// Second item widens the range so day one stays rendered.
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Edge banding",
		testutil.WithSortOrder(2), testutil.WithSpan(mar(1), mar(14))))

	d := startGantt(t, app, proj)
	d.Press('l')

	moved := itemNamed(t, app, proj.ID, "Veneer pressing")
	assert.Equal(t, mar(3), moved.StartDate)
	assert.Equal(t, mar(7), moved.EndDate)

	s := ganttState(d)
	assert.Nil(t, s.Drag, "drag cycle fully settles")
	assert.Empty(t, s.ErrMsg)
}

func TestGanttModel_ResizeRightEdgePersists(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Resize")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Veneer pressing",
		testutil.WithSpan(mar(2), mar(6))))
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Edge banding",
		testutil.WithSortOrder(2), testutil.WithSpan(mar(1), mar(14))))

	d := startGantt(t, app, proj)
	d.Press('L')

	resized := itemNamed(t, app, proj.ID, "Veneer pressing")
	assert.Equal(t, mar(2), resized.StartDate, "left edge untouched")
	assert.Equal(t, mar(7), resized.EndDate)
}

func TestGanttModel_MilestoneIgnoresDragKeys(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Milestone")
	seedGanttItem(t, database, testutil.NewTestMilestone(proj.ID, "Client sign-off", mar(5)))

	d := startGantt(t, app, proj)
	d.Press('l')

	still := itemNamed(t, app, proj.ID, "Client sign-off")
	assert.Equal(t, mar(5), still.StartDate)
	assert.Equal(t, mar(5), still.EndDate)
}

func TestGanttModel_ReadOnlyClickShowsNotice(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "ReadOnly")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Signed-off casework",
		testutil.WithNotEditable()))

	d := startGantt(t, app, proj)
	d.PressEnter()

	assert.Contains(t, d.View(), "read-only")
	assert.Empty(t, ganttState(d).Selected)
}

func TestGanttModel_CollapseHidesSubtree(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Collapse")
	parent := seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Casework"))
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Drawer boxes",
		testutil.WithParent(parent)))

	d := startGantt(t, app, proj)
	assert.Contains(t, d.View(), "Drawer boxes")

	d.Press('z')
	assert.NotContains(t, d.View(), "Drawer boxes")
	assert.True(t, ganttState(d).Collapsed[parent.ID])

	d.Press('z')
	assert.Contains(t, d.View(), "Drawer boxes")
}

func TestGanttModel_ReorderPersists(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Reorder")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "First"))
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Second",
		testutil.WithSortOrder(2)))

	d := startGantt(t, app, proj)
	d.Press('J')

	assert.Equal(t, 2, itemNamed(t, app, proj.ID, "First").SortOrder)
	assert.Equal(t, 1, itemNamed(t, app, proj.ID, "Second").SortOrder)
}

func TestGanttModel_IndentPersists(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Indent")
	parent := seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Casework"))
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Drawer boxes",
		testutil.WithSortOrder(2)))

	d := startGantt(t, app, proj)
	d.PressDown()
	d.Press('i')

	child := itemNamed(t, app, proj.ID, "Drawer boxes")
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
	assert.Equal(t, 1, child.HierarchyLevel)
}

func TestGanttModel_IndentWithoutPredecessorShowsError(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "IndentErr")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Lonely task"))

	d := startGantt(t, app, proj)
	d.Press('i')

	s := ganttState(d)
	assert.NotEmpty(t, s.ErrMsg)
	assert.Nil(t, itemNamed(t, app, proj.ID, "Lonely task").ParentID)
}

func TestGanttModel_LinkFormCreatesDependency(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Link")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "First"))
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Second",
		testutil.WithSortOrder(2)))

	d := startGantt(t, app, proj)
	d.PressEnter() // select first
	d.PressDown()
	d.Press('x') // add second to the selection

	require.Len(t, ganttState(d).Selected, 2)

	d.Press('d')
	require.NotNil(t, d.Model.(ganttModel).form, "dialog opens for a two-item selection")

	// Accept the seeded defaults: relationship select, then lag input.
	d.PressEnter()
	d.PressEnter()

	deps, err := app.Timeline.ListDependencies(context.Background(), proj.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, itemNamed(t, app, proj.ID, "First").ID, deps[0].SourceID)
	assert.Equal(t, itemNamed(t, app, proj.ID, "Second").ID, deps[0].TargetID)
	assert.Equal(t, domain.FinishToStart, deps[0].Type)
	assert.Equal(t, 0, deps[0].LagDays)
	assert.Nil(t, d.Model.(ganttModel).form, "dialog closes after saving")
}

func TestGanttModel_LinkFormEscAbandons(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "LinkEsc")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "First"))
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Second",
		testutil.WithSortOrder(2)))

	d := startGantt(t, app, proj)
	d.PressEnter()
	d.PressDown()
	d.Press('x')
	d.Press('d')
	d.PressEsc()

	assert.Nil(t, d.Model.(ganttModel).form)
	assert.Nil(t, ganttState(d).Editor)

	deps, err := app.Timeline.ListDependencies(context.Background(), proj.ID)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestGanttModel_LinkFormRequiresTwoSelections(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "LinkOne")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "First"))

	d := startGantt(t, app, proj)
	d.PressEnter()
	d.Press('d')

	m := d.Model.(ganttModel)
	assert.Nil(t, m.form)
	assert.NotEmpty(t, m.state.ErrMsg)
}

func TestGanttModel_ViewModeCycles(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Modes")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Veneer pressing"))

	d := startGantt(t, app, proj)
	assert.Equal(t, timeline.ViewDay, ganttState(d).ViewMode)

	d.Press('v')
	assert.Equal(t, timeline.ViewWeek, ganttState(d).ViewMode)
	d.Press('v')
	assert.Equal(t, timeline.ViewMonth, ganttState(d).ViewMode)
	d.Press('v')
	assert.Equal(t, timeline.ViewDay, ganttState(d).ViewMode)
}

func TestGanttModel_DependencyPanelRendersRoutes(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Panel")
	a := seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "First",
		testutil.WithSpan(mar(1), mar(5))))
	b := seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Second",
		testutil.WithSortOrder(2), testutil.WithSpan(mar(8), mar(12))))
	require.NoError(t, repository.NewSQLiteDependencyRepo(database).Create(context.Background(),
		testutil.NewTestDependency(proj.ID, a.ID, b.ID, testutil.WithLag(2))))

	d := startGantt(t, app, proj)
	view := d.View()
	assert.Contains(t, view, "Links")
	assert.Contains(t, view, "FS")
	assert.Contains(t, view, "+2d")
}

func TestGanttModel_QuitKey(t *testing.T) {
	app, database := newGanttApp(t)
	proj := seedGanttProject(t, database, "Quit")
	seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Veneer pressing"))

	d := startGantt(t, app, proj)
	d.Press('q')
	assert.True(t, d.Quitting)
}

func mar(d int) time.Time { return domain.Day(2026, time.March, d) }
