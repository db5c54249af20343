package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierworks/timberline/internal/service"
	"github.com/atelierworks/timberline/internal/testutil"
)

func runCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProjectCmd_AddSeedsPhases(t *testing.T) {
	app, _ := newGanttApp(t)

	out, err := runCmd(t, app, "project", "add", "--name", "Oak Boardroom", "--client", "Meridian Bank")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Oak Boardroom")

	projects, err := app.Projects.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	items, err := app.Timeline.ListItems(context.Background(), projects[0].ID)
	require.NoError(t, err)
	assert.Len(t, items, 4, "the four manufacturing phases are seeded")
	for _, it := range items {
		assert.True(t, it.IsPhase())
	}
}

func TestProjectCmd_ListAndArchiveFlow(t *testing.T) {
	app, _ := newGanttApp(t)
	_, err := runCmd(t, app, "project", "add", "--name", "Walnut Reception")
	require.NoError(t, err)

	out, err := runCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Walnut Reception")
	assert.Contains(t, out, "active")

	// Removal requires archiving first.
	_, err = runCmd(t, app, "project", "remove", "Walnut Reception")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archived")

	_, err = runCmd(t, app, "project", "archive", "Walnut Reception")
	require.NoError(t, err)

	out, err = runCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Walnut Reception", "archived projects are hidden by default")

	out, err = runCmd(t, app, "project", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "archived")

	_, err = runCmd(t, app, "project", "remove", "Walnut Reception")
	require.NoError(t, err)

	projects, err := app.Projects.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestItemCmd_AddAndList(t *testing.T) {
	app, _ := newGanttApp(t)
	_, err := runCmd(t, app, "project", "add", "--name", "Oak Boardroom")
	require.NoError(t, err)

	_, err = runCmd(t, app, "item", "add",
		"--project", "Oak Boardroom", "--name", "Veneer pressing",
		"--start", "2026-03-02", "--end", "2026-03-06")
	require.NoError(t, err)

	out, err := runCmd(t, app, "item", "list", "Oak Boardroom")
	require.NoError(t, err)
	assert.Contains(t, out, "Veneer pressing")
	assert.Contains(t, out, "2026-03-02")
	assert.Contains(t, out, "0%")
}

func TestItemCmd_UpdateProgressAndParent(t *testing.T) {
	app, _ := newGanttApp(t)
	_, err := runCmd(t, app, "project", "add", "--name", "Oak Boardroom")
	require.NoError(t, err)
	_, err = runCmd(t, app, "item", "add",
		"--project", "Oak Boardroom", "--name", "Casework", "--start", "2026-03-01", "--end", "2026-03-20")
	require.NoError(t, err)
	_, err = runCmd(t, app, "item", "add",
		"--project", "Oak Boardroom", "--name", "Drawer boxes", "--start", "2026-03-02", "--end", "2026-03-06")
	require.NoError(t, err)

	_, err = runCmd(t, app, "item", "update", "Drawer boxes",
		"--project", "Oak Boardroom", "--progress", "40", "--parent", "Casework")
	require.NoError(t, err)

	proj, err := app.Projects.List(context.Background(), false)
	require.NoError(t, err)
	child := itemNamed(t, app, proj[0].ID, "Drawer boxes")
	require.NotNil(t, child.ParentID)
	require.NotNil(t, child.ProgressOverride)
	assert.Equal(t, 40, *child.ProgressOverride)

	out, err := runCmd(t, app, "item", "list", "Oak Boardroom")
	require.NoError(t, err)
	assert.Contains(t, out, "40%", "derived progress surfaces the override")
}

func TestItemCmd_InvalidDateFlag(t *testing.T) {
	app, _ := newGanttApp(t)
	_, err := runCmd(t, app, "project", "add", "--name", "Oak Boardroom")
	require.NoError(t, err)
	_, err = runCmd(t, app, "item", "add",
		"--project", "Oak Boardroom", "--name", "Casework", "--start", "2026-03-01")
	require.NoError(t, err)

	_, err = runCmd(t, app, "item", "update", "Casework",
		"--project", "Oak Boardroom", "--start", "03/01/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestDepCmd_FullFlow(t *testing.T) {
	app, _ := newGanttApp(t)
	_, err := runCmd(t, app, "project", "add", "--name", "Oak Boardroom")
	require.NoError(t, err)
	for _, name := range []string{"First", "Second"} {
		_, err = runCmd(t, app, "item", "add",
			"--project", "Oak Boardroom", "--name", name, "--start", "2026-03-01", "--end", "2026-03-05")
		require.NoError(t, err)
	}

	out, err := runCmd(t, app, "dep", "add", "First", "Second",
		"--project", "Oak Boardroom", "--type", "ss", "--lag", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Linked First SS Second")

	out, err = runCmd(t, app, "dep", "list", "Oak Boardroom")
	require.NoError(t, err)
	assert.Contains(t, out, "SS")
	assert.Contains(t, out, "+2d")

	proj, err := app.Projects.List(context.Background(), false)
	require.NoError(t, err)
	deps, err := app.Timeline.ListDependencies(context.Background(), proj[0].ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)

	_, err = runCmd(t, app, "dep", "update", deps[0].ID,
		"--project", "Oak Boardroom", "--type", "FF", "--lag", "0")
	require.NoError(t, err)

	out, err = runCmd(t, app, "dep", "list", "Oak Boardroom")
	require.NoError(t, err)
	assert.Contains(t, out, "FF")
	assert.NotContains(t, out, "+2d")

	_, err = runCmd(t, app, "dep", "remove", deps[0].ID)
	require.NoError(t, err)

	out, err = runCmd(t, app, "dep", "list", "Oak Boardroom")
	require.NoError(t, err)
	assert.Contains(t, out, "No dependencies.")
}

func TestDepCmd_RejectsSelfLink(t *testing.T) {
	app, _ := newGanttApp(t)
	_, err := runCmd(t, app, "project", "add", "--name", "Oak Boardroom")
	require.NoError(t, err)
	_, err = runCmd(t, app, "item", "add",
		"--project", "Oak Boardroom", "--name", "First", "--start", "2026-03-01")
	require.NoError(t, err)

	_, err = runCmd(t, app, "dep", "add", "First", "First", "--project", "Oak Boardroom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot create a dependency to itself")
}

func TestProjectCmd_Import(t *testing.T) {
	app, database := newGanttApp(t)
	app.Import = service.NewImportService(testutil.NewTestUoW(database))

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"project": {"name": "Imported"},
		"items": [{"ref": "a", "name": "Task A", "start_date": "2026-03-01", "end_date": "2026-03-05"}]
	}`), 0644))

	out, err := runCmd(t, app, "project", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")
	assert.Contains(t, out, "1 items")
}

func TestGanttCmd_RefusesNonInteractive(t *testing.T) {
	app, _ := newGanttApp(t)
	app.IsInteractive = func() bool { return false }
	_, err := runCmd(t, app, "project", "add", "--name", "Oak Boardroom")
	require.NoError(t, err)

	_, err = runCmd(t, app, "gantt", "Oak Boardroom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestResolveProjectID(t *testing.T) {
	app, database := newGanttApp(t)
	ctx := context.Background()
	a := seedGanttProject(t, database, "Oak Boardroom")
	seedGanttProject(t, database, "Walnut Reception")

	t.Run("exact name is case-insensitive", func(t *testing.T) {
		id, err := resolveProjectID(ctx, app, "oak boardroom")
		require.NoError(t, err)
		assert.Equal(t, a.ID, id)
	})
	t.Run("unique id prefix resolves", func(t *testing.T) {
		id, err := resolveProjectID(ctx, app, a.ID[:8])
		require.NoError(t, err)
		assert.Equal(t, a.ID, id)
	})
	t.Run("unknown input errors", func(t *testing.T) {
		_, err := resolveProjectID(ctx, app, "mahogany")
		assert.ErrorContains(t, err, "not found")
	})
}

func TestResolveItem(t *testing.T) {
	app, database := newGanttApp(t)
	ctx := context.Background()
	proj := seedGanttProject(t, database, "Resolve")
	it := seedGanttItem(t, database, testutil.NewTestItem(proj.ID, "Veneer pressing"))

	found, err := resolveItem(ctx, app, proj.ID, "veneer pressing")
	require.NoError(t, err)
	assert.Equal(t, it.ID, found.ID)

	found, err = resolveItem(ctx, app, proj.ID, it.ID[:6])
	require.NoError(t, err)
	assert.Equal(t, it.ID, found.ID)

	_, err = resolveItem(ctx, app, proj.ID, "sanding")
	assert.ErrorContains(t, err, "not found")
}
