package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/controller"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/timeline"
)

// pxPerCell is the pixel width of one terminal cell on the chart's
// internal pixel axis. The controller and geometry helpers think in
// pixels; the view quantizes to cells at render time.
const pxPerCell = 8.0

// dataMsg carries a fresh snapshot loaded from the services.
type dataMsg struct {
	items []*domain.ScheduleItem
	deps  []*domain.Dependency
	links map[string][]domain.Measurement
	err   error
}

// saveDoneMsg reports a dispatched persistence effect finishing.
type saveDoneMsg struct{ err error }

// showItemMsg asks the surface to describe a read-only item.
type showItemMsg struct{ id string }

// ganttModel is the interactive timeline surface. All scheduling logic
// lives in the controller; the model translates keys into events,
// dispatches the resulting effects as commands, and renders the state.
type ganttModel struct {
	app     *App
	project *domain.Project
	state   controller.State

	cursor int
	info   string

	// form is the open dependency dialog; formType and formLag are the
	// bound values it edits.
	form     *huh.Form
	formType domain.DependencyType
	formLag  string

	width    int
	height   int
	quitting bool
}

func newGanttModel(app *App, project *domain.Project) ganttModel {
	return ganttModel{
		app:     app,
		project: project,
		state:   controller.NewState(project.ID, nil, nil, nil, domain.DateOnly(time.Now())),
	}
}

func (m ganttModel) Init() tea.Cmd {
	return m.loadCmd()
}

// loadCmd fetches the full project snapshot off the event loop.
func (m ganttModel) loadCmd() tea.Cmd {
	app := m.app
	projectID := m.state.ProjectID
	return func() tea.Msg {
		ctx := context.Background()
		items, err := app.Timeline.ListItems(ctx, projectID)
		if err != nil {
			return dataMsg{err: err}
		}
		deps, err := app.Timeline.ListDependencies(ctx, projectID)
		if err != nil {
			return dataMsg{err: err}
		}
		links, err := app.Timeline.ListLinks(ctx, projectID)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{items: items, deps: deps, links: links}
	}
}

func (m ganttModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		if msg.err != nil {
			m.info = styleErr.Render(msg.err.Error())
			return m, nil
		}
		cmd := m.apply(controller.Refresh{
			Items: msg.items,
			Deps:  msg.deps,
			Links: msg.links,
			Today: domain.DateOnly(time.Now()),
		})
		m.clampCursor()
		return m, cmd

	case saveDoneMsg:
		cmd := m.apply(controller.SaveCompleted{Err: msg.err})
		if msg.err != nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.loadCmd())

	case showItemMsg:
		if it := m.itemByID(msg.id); it != nil {
			m.info = styleDim.Render(fmt.Sprintf("%q is read-only", it.Name))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.apply(controller.Resize{
			TotalWidthPx: float64(m.chartCells()) * pxPerCell,
			RowHeightPx:  m.state.RowHeightPx,
		})

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}

	if m.form != nil {
		var cmd tea.Cmd
		m.form, cmd = updateHuhForm(m.form, msg)
		return m, cmd
	}
	return m, nil
}

func (m ganttModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.info = ""
	switch {
	case key.Matches(msg, ganttKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, ganttKeys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, ganttKeys.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, ganttKeys.Select):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.Click{ItemID: cur.ID})
		}
	case key.Matches(msg, ganttKeys.Multi):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.Click{ItemID: cur.ID, Ctrl: true})
		}
	case key.Matches(msg, ganttKeys.Range):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.Click{ItemID: cur.ID, Shift: true})
		}

	case key.Matches(msg, ganttKeys.Fold):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.ToggleCollapse{ItemID: cur.ID})
		}

	case key.Matches(msg, ganttKeys.BarLeft):
		return m, m.dragDays(controller.EdgeMiddle, -1)
	case key.Matches(msg, ganttKeys.BarRight):
		return m, m.dragDays(controller.EdgeMiddle, 1)
	case key.Matches(msg, ganttKeys.EndLeft):
		return m, m.dragDays(controller.EdgeRight, -1)
	case key.Matches(msg, ganttKeys.EndRight):
		return m, m.dragDays(controller.EdgeRight, 1)
	case key.Matches(msg, ganttKeys.StartLeft):
		return m, m.dragDays(controller.EdgeLeft, -1)
	case key.Matches(msg, ganttKeys.StartRight):
		return m, m.dragDays(controller.EdgeLeft, 1)

	case key.Matches(msg, ganttKeys.Indent):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.Indent{ItemID: cur.ID})
		}
	case key.Matches(msg, ganttKeys.Outdent):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.Outdent{ItemID: cur.ID})
		}
	case key.Matches(msg, ganttKeys.MoveUp):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.MoveUp{ItemID: cur.ID})
		}
	case key.Matches(msg, ganttKeys.MoveDown):
		if cur := m.currentItem(); cur != nil {
			return m, m.apply(controller.MoveDown{ItemID: cur.ID})
		}

	case key.Matches(msg, ganttKeys.Link):
		return m, m.openLinkEditor()

	case key.Matches(msg, ganttKeys.ViewMode):
		return m, m.apply(controller.SetViewMode{Mode: nextViewMode(m.state.ViewMode)})

	case key.Matches(msg, ganttKeys.Reload):
		return m, m.loadCmd()
	}
	return m, nil
}

// updateForm routes input to the open dependency dialog and reacts to
// its terminal states.
func (m ganttModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		return m, m.apply(controller.CloseLinkEditor{})
	case "ctrl+d":
		m.form = nil
		return m, m.apply(controller.DeleteLink{})
	}

	var cmd tea.Cmd
	m.form, cmd = updateHuhForm(m.form, msg)
	if m.form == nil {
		return m, cmd
	}
	switch m.form.State {
	case huh.StateCompleted:
		lag, _ := strconv.Atoi(m.formLag)
		m.form = nil
		return m, tea.Batch(cmd, m.apply(controller.SaveLink{Type: m.formType, LagDays: lag}))
	case huh.StateAborted:
		m.form = nil
		return m, tea.Batch(cmd, m.apply(controller.CloseLinkEditor{}))
	}
	return m, cmd
}

func updateHuhForm(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	model, cmd := form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		return f, cmd
	}
	return form, cmd
}

// openLinkEditor opens the dependency dialog: editing the existing
// relationship when the two selected items already have one in that
// direction, authoring a new one otherwise.
func (m *ganttModel) openLinkEditor() tea.Cmd {
	var ev controller.Event = controller.OpenLinkEditor{}
	if len(m.state.Selected) == 2 {
		src, dst := m.state.Selected[0], m.state.Selected[1]
		for _, d := range m.state.Deps {
			if d.SourceID == src && d.TargetID == dst {
				ev = controller.EditDependency{DependencyID: d.ID}
				break
			}
		}
	}
	cmd := m.apply(ev)
	if m.state.Editor == nil {
		return cmd
	}
	m.formType = m.state.Editor.Type
	m.formLag = strconv.Itoa(m.state.Editor.LagDays)
	m.form = newLinkForm(&m.formType, &m.formLag)
	return tea.Batch(cmd, m.form.Init())
}

// apply feeds one event through the reducer and dispatches the effects.
func (m *ganttModel) apply(ev controller.Event) tea.Cmd {
	next, effects := controller.Reduce(m.state, ev)
	m.state = next
	return m.dispatch(effects)
}

// dragDays runs a full synthetic drag cycle moving the cursor item's
// bar edge by whole days.
func (m *ganttModel) dragDays(edge controller.DragEdge, days int) tea.Cmd {
	cur := m.currentItem()
	if cur == nil {
		return nil
	}
	dpp := m.state.DaysPerPixel()
	if dpp == 0 {
		return nil
	}
	m.state, _ = controller.Reduce(m.state, controller.DragStart{ItemID: cur.ID, Edge: edge})
	m.state, _ = controller.Reduce(m.state, controller.DragMove{DeltaPx: float64(days) / dpp})
	next, effects := controller.Reduce(m.state, controller.DragEnd{})
	m.state = next
	return m.dispatch(effects)
}

// dispatch converts persistence effects into commands against the
// services. Every command resolves to a saveDoneMsg so the reducer sees
// the completion.
func (m *ganttModel) dispatch(effects []controller.Effect) tea.Cmd {
	if len(effects) == 0 {
		return nil
	}
	app := m.app
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch eff := eff.(type) {
		case controller.UpdateItemSpan:
			start, end := eff.Start, eff.End
			itemID := eff.ItemID
			cmds = append(cmds, saveCmd(func(ctx context.Context) error {
				_, err := app.Timeline.UpdateItem(ctx, itemID, contract.UpdateItemInput{
					StartDate: &start,
					EndDate:   &end,
				})
				return err
			}))
		case controller.ReparentItem:
			itemID, parentID := eff.ItemID, eff.ParentID
			cmds = append(cmds, saveCmd(func(ctx context.Context) error {
				_, err := app.Timeline.UpdateItem(ctx, itemID, contract.UpdateItemInput{
					Parent: &contract.ParentChange{ParentID: parentID},
				})
				return err
			}))
		case controller.ReorderSiblings:
			projectID, ids := eff.ProjectID, eff.OrderedIDs
			cmds = append(cmds, saveCmd(func(ctx context.Context) error {
				return app.Timeline.ReorderItems(ctx, projectID, ids)
			}))
		case controller.SaveDependency:
			cmds = append(cmds, saveDependencyCmd(app, eff))
		case controller.DeleteDependency:
			depID := eff.DependencyID
			cmds = append(cmds, saveCmd(func(ctx context.Context) error {
				return app.Timeline.DeleteDependency(ctx, depID)
			}))
		case controller.ShowItem:
			itemID := eff.ItemID
			cmds = append(cmds, func() tea.Msg { return showItemMsg{id: itemID} })
		}
	}
	return tea.Batch(cmds...)
}

func saveDependencyCmd(app *App, eff controller.SaveDependency) tea.Cmd {
	if eff.DependencyID == "" {
		return saveCmd(func(ctx context.Context) error {
			_, err := app.Timeline.CreateDependency(ctx, contract.CreateDependencyInput{
				ProjectID: eff.ProjectID,
				SourceID:  eff.SourceID,
				TargetID:  eff.TargetID,
				Type:      eff.Type,
				LagDays:   eff.LagDays,
			})
			return err
		})
	}
	depType, lag := eff.Type, eff.LagDays
	depID := eff.DependencyID
	return saveCmd(func(ctx context.Context) error {
		_, err := app.Timeline.UpdateDependency(ctx, depID, contract.UpdateDependencyInput{
			Type:    &depType,
			LagDays: &lag,
		})
		return err
	})
}

func saveCmd(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{err: fn(context.Background())}
	}
}

func nextViewMode(mode timeline.ViewMode) timeline.ViewMode {
	switch mode {
	case timeline.ViewDay:
		return timeline.ViewWeek
	case timeline.ViewWeek:
		return timeline.ViewMonth
	default:
		return timeline.ViewDay
	}
}

func (m *ganttModel) currentItem() *timeline.Item {
	rows := m.state.VisibleItems()
	if len(rows) == 0 {
		return nil
	}
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return rows[m.cursor]
}

func (m *ganttModel) clampCursor() {
	rows := m.state.VisibleItems()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *ganttModel) itemByID(id string) *domain.ScheduleItem {
	for _, it := range m.state.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// chartCells returns the cell width available to the bar area.
func (m *ganttModel) chartCells() int {
	cells := m.width - nameColWidth - 2
	if cells < minChartCells {
		cells = minChartCells
	}
	return cells
}
