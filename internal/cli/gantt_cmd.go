package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newGanttCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "gantt <project>",
		Short: "Open the interactive timeline for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("the gantt view needs an interactive terminal")
			}
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			project, err := app.Projects.GetByID(ctx, projectID)
			if err != nil {
				return err
			}

			model := newGanttModel(app, project)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}
