package cli

import (
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/service"
	"github.com/spf13/cobra"
)

// App holds the service interfaces used by CLI commands plus the
// caller's role, resolved once at startup.
type App struct {
	Projects service.ProjectService
	Timeline service.TimelineService
	Import   service.ImportService
	Role     domain.Role

	// IsInteractive reports whether stdin is a terminal; the gantt view
	// refuses to start without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "timberline" command and registers
// all subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "timberline",
		Short: "Manufacturing project timelines in the terminal",
	}

	root.AddCommand(
		newProjectCmd(app),
		newItemCmd(app),
		newDepCmd(app),
		newGanttCmd(app),
	)

	return root
}
