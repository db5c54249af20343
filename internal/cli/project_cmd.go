package cli

import (
	"context"
	"fmt"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectArchiveCmd(app),
		newProjectUnarchiveCmd(app),
		newProjectRemoveCmd(app),
		newProjectImportCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var name, client string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project with its four manufacturing phases",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{Name: name, ClientName: client}
			if err := app.Projects.Create(context.Background(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Name, shortID(p.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&client, "client", "", "Client name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(context.Background(), all)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
				return nil
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{shortID(p.ID), p.Name, p.ClientName, string(p.Status)})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"ID", "NAME", "CLIENT", "STATUS"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")

	return cmd
}

func newProjectArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <project>",
		Short: "Archive a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Archive(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Archived.")
			return nil
		},
	}
}

func newProjectUnarchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <project>",
		Short: "Restore an archived project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Unarchive(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Restored.")
			return nil
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project>",
		Short: "Delete an archived project and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a whole project from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.Import.Import(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s): %d items, %d dependencies\n",
				summary.ProjectName, shortID(summary.ProjectID), summary.Items, summary.Dependencies)
			return nil
		},
	}
}

// shortID trims a UUID to its first block for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
