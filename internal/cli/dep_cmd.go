package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/spf13/cobra"
)

func newDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependencies between timeline items",
	}

	cmd.AddCommand(
		newDepAddCmd(app),
		newDepListCmd(app),
		newDepUpdateCmd(app),
		newDepRemoveCmd(app),
	)

	return cmd
}

func parseDepType(label string) (domain.DependencyType, error) {
	switch strings.ToUpper(label) {
	case "FS", "":
		return domain.FinishToStart, nil
	case "SS":
		return domain.StartToStart, nil
	case "FF":
		return domain.FinishToFinish, nil
	case "SF":
		return domain.StartToFinish, nil
	default:
		return 0, fmt.Errorf("unknown dependency type %q (want FS, SS, FF or SF)", label)
	}
}

func newDepAddCmd(app *App) *cobra.Command {
	var project, typeLabel string
	var lag int

	cmd := &cobra.Command{
		Use:   "add <source> <target>",
		Short: "Link two items with a temporal relationship",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			source, err := resolveItem(ctx, app, projectID, args[0])
			if err != nil {
				return err
			}
			target, err := resolveItem(ctx, app, projectID, args[1])
			if err != nil {
				return err
			}
			depType, err := parseDepType(typeLabel)
			if err != nil {
				return err
			}

			dep, err := app.Timeline.CreateDependency(ctx, contract.CreateDependencyInput{
				ProjectID: projectID,
				SourceID:  source.ID,
				TargetID:  target.ID,
				Type:      depType,
				LagDays:   lag,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s %s %s (%s)\n",
				source.Name, dep.Type.Label(), target.Name, shortID(dep.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name or id")
	cmd.Flags().StringVar(&typeLabel, "type", "FS", "Relationship type (FS, SS, FF, SF)")
	cmd.Flags().IntVar(&lag, "lag", 0, "Lag in days (negative allows overlap)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newDepListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			deps, err := app.Timeline.ListDependencies(ctx, projectID)
			if err != nil {
				return err
			}
			if len(deps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dependencies.")
				return nil
			}
			items, err := app.Timeline.ListItems(ctx, projectID)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(items))
			for _, it := range items {
				names[it.ID] = it.Name
			}
			rows := make([][]string, 0, len(deps))
			for _, d := range deps {
				lag := "-"
				if d.LagDays > 0 {
					lag = fmt.Sprintf("+%dd", d.LagDays)
				} else if d.LagDays < 0 {
					lag = fmt.Sprintf("%dd", d.LagDays)
				}
				rows = append(rows, []string{
					shortID(d.ID), names[d.SourceID], d.Type.Label(), names[d.TargetID], lag,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(),
				renderTable([]string{"ID", "SOURCE", "TYPE", "TARGET", "LAG"}, rows))
			return nil
		},
	}
}

func newDepUpdateCmd(app *App) *cobra.Command {
	var project, typeLabel string
	var lag int

	cmd := &cobra.Command{
		Use:   "update <dep-id>",
		Short: "Change a dependency's type or lag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if _, err := resolveProjectID(ctx, app, project); err != nil {
				return err
			}

			var in contract.UpdateDependencyInput
			if cmd.Flags().Changed("type") {
				depType, err := parseDepType(typeLabel)
				if err != nil {
					return err
				}
				in.Type = &depType
			}
			if cmd.Flags().Changed("lag") {
				in.LagDays = &lag
			}
			if _, err := app.Timeline.UpdateDependency(ctx, args[0], in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name or id")
	cmd.Flags().StringVar(&typeLabel, "type", "", "Relationship type (FS, SS, FF, SF)")
	cmd.Flags().IntVar(&lag, "lag", 0, "Lag in days")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newDepRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <dep-id>",
		Short: "Delete a dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Timeline.DeleteDependency(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}
