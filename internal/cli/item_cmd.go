package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelierworks/timberline/internal/contract"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/timeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage timeline items",
	}

	cmd.AddCommand(
		newItemAddCmd(app),
		newItemListCmd(app),
		newItemUpdateCmd(app),
		newItemRemoveCmd(app),
		newItemReorderCmd(app),
	)

	return cmd
}

func parseDateFlag(value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d.UTC(), nil
}

// dateFlag returns the parsed value of a date flag, or nil when the flag
// was not set on this invocation.
func dateFlag(flags *pflag.FlagSet, name string) (*time.Time, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	raw, err := flags.GetString(name)
	if err != nil {
		return nil, err
	}
	d, err := parseDateFlag(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func newItemAddCmd(app *App) *cobra.Command {
	var project, name, kind, start, end, parent string
	var priority int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task or milestone to a project timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			startDate, err := parseDateFlag(start)
			if err != nil {
				return err
			}
			endDate := startDate
			if end != "" {
				if endDate, err = parseDateFlag(end); err != nil {
					return err
				}
			}

			in := contract.CreateItemInput{
				ProjectID: projectID,
				Name:      name,
				Kind:      domain.ItemKind(kind),
				StartDate: startDate,
				EndDate:   endDate,
				Priority:  domain.Priority(priority),
			}
			if parent != "" {
				parentItem, err := resolveItem(ctx, app, projectID, parent)
				if err != nil {
					return err
				}
				in.ParentID = &parentItem.ID
			}

			item, err := app.Timeline.CreateItem(ctx, app.Role, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q (%s)\n", item.Kind, item.Name, shortID(item.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name or id")
	cmd.Flags().StringVar(&name, "name", "", "Item name")
	cmd.Flags().StringVar(&kind, "kind", "task", "Item kind (task or milestone)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, defaults to start)")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent item name or id")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority 1-4")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newItemListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's timeline items with derived progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			items, err := app.Timeline.ListItems(ctx, projectID)
			if err != nil {
				return err
			}
			links, err := app.Timeline.ListLinks(ctx, projectID)
			if err != nil {
				return err
			}

			ordered := timeline.DisplayOrder(timeline.Decorate(items, links))
			if len(ordered) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items.")
				return nil
			}
			rows := make([][]string, 0, len(ordered))
			for _, it := range ordered {
				indent := strings.Repeat("  ", it.HierarchyLevel)
				rows = append(rows, []string{
					shortID(it.ID),
					indent + it.Name,
					string(it.Kind),
					it.StartDate.Format("2006-01-02"),
					it.EndDate.Format("2006-01-02"),
					fmt.Sprintf("%d%%", it.Progress),
					priorityLabel(it.Priority),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(),
				renderTable([]string{"ID", "NAME", "KIND", "START", "END", "PROGRESS", "PRIORITY"}, rows))
			return nil
		},
	}
}

func newItemUpdateCmd(app *App) *cobra.Command {
	var project, name, start, end, color, parent, links string
	var priority, progress int
	var clearProgress, completed, root bool

	cmd := &cobra.Command{
		Use:   "update <item>",
		Short: "Update fields of a timeline item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			item, err := resolveItem(ctx, app, projectID, args[0])
			if err != nil {
				return err
			}

			var in contract.UpdateItemInput
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if in.StartDate, err = dateFlag(cmd.Flags(), "start"); err != nil {
				return err
			}
			if in.EndDate, err = dateFlag(cmd.Flags(), "end"); err != nil {
				return err
			}
			if cmd.Flags().Changed("priority") {
				p := domain.Priority(priority)
				in.Priority = &p
			}
			if cmd.Flags().Changed("progress") {
				in.Progress = &contract.ProgressChange{Value: &progress}
			}
			if clearProgress {
				in.Progress = &contract.ProgressChange{}
			}
			if cmd.Flags().Changed("completed") {
				in.Completed = &completed
			}
			if cmd.Flags().Changed("color") {
				in.Color = &color
			}
			if cmd.Flags().Changed("links") {
				in.Links = []domain.Measurement{}
				for _, id := range strings.Split(links, ",") {
					if id = strings.TrimSpace(id); id != "" {
						in.Links = append(in.Links, domain.Measurement{ID: id})
					}
				}
			}
			switch {
			case root:
				in.Parent = &contract.ParentChange{}
			case cmd.Flags().Changed("parent"):
				parentItem, err := resolveItem(ctx, app, projectID, parent)
				if err != nil {
					return err
				}
				in.Parent = &contract.ParentChange{ParentID: &parentItem.ID}
			}

			if _, err := app.Timeline.UpdateItem(ctx, item.ID, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name or id")
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "New end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority 1-4")
	cmd.Flags().IntVar(&progress, "progress", 0, "Explicit progress override 0-100")
	cmd.Flags().BoolVar(&clearProgress, "clear-progress", false, "Revert to derived progress")
	cmd.Flags().BoolVar(&completed, "completed", false, "Completion flag")
	cmd.Flags().StringVar(&color, "color", "", "Bar color (hex)")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent item name or id")
	cmd.Flags().BoolVar(&root, "root", false, "Move the item to the top level")
	cmd.Flags().StringVar(&links, "links", "", "Comma-separated measurement ids (full replace)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newItemRemoveCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "remove <item>",
		Short: "Delete an item; its children move up to the item's parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			item, err := resolveItem(ctx, app, projectID, args[0])
			if err != nil {
				return err
			}
			if err := app.Timeline.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name or id")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newItemReorderCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "reorder <item>...",
		Short: "Assign sibling order positionally from the given sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(args))
			for _, ref := range args {
				item, err := resolveItem(ctx, app, projectID, ref)
				if err != nil {
					return err
				}
				ids = append(ids, item.ID)
			}
			if err := app.Timeline.ReorderItems(ctx, projectID, ids); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reordered.")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name or id")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
