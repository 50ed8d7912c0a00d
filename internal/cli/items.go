package cli

import (
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/store"
	"coursetree-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	var itemType, parentID, tier string
	var draft bool

	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add an item to the outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			data, outline, err := s.Hydrate(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			parentRes := outline.ResourceID
			if parentID != "" {
				if _, ok := tree.Find(data, parentID); !ok {
					return writeErr(cmd, errNotFound("item", parentID))
				}
				parentRes = parentID
			}

			id, err := store.NewID("item")
			if err != nil {
				return writeErr(cmd, err)
			}
			meta := map[string]any{}
			if tier != "" {
				meta["tier"] = tier
			}
			it := model.TreeItem{
				ID:      id,
				Label:   args[0],
				Type:    itemType,
				IsDraft: draft,
				ItemData: &model.ItemData{
					ResourceID:   id,
					ResourceOfID: parentRes,
					Metadata:     meta,
				},
			}
			if err := s.CreateItem(cmd.Context(), it); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(cmd.Context(), "outline.add-item", id, map[string]any{
				"label": args[0], "type": itemType, "parent": parentRes,
			})
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": id, "label": args[0], "type": itemType, "parent": parentRes},
			})
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "lesson", "Item type (course|module|lesson|post)")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent item id (default: top level)")
	cmd.Flags().StringVar(&tier, "tier", "", "Access tier stored in item metadata")
	cmd.Flags().BoolVar(&draft, "draft", false, "Create as draft")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item (children become unreachable until reparented)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			data, _, err := s.Hydrate(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := tree.Find(data, args[0]); !ok {
				return writeErr(cmd, errNotFound("item", args[0]))
			}
			if err := s.DeleteItem(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(cmd.Context(), "outline.remove-item", args[0], nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
	return cmd
}

func newSetCmd(app *App) *cobra.Command {
	var title, tier string

	cmd := &cobra.Command{
		Use:   "set <item-id>",
		Short: "Update an item's title or access tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fields := map[string]any{}
			if cmd.Flags().Changed("title") {
				fields["title"] = title
			}
			if cmd.Flags().Changed("tier") {
				fields["tier"] = tier
			}
			if len(fields) == 0 {
				return writeErr(cmd, errNothingToSet)
			}
			if err := s.UpdateItemMeta(cmd.Context(), args[0], fields); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(cmd.Context(), "outline.update-item", args[0], fields)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": args[0], "fields": fields},
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&tier, "tier", "", "New access tier")
	return cmd
}
