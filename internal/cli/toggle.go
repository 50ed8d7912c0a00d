package cli

import (
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/mutate"
	"coursetree-cli/internal/tree"

	"github.com/spf13/cobra"
)

// toggle flips an item's open state in the saved view state. Open state is
// a view concern: it lives in tui_state.json, not in the outline store.
func newToggleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Toggle an item's open/closed state in the saved view",
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

			view, err := s.LoadTUIState()
			if err != nil {
				return writeErr(cmd, err)
			}
			data = applyOpen(data, view.Open)
			st := mutate.Reduce(model.TreeState{Data: data}, model.Toggle{ItemID: args[0]})

			it, _ := tree.Find(st.Data, args[0])
			if view.Open == nil {
				view.Open = map[string]bool{}
			}
			view.Open[args[0]] = it.IsOpen
			if err := s.SaveTUIState(view); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": args[0], "open": it.IsOpen},
			})
		},
	}
	return cmd
}

// applyOpen overlays saved open flags onto a freshly hydrated tree.
func applyOpen(data []model.TreeItem, open map[string]bool) []model.TreeItem {
	if len(open) == 0 {
		return data
	}
	out := make([]model.TreeItem, len(data))
	for i, it := range data {
		if v, ok := open[it.ID]; ok {
			it.IsOpen = v
		}
		it.Children = applyOpen(it.Children, open)
		out[i] = it
	}
	return out
}
