package cli

import (
	"coursetree-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newTargetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets <item-id>",
		Short: "List valid destinations for moving an item",
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

			targets := tree.MoveTargets(data, args[0])
			rows := make([]map[string]any, 0, len(targets))
			for _, t := range targets {
				rows = append(rows, map[string]any{"id": t.ID, "label": t.Label, "type": t.Type})
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
	return cmd
}
