package cli

import (
	"coursetree-cli/internal/format"

	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var asTree bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			data, outline, err := s.Hydrate(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if asTree {
				return format.WriteTree(cmd.OutOrStdout(), data)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"outline": outline,
					"items":   data,
				},
			})
		},
	}
	cmd.Flags().BoolVar(&asTree, "tree", false, "Plain-text tree instead of the JSON envelope")
	return cmd
}
