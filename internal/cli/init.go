package cli

import (
	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			outline, err := s.Init(cmd.Context(), title)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        s.Dir,
					"sqlitePath": s.SQLitePath(),
					"outline":    outline,
				},
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "Untitled course", "Course title")
	return cmd
}
