package cli

import (
	"fmt"
	"os"
	"strings"

	"coursetree-cli/internal/format"
	"coursetree-cli/internal/session"
	"coursetree-cli/internal/store"
	"coursetree-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Output     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "coursetree",
		Short:        "Course outline editor (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  coursetree

  # Scriptable commands
  coursetree init --title "Intro to Go"
  coursetree add --type module "Basics"
  coursetree move item-abc123 --below item-def456
  coursetree show --tree
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("COURSETREE_DIR", ""), "Path to workspace dir (overrides discovery; mostly for fixtures/tests)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Output, "output", envOr("COURSETREE_OUTPUT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newTargetsCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newSetCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	s, err := resolveStore(app)
	if err != nil {
		return err
	}
	return tui.Run(s)
}

// resolveStore picks the workspace dir: --dir wins, otherwise walk up from
// the current directory looking for a .coursetree/ (like git does), falling
// back to the current directory itself.
func resolveStore(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return store.Store{}, err
		}
		if d, ok := store.DiscoverDir(cwd); ok {
			dir = d
		} else {
			dir = cwd
		}
		app.Dir = dir
	}
	return store.Store{Dir: dir}, nil
}

func loadSession(cmd *cobra.Command, app *App) (*session.Session, store.Store, error) {
	s, err := resolveStore(app)
	if err != nil {
		return nil, store.Store{}, err
	}
	sess, _, err := session.Hydrate(cmd.Context(), s)
	if err != nil {
		return nil, s, err
	}
	return sess, s, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Output, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
