package cli

import (
	"errors"

	"coursetree-cli/internal/model"
	"coursetree-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newMoveCmd(app *App) *cobra.Command {
	var above, below, into, parent string
	var index int

	cmd := &cobra.Command{
		Use:   "move <item-id>",
		Short: "Move an item within the outline",
		Long: "Move an item relative to a target (--above, --below, --into) or to an\n" +
			"explicit parent and index (--parent/--index). --parent \"\" is the top level.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := args[0]

			sess, _, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := sess.State().Data
			if _, ok := tree.Find(data, itemID); !ok {
				return writeErr(cmd, errNotFound("item", itemID))
			}

			action, err := moveAction(cmd, data, itemID, above, below, into, parent, index)
			if err != nil {
				return writeErr(cmd, err)
			}

			var persistErr error
			sess.OnPersistError(func(err error) { persistErr = err })
			st := sess.Dispatch(action)
			sess.Flush()
			if persistErr != nil {
				return writeErr(cmd, persistErr)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"moved": itemID, "items": st.Data},
			})
		},
	}
	cmd.Flags().StringVar(&above, "above", "", "Place the item just above this target id")
	cmd.Flags().StringVar(&below, "below", "", "Place the item just below this target id")
	cmd.Flags().StringVar(&into, "into", "", "Make the item the first child of this target id")
	cmd.Flags().StringVar(&parent, "parent", "", "Destination parent id (with --index)")
	cmd.Flags().IntVar(&index, "index", 0, "Destination index among the parent's children")
	return cmd
}

func moveAction(cmd *cobra.Command, data []model.TreeItem, itemID, above, below, into, parent string, index int) (model.Action, error) {
	relative := 0
	for _, v := range []string{above, below, into} {
		if v != "" {
			relative++
		}
	}
	if relative > 1 {
		return nil, errors.New("pass at most one of --above, --below, --into")
	}

	switch {
	case above != "":
		if err := checkReorderTarget(data, itemID, above); err != nil {
			return nil, err
		}
		return model.ApplyInstruction{Instruction: model.ReorderAbove{}, ItemID: itemID, TargetID: above}, nil
	case below != "":
		if err := checkReorderTarget(data, itemID, below); err != nil {
			return nil, err
		}
		return model.ApplyInstruction{Instruction: model.ReorderBelow{}, ItemID: itemID, TargetID: below}, nil
	case into != "":
		if err := checkMoveTarget(data, itemID, into); err != nil {
			return nil, err
		}
		return model.ApplyInstruction{Instruction: model.MakeChild{}, ItemID: itemID, TargetID: into}, nil
	}

	if parent != "" {
		if err := checkMoveTarget(data, itemID, parent); err != nil {
			return nil, err
		}
	} else if !cmd.Flags().Changed("parent") && !cmd.Flags().Changed("index") {
		return nil, errors.New("pass one of --above, --below, --into, or --parent/--index")
	}
	return model.ModalMove{ItemID: itemID, TargetID: parent, Index: index}, nil
}

// checkReorderTarget allows any existing target outside the moved subtree,
// drafts included (reordering next to a draft is fine, nesting under one
// is not).
func checkReorderTarget(data []model.TreeItem, itemID, targetID string) error {
	if targetID == itemID {
		return errors.New("cannot move an item relative to itself")
	}
	if _, ok := tree.Find(data, targetID); !ok {
		return errNotFound("item", targetID)
	}
	if withinSubtree(data, itemID, targetID) {
		return errors.New("cannot move an item into its own subtree")
	}
	return nil
}

// checkMoveTarget restricts destination parents to the resolver's valid
// move targets.
func checkMoveTarget(data []model.TreeItem, itemID, targetID string) error {
	if _, ok := tree.Find(data, targetID); !ok {
		return errNotFound("item", targetID)
	}
	for _, t := range tree.MoveTargets(data, itemID) {
		if t.ID == targetID {
			return nil
		}
	}
	return errors.New("invalid destination: target is the item itself, inside its subtree, or a draft")
}

func withinSubtree(data []model.TreeItem, itemID, targetID string) bool {
	path, ok := tree.PathTo(data, targetID)
	if !ok {
		return false
	}
	for _, id := range path {
		if id == itemID {
			return true
		}
	}
	return false
}
