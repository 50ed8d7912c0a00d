package tree

import "coursetree-cli/internal/model"

// MoveTargets collects every node that the item matching itemID may legally
// be moved onto: everything except the dragged node itself, its descendants
// (the excluded node's subtree is never pushed), and draft nodes, which are
// never legal containers. Nodes with zero children are legal targets.
//
// The walk is an explicit-stack depth-first traversal rather than
// recursion, so pathologically deep outlines cannot blow the stack. The
// returned order is traversal order; callers needing a presentation order
// must re-sort.
func MoveTargets(data []model.TreeItem, itemID string) []model.TreeItem {
	var targets []model.TreeItem

	stack := make([]model.TreeItem, 0, len(data))
	for i := len(data) - 1; i >= 0; i-- {
		stack = append(stack, data[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.ID == itemID {
			continue
		}
		if !n.IsDraft {
			targets = append(targets, n)
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return targets
}
