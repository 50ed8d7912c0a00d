// Package mutate is the pure reducer for outline editor state. Every
// branch is a function of (data, action) -> data'; invalid targets are
// no-ops, never errors, so a stale or malformed gesture frame can degrade
// to "nothing happens" instead of corrupting the tree.
package mutate

import (
	"coursetree-cli/internal/debug"
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/tree"
)

// Reduce applies action to state and returns the next state. LastAction is
// set unconditionally, whether or not the data changed, so observers can
// always inspect what was last attempted.
func Reduce(state model.TreeState, action model.Action) model.TreeState {
	state.LastAction = action

	switch a := action.(type) {
	case model.Toggle:
		state.Data = toggleOpen(state.Data, a.ItemID)
	case model.Expand:
		state.Data = setOpen(state.Data, a.ItemID, true)
	case model.Collapse:
		state.Data = setOpen(state.Data, a.ItemID, false)
	case model.ApplyInstruction:
		state.Data = applyInstruction(state.Data, a)
	case model.ModalMove:
		state.Data = modalMove(state.Data, a)
	case model.AddItem:
		state.Data = append(append([]model.TreeItem(nil), state.Data...), a.Item)
	case model.RemoveItem:
		state.Data = tree.Remove(state.Data, a.ItemID)
	case model.UpdateItem:
		state.Data = updateItem(state.Data, a)
	case model.UpdateTier:
		state.Data = updateTier(state.Data, a)
	default:
		debug.Log("mutate: action %T not implemented", action)
	}
	return state
}

func toggleOpen(data []model.TreeItem, id string) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data))
	for _, it := range data {
		if it.ID == id {
			if tree.HasChildren(it) {
				it.IsOpen = !it.IsOpen
			}
		} else if tree.HasChildren(it) {
			it.Children = toggleOpen(it.Children, id)
		}
		out = append(out, it)
	}
	return out
}

func setOpen(data []model.TreeItem, id string, open bool) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data))
	for _, it := range data {
		if it.ID == id {
			if tree.HasChildren(it) && it.IsOpen != open {
				it.IsOpen = open
			}
		} else if tree.HasChildren(it) {
			it.Children = setOpen(it.Children, id, open)
		}
		out = append(out, it)
	}
	return out
}

func applyInstruction(data []model.TreeItem, a model.ApplyInstruction) []model.TreeItem {
	if a.ItemID == a.TargetID {
		if _, ok := a.Instruction.(model.Reparent); !ok {
			// A node cannot reorder relative to itself.
			return data
		}
	}

	item, ok := tree.Find(data, a.ItemID)
	if !ok {
		debug.Log("mutate: instruction for unknown item %q", a.ItemID)
		return data
	}

	switch ins := a.Instruction.(type) {
	case model.ReorderAbove, model.ReorderBelow, model.MakeChild:
		// The insert helpers silently no-op on a missing anchor, so an
		// unchecked removal would lose the node. Validate first.
		if _, ok := tree.Find(data, a.TargetID); !ok {
			debug.Log("mutate: instruction target %q not in tree", a.TargetID)
			return data
		}
		removed := tree.Remove(data, a.ItemID)
		switch ins.(type) {
		case model.ReorderAbove:
			return tree.InsertBefore(removed, a.TargetID, item)
		case model.ReorderBelow:
			return tree.InsertAfter(removed, a.TargetID, item)
		default:
			return tree.InsertChild(removed, a.TargetID, item)
		}

	case model.Reparent:
		// The target is the literal hover row; the desired drop slot is a
		// sibling position after one of its ancestors.
		path, ok := tree.PathTo(data, a.TargetID)
		if !ok {
			debug.Log("mutate: reparent target %q not in tree", a.TargetID)
			return data
		}
		if ins.DesiredLevel < 0 || ins.DesiredLevel >= len(path) {
			debug.Log("mutate: reparent level %d out of range for path %v", ins.DesiredLevel, path)
			return data
		}
		desiredID := path[ins.DesiredLevel]
		return tree.InsertAfter(tree.Remove(data, a.ItemID), desiredID, item)

	default:
		kind := "nil"
		if a.Instruction != nil {
			kind = a.Instruction.Kind()
		}
		debug.Log("mutate: instruction %q not implemented", kind)
		return data
	}
}

func modalMove(data []model.TreeItem, a model.ModalMove) []model.TreeItem {
	item, ok := tree.Find(data, a.ItemID)
	if !ok {
		debug.Log("mutate: modal-move of unknown item %q", a.ItemID)
		return data
	}

	// The destination's sibling set is resolved after removal so that a
	// move within the same parent lands at exactly Index.
	removed := tree.Remove(data, a.ItemID)
	siblings := tree.ChildrenOf(removed, a.TargetID)

	if len(siblings) == 0 {
		if a.TargetID == "" {
			return []model.TreeItem{item}
		}
		return tree.InsertChild(removed, a.TargetID, item)
	}
	if a.Index >= len(siblings) {
		return tree.InsertAfter(removed, siblings[len(siblings)-1].ID, item)
	}
	idx := a.Index
	if idx < 0 {
		idx = 0
	}
	return tree.InsertBefore(removed, siblings[idx].ID, item)
}

func updateItem(data []model.TreeItem, a model.UpdateItem) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data))
	for _, it := range data {
		if it.ID == a.ItemID {
			if title, ok := a.Fields["title"].(string); ok {
				it.Label = title
			}
			if it.ItemData != nil {
				it.ItemData = mergeMetadata(it.ItemData, a.Fields)
			}
		} else if tree.HasChildren(it) {
			it.Children = updateItem(it.Children, a)
		}
		out = append(out, it)
	}
	return out
}

func updateTier(data []model.TreeItem, a model.UpdateTier) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data))
	for _, it := range data {
		if it.ID == a.ItemID {
			if it.ItemData != nil {
				it.ItemData = mergeMetadata(it.ItemData, map[string]any{"tier": a.Tier})
			}
		} else if tree.HasChildren(it) {
			it.Children = updateTier(it.Children, a)
		}
		out = append(out, it)
	}
	return out
}

// mergeMetadata returns a copy of d with fields shallow-merged into its
// metadata, leaving the original ItemData untouched.
func mergeMetadata(d *model.ItemData, fields map[string]any) *model.ItemData {
	next := *d
	next.Metadata = make(map[string]any, len(d.Metadata)+len(fields))
	for k, v := range d.Metadata {
		next.Metadata[k] = v
	}
	for k, v := range fields {
		next.Metadata[k] = v
	}
	return &next
}
