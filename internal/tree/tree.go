// Package tree holds the pure query and mutation primitives for course
// outline forests.
//
// None of these functions mutate their input: every node on a changed path
// is copied, unaffected branches are shared. The primitives do not defend
// against being asked to insert a node under itself or one of its own
// descendants; callers computing a reparent target must pre-validate it
// with PathTo before calling InsertChild/InsertAfter.
package tree

import (
	"fmt"

	"coursetree-cli/internal/model"
)

// HasChildren reports whether item has at least one child.
func HasChildren(item model.TreeItem) bool {
	return len(item.Children) > 0
}

// Find returns the first node matching id, depth-first.
func Find(data []model.TreeItem, id string) (model.TreeItem, bool) {
	for _, it := range data {
		if it.ID == id {
			return it, true
		}
		if found, ok := Find(it.Children, id); ok {
			return found, true
		}
	}
	return model.TreeItem{}, false
}

// Remove returns a new forest with the node matching id removed from
// wherever it occurs.
func Remove(data []model.TreeItem, id string) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data))
	for _, it := range data {
		if it.ID == id {
			continue
		}
		if HasChildren(it) {
			it.Children = Remove(it.Children, id)
		}
		out = append(out, it)
	}
	return out
}

// InsertBefore splices newItem immediately before the node matching
// targetID, as its sibling, at whatever depth the target occurs.
func InsertBefore(data []model.TreeItem, targetID string, newItem model.TreeItem) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data)+1)
	for _, it := range data {
		if it.ID == targetID {
			out = append(out, newItem)
		} else if HasChildren(it) {
			it.Children = InsertBefore(it.Children, targetID, newItem)
		}
		out = append(out, it)
	}
	return out
}

// InsertAfter splices newItem immediately after the node matching targetID.
func InsertAfter(data []model.TreeItem, targetID string, newItem model.TreeItem) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data)+1)
	for _, it := range data {
		if it.ID == targetID {
			out = append(out, it, newItem)
			continue
		}
		if HasChildren(it) {
			it.Children = InsertAfter(it.Children, targetID, newItem)
		}
		out = append(out, it)
	}
	return out
}

// InsertChild prepends newItem as the target's first child and forces the
// target open so the just-moved item is visible.
func InsertChild(data []model.TreeItem, targetID string, newItem model.TreeItem) []model.TreeItem {
	out := make([]model.TreeItem, 0, len(data))
	for _, it := range data {
		if it.ID == targetID {
			it.IsOpen = true
			it.Children = append([]model.TreeItem{newItem}, it.Children...)
		} else if HasChildren(it) {
			it.Children = InsertChild(it.Children, targetID, newItem)
		}
		out = append(out, it)
	}
	return out
}

// PathTo returns the ordered ancestor ids (root to parent, exclusive of
// targetID itself) for targetID. ok is false when targetID is not in the
// forest; a root-level target yields an empty path.
func PathTo(data []model.TreeItem, targetID string) (path []string, ok bool) {
	return pathTo(data, targetID, nil)
}

func pathTo(data []model.TreeItem, targetID string, trail []string) ([]string, bool) {
	for _, it := range data {
		if it.ID == targetID {
			return trail, true
		}
		// Clamp capacity so sibling branches never share appended elements.
		next := append(trail[:len(trail):len(trail)], it.ID)
		if p, ok := pathTo(it.Children, targetID, next); ok {
			return p, true
		}
	}
	return nil, false
}

// ChildrenOf returns the child list of the node matching itemID, or the
// root list itself when itemID is "". An unknown id is a programming error
// (the caller is expected to hold an id rendered from this same snapshot)
// and panics.
func ChildrenOf(data []model.TreeItem, itemID string) []model.TreeItem {
	if itemID == "" {
		return data
	}
	it, ok := Find(data, itemID)
	if !ok {
		panic(fmt.Sprintf("tree: ChildrenOf called with unknown id %q", itemID))
	}
	return it.Children
}
