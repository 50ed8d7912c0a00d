// Package reconcile flattens an in-memory outline back into the flat
// parent/child/position records the persistence layer stores.
package reconcile

import (
	"coursetree-cli/internal/debug"
	"coursetree-cli/internal/model"
)

// ItemUpdate is one persisted position record. CurrentParentResourceID is
// the parent the storage layer currently believes in; ParentResourceID is
// the parent the tree now says is correct.
type ItemUpdate struct {
	CurrentParentResourceID string       `json:"currentParentResourceId"`
	ParentResourceID        string       `json:"parentResourceId"`
	ResourceID              string       `json:"resourceId"`
	Position                int          `json:"position"`
	Children                []ItemUpdate `json:"children,omitempty"`
}

// Plan walks the root list and produces one record per storage-backed node,
// recursing into exactly one level of nesting (the two-tier outline shape:
// root, section, lesson). Nodes without ItemData are not yet backed by
// storage and are skipped; nodes with ItemData but missing linkage fields
// are logged and excluded so one malformed node cannot block the rest of
// the batch. An empty result means nothing to persist.
func Plan(rootResourceID string, data []model.TreeItem) []ItemUpdate {
	var updates []ItemUpdate
	for _, item := range data {
		rec, ok := record(item, rootResourceID, len(updates))
		if !ok {
			continue
		}
		for _, child := range item.Children {
			childRec, ok := record(child, item.ItemData.ResourceID, len(rec.Children))
			if !ok {
				continue
			}
			rec.Children = append(rec.Children, childRec)
		}
		updates = append(updates, rec)
	}
	return updates
}

func record(item model.TreeItem, parentResourceID string, position int) (ItemUpdate, bool) {
	if item.ItemData == nil {
		return ItemUpdate{}, false
	}
	if item.ItemData.ResourceID == "" || item.ItemData.ResourceOfID == "" {
		debug.Log("reconcile: skipping %q: incomplete linkage (resourceId=%q resourceOfId=%q)",
			item.ID, item.ItemData.ResourceID, item.ItemData.ResourceOfID)
		return ItemUpdate{}, false
	}
	return ItemUpdate{
		CurrentParentResourceID: item.ItemData.ResourceOfID,
		ParentResourceID:        parentResourceID,
		ResourceID:              item.ItemData.ResourceID,
		Position:                position,
	}, true
}
