package model

import "time"

// TreeItem is a node in a course outline. IDs are unique across the whole
// forest, not just among siblings; lookups rely on that.
type TreeItem struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Type    string `json:"type,omitempty"`
	IsDraft bool   `json:"isDraft,omitempty"`

	// IsOpen is expand/collapse UI state. Only meaningful when Children is
	// non-empty; toggling a leaf is a no-op.
	IsOpen bool `json:"isOpen,omitempty"`

	// Children order is the authoritative sibling order. No separate sort
	// key is consulted when rendering.
	Children []TreeItem `json:"children"`

	// ItemData links the node back to a persisted parent/child relationship
	// and its position. Nil on transient nodes not yet backed by storage.
	ItemData *ItemData `json:"itemData,omitempty"`
}

type ItemData struct {
	Position     int            `json:"position"`
	ResourceID   string         `json:"resourceId"`
	ResourceOfID string         `json:"resourceOfId"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// TreeState is the whole editor state: the current forest plus the last
// action processed. LastAction is an output for side-effect observers
// (persist positions, flash the moved row); the reducer never reads it.
type TreeState struct {
	Data       []TreeItem `json:"data"`
	LastAction Action     `json:"-"`
}

// Event is one entry in the append-only audit log.
type Event struct {
	ID       int64     `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
