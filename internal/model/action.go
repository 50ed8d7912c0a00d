package model

// Action is the closed set of reducer inputs. Variants are plain value
// structs; the reducer switches on the concrete type.
type Action interface {
	// Name is a stable identifier used for event payloads and debugging.
	Name() string

	isAction()
}

// Toggle flips IsOpen on the node with ItemID, but only if it has children.
type Toggle struct {
	ItemID string `json:"itemId"`
}

// Expand opens a node if it has children and is currently closed. Used by
// hover-to-auto-expand during a drag; idempotent.
type Expand struct {
	ItemID string `json:"itemId"`
}

// Collapse closes a node if it is currently open. Idempotent.
type Collapse struct {
	ItemID string `json:"itemId"`
}

// ApplyInstruction is the core drag mutation entrypoint: a classified
// gesture outcome plus the dragged and hovered ids.
type ApplyInstruction struct {
	Instruction Instruction `json:"instruction"`
	ItemID      string      `json:"itemId"`
	TargetID    string      `json:"targetId"`
}

// ModalMove is an explicit, dialog-driven relocation: place ItemID at
// exactly Index among TargetID's children. TargetID "" means the root list.
type ModalMove struct {
	ItemID   string `json:"itemId"`
	TargetID string `json:"targetId"`
	Index    int    `json:"index"`
}

// AddItem appends Item to the root level.
type AddItem struct {
	Item TreeItem `json:"item"`
}

// RemoveItem detaches a node from wherever it occurs.
type RemoveItem struct {
	ItemID string `json:"itemId"`
}

// UpdateItem shallow-merges Fields into the node's resource metadata and
// mirrors Fields["title"] into Label.
type UpdateItem struct {
	ItemID string         `json:"itemId"`
	Fields map[string]any `json:"fields"`
}

// UpdateTier stores a tier value in the node's ItemData metadata. The
// reducer does not interpret the value beyond storing it.
type UpdateTier struct {
	ItemID string `json:"itemId"`
	Tier   string `json:"tier"`
}

func (Toggle) Name() string           { return "toggle" }
func (Expand) Name() string           { return "expand" }
func (Collapse) Name() string         { return "collapse" }
func (ApplyInstruction) Name() string { return "instruction" }
func (ModalMove) Name() string        { return "modal-move" }
func (AddItem) Name() string          { return "add-item" }
func (RemoveItem) Name() string       { return "remove-item" }
func (UpdateItem) Name() string       { return "update-item" }
func (UpdateTier) Name() string       { return "update-tier" }

func (Toggle) isAction()           {}
func (Expand) isAction()           {}
func (Collapse) isAction()         {}
func (ApplyInstruction) isAction() {}
func (ModalMove) isAction()        {}
func (AddItem) isAction()          {}
func (RemoveItem) isAction()       {}
func (UpdateItem) isAction()       {}
func (UpdateTier) isAction()       {}

// IsStructural reports whether an action can change the shape of the tree.
// Open/close state is presentation-only and never needs reconciliation.
func IsStructural(a Action) bool {
	if a == nil {
		return false
	}
	switch a.(type) {
	case Toggle, Expand, Collapse:
		return false
	}
	return true
}
