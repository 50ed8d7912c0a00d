package model

// Instruction is a classified drag gesture outcome. Instances are created
// per drag frame by the gesture layer and discarded after being applied or
// after the drag ends; they are never persisted.
type Instruction interface {
	// Kind is the wire-ish name of the variant ("reorder-above", ...).
	Kind() string

	isInstruction()
}

// ReorderAbove drops the dragged item immediately before the target.
type ReorderAbove struct{}

// ReorderBelow drops the dragged item immediately after the target.
type ReorderBelow struct{}

// MakeChild drops the dragged item as the target's first child.
type MakeChild struct{}

// Reparent drops the dragged item as a sibling immediately after the
// ancestor of the hover target found at DesiredLevel of the target's
// ancestor path. This is how "drag to a shallower level than the literal
// hover target" resolves.
type Reparent struct {
	DesiredLevel int `json:"desiredLevel"`
}

// Blocked wraps the instruction that would have applied if not for a
// containment rule (draft target, non-container type). The reducer treats
// it as unrecognized and leaves the tree unchanged.
type Blocked struct {
	Desired Instruction `json:"desired"`
}

func (ReorderAbove) Kind() string { return "reorder-above" }
func (ReorderBelow) Kind() string { return "reorder-below" }
func (MakeChild) Kind() string    { return "make-child" }
func (Reparent) Kind() string     { return "reparent" }
func (Blocked) Kind() string      { return "instruction-blocked" }

func (ReorderAbove) isInstruction() {}
func (ReorderBelow) isInstruction() {}
func (MakeChild) isInstruction()    {}
func (Reparent) isInstruction()     {}
func (Blocked) isInstruction()      {}
