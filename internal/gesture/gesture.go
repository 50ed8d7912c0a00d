// Package gesture classifies a drag interaction into the instructions the
// reducer consumes. It is the one place that owns drag mode: the reducer
// never knows whether a drag is in progress, it only sees discrete actions.
//
// The classifier is a small state machine (idle -> dragging -> dropped or
// canceled). During a drag it produces per-frame instruction previews;
// exactly one committing action is emitted on drop, and a canceled drag
// emits nothing at all.
package gesture

import (
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/tree"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
)

// DefaultContainable is the stock containment rule: drafts never accept
// children, and leaf-typed lesson/post items do not nest further.
func DefaultContainable(it model.TreeItem) bool {
	if it.IsDraft {
		return false
	}
	switch it.Type {
	case "lesson", "post":
		return false
	}
	return true
}

type Classifier struct {
	containable func(model.TreeItem) bool

	phase    Phase
	itemID   string
	snapshot []model.TreeItem

	targetID string
	current  model.Instruction

	// expandSeq invalidates pending auto-expand timers: a timer fire is
	// only honored when its token still matches.
	expandSeq int
	expandID  string
}

func NewClassifier(containable func(model.TreeItem) bool) *Classifier {
	if containable == nil {
		containable = DefaultContainable
	}
	return &Classifier{containable: containable}
}

func (c *Classifier) Phase() Phase      { return c.phase }
func (c *Classifier) DraggedID() string { return c.itemID }

// Begin starts a drag of itemID against a snapshot of the tree. The
// snapshot is what Hover validates targets against; it must be the same
// snapshot the hovered rows were rendered from.
func (c *Classifier) Begin(snapshot []model.TreeItem, itemID string) bool {
	if _, ok := tree.Find(snapshot, itemID); !ok {
		return false
	}
	c.phase = PhaseDragging
	c.itemID = itemID
	c.snapshot = snapshot
	c.targetID = ""
	c.current = nil
	c.expandSeq++
	return true
}

// Hover records the current frame: the hovered row and the instruction the
// pointer zone suggests. It returns the instruction a drop right now would
// commit — possibly wrapped in Blocked when a containment rule forbids the
// desired one — or nil when the frame cannot produce a drop (idle, self
// hover, hover inside the dragged subtree).
func (c *Classifier) Hover(targetID string, desired model.Instruction) model.Instruction {
	if c.phase != PhaseDragging || desired == nil {
		return nil
	}
	if targetID == c.itemID || c.inDraggedSubtree(targetID) {
		c.targetID = ""
		c.current = nil
		return nil
	}
	target, ok := tree.Find(c.snapshot, targetID)
	if !ok {
		c.targetID = ""
		c.current = nil
		return nil
	}

	ins := desired
	if _, wantsChild := desired.(model.MakeChild); wantsChild && !c.containable(target) {
		ins = model.Blocked{Desired: desired}
	}

	c.targetID = targetID
	c.current = ins
	return ins
}

// Leave clears the hover target (pointer moved off the droppable surface)
// and invalidates any pending auto-expand.
func (c *Classifier) Leave() {
	c.targetID = ""
	c.current = nil
	c.CancelExpand()
}

// Drop ends the drag. It returns the single committing action, or ok=false
// when there is nothing to commit (no target, or the current preview is
// blocked). Either way the classifier returns to idle.
func (c *Classifier) Drop() (model.Action, bool) {
	defer c.reset()
	if c.phase != PhaseDragging || c.current == nil || c.targetID == "" {
		return nil, false
	}
	if _, blocked := c.current.(model.Blocked); blocked {
		return nil, false
	}
	return model.ApplyInstruction{
		Instruction: c.current,
		ItemID:      c.itemID,
		TargetID:    c.targetID,
	}, true
}

// Cancel abandons the drag. A canceled drag results in zero dispatches;
// the tree is left exactly as it was before the drag started.
func (c *Classifier) Cancel() {
	c.reset()
}

func (c *Classifier) reset() {
	c.phase = PhaseIdle
	c.itemID = ""
	c.snapshot = nil
	c.targetID = ""
	c.current = nil
	c.expandSeq++
	c.expandID = ""
}

// ScheduleExpand arms hover-to-auto-expand for targetID and returns a
// token. When the caller's timer fires it passes the token back to
// ExpandDue; a stale token (target left, drag ended, expand rescheduled)
// yields nothing.
func (c *Classifier) ScheduleExpand(targetID string) int {
	c.expandSeq++
	c.expandID = targetID
	return c.expandSeq
}

// CancelExpand invalidates the pending auto-expand, if any.
func (c *Classifier) CancelExpand() {
	c.expandSeq++
	c.expandID = ""
}

// ExpandDue resolves a fired auto-expand timer into an action.
func (c *Classifier) ExpandDue(token int) (model.Action, bool) {
	if c.phase != PhaseDragging || token != c.expandSeq || c.expandID == "" {
		return nil, false
	}
	return model.Expand{ItemID: c.expandID}, true
}

func (c *Classifier) inDraggedSubtree(targetID string) bool {
	path, ok := tree.PathTo(c.snapshot, targetID)
	if !ok {
		return false
	}
	for _, id := range path {
		if id == c.itemID {
			return true
		}
	}
	return false
}
