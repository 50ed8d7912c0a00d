package reconcile

import (
	"testing"

	"coursetree-cli/internal/model"
)

func linked(id, resourceID, parentResourceID string, children ...model.TreeItem) model.TreeItem {
	return model.TreeItem{
		ID:       id,
		Children: children,
		ItemData: &model.ItemData{
			ResourceID:   resourceID,
			ResourceOfID: parentResourceID,
		},
	}
}

func TestPlan_TwoTierPositions(t *testing.T) {
	t.Parallel()

	data := []model.TreeItem{
		linked("s1", "res-s1", "res-course",
			linked("l1", "res-l1", "res-s1"),
			linked("l2", "res-l2", "res-s1"),
		),
		linked("s2", "res-s2", "res-course"),
	}

	got := Plan("res-course", data)

	if len(got) != 2 {
		t.Fatalf("expected 2 top-level records, got %d", len(got))
	}
	for i, rec := range got {
		if rec.Position != i {
			t.Fatalf("record %d has position %d", i, rec.Position)
		}
		if rec.ParentResourceID != "res-course" {
			t.Fatalf("top-level parent must be the root resource; got %q", rec.ParentResourceID)
		}
	}
	if got[0].CurrentParentResourceID != "res-course" {
		t.Fatalf("currentParent must come from the node's own linkage")
	}

	kids := got[0].Children
	if len(kids) != 2 {
		t.Fatalf("expected 2 child records, got %d", len(kids))
	}
	for j, rec := range kids {
		if rec.Position != j || rec.ParentResourceID != "res-s1" {
			t.Fatalf("child %d: %+v", j, rec)
		}
	}
}

func TestPlan_OnlyOneNestingLevel(t *testing.T) {
	t.Parallel()

	data := []model.TreeItem{
		linked("s1", "res-s1", "res-course",
			linked("l1", "res-l1", "res-s1",
				linked("deep", "res-deep", "res-l1"),
			),
		),
	}

	got := Plan("res-course", data)
	if len(got) != 1 || len(got[0].Children) != 1 {
		t.Fatalf("unexpected shape: %+v", got)
	}
	if len(got[0].Children[0].Children) != 0 {
		t.Fatalf("reconciliation must stop after one nesting level")
	}
}

func TestPlan_SkipsUnlinkedNodes(t *testing.T) {
	t.Parallel()

	data := []model.TreeItem{
		{ID: "transient"},
		linked("s1", "res-s1", "res-course"),
	}

	got := Plan("res-course", data)
	if len(got) != 1 {
		t.Fatalf("expected a batch of length 1, got %d", len(got))
	}
	if got[0].ResourceID != "res-s1" || got[0].Position != 0 {
		t.Fatalf("surviving record must be position 0: %+v", got[0])
	}
}

func TestPlan_SkipsIncompleteLinkageButKeepsBatch(t *testing.T) {
	t.Parallel()

	data := []model.TreeItem{
		{ID: "broken", ItemData: &model.ItemData{ResourceID: "", ResourceOfID: "res-course"}},
		linked("s1", "res-s1", "res-course",
			model.TreeItem{ID: "half", ItemData: &model.ItemData{ResourceID: "res-half"}},
			linked("l1", "res-l1", "res-s1"),
		),
	}

	got := Plan("res-course", data)
	if len(got) != 1 {
		t.Fatalf("malformed nodes must not abort the batch; got %d records", len(got))
	}
	if len(got[0].Children) != 1 || got[0].Children[0].ResourceID != "res-l1" {
		t.Fatalf("child with incomplete linkage must be excluded: %+v", got[0].Children)
	}
	if got[0].Children[0].Position != 0 {
		t.Fatalf("positions count only emitted records; got %d", got[0].Children[0].Position)
	}
}

func TestPlan_EmptyTreeYieldsEmptyPlan(t *testing.T) {
	t.Parallel()

	if got := Plan("res-course", nil); len(got) != 0 {
		t.Fatalf("expected empty plan, got %+v", got)
	}
	if got := Plan("res-course", []model.TreeItem{{ID: "transient"}}); len(got) != 0 {
		t.Fatalf("all-transient tree must yield an empty plan, got %+v", got)
	}
}
