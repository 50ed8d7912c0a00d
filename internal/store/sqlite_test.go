package store

import (
	"context"
	"testing"

	"coursetree-cli/internal/model"
	"coursetree-cli/internal/reconcile"
)

func seedOutline(t *testing.T) (Store, Outline) {
	t.Helper()

	s := Store{Dir: t.TempDir()}
	out, err := s.Init(context.Background(), "Test Course")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return s, out
}

func mustCreate(t *testing.T, s Store, id, parentID, label, typ string) {
	t.Helper()

	err := s.CreateItem(context.Background(), model.TreeItem{
		ID:    id,
		Label: label,
		Type:  typ,
		ItemData: &model.ItemData{
			ResourceID:   id,
			ResourceOfID: parentID,
		},
	})
	if err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
}

func TestInit_Idempotent(t *testing.T) {
	t.Parallel()

	s, out := seedOutline(t)

	again, err := s.Init(context.Background(), "Different Title")
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if again.ResourceID != out.ResourceID || again.Title != "Test Course" {
		t.Fatalf("second init must keep the existing outline; got %+v", again)
	}
}

func TestHydrate_NotInitialized(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}
	if _, _, err := s.Hydrate(context.Background()); err == nil {
		t.Fatalf("expected ErrNotInitialized")
	}
}

func TestCreateAndHydrate_TwoTier(t *testing.T) {
	t.Parallel()

	s, out := seedOutline(t)
	mustCreate(t, s, "sec-1", out.ResourceID, "Basics", "section")
	mustCreate(t, s, "sec-2", out.ResourceID, "Advanced", "section")
	mustCreate(t, s, "les-1", "sec-1", "Hello", "lesson")
	mustCreate(t, s, "les-2", "sec-1", "World", "lesson")

	data, got, err := s.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if got.ResourceID != out.ResourceID {
		t.Fatalf("outline mismatch: %+v", got)
	}
	if len(data) != 2 || data[0].ID != "sec-1" || data[1].ID != "sec-2" {
		t.Fatalf("unexpected root list: %+v", data)
	}
	kids := data[0].Children
	if len(kids) != 2 || kids[0].ID != "les-1" || kids[1].ID != "les-2" {
		t.Fatalf("unexpected children: %+v", kids)
	}
	if kids[0].ItemData == nil || kids[0].ItemData.ResourceOfID != "sec-1" {
		t.Fatalf("hydrated nodes must carry storage linkage: %+v", kids[0].ItemData)
	}
}

func TestApplyUpdates_Reorder(t *testing.T) {
	t.Parallel()

	s, out := seedOutline(t)
	mustCreate(t, s, "sec-1", out.ResourceID, "A", "section")
	mustCreate(t, s, "sec-2", out.ResourceID, "B", "section")
	mustCreate(t, s, "les-1", "sec-1", "L", "lesson")

	// Move les-1 under sec-2 and swap the section order.
	err := s.ApplyUpdates(context.Background(), []reconcile.ItemUpdate{
		{CurrentParentResourceID: out.ResourceID, ParentResourceID: out.ResourceID, ResourceID: "sec-2", Position: 0,
			Children: []reconcile.ItemUpdate{
				{CurrentParentResourceID: "sec-1", ParentResourceID: "sec-2", ResourceID: "les-1", Position: 0},
			}},
		{CurrentParentResourceID: out.ResourceID, ParentResourceID: out.ResourceID, ResourceID: "sec-1", Position: 1},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	data, _, err := s.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if data[0].ID != "sec-2" || data[1].ID != "sec-1" {
		t.Fatalf("section order not persisted: %+v", data)
	}
	if len(data[0].Children) != 1 || data[0].Children[0].ID != "les-1" {
		t.Fatalf("lesson not reparented: %+v", data[0].Children)
	}
	if len(data[1].Children) != 0 {
		t.Fatalf("old parent still has the lesson: %+v", data[1].Children)
	}
}

func TestApplyUpdates_UnknownResourceSkipped(t *testing.T) {
	t.Parallel()

	s, out := seedOutline(t)
	mustCreate(t, s, "sec-1", out.ResourceID, "A", "section")

	err := s.ApplyUpdates(context.Background(), []reconcile.ItemUpdate{
		{ParentResourceID: out.ResourceID, ResourceID: "ghost", Position: 0},
		{ParentResourceID: out.ResourceID, ResourceID: "sec-1", Position: 1},
	})
	if err != nil {
		t.Fatalf("a record for an unknown resource must not fail the batch: %v", err)
	}

	data, _, err := s.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(data) != 1 || data[0].ID != "sec-1" {
		t.Fatalf("unexpected tree: %+v", data)
	}
}

func TestUpdateItemMeta_MirrorsTitle(t *testing.T) {
	t.Parallel()

	s, out := seedOutline(t)
	mustCreate(t, s, "sec-1", out.ResourceID, "Old", "section")

	err := s.UpdateItemMeta(context.Background(), "sec-1", map[string]any{
		"title": "New",
		"tier":  "premium",
	})
	if err != nil {
		t.Fatalf("update meta: %v", err)
	}

	data, _, err := s.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if data[0].Label != "New" {
		t.Fatalf("title must mirror into label; got %q", data[0].Label)
	}
	if data[0].ItemData.Metadata["tier"] != "premium" {
		t.Fatalf("metadata not merged: %+v", data[0].ItemData.Metadata)
	}
}

func TestEvents_TailIsChronological(t *testing.T) {
	t.Parallel()

	s, _ := seedOutline(t)
	ctx := context.Background()
	for _, typ := range []string{"one", "two", "three"} {
		if err := s.AppendEvent(ctx, typ, "sec-1", map[string]any{"n": typ}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	evs, err := s.ReadEvents(ctx, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(evs) != 2 || evs[0].Type != "two" || evs[1].Type != "three" {
		t.Fatalf("expected oldest-first tail [two three]; got %+v", evs)
	}

	all, err := s.ReadEvents(ctx, 0)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(all) != 3 || all[0].Type != "one" {
		t.Fatalf("expected all events chronological; got %+v", all)
	}
}

func TestTUIState_RoundTripAndCorruption(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}

	st, err := s.LoadTUIState()
	if err != nil || st.Version != 1 {
		t.Fatalf("missing state file must yield defaults: %+v, %v", st, err)
	}

	st.Open = map[string]bool{"sec-1": true, "sec-2": false}
	st.SelectedID = "sec-1"
	if err := s.SaveTUIState(st); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Open["sec-1"] || got.Open["sec-2"] || got.SelectedID != "sec-1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}
	cfg, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.DefaultOpen || cfg.FlashMillis != 600 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	cfg.DefaultOpen = false
	cfg.FlashMillis = 250
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.DefaultOpen || got.FlashMillis != 250 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
