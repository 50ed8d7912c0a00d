package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"coursetree-cli/internal/debug"
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/reconcile"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when a workspace has no outline yet.
var ErrNotInitialized = errors.New("workspace not initialized (run `coursetree init`)")

// Outline is the root resource every top-level item hangs off.
type Outline struct {
	ResourceID string `json:"resourceId"`
	Title      string `json:"title"`
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness with a TUI and CLI sharing a workspace.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS outline_items (
			resource_id TEXT PRIMARY KEY,
			resource_of_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			item_type TEXT NOT NULL DEFAULT '',
			is_draft INTEGER NOT NULL DEFAULT 0,
			metadata_json TEXT NOT NULL DEFAULT '{}',
			json TEXT NOT NULL DEFAULT '{}',
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_outline_items_parent
			ON outline_items(resource_of_id, position);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts_unixms INTEGER NOT NULL,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload_json TEXT NOT NULL DEFAULT 'null'
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Init creates the workspace and its outline record. Calling Init on an
// already-initialized workspace returns the existing outline unchanged.
func (s Store) Init(ctx context.Context, title string) (Outline, error) {
	db, err := s.open(ctx)
	if err != nil {
		return Outline{}, err
	}
	defer db.Close()

	if out, err := readOutline(ctx, db); err == nil {
		return out, nil
	} else if !errors.Is(err, ErrNotInitialized) {
		return Outline{}, err
	}

	id, err := NewID("course")
	if err != nil {
		return Outline{}, err
	}
	out := Outline{ResourceID: id, Title: title}
	raw, _ := json.Marshal(out)
	if _, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO state_meta(k, v) VALUES('outline', ?)`, string(raw)); err != nil {
		return Outline{}, err
	}
	return out, nil
}

// Outline reads the workspace's outline record.
func (s Store) Outline(ctx context.Context) (Outline, error) {
	db, err := s.open(ctx)
	if err != nil {
		return Outline{}, err
	}
	defer db.Close()
	return readOutline(ctx, db)
}

func readOutline(ctx context.Context, db *sql.DB) (Outline, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = 'outline'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Outline{}, ErrNotInitialized
	}
	if err != nil {
		return Outline{}, err
	}
	var out Outline
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Outline{}, fmt.Errorf("corrupt outline meta: %w", err)
	}
	return out, nil
}

type itemRow struct {
	resourceID   string
	resourceOfID string
	position     int
	label        string
	itemType     string
	isDraft      bool
	metadata     map[string]any
}

// Hydrate builds the in-memory forest from the flat rows: children of the
// outline's resource id are the root list, ordered by position, recursing
// down the parent links. The result is only validated against the core's
// normal invariants; malformed rows are a collaborator bug, not a core
// failure mode.
func (s Store) Hydrate(ctx context.Context) ([]model.TreeItem, Outline, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, Outline{}, err
	}
	defer db.Close()

	out, err := readOutline(ctx, db)
	if err != nil {
		return nil, Outline{}, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT resource_id, resource_of_id, position, label, item_type, is_draft, metadata_json
		FROM outline_items`)
	if err != nil {
		return nil, Outline{}, err
	}
	defer rows.Close()

	byParent := map[string][]itemRow{}
	for rows.Next() {
		var r itemRow
		var draft int
		var metaRaw string
		if err := rows.Scan(&r.resourceID, &r.resourceOfID, &r.position, &r.label, &r.itemType, &draft, &metaRaw); err != nil {
			return nil, Outline{}, err
		}
		r.isDraft = draft != 0
		if metaRaw != "" && metaRaw != "{}" {
			if err := json.Unmarshal([]byte(metaRaw), &r.metadata); err != nil {
				debug.Log("store: bad metadata for %q: %v", r.resourceID, err)
			}
		}
		byParent[r.resourceOfID] = append(byParent[r.resourceOfID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, Outline{}, err
	}
	for parent := range byParent {
		rs := byParent[parent]
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].position < rs[j].position })
		byParent[parent] = rs
	}

	return assemble(byParent, out.ResourceID), out, nil
}

func assemble(byParent map[string][]itemRow, parentID string) []model.TreeItem {
	rs := byParent[parentID]
	if len(rs) == 0 {
		return nil
	}
	items := make([]model.TreeItem, 0, len(rs))
	for i, r := range rs {
		items = append(items, model.TreeItem{
			ID:       r.resourceID,
			Label:    r.label,
			Type:     r.itemType,
			IsDraft:  r.isDraft,
			Children: assemble(byParent, r.resourceID),
			ItemData: &model.ItemData{
				Position:     i,
				ResourceID:   r.resourceID,
				ResourceOfID: r.resourceOfID,
				Metadata:     r.metadata,
			},
		})
	}
	return items
}

// ApplyUpdates writes one reconciled batch in a single transaction. Records
// referencing unknown resource ids are logged and skipped; the rest of the
// batch still commits.
func (s Store) ApplyUpdates(ctx context.Context, updates []reconcile.ItemUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	var flat []reconcile.ItemUpdate
	for _, u := range updates {
		flat = append(flat, u)
		flat = append(flat, u.Children...)
	}
	for _, u := range flat {
		res, err := tx.ExecContext(ctx,
			`UPDATE outline_items SET resource_of_id = ?, position = ?, updated_at_unixms = ? WHERE resource_id = ?`,
			u.ParentResourceID, u.Position, nowMs, u.ResourceID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			debug.Log("store: position update for unknown resource %q skipped", u.ResourceID)
		}
	}
	return tx.Commit()
}

// CreateItem inserts a new storage-backed item at the end of its parent's
// sibling list. The item must carry ItemData.
func (s Store) CreateItem(ctx context.Context, it model.TreeItem) error {
	if it.ItemData == nil || it.ItemData.ResourceID == "" || it.ItemData.ResourceOfID == "" {
		return errors.New("store: item has no storage linkage")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var next int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM outline_items WHERE resource_of_id = ?`,
		it.ItemData.ResourceOfID).Scan(&next); err != nil {
		return err
	}

	metaRaw, _ := json.Marshal(it.ItemData.Metadata)
	raw, _ := json.Marshal(it)
	_, err = db.ExecContext(ctx, `
		INSERT INTO outline_items(resource_id, resource_of_id, position, label, item_type, is_draft, metadata_json, json, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ItemData.ResourceID, it.ItemData.ResourceOfID, next,
		it.Label, it.Type, boolToInt(it.IsDraft), string(metaRaw), string(raw),
		time.Now().UTC().UnixMilli())
	return err
}

// DeleteItem removes an item row. Children of the deleted item keep their
// rows; hydration simply no longer reaches them until they are reparented.
func (s Store) DeleteItem(ctx context.Context, resourceID string) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM outline_items WHERE resource_id = ?`, resourceID)
	return err
}

// UpdateItemMeta merges fields into an item's stored metadata and, when
// fields carries a "title", mirrors it into the label column (the same
// mirroring the reducer's update-item performs in memory).
func (s Store) UpdateItemMeta(ctx context.Context, resourceID string, fields map[string]any) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var metaRaw string
	err = db.QueryRowContext(ctx,
		`SELECT metadata_json FROM outline_items WHERE resource_id = ?`, resourceID).Scan(&metaRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: unknown resource %q", resourceID)
	}
	if err != nil {
		return err
	}

	meta := map[string]any{}
	if metaRaw != "" {
		_ = json.Unmarshal([]byte(metaRaw), &meta)
	}
	for k, v := range fields {
		meta[k] = v
	}
	merged, _ := json.Marshal(meta)

	nowMs := time.Now().UTC().UnixMilli()
	if title, ok := fields["title"].(string); ok {
		_, err = db.ExecContext(ctx,
			`UPDATE outline_items SET label = ?, metadata_json = ?, updated_at_unixms = ? WHERE resource_id = ?`,
			title, string(merged), nowMs, resourceID)
		return err
	}
	_, err = db.ExecContext(ctx,
		`UPDATE outline_items SET metadata_json = ?, updated_at_unixms = ? WHERE resource_id = ?`,
		string(merged), nowMs, resourceID)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
