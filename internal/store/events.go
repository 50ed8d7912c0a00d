package store

import (
	"context"
	"database/sql"
	"time"

	"coursetree-cli/internal/model"

	"github.com/goccy/go-json"
)

// AppendEvent records one audit entry. Event writes are best-effort from
// the caller's perspective; a failed append never blocks a mutation.
func (s Store) AppendEvent(ctx context.Context, typ, entityID string, payload any) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("null")
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO events(ts_unixms, type, entity_id, payload_json) VALUES(?, ?, ?, ?)`,
		time.Now().UTC().UnixMilli(), typ, entityID, string(raw))
	return err
}

// ReadEvents returns the last limit events in chronological order
// (oldest-first within the returned window). limit <= 0 returns all.
func (s Store) ReadEvents(ctx context.Context, limit int) ([]model.Event, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, ts_unixms, type, entity_id, payload_json FROM events ORDER BY id DESC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var ev model.Event
		var tsMs int64
		var payloadRaw string
		if err := rows.Scan(&ev.ID, &tsMs, &ev.Type, &ev.EntityID, &payloadRaw); err != nil {
			return nil, err
		}
		ev.TS = time.UnixMilli(tsMs).UTC()
		_ = json.Unmarshal([]byte(payloadRaw), &ev.Payload)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
