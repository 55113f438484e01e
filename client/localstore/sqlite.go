package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// Timestamps are stored as integer unix nanoseconds so the SQL comparison in
// the upsert guard orders the same way time.Time does.
const sqliteDDL = `
CREATE TABLE IF NOT EXISTS drafts (
    draft_id     TEXT PRIMARY KEY,
    board_id     TEXT NOT NULL,
    memory_type  TEXT NOT NULL,
    caption      TEXT,
    event_date   INTEGER,
    location     TEXT,
    media_items  TEXT NOT NULL DEFAULT '[]',
    last_updated INTEGER NOT NULL,
    deleted_at   INTEGER
);
CREATE INDEX IF NOT EXISTS idx_drafts_last_updated ON drafts(last_updated DESC);
`

// SQLiteStore is the on-device store used by real clients. WAL mode keeps
// editor writes from blocking concurrent sync reads.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the draft database at path.
// Pass ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if _, err := db.Exec(sqliteDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*model.Draft, error) {
	return s.list(ctx, `SELECT draft_id, board_id, memory_type, caption, event_date, location, media_items, last_updated, deleted_at
FROM drafts WHERE deleted_at IS NULL ORDER BY last_updated DESC`)
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]*model.Draft, error) {
	return s.list(ctx, `SELECT draft_id, board_id, memory_type, caption, event_date, location, media_items, last_updated, deleted_at
FROM drafts ORDER BY last_updated DESC`)
}

func (s *SQLiteStore) list(ctx context.Context, query string) ([]*model.Draft, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []*model.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, draftID string) (*model.Draft, error) {
	row := s.db.QueryRowContext(ctx, `SELECT draft_id, board_id, memory_type, caption, event_date, location, media_items, last_updated, deleted_at
FROM drafts WHERE draft_id = ?`, draftID)
	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return d, nil
}

// Save upserts the draft; a stored copy with an equal or newer lastUpdated
// is left untouched.
func (s *SQLiteStore) Save(ctx context.Context, d *model.Draft) error {
	media, err := json.Marshal(d.MediaItems)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO drafts (draft_id, board_id, memory_type, caption, event_date, location, media_items, last_updated, deleted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(draft_id) DO UPDATE SET
    board_id     = excluded.board_id,
    memory_type  = excluded.memory_type,
    caption      = excluded.caption,
    event_date   = excluded.event_date,
    location     = excluded.location,
    media_items  = excluded.media_items,
    last_updated = excluded.last_updated,
    deleted_at   = excluded.deleted_at
WHERE excluded.last_updated > drafts.last_updated`,
		d.DraftID, d.BoardID, d.MemoryType, d.Caption, nanosPtr(d.EventDate), d.Location,
		string(media), d.LastUpdated.UnixNano(), nanosPtr(d.DeletedAt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Delete tombstones the draft. The tombstone participates in last-write-wins,
// so it only lands if nothing newer is already stored.
func (s *SQLiteStore) Delete(ctx context.Context, draftID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET deleted_at = ?, last_updated = ? WHERE draft_id = ? AND last_updated < ?`,
		at.UnixNano(), at.UnixNano(), draftID, at.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Purge(ctx context.Context, draftID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE draft_id = ?`, draftID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts`); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDraft(r rowScanner) (*model.Draft, error) {
	var d model.Draft
	var media string
	var lastUpdated int64
	var eventDate, deletedAt sql.NullInt64
	if err := r.Scan(&d.DraftID, &d.BoardID, &d.MemoryType, &d.Caption, &eventDate, &d.Location,
		&media, &lastUpdated, &deletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(media), &d.MediaItems); err != nil {
		return nil, err
	}
	d.LastUpdated = time.Unix(0, lastUpdated).UTC()
	if eventDate.Valid {
		t := time.Unix(0, eventDate.Int64).UTC()
		d.EventDate = &t
	}
	if deletedAt.Valid {
		t := time.Unix(0, deletedAt.Int64).UTC()
		d.DeletedAt = &t
	}
	return &d, nil
}

func nanosPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}
