package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users       { return &users{db: s.db} }
func (s *pgStore) Boards() store.Boards     { return &boards{db: s.db} }
func (s *pgStore) Memories() store.Memories { return &memories{db: s.db} }
func (s *pgStore) Comments() store.Comments { return &comments{db: s.db} }
func (s *pgStore) Likes() store.Likes       { return &likes{db: s.db} }
func (s *pgStore) Invites() store.Invites   { return &invites{db: s.db} }
func (s *pgStore) Drafts() store.Drafts     { return &drafts{db: s.db} }
func (s *pgStore) Outbox() store.Outbox     { return &outbox{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name)
        VALUES ($1,$2,$3)
        RETURNING creation_time
    `, m.UserID, m.Email, m.DisplayName)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, creation_time, last_seen_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.CreationTime, &out.LastSeenTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	_, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id=$1`, userID)
	return err
}

// --- Boards ---

type boards struct{ db *sql.DB }

func (b *boards) Create(ctx context.Context, mb *model.Board) (*model.Board, error) {
	id := mb.BoardID
	if id == "" {
		id = uuid.New().String()
	}
	code := mb.ShareCode
	if code == "" {
		code = uuid.New().String()[:8]
	}
	tx, err := b.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var created time.Time
	row := tx.QueryRowContext(ctx, `
        INSERT INTO boards (board_id, owner_id, name, share_code)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, mb.OwnerID, mb.Name, code)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	// Owner is always a member.
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO board_members (board_id, user_id) VALUES ($1,$2)
        ON CONFLICT DO NOTHING
    `, id, mb.OwnerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &model.Board{BoardID: id, OwnerID: mb.OwnerID, Name: mb.Name, ShareCode: code, CreationTime: created}, nil
}

func (b *boards) GetByID(ctx context.Context, boardID string) (*model.Board, error) {
	var out model.Board
	row := b.db.QueryRowContext(ctx, `
        SELECT board_id, owner_id, name, share_code, creation_time
        FROM boards WHERE board_id=$1
    `, boardID)
	if err := row.Scan(&out.BoardID, &out.OwnerID, &out.Name, &out.ShareCode, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (b *boards) GetByShareCode(ctx context.Context, shareCode string) (*model.Board, error) {
	var out model.Board
	row := b.db.QueryRowContext(ctx, `
        SELECT board_id, owner_id, name, share_code, creation_time
        FROM boards WHERE share_code=$1
    `, shareCode)
	if err := row.Scan(&out.BoardID, &out.OwnerID, &out.Name, &out.ShareCode, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (b *boards) List(ctx context.Context, userID string) ([]*model.Board, error) {
	rows, err := b.db.QueryContext(ctx, `
        SELECT b.board_id, b.owner_id, b.name, b.share_code, b.creation_time
        FROM boards b
        JOIN board_members m ON m.board_id = b.board_id
        WHERE m.user_id=$1
        ORDER BY b.creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Board
	for rows.Next() {
		var bd model.Board
		if err := rows.Scan(&bd.BoardID, &bd.OwnerID, &bd.Name, &bd.ShareCode, &bd.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &bd)
	}
	return res, rows.Err()
}

func (b *boards) Rename(ctx context.Context, boardID, name string) error {
	res, err := b.db.ExecContext(ctx, `UPDATE boards SET name=$2 WHERE board_id=$1`, boardID, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (b *boards) Delete(ctx context.Context, boardID string) error {
	tx, err := b.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM likes WHERE memory_id IN (SELECT memory_id FROM memories WHERE board_id=$1)`,
		`DELETE FROM comments WHERE memory_id IN (SELECT memory_id FROM memories WHERE board_id=$1)`,
		`DELETE FROM memories WHERE board_id=$1`,
		`DELETE FROM board_invites WHERE board_id=$1`,
		`DELETE FROM board_members WHERE board_id=$1`,
		`DELETE FROM boards WHERE board_id=$1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, boardID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (b *boards) AddMember(ctx context.Context, boardID, userID string) error {
	_, err := b.db.ExecContext(ctx, `
        INSERT INTO board_members (board_id, user_id) VALUES ($1,$2)
        ON CONFLICT DO NOTHING
    `, boardID, userID)
	return err
}

func (b *boards) Members(ctx context.Context, boardID string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `
        SELECT user_id FROM board_members WHERE board_id=$1 ORDER BY user_id
    `, boardID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

func (b *boards) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	var one int
	row := b.db.QueryRowContext(ctx, `
        SELECT 1 FROM board_members WHERE board_id=$1 AND user_id=$2
    `, boardID, userID)
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// --- Memories ---

type memories struct{ db *sql.DB }

func (m *memories) Create(ctx context.Context, mm *model.Memory) (*model.Memory, error) {
	id := mm.MemoryID
	if id == "" {
		id = uuid.New().String()
	}
	media, err := json.Marshal(mm.MediaItems)
	if err != nil {
		return nil, err
	}
	var created time.Time
	row := m.db.QueryRowContext(ctx, `
        INSERT INTO memories (memory_id, board_id, author_id, memory_type, caption, event_date, location, media_items)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING creation_time
    `, id, mm.BoardID, mm.AuthorID, mm.MemoryType, mm.Caption, mm.EventDate, mm.Location, media)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *mm
	out.MemoryID = id
	out.CreationTime = created
	return &out, nil
}

func (m *memories) GetByID(ctx context.Context, memoryID string) (*model.Memory, error) {
	row := m.db.QueryRowContext(ctx, `
        SELECT m.memory_id, m.board_id, m.author_id, m.memory_type, m.caption, m.event_date, m.location, m.media_items, m.creation_time,
               (SELECT COUNT(*) FROM likes l WHERE l.memory_id = m.memory_id)
        FROM memories m WHERE m.memory_id=$1
    `, memoryID)
	out, err := scanMemory(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return out, nil
}

func (m *memories) List(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error) {
	q := `
        SELECT m.memory_id, m.board_id, m.author_id, m.memory_type, m.caption, m.event_date, m.location, m.media_items, m.creation_time,
               (SELECT COUNT(*) FROM likes l WHERE l.memory_id = m.memory_id)
        FROM memories m WHERE m.board_id=$1`
	args := []interface{}{req.BoardID}
	if req.Before != nil {
		q += ` AND m.creation_time < $2`
		args = append(args, *req.Before)
	}
	q += ` ORDER BY m.creation_time DESC`
	if req.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, req.Limit)
	}
	rows, err := m.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Memory
	for rows.Next() {
		mm, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, mm)
	}
	return res, rows.Err()
}

func (m *memories) Delete(ctx context.Context, memoryID string) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range []string{
		`DELETE FROM likes WHERE memory_id=$1`,
		`DELETE FROM comments WHERE memory_id=$1`,
		`DELETE FROM memories WHERE memory_id=$1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, memoryID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanMemory(row rowScanner) (*model.Memory, error) {
	var out model.Memory
	var media []byte
	if err := row.Scan(&out.MemoryID, &out.BoardID, &out.AuthorID, &out.MemoryType,
		&out.Caption, &out.EventDate, &out.Location, &media, &out.CreationTime, &out.LikeCount); err != nil {
		return nil, err
	}
	if len(media) > 0 {
		if err := json.Unmarshal(media, &out.MediaItems); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// --- Comments ---

type comments struct{ db *sql.DB }

func (c *comments) Create(ctx context.Context, mc *model.Comment) (*model.Comment, error) {
	id := mc.CommentID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO comments (comment_id, memory_id, author_id, parent_id, body)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time
    `, id, mc.MemoryID, mc.AuthorID, mc.ParentID, mc.Body)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *mc
	out.CommentID = id
	out.CreationTime = created
	return &out, nil
}

func (c *comments) ListByMemory(ctx context.Context, memoryID string) ([]*model.Comment, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT comment_id, memory_id, author_id, parent_id, body, creation_time
        FROM comments WHERE memory_id=$1 ORDER BY creation_time ASC
    `, memoryID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Comment
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.CommentID, &cm.MemoryID, &cm.AuthorID, &cm.ParentID, &cm.Body, &cm.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &cm)
	}
	return res, rows.Err()
}

func (c *comments) Delete(ctx context.Context, commentID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM comments WHERE comment_id=$1`, commentID)
	return err
}

// --- Likes ---

type likes struct{ db *sql.DB }

func (l *likes) Add(ctx context.Context, ml *model.Like) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
        INSERT INTO likes (memory_id, user_id) VALUES ($1,$2)
        ON CONFLICT DO NOTHING
    `, ml.MemoryID, ml.UserID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *likes) Remove(ctx context.Context, memoryID, userID string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM likes WHERE memory_id=$1 AND user_id=$2`, memoryID, userID)
	return err
}

func (l *likes) Count(ctx context.Context, memoryID string) (int, error) {
	var n int
	row := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE memory_id=$1`, memoryID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// --- Invites ---

type invites struct{ db *sql.DB }

func (i *invites) Create(ctx context.Context, inv *model.BoardInvite) (*model.BoardInvite, error) {
	id := inv.InviteID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := i.db.QueryRowContext(ctx, `
        INSERT INTO board_invites (invite_id, board_id, inviter_id, email)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, inv.BoardID, inv.InviterID, inv.Email)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *inv
	out.InviteID = id
	out.CreationTime = created
	return &out, nil
}

func (i *invites) GetByID(ctx context.Context, inviteID string) (*model.BoardInvite, error) {
	var out model.BoardInvite
	row := i.db.QueryRowContext(ctx, `
        SELECT invite_id, board_id, inviter_id, email, accepted_by, accepted_time, creation_time
        FROM board_invites WHERE invite_id=$1
    `, inviteID)
	if err := row.Scan(&out.InviteID, &out.BoardID, &out.InviterID, &out.Email, &out.AcceptedBy, &out.AcceptedTime, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (i *invites) Accept(ctx context.Context, inviteID, userID string) (*model.BoardInvite, error) {
	tx, err := i.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var out model.BoardInvite
	row := tx.QueryRowContext(ctx, `
        UPDATE board_invites
        SET accepted_by=$2, accepted_time=now()
        WHERE invite_id=$1 AND accepted_by IS NULL
        RETURNING invite_id, board_id, inviter_id, email, accepted_by, accepted_time, creation_time
    `, inviteID, userID)
	if err := row.Scan(&out.InviteID, &out.BoardID, &out.InviterID, &out.Email, &out.AcceptedBy, &out.AcceptedTime, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO board_members (board_id, user_id) VALUES ($1,$2)
        ON CONFLICT DO NOTHING
    `, out.BoardID, userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *invites) ListByBoard(ctx context.Context, boardID string) ([]*model.BoardInvite, error) {
	rows, err := i.db.QueryContext(ctx, `
        SELECT invite_id, board_id, inviter_id, email, accepted_by, accepted_time, creation_time
        FROM board_invites WHERE board_id=$1 ORDER BY creation_time DESC
    `, boardID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.BoardInvite
	for rows.Next() {
		var inv model.BoardInvite
		if err := rows.Scan(&inv.InviteID, &inv.BoardID, &inv.InviterID, &inv.Email, &inv.AcceptedBy, &inv.AcceptedTime, &inv.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &inv)
	}
	return res, rows.Err()
}

// --- Drafts ---

type drafts struct{ db *sql.DB }

func (d *drafts) Upsert(ctx context.Context, md *model.Draft) (*model.Draft, error) {
	media, err := json.Marshal(md.MediaItems)
	if err != nil {
		return nil, err
	}
	// Last-write-wins: an existing row is only replaced by a strictly newer
	// last_updated. The WHERE guard makes concurrent stale writers no-ops.
	_, err = d.db.ExecContext(ctx, `
        INSERT INTO drafts (draft_id, user_id, board_id, memory_type, caption, event_date, location, media_items, last_updated, deleted_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (user_id, draft_id) DO UPDATE SET
            board_id=EXCLUDED.board_id,
            memory_type=EXCLUDED.memory_type,
            caption=EXCLUDED.caption,
            event_date=EXCLUDED.event_date,
            location=EXCLUDED.location,
            media_items=EXCLUDED.media_items,
            last_updated=EXCLUDED.last_updated,
            deleted_at=EXCLUDED.deleted_at
        WHERE drafts.last_updated < EXCLUDED.last_updated
    `, md.DraftID, md.UserID, md.BoardID, md.MemoryType, md.Caption, md.EventDate, md.Location, media, md.LastUpdated, md.DeletedAt)
	if err != nil {
		return nil, err
	}
	// Return the persisted copy, which may be the newer pre-existing row.
	return d.Get(ctx, md.UserID, md.DraftID)
}

func (d *drafts) List(ctx context.Context, userID string) ([]*model.Draft, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT draft_id, user_id, board_id, memory_type, caption, event_date, location, media_items, last_updated, deleted_at
        FROM drafts WHERE user_id=$1 ORDER BY last_updated DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Draft
	for rows.Next() {
		dr, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, dr)
	}
	return res, rows.Err()
}

func (d *drafts) Get(ctx context.Context, userID, draftID string) (*model.Draft, error) {
	row := d.db.QueryRowContext(ctx, `
        SELECT draft_id, user_id, board_id, memory_type, caption, event_date, location, media_items, last_updated, deleted_at
        FROM drafts WHERE user_id=$1 AND draft_id=$2
    `, userID, draftID)
	dr, err := scanDraft(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return dr, nil
}

func (d *drafts) Delete(ctx context.Context, userID, draftID string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM drafts WHERE user_id=$1 AND draft_id=$2`, userID, draftID)
	return err
}

func (d *drafts) DeleteAll(ctx context.Context, userID string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM drafts WHERE user_id=$1`, userID)
	return err
}

func scanDraft(row rowScanner) (*model.Draft, error) {
	var out model.Draft
	var media []byte
	if err := row.Scan(&out.DraftID, &out.UserID, &out.BoardID, &out.MemoryType,
		&out.Caption, &out.EventDate, &out.Location, &media, &out.LastUpdated, &out.DeletedAt); err != nil {
		return nil, err
	}
	if len(media) > 0 {
		if err := json.Unmarshal(media, &out.MediaItems); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// --- Outbox ---

type outbox struct{ db *sql.DB }

func (o *outbox) Enqueue(ctx context.Context, n *model.Notification) error {
	_, err := o.db.ExecContext(ctx, `
        INSERT INTO notification_outbox (kind, recipient, subject, body, status, next_attempt_at)
        VALUES ($1,$2,$3,$4,'pending',now())
    `, n.Kind, n.Recipient, n.Subject, n.Body)
	return err
}

func (o *outbox) LeaseBatch(ctx context.Context, batchSize int) ([]*model.Notification, error) {
	rows, err := o.db.QueryContext(ctx, `
        SELECT id, kind, recipient, subject, body, status, attempt_count, next_attempt_at, creation_time
        FROM notification_outbox
        WHERE status='pending' AND next_attempt_at <= now()
        ORDER BY id ASC
        FOR UPDATE SKIP LOCKED
        LIMIT $1
    `, batchSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Kind, &n.Recipient, &n.Subject, &n.Body, &n.Status, &n.AttemptCount, &n.NextAttemptAt, &n.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &n)
	}
	return res, rows.Err()
}

func (o *outbox) MarkDone(ctx context.Context, id int64) error {
	_, err := o.db.ExecContext(ctx, `
        UPDATE notification_outbox SET status='done', update_time=now() WHERE id=$1
    `, id)
	return err
}

func (o *outbox) MarkFailed(ctx context.Context, id int64) error {
	// Exponential per-row backoff, capped at 300 seconds.
	_, err := o.db.ExecContext(ctx, `
        UPDATE notification_outbox
        SET attempt_count = attempt_count + 1,
            next_attempt_at = now() + make_interval(secs => LEAST(POWER(2, attempt_count+1), 300)),
            update_time = now()
        WHERE id=$1
    `, id)
	return err
}
