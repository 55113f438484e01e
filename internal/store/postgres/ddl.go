package postgres

import "database/sql"

// EnsureSchema creates all tables if they do not exist. Production deploys
// run migrations out of band; this is for dev and integration tests.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            display_name TEXT,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
            last_seen_time TIMESTAMPTZ
        );`,
		`CREATE TABLE IF NOT EXISTS boards (
            board_id TEXT PRIMARY KEY,
            owner_id TEXT NOT NULL,
            name TEXT NOT NULL,
            share_code TEXT NOT NULL UNIQUE,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS board_members (
            board_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            PRIMARY KEY(board_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS memories (
            memory_id TEXT PRIMARY KEY,
            board_id TEXT NOT NULL,
            author_id TEXT NOT NULL,
            memory_type TEXT NOT NULL,
            caption TEXT,
            event_date TIMESTAMPTZ,
            location TEXT,
            media_items JSONB,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS memories_board_idx ON memories(board_id, creation_time DESC);`,
		`CREATE TABLE IF NOT EXISTS comments (
            comment_id TEXT PRIMARY KEY,
            memory_id TEXT NOT NULL,
            author_id TEXT NOT NULL,
            parent_id TEXT,
            body TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS comments_memory_idx ON comments(memory_id, creation_time);`,
		`CREATE TABLE IF NOT EXISTS likes (
            memory_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY(memory_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS board_invites (
            invite_id TEXT PRIMARY KEY,
            board_id TEXT NOT NULL,
            inviter_id TEXT NOT NULL,
            email TEXT NOT NULL,
            accepted_by TEXT,
            accepted_time TIMESTAMPTZ,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS drafts (
            draft_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            board_id TEXT NOT NULL,
            memory_type TEXT NOT NULL,
            caption TEXT,
            event_date TIMESTAMPTZ,
            location TEXT,
            media_items JSONB,
            last_updated TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ,
            PRIMARY KEY(user_id, draft_id)
        );`,
		`CREATE TABLE IF NOT EXISTS notification_outbox (
            id BIGSERIAL PRIMARY KEY,
            kind TEXT NOT NULL,
            recipient TEXT NOT NULL,
            subject TEXT NOT NULL,
            body TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            attempt_count INT NOT NULL DEFAULT 0,
            next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
            update_time TIMESTAMPTZ
        );`,
		`CREATE INDEX IF NOT EXISTS outbox_ready_idx ON notification_outbox(status, next_attempt_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
