package store

import (
	"context"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., postgres).
type Store interface {
	Users() Users
	Boards() Boards
	Memories() Memories
	Comments() Comments
	Likes() Likes
	Invites() Invites
	Drafts() Drafts
	Outbox() Outbox
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	Delete(ctx context.Context, userID string) error
}

type Boards interface {
	Create(ctx context.Context, b *model.Board) (*model.Board, error)
	GetByID(ctx context.Context, boardID string) (*model.Board, error)
	GetByShareCode(ctx context.Context, shareCode string) (*model.Board, error)
	List(ctx context.Context, userID string) ([]*model.Board, error)
	Rename(ctx context.Context, boardID, name string) error
	Delete(ctx context.Context, boardID string) error
	AddMember(ctx context.Context, boardID, userID string) error
	Members(ctx context.Context, boardID string) ([]string, error)
	IsMember(ctx context.Context, boardID, userID string) (bool, error)
}

type Memories interface {
	Create(ctx context.Context, m *model.Memory) (*model.Memory, error)
	GetByID(ctx context.Context, memoryID string) (*model.Memory, error)
	List(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error)
	Delete(ctx context.Context, memoryID string) error
}

type Comments interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	ListByMemory(ctx context.Context, memoryID string) ([]*model.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

type Likes interface {
	// Add records a like; it is idempotent and reports whether a new like
	// was actually inserted.
	Add(ctx context.Context, l *model.Like) (bool, error)
	Remove(ctx context.Context, memoryID, userID string) error
	Count(ctx context.Context, memoryID string) (int, error)
}

type Invites interface {
	Create(ctx context.Context, inv *model.BoardInvite) (*model.BoardInvite, error)
	GetByID(ctx context.Context, inviteID string) (*model.BoardInvite, error)
	Accept(ctx context.Context, inviteID, userID string) (*model.BoardInvite, error)
	ListByBoard(ctx context.Context, boardID string) ([]*model.BoardInvite, error)
}

// Drafts is the server-side draft collection: the remote end of the client's
// draft sync. Upsert enforces last-write-wins on lastUpdated so a stale
// writer can never clobber a newer copy.
type Drafts interface {
	Upsert(ctx context.Context, d *model.Draft) (*model.Draft, error)
	List(ctx context.Context, userID string) ([]*model.Draft, error)
	Get(ctx context.Context, userID, draftID string) (*model.Draft, error)
	Delete(ctx context.Context, userID, draftID string) error
	DeleteAll(ctx context.Context, userID string) error
}

// Outbox is the email-notification outbox consumed by the notifier worker.
type Outbox interface {
	Enqueue(ctx context.Context, n *model.Notification) error
	// LeaseBatch returns up to batchSize pending rows whose next attempt is
	// due, locked against concurrent workers.
	LeaseBatch(ctx context.Context, batchSize int) ([]*model.Notification, error)
	MarkDone(ctx context.Context, id int64) error
	// MarkFailed bumps the attempt counter and pushes next_attempt_at out by
	// an exponentially growing delay.
	MarkFailed(ctx context.Context, id int64) error
}
