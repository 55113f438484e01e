// Package localstore persists the device's draft set. It is the local side
// of draft sync: writes land here first and reach the server on the next
// sync pass.
package localstore

import (
	"context"
	"errors"
	"time"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// ErrStorageUnavailable wraps storage-engine failures. A sync pass that hits
// it aborts rather than risking a merge against a partial read.
var ErrStorageUnavailable = errors.New("local draft storage unavailable")

// ErrNotFound is returned by Get for an unknown draft id.
var ErrNotFound = errors.New("draft not found")

// Store is the local draft store. Save applies last-write-wins on
// lastUpdated, so replaying a merge result is idempotent.
type Store interface {
	// List returns live drafts, newest first. Tombstones are filtered out.
	List(ctx context.Context) ([]*model.Draft, error)

	// ListAll includes tombstones. The sync pass reads this so deletions
	// propagate with the same merge rule as edits.
	ListAll(ctx context.Context) ([]*model.Draft, error)

	Get(ctx context.Context, draftID string) (*model.Draft, error)

	// Save upserts the draft if it is newer than the stored copy.
	Save(ctx context.Context, d *model.Draft) error

	// Delete tombstones the draft at the given time. Unknown ids are a no-op.
	Delete(ctx context.Context, draftID string, at time.Time) error

	// Purge removes the row entirely. Used once a tombstone is confirmed
	// deleted remotely.
	Purge(ctx context.Context, draftID string) error

	// ClearAll wipes the store. Used on sign-out.
	ClearAll(ctx context.Context) error

	Close() error
}
