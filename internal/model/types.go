package model

import "time"

// Memory type tags carried by drafts and published memories.
const (
	MemoryTypePhoto    = "photo"
	MemoryTypeVideo    = "video"
	MemoryTypeNote     = "note"
	MemoryTypeCarousel = "carousel"
)

// User represents an account in the system.
type User struct {
	UserID       string     `json:"userId"`
	Email        string     `json:"email"`
	DisplayName  *string    `json:"displayName,omitempty"`
	CreationTime time.Time  `json:"creationTime"`
	LastSeenTime *time.Time `json:"lastSeenTime,omitempty"`
}

// Board is a shared collection that published memories belong to.
type Board struct {
	BoardID      string    `json:"boardId"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	ShareCode    string    `json:"shareCode"`
	CreationTime time.Time `json:"creationTime"`
}

// MediaItem is one staged media reference inside a carousel draft.
type MediaItem struct {
	URL     string `json:"url"`
	IsVideo bool   `json:"isVideo"`
}

// Draft is a staged, not-yet-published memory creation.
//
// LastUpdated is the sole merge tie-breaker between local and remote copies.
// A non-nil DeletedAt marks a tombstone: the draft was deleted on some device
// and the deletion participates in the same last-write-wins rule, so a stale
// remote copy cannot resurrect it.
type Draft struct {
	DraftID     string      `json:"draftId"`
	UserID      string      `json:"userId"`
	BoardID     string      `json:"boardId"`
	MemoryType  string      `json:"memoryType"`
	Caption     *string     `json:"caption,omitempty"`
	EventDate   *time.Time  `json:"eventDate,omitempty"`
	Location    *string     `json:"location,omitempty"`
	MediaItems  []MediaItem `json:"mediaItems,omitempty"`
	LastUpdated time.Time   `json:"lastUpdated"`
	DeletedAt   *time.Time  `json:"deletedAt,omitempty"`
}

// IsTombstone reports whether the draft records a deletion.
func (d *Draft) IsTombstone() bool { return d.DeletedAt != nil }

// NewerThan reports whether d should win a last-write-wins merge against
// other. Ties go to other (the incumbent).
func (d *Draft) NewerThan(other *Draft) bool {
	return d.LastUpdated.After(other.LastUpdated)
}

// Memory is a published entry on a board's feed.
type Memory struct {
	MemoryID     string      `json:"memoryId"`
	BoardID      string      `json:"boardId"`
	AuthorID     string      `json:"authorId"`
	MemoryType   string      `json:"memoryType"`
	Caption      *string     `json:"caption,omitempty"`
	EventDate    *time.Time  `json:"eventDate,omitempty"`
	Location     *string     `json:"location,omitempty"`
	MediaItems   []MediaItem `json:"mediaItems,omitempty"`
	LikeCount    int         `json:"likeCount"`
	CreationTime time.Time   `json:"creationTime"`
}

// Comment is a threaded comment on a memory. ParentID is nil for top-level
// comments.
type Comment struct {
	CommentID    string    `json:"commentId"`
	MemoryID     string    `json:"memoryId"`
	AuthorID     string    `json:"authorId"`
	ParentID     *string   `json:"parentId,omitempty"`
	Body         string    `json:"body"`
	CreationTime time.Time `json:"creationTime"`
}

// Like records one user's like on a memory. At most one per (memory, user).
type Like struct {
	MemoryID     string    `json:"memoryId"`
	UserID       string    `json:"userId"`
	CreationTime time.Time `json:"creationTime"`
}

// BoardInvite grants membership on a board when accepted.
type BoardInvite struct {
	InviteID     string     `json:"inviteId"`
	BoardID      string     `json:"boardId"`
	InviterID    string     `json:"inviterId"`
	Email        string     `json:"email"`
	AcceptedBy   *string    `json:"acceptedBy,omitempty"`
	AcceptedTime *time.Time `json:"acceptedTime,omitempty"`
	CreationTime time.Time  `json:"creationTime"`
}

// ListMemoriesRequest captures filters used when listing a board's feed.
type ListMemoriesRequest struct {
	BoardID string
	Limit   int
	Before  *time.Time
}
