package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()
	email := userID + "@example.test"

	// Users
	u := &model.User{UserID: userID, Email: email}
	if _, err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "no-such-user"); err != model.ErrNotFound {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}

	// Boards
	b, err := s.Boards().Create(ctx, &model.Board{OwnerID: userID, Name: "our trip"})
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if b.BoardID == "" || b.ShareCode == "" {
		t.Fatalf("CreateBoard: missing id or share code: %+v", b)
	}
	if got, err := s.Boards().GetByShareCode(ctx, b.ShareCode); err != nil || got.BoardID != b.BoardID {
		t.Fatalf("GetByShareCode: got=%v err=%v", got, err)
	}
	if ok, err := s.Boards().IsMember(ctx, b.BoardID, userID); err != nil || !ok {
		t.Fatalf("owner should be a member: ok=%v err=%v", ok, err)
	}
	if lst, err := s.Boards().List(ctx, userID); err != nil || len(lst) != 1 {
		t.Fatalf("ListBoards: n=%d err=%v", len(lst), err)
	}
	if err := s.Boards().Rename(ctx, b.BoardID, "our honeymoon"); err != nil {
		t.Fatalf("RenameBoard: %v", err)
	}

	// Memories
	caption := "first day"
	m, err := s.Memories().Create(ctx, &model.Memory{
		BoardID:    b.BoardID,
		AuthorID:   userID,
		MemoryType: model.MemoryTypePhoto,
		Caption:    &caption,
		MediaItems: []model.MediaItem{{URL: "https://cdn.test/a.jpg"}},
	})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	if got, err := s.Memories().GetByID(ctx, m.MemoryID); err != nil || got.Caption == nil || *got.Caption != caption {
		t.Fatalf("GetMemory: got=%v err=%v", got, err)
	}
	if lst, err := s.Memories().List(ctx, model.ListMemoriesRequest{BoardID: b.BoardID}); err != nil || len(lst) != 1 {
		t.Fatalf("ListMemories: n=%d err=%v", len(lst), err)
	}

	// Likes are idempotent per (memory, user)
	if added, err := s.Likes().Add(ctx, &model.Like{MemoryID: m.MemoryID, UserID: userID}); err != nil || !added {
		t.Fatalf("Like add: added=%v err=%v", added, err)
	}
	if added, err := s.Likes().Add(ctx, &model.Like{MemoryID: m.MemoryID, UserID: userID}); err != nil || added {
		t.Fatalf("Like re-add should be a no-op: added=%v err=%v", added, err)
	}
	if n, err := s.Likes().Count(ctx, m.MemoryID); err != nil || n != 1 {
		t.Fatalf("Like count: n=%d err=%v", n, err)
	}

	// Comments
	c, err := s.Comments().Create(ctx, &model.Comment{MemoryID: m.MemoryID, AuthorID: userID, Body: "so good"})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	reply, err := s.Comments().Create(ctx, &model.Comment{MemoryID: m.MemoryID, AuthorID: userID, ParentID: &c.CommentID, Body: "agreed"})
	if err != nil {
		t.Fatalf("CreateReply: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != c.CommentID {
		t.Fatalf("reply parent: %+v", reply)
	}
	if lst, err := s.Comments().ListByMemory(ctx, m.MemoryID); err != nil || len(lst) != 2 {
		t.Fatalf("ListComments: n=%d err=%v", len(lst), err)
	}

	// Invites
	inv, err := s.Invites().Create(ctx, &model.BoardInvite{BoardID: b.BoardID, InviterID: userID, Email: "friend@example.test"})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	friendID := "u-" + uuid.New().String()
	if _, err := s.Users().Create(ctx, &model.User{UserID: friendID, Email: friendID + "@example.test"}); err != nil {
		t.Fatalf("CreateUser friend: %v", err)
	}
	acc, err := s.Invites().Accept(ctx, inv.InviteID, friendID)
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if acc.AcceptedBy == nil || *acc.AcceptedBy != friendID {
		t.Fatalf("AcceptInvite: %+v", acc)
	}
	if _, err := s.Invites().Accept(ctx, inv.InviteID, userID); err != model.ErrConflict {
		t.Fatalf("double accept: want ErrConflict, got %v", err)
	}
	if ok, err := s.Boards().IsMember(ctx, b.BoardID, friendID); err != nil || !ok {
		t.Fatalf("accepted invitee should be a member: ok=%v err=%v", ok, err)
	}

	runDrafts(t, s, userID, b.BoardID)
	runOutbox(t, s)

	// Cascading board delete
	if err := s.Boards().Delete(ctx, b.BoardID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}
	if _, err := s.Memories().GetByID(ctx, m.MemoryID); err != model.ErrNotFound {
		t.Fatalf("memory should cascade on board delete, got %v", err)
	}
}

func runDrafts(t *testing.T, s store.Store, userID, boardID string) {
	t.Helper()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	cap1 := "v1"
	d := &model.Draft{
		DraftID:     uuid.New().String(),
		UserID:      userID,
		BoardID:     boardID,
		MemoryType:  model.MemoryTypeNote,
		Caption:     &cap1,
		LastUpdated: base,
	}
	if _, err := s.Drafts().Upsert(ctx, d); err != nil {
		t.Fatalf("Draft upsert: %v", err)
	}

	// Newer write wins.
	cap2 := "v2"
	newer := *d
	newer.Caption = &cap2
	newer.LastUpdated = base.Add(time.Second)
	if _, err := s.Drafts().Upsert(ctx, &newer); err != nil {
		t.Fatalf("Draft upsert newer: %v", err)
	}
	got, err := s.Drafts().Get(ctx, userID, d.DraftID)
	if err != nil {
		t.Fatalf("Draft get: %v", err)
	}
	if got.Caption == nil || *got.Caption != cap2 {
		t.Fatalf("newer draft should win: %+v", got)
	}

	// Stale write is a no-op.
	capStale := "stale"
	stale := *d
	stale.Caption = &capStale
	stale.LastUpdated = base.Add(-time.Second)
	kept, err := s.Drafts().Upsert(ctx, &stale)
	if err != nil {
		t.Fatalf("Draft upsert stale: %v", err)
	}
	if kept.Caption == nil || *kept.Caption != cap2 {
		t.Fatalf("stale draft must not clobber newer copy: %+v", kept)
	}

	// Tombstone upserts like any other version.
	delAt := base.Add(2 * time.Second)
	tomb := *d
	tomb.DeletedAt = &delAt
	tomb.LastUpdated = delAt
	if _, err := s.Drafts().Upsert(ctx, &tomb); err != nil {
		t.Fatalf("Draft tombstone upsert: %v", err)
	}
	got, err = s.Drafts().Get(ctx, userID, d.DraftID)
	if err != nil {
		t.Fatalf("Draft get tombstone: %v", err)
	}
	if !got.IsTombstone() {
		t.Fatalf("expected tombstone: %+v", got)
	}

	if err := s.Drafts().Delete(ctx, userID, d.DraftID); err != nil {
		t.Fatalf("Draft delete: %v", err)
	}
	if _, err := s.Drafts().Get(ctx, userID, d.DraftID); err != model.ErrNotFound {
		t.Fatalf("deleted draft: want ErrNotFound, got %v", err)
	}
	// Delete of an absent draft is a no-op, not an error.
	if err := s.Drafts().Delete(ctx, userID, d.DraftID); err != nil {
		t.Fatalf("Draft re-delete: %v", err)
	}

	if _, err := s.Drafts().Upsert(ctx, d); err != nil {
		t.Fatalf("Draft upsert for DeleteAll: %v", err)
	}
	if err := s.Drafts().DeleteAll(ctx, userID); err != nil {
		t.Fatalf("Draft DeleteAll: %v", err)
	}
	if lst, err := s.Drafts().List(ctx, userID); err != nil || len(lst) != 0 {
		t.Fatalf("Draft list after DeleteAll: n=%d err=%v", len(lst), err)
	}
}

func runOutbox(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	n := &model.Notification{
		Kind:      model.NotifyCommentCreated,
		Recipient: "member@example.test",
		Subject:   "New comment",
		Body:      "Someone commented on your memory",
	}
	if err := s.Outbox().Enqueue(ctx, n); err != nil {
		t.Fatalf("Outbox enqueue: %v", err)
	}

	leased, err := s.Outbox().LeaseBatch(ctx, 10)
	if err != nil {
		t.Fatalf("Outbox lease: %v", err)
	}
	if len(leased) == 0 {
		t.Fatalf("Outbox lease: expected at least one pending row")
	}

	row := leased[len(leased)-1]
	if err := s.Outbox().MarkFailed(ctx, row.ID); err != nil {
		t.Fatalf("Outbox markFailed: %v", err)
	}
	if err := s.Outbox().MarkDone(ctx, row.ID); err != nil {
		t.Fatalf("Outbox markDone: %v", err)
	}
}
