// Package memstore provides an in-memory store.Store used by unit tests and
// dev mode. It mirrors the Postgres implementation's semantics, including
// last-write-wins draft upserts and outbox leasing.
package memstore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

type memStore struct {
	mu sync.Mutex

	users    map[string]*model.User
	boards   map[string]*model.Board
	members  map[string]map[string]bool // boardID -> userID set
	memories map[string]*model.Memory
	comments map[string]*model.Comment
	likes    map[string]map[string]time.Time // memoryID -> userID -> when
	invites  map[string]*model.BoardInvite
	drafts   map[string]map[string]*model.Draft // userID -> draftID -> draft
	outbox   []*model.Notification
	nextID   int64
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memStore{
		users:    map[string]*model.User{},
		boards:   map[string]*model.Board{},
		members:  map[string]map[string]bool{},
		memories: map[string]*model.Memory{},
		comments: map[string]*model.Comment{},
		likes:    map[string]map[string]time.Time{},
		invites:  map[string]*model.BoardInvite{},
		drafts:   map[string]map[string]*model.Draft{},
	}
}

func (s *memStore) Users() store.Users       { return (*users)(s) }
func (s *memStore) Boards() store.Boards     { return (*boards)(s) }
func (s *memStore) Memories() store.Memories { return (*memories)(s) }
func (s *memStore) Comments() store.Comments { return (*comments)(s) }
func (s *memStore) Likes() store.Likes       { return (*likes)(s) }
func (s *memStore) Invites() store.Invites   { return (*invites)(s) }
func (s *memStore) Drafts() store.Drafts     { return (*drafts)(s) }
func (s *memStore) Outbox() store.Outbox     { return (*outbox)(s) }

// HealthPing always succeeds.
func (s *memStore) HealthPing(ctx context.Context) error { return nil }

// --- Users ---

type users memStore

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := *m
	out.CreationTime = time.Now().UTC()
	u.users[m.UserID] = &out
	cp := out
	return &cp, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.users, userID)
	return nil
}

// --- Boards ---

type boards memStore

func (b *boards) Create(ctx context.Context, mb *model.Board) (*model.Board, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := *mb
	if out.BoardID == "" {
		out.BoardID = uuid.New().String()
	}
	if out.ShareCode == "" {
		out.ShareCode = uuid.New().String()[:8]
	}
	out.CreationTime = time.Now().UTC()
	b.boards[out.BoardID] = &out
	b.members[out.BoardID] = map[string]bool{out.OwnerID: true}
	cp := out
	return &cp, nil
}

func (b *boards) GetByID(ctx context.Context, boardID string) (*model.Board, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mb, ok := b.boards[boardID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *mb
	return &cp, nil
}

func (b *boards) GetByShareCode(ctx context.Context, shareCode string) (*model.Board, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, mb := range b.boards {
		if mb.ShareCode == shareCode {
			cp := *mb
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (b *boards) List(ctx context.Context, userID string) ([]*model.Board, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var res []*model.Board
	for id, mb := range b.boards {
		if b.members[id][userID] {
			cp := *mb
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreationTime.After(res[j].CreationTime) })
	return res, nil
}

func (b *boards) Rename(ctx context.Context, boardID, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	mb, ok := b.boards[boardID]
	if !ok {
		return model.ErrNotFound
	}
	mb.Name = name
	return nil
}

func (b *boards) Delete(ctx context.Context, boardID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, m := range b.memories {
		if m.BoardID == boardID {
			delete(b.memories, id)
			delete(b.likes, id)
			for cid, c := range b.comments {
				if c.MemoryID == id {
					delete(b.comments, cid)
				}
			}
		}
	}
	for id, inv := range b.invites {
		if inv.BoardID == boardID {
			delete(b.invites, id)
		}
	}
	delete(b.members, boardID)
	delete(b.boards, boardID)
	return nil
}

func (b *boards) AddMember(ctx context.Context, boardID, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.members[boardID] == nil {
		b.members[boardID] = map[string]bool{}
	}
	b.members[boardID][userID] = true
	return nil
}

func (b *boards) Members(ctx context.Context, boardID string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var res []string
	for id := range b.members[boardID] {
		res = append(res, id)
	}
	sort.Strings(res)
	return res, nil
}

func (b *boards) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.members[boardID][userID], nil
}

// --- Memories ---

type memories memStore

func (m *memories) Create(ctx context.Context, mm *model.Memory) (*model.Memory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *mm
	if out.MemoryID == "" {
		out.MemoryID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	m.memories[out.MemoryID] = &out
	cp := out
	return &cp, nil
}

func (m *memories) GetByID(ctx context.Context, memoryID string) (*model.Memory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.memories[memoryID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *mm
	cp.LikeCount = len(m.likes[memoryID])
	return &cp, nil
}

func (m *memories) List(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*model.Memory
	for id, mm := range m.memories {
		if mm.BoardID != req.BoardID {
			continue
		}
		if req.Before != nil && !mm.CreationTime.Before(*req.Before) {
			continue
		}
		cp := *mm
		cp.LikeCount = len(m.likes[id])
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreationTime.After(res[j].CreationTime) })
	if req.Limit > 0 && len(res) > req.Limit {
		res = res[:req.Limit]
	}
	return res, nil
}

func (m *memories) Delete(ctx context.Context, memoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.memories, memoryID)
	delete(m.likes, memoryID)
	for cid, c := range m.comments {
		if c.MemoryID == memoryID {
			delete(m.comments, cid)
		}
	}
	return nil
}

// --- Comments ---

type comments memStore

func (c *comments) Create(ctx context.Context, mc *model.Comment) (*model.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := *mc
	if out.CommentID == "" {
		out.CommentID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	c.comments[out.CommentID] = &out
	cp := out
	return &cp, nil
}

func (c *comments) ListByMemory(ctx context.Context, memoryID string) ([]*model.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var res []*model.Comment
	for _, cm := range c.comments {
		if cm.MemoryID == memoryID {
			cp := *cm
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreationTime.Before(res[j].CreationTime) })
	return res, nil
}

func (c *comments) Delete(ctx context.Context, commentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.comments, commentID)
	return nil
}

// --- Likes ---

type likes memStore

func (l *likes) Add(ctx context.Context, ml *model.Like) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.likes[ml.MemoryID] == nil {
		l.likes[ml.MemoryID] = map[string]time.Time{}
	}
	if _, ok := l.likes[ml.MemoryID][ml.UserID]; ok {
		return false, nil
	}
	l.likes[ml.MemoryID][ml.UserID] = time.Now().UTC()
	return true, nil
}

func (l *likes) Remove(ctx context.Context, memoryID, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.likes[memoryID], userID)
	return nil
}

func (l *likes) Count(ctx context.Context, memoryID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.likes[memoryID]), nil
}

// --- Invites ---

type invites memStore

func (i *invites) Create(ctx context.Context, inv *model.BoardInvite) (*model.BoardInvite, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := *inv
	if out.InviteID == "" {
		out.InviteID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	i.invites[out.InviteID] = &out
	cp := out
	return &cp, nil
}

func (i *invites) GetByID(ctx context.Context, inviteID string) (*model.BoardInvite, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	inv, ok := i.invites[inviteID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (i *invites) Accept(ctx context.Context, inviteID, userID string) (*model.BoardInvite, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	inv, ok := i.invites[inviteID]
	if !ok {
		return nil, model.ErrNotFound
	}
	if inv.AcceptedBy != nil {
		return nil, model.ErrConflict
	}
	now := time.Now().UTC()
	inv.AcceptedBy = &userID
	inv.AcceptedTime = &now
	if i.members[inv.BoardID] == nil {
		i.members[inv.BoardID] = map[string]bool{}
	}
	i.members[inv.BoardID][userID] = true
	cp := *inv
	return &cp, nil
}

func (i *invites) ListByBoard(ctx context.Context, boardID string) ([]*model.BoardInvite, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var res []*model.BoardInvite
	for _, inv := range i.invites {
		if inv.BoardID == boardID {
			cp := *inv
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(a, b int) bool { return res[a].CreationTime.After(res[b].CreationTime) })
	return res, nil
}

// --- Drafts ---

type drafts memStore

func (d *drafts) Upsert(ctx context.Context, md *model.Draft) (*model.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.drafts[md.UserID] == nil {
		d.drafts[md.UserID] = map[string]*model.Draft{}
	}
	existing, ok := d.drafts[md.UserID][md.DraftID]
	if !ok || md.LastUpdated.After(existing.LastUpdated) {
		cp := *md
		d.drafts[md.UserID][md.DraftID] = &cp
	}
	out := *d.drafts[md.UserID][md.DraftID]
	return &out, nil
}

func (d *drafts) List(ctx context.Context, userID string) ([]*model.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var res []*model.Draft
	for _, dr := range d.drafts[userID] {
		cp := *dr
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].LastUpdated.After(res[j].LastUpdated) })
	return res, nil
}

func (d *drafts) Get(ctx context.Context, userID, draftID string) (*model.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, ok := d.drafts[userID][draftID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *dr
	return &cp, nil
}

func (d *drafts) Delete(ctx context.Context, userID, draftID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts[userID], draftID)
	return nil
}

func (d *drafts) DeleteAll(ctx context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, userID)
	return nil
}

// --- Outbox ---

type outbox memStore

func (o *outbox) Enqueue(ctx context.Context, n *model.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	cp := *n
	cp.ID = o.nextID
	cp.Status = model.OutboxPending
	cp.NextAttemptAt = time.Now().UTC()
	cp.CreationTime = time.Now().UTC()
	o.outbox = append(o.outbox, &cp)
	return nil
}

func (o *outbox) LeaseBatch(ctx context.Context, batchSize int) ([]*model.Notification, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	var res []*model.Notification
	for _, n := range o.outbox {
		if n.Status == model.OutboxPending && !n.NextAttemptAt.After(now) {
			cp := *n
			res = append(res, &cp)
			if len(res) >= batchSize {
				break
			}
		}
	}
	return res, nil
}

func (o *outbox) MarkDone(ctx context.Context, id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, n := range o.outbox {
		if n.ID == id {
			n.Status = model.OutboxDone
			return nil
		}
	}
	return model.ErrNotFound
}

func (o *outbox) MarkFailed(ctx context.Context, id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, n := range o.outbox {
		if n.ID == id {
			delay := math.Min(math.Pow(2, float64(n.AttemptCount+1)), 300)
			n.AttemptCount++
			n.NextAttemptAt = time.Now().UTC().Add(time.Duration(delay) * time.Second)
			return nil
		}
	}
	return model.ErrNotFound
}
