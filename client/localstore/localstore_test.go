package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{
		"sqlite": sq,
		"memory": NewMemoryStore(),
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Millisecond)

			cap1 := "v1"
			d := &model.Draft{
				DraftID:     "d1",
				BoardID:     "b1",
				MemoryType:  model.MemoryTypeNote,
				Caption:     &cap1,
				LastUpdated: base,
			}
			if err := s.Save(ctx, d); err != nil {
				t.Fatalf("save: %v", err)
			}

			cap2 := "v2"
			newer := *d
			newer.Caption = &cap2
			newer.LastUpdated = base.Add(time.Second)
			if err := s.Save(ctx, &newer); err != nil {
				t.Fatalf("save newer: %v", err)
			}

			capStale := "stale"
			stale := *d
			stale.Caption = &capStale
			stale.LastUpdated = base.Add(-time.Second)
			if err := s.Save(ctx, &stale); err != nil {
				t.Fatalf("save stale: %v", err)
			}

			got, err := s.Get(ctx, "d1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Caption == nil || *got.Caption != "v2" {
				t.Fatalf("newer copy must win, got %+v", got)
			}

			// Replaying the same save is a no-op.
			if err := s.Save(ctx, &newer); err != nil {
				t.Fatalf("replay save: %v", err)
			}
			got, _ = s.Get(ctx, "d1")
			if *got.Caption != "v2" {
				t.Fatalf("replay must be idempotent, got %+v", got)
			}
		})
	}
}

func TestStoreTombstones(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Millisecond)

			d := &model.Draft{DraftID: "d1", BoardID: "b1", MemoryType: model.MemoryTypeNote, LastUpdated: base}
			if err := s.Save(ctx, d); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Delete(ctx, "d1", base.Add(time.Second)); err != nil {
				t.Fatalf("delete: %v", err)
			}

			// Live list hides the tombstone; ListAll keeps it for sync.
			live, err := s.List(ctx)
			if err != nil || len(live) != 0 {
				t.Fatalf("live list: n=%d err=%v", len(live), err)
			}
			all, err := s.ListAll(ctx)
			if err != nil || len(all) != 1 || !all[0].IsTombstone() {
				t.Fatalf("ListAll should keep the tombstone: %+v err=%v", all, err)
			}

			// A stale edit cannot resurrect a deleted draft.
			resurrect := *d
			resurrect.LastUpdated = base.Add(500 * time.Millisecond)
			if err := s.Save(ctx, &resurrect); err != nil {
				t.Fatalf("save stale after delete: %v", err)
			}
			got, err := s.Get(ctx, "d1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !got.IsTombstone() {
				t.Fatalf("stale edit resurrected a tombstone: %+v", got)
			}

			// Deleting an unknown draft is a no-op.
			if err := s.Delete(ctx, "nope", time.Now()); err != nil {
				t.Fatalf("delete unknown: %v", err)
			}

			if err := s.Purge(ctx, "d1"); err != nil {
				t.Fatalf("purge: %v", err)
			}
			if _, err := s.Get(ctx, "d1"); err != ErrNotFound {
				t.Fatalf("purged draft: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreClearAll(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()
			for _, id := range []string{"a", "b", "c"} {
				if err := s.Save(ctx, &model.Draft{DraftID: id, BoardID: "b1", MemoryType: model.MemoryTypeNote, LastUpdated: now}); err != nil {
					t.Fatalf("save %s: %v", id, err)
				}
			}
			if err := s.ClearAll(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			all, err := s.ListAll(ctx)
			if err != nil || len(all) != 0 {
				t.Fatalf("after clear: n=%d err=%v", len(all), err)
			}
		})
	}
}

func TestSQLiteMediaRoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	loc := "paris"
	when := time.Now().UTC().Truncate(time.Millisecond)
	d := &model.Draft{
		DraftID:    "d1",
		BoardID:    "b1",
		MemoryType: model.MemoryTypeCarousel,
		Location:   &loc,
		EventDate:  &when,
		MediaItems: []model.MediaItem{
			{URL: "https://cdn.test/a.jpg"},
			{URL: "https://cdn.test/b.mp4", IsVideo: true},
		},
		LastUpdated: when,
	}
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.MediaItems) != 2 || !got.MediaItems[1].IsVideo {
		t.Fatalf("media items lost: %+v", got.MediaItems)
	}
	if got.Location == nil || *got.Location != loc {
		t.Fatalf("location lost: %+v", got)
	}
	if got.EventDate == nil || !got.EventDate.Equal(when) {
		t.Fatalf("event date lost: %+v", got.EventDate)
	}
	if !got.LastUpdated.Equal(when) {
		t.Fatalf("lastUpdated drifted: %v vs %v", got.LastUpdated, when)
	}
}
