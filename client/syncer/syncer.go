// Package syncer reconciles the device's local draft store with the remote
// draft collection. Merging is last-write-wins on lastUpdated; tombstones
// ride the same rule so deletions propagate without resurrections.
package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/internal/syncerrs"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/localstore"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// Gateway is the remote side of draft sync. Tombstones travel through
// SaveDraft like any other version; the server keeps them so stale writers
// cannot resurrect a deleted draft.
type Gateway interface {
	FetchDrafts(ctx context.Context) ([]*model.Draft, error)
	SaveDraft(ctx context.Context, d *model.Draft) (*model.Draft, error)
}

// Observer is notified after a sync pass changes the local draft set.
// Callbacks run on the syncer's goroutine and must return quickly.
type Observer interface {
	DraftsChanged()
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func()

func (f ObserverFunc) DraftsChanged() { f() }

// ErrSyncInFlight is returned by SyncNow when a pass is already running.
var ErrSyncInFlight = errors.New("sync pass already in flight")

// ErrSigningOut is returned when sync is requested after SignOut.
var ErrSigningOut = errors.New("signing out; sync disabled")

// Config tunes the sync loop. Zero values pick the defaults.
type Config struct {
	// Interval between periodic passes. Default 30s.
	Interval time.Duration
	// MaxAttempts bounds tries per remote operation inside one pass,
	// including the first. Default 3.
	MaxAttempts int
	// InitialBackoff is the delay after the first failure; it doubles per
	// attempt. Default 1s.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts. Default 30s.
	MaxBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	return c
}

// Syncer owns the sync loop for one signed-in session. All state is
// instance-scoped: constructing a new Syncer (e.g. after re-login) starts
// from a clean slate.
type Syncer struct {
	local localstore.Store
	gw    Gateway
	cfg   Config
	log   zerolog.Logger

	inFlight   atomic.Bool
	signingOut atomic.Bool

	mu        sync.Mutex
	observers []Observer
}

func New(local localstore.Store, gw Gateway, cfg Config, log zerolog.Logger) *Syncer {
	return &Syncer{local: local, gw: gw, cfg: cfg.withDefaults(), log: log}
}

// Subscribe registers an observer for "drafts changed" notifications.
func (s *Syncer) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Start runs periodic passes until ctx is canceled. An immediate first pass
// runs so a fresh sign-in converges without waiting a full interval.
func (s *Syncer) Start(ctx context.Context) {
	if err := s.SyncNow(ctx); err != nil && !errors.Is(err, ErrSyncInFlight) {
		s.log.Debug().Err(err).Msg("initial sync pass")
	}
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncNow(ctx); err != nil && !errors.Is(err, ErrSyncInFlight) {
				s.log.Debug().Err(err).Msg("periodic sync pass")
			}
		}
	}
}

// SyncNow runs one pass. At most one pass runs at a time; a concurrent call
// returns ErrSyncInFlight instead of queueing.
func (s *Syncer) SyncNow(ctx context.Context) error {
	if s.signingOut.Load() {
		return ErrSigningOut
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInFlight
	}
	defer s.inFlight.Store(false)
	return s.pass(ctx)
}

// SignOut disables sync and wipes the local draft store. Any in-flight pass
// aborts before its next local write.
func (s *Syncer) SignOut(ctx context.Context) error {
	s.signingOut.Store(true)
	return s.local.ClearAll(ctx)
}

func (s *Syncer) pass(ctx context.Context) error {
	passesTotal.Inc()
	// Observers refresh from the local store after every pass, whatever the
	// outcome, so badge counts never go stale behind a failed sync.
	defer s.notify()

	local, err := s.local.ListAll(ctx)
	if err != nil {
		passFailures.WithLabelValues("local_read").Inc()
		return err
	}

	var errs []error
	remote, err := s.fetchWithRetry(ctx)
	if err != nil {
		passFailures.WithLabelValues("fetch").Inc()
		if syncerrs.IsIrrecoverable(err) || ctx.Err() != nil {
			return err
		}
		// Retries exhausted on a transient failure: degrade to local-only.
		// The pass continues with an empty remote set; local data stays
		// untouched and unsynced drafts are still offered to the gateway.
		s.log.Warn().Err(err).Msg("sync degraded to local-only")
		remote = nil
		errs = append(errs, err)
	}

	merged, toPush := merge(local, remote)

	for _, d := range merged {
		if s.signingOut.Load() {
			return ErrSigningOut
		}
		if err := s.local.Save(ctx, d); err != nil {
			passFailures.WithLabelValues("local_write").Inc()
			return err
		}
	}

	pushed, err := s.push(ctx, toPush)
	if err != nil {
		passFailures.WithLabelValues("push").Inc()
		// Local state is already consistent; unpushed drafts go out on the
		// next pass.
		s.log.Warn().Err(err).Int("pushed", pushed).Msg("sync push incomplete")
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// fetchWithRetry pulls the remote draft set, retrying recoverable failures
// with capped exponential backoff.
func (s *Syncer) fetchWithRetry(ctx context.Context) ([]*model.Draft, error) {
	var out []*model.Draft
	op := func() error {
		drafts, err := s.gw.FetchDrafts(ctx)
		if err != nil {
			if syncerrs.IsIrrecoverable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = drafts
		return nil
	}
	if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return out, nil
}

// push uploads the drafts whose local copy won the merge, tombstones
// included. A draft whose retries are exhausted is logged and skipped so it
// cannot starve the rest; it goes out again on the next pass. Returns how
// many drafts were pushed and the joined per-draft failures.
func (s *Syncer) push(ctx context.Context, toPush []*model.Draft) (int, error) {
	var pushed int
	var errs []error
	for _, d := range toPush {
		if s.signingOut.Load() {
			return pushed, ErrSigningOut
		}
		if ctx.Err() != nil {
			return pushed, errors.Join(append(errs, ctx.Err())...)
		}
		d := d
		op := func() error {
			echoed, err := s.gw.SaveDraft(ctx, d)
			if err != nil {
				if syncerrs.IsIrrecoverable(err) {
					return backoff.Permanent(err)
				}
				return err
			}
			// The server echoes its persisted winner; if someone else wrote
			// a newer copy in between, adopt it.
			if echoed != nil && echoed.NewerThan(d) {
				return s.local.Save(ctx, echoed)
			}
			return nil
		}
		if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
			s.log.Warn().Err(err).Str("draft_id", d.DraftID).Msg("draft push failed; will retry next pass")
			errs = append(errs, err)
			continue
		}
		pushed++
		draftsPushed.Inc()
	}
	return pushed, errors.Join(errs...)
}

func (s *Syncer) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialBackoff
	b.MaxInterval = s.cfg.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0 // deterministic doubling
	b.MaxElapsedTime = 0
	// NewExponentialBackOff seeds its current interval from the library
	// defaults; Reset applies the configured values.
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxAttempts-1)), ctx)
}

func (s *Syncer) notify() {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, o := range observers {
		o.DraftsChanged()
	}
	notificationsTotal.Inc()
}

// merge reconciles the two draft sets with last-write-wins per draft id.
//
// It returns the remote winners that must be persisted locally and the
// drafts whose local copy won and therefore must be pushed.
func merge(local, remote []*model.Draft) (persist, toPush []*model.Draft) {
	localByID := make(map[string]*model.Draft, len(local))
	for _, d := range local {
		localByID[d.DraftID] = d
	}
	remoteByID := make(map[string]*model.Draft, len(remote))
	for _, d := range remote {
		remoteByID[d.DraftID] = d
	}

	for id, r := range remoteByID {
		l, ok := localByID[id]
		if !ok || r.NewerThan(l) {
			persist = append(persist, r)
		}
	}
	for id, l := range localByID {
		r, ok := remoteByID[id]
		if !ok || l.NewerThan(r) {
			toPush = append(toPush, l)
		}
	}
	return persist, toPush
}
