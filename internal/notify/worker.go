package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

// Config controls batch size and polling cadence.
type Config struct {
	BatchSize int
	Interval  time.Duration
}

// Worker drains the notification outbox through a Mailer. Failed sends stay
// pending; the store pushes their next attempt out exponentially, so a dead
// relay never hot-loops the worker.
type Worker struct {
	store  store.Store
	mailer Mailer
	cfg    Config
	log    zerolog.Logger
}

func NewWorker(s store.Store, m Mailer, cfg Config, log zerolog.Logger) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	return &Worker{store: s, mailer: m, cfg: cfg, log: log}
}

// Run starts the polling loop until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Int("batch", w.cfg.BatchSize).Dur("interval", w.cfg.Interval).Msg("notifier worker starting")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("notifier worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("notifier processOnce")
			}
		}
	}
}

// ProcessOnce leases one batch and attempts delivery for each row.
func (w *Worker) ProcessOnce(ctx context.Context) error {
	rows, err := w.store.Outbox().LeaseBatch(ctx, w.cfg.BatchSize)
	if err != nil {
		return err
	}
	for _, n := range rows {
		if err := w.mailer.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
			w.log.Warn().Err(err).Int64("id", n.ID).Str("to", n.Recipient).Msg("send failed")
			if e := w.store.Outbox().MarkFailed(ctx, n.ID); e != nil {
				w.log.Error().Err(e).Int64("id", n.ID).Msg("markFailed error")
			}
			continue
		}
		if e := w.store.Outbox().MarkDone(ctx, n.ID); e != nil {
			w.log.Error().Err(e).Int64("id", n.ID).Msg("markDone error")
		}
	}
	return nil
}
