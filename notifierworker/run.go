// Package notifierworker runs the outbox-draining email worker as its own
// process so a slow mail relay never competes with request serving.
package notifierworker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/config"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/logger"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/notify"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store/postgres"
)

// Run starts the notifier worker and blocks until shutdown or error.
func Run() error {
	log := logger.New("notifier-worker")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("config")
		return err
	}

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error().Err(err).Msg("postgres open")
		return err
	}
	defer db.Close()
	st := postgres.NewWithDB(db)

	mailer := notify.NewRestyMailer(cfg.MailerURL, cfg.MailerAPIKey, cfg.MailFrom, 30*time.Second)
	w := notify.NewWorker(st, mailer, notify.Config{
		BatchSize: cfg.NotifierBatchSize,
		Interval:  time.Duration(cfg.NotifierIntervalSeconds) * time.Second,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("notifier worker exit")
		return err
	}
	return nil
}
