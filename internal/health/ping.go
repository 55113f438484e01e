package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger is the minimal probe a dependency must expose.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// PingChecker polls a HealthPinger on an interval and caches the result.
type PingChecker struct {
	name    string
	pinger  HealthPinger
	log     zerolog.Logger
	timeout time.Duration
	healthy atomic.Int32
}

func NewPingChecker(name string, pinger HealthPinger, log zerolog.Logger, timeout time.Duration) *PingChecker {
	return &PingChecker{name: name, pinger: pinger, log: log, timeout: timeout}
}

func (c *PingChecker) Name() string    { return c.name }
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.pinger.HealthPing(pctx); err != nil {
			if c.healthy.Swap(0) == 1 {
				c.log.Error().Err(err).Str("component", c.name).Msg("health probe failed")
			}
			return
		}
		if c.healthy.Swap(1) == 0 {
			c.log.Info().Str("component", c.name).Msg("health probe ok")
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
