package client

// Functional options applied by New. Options must be deterministic and
// side-effect free.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/localstore"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/syncer"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true. Do not enable in production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport, log: c.log}
		}
		return nil
	}
}

// WithLocalStore injects a draft store. Without it the client keeps drafts
// in memory only, which loses them when the process exits.
func WithLocalStore(s localstore.Store) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("local store must not be nil")
		}
		c.local = s
		return nil
	}
}

// WithLocalStorePath opens (creating if needed) a SQLite draft store at path.
func WithLocalStorePath(path string) Option {
	return func(c *Client) error {
		s, err := localstore.OpenSQLite(path)
		if err != nil {
			return err
		}
		c.local = s
		return nil
	}
}

// WithSyncConfig overrides the sync loop's interval and retry tuning.
func WithSyncConfig(cfg syncer.Config) Option {
	return func(c *Client) error {
		c.syncCfg = cfg
		return nil
	}
}

// WithLogger sets the SDK's logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}
