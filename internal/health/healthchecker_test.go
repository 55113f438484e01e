package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f *fakePinger) HealthPing(ctx context.Context) error { return f.err }

func TestPingCheckerReflectsProbeOutcome(t *testing.T) {
	p := &fakePinger{}
	c := NewPingChecker("store", p, zerolog.Nop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Start(ctx, 10*time.Millisecond)

	waitFor(t, func() bool { return c.IsHealthy() })

	p.err = errors.New("down")
	waitFor(t, func() bool { return !c.IsHealthy() })
	cancel()
}

func TestServiceHealthAggregates(t *testing.T) {
	up := &fakePinger{}
	down := &fakePinger{err: errors.New("down")}

	cUp := NewPingChecker("a", up, zerolog.Nop(), time.Second)
	cDown := NewPingChecker("b", down, zerolog.Nop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cUp.Start(ctx, 10*time.Millisecond)
	go cDown.Start(ctx, 10*time.Millisecond)

	svc := NewServiceHealthChecker(zerolog.Nop(), cUp, cDown)
	go svc.Start(ctx, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, svc.IsHealthy(), "one unhealthy dep keeps service down")

	down.err = nil
	waitFor(t, func() bool { return svc.IsHealthy() })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
