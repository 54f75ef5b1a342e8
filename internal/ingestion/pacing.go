package ingestion

import (
	"context"
	"time"
)

// Pacing defaults.
const (
	DefaultSettleDelay = 5 * time.Second
	DefaultMinWait     = 1 * time.Second
)

// Pacer delays a cycle until the candle after the watermark is final upstream.
type Pacer struct {
	settleDelay time.Duration
	minWait     time.Duration
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error
}

// PacerOptions configures a Pacer. Zero values take the defaults.
type PacerOptions struct {
	SettleDelay time.Duration
	MinWait     time.Duration
	Now         func() time.Time
	Sleep       func(context.Context, time.Duration) error
}

// NewPacer creates a pacer.
func NewPacer(opts PacerOptions) *Pacer {
	p := &Pacer{
		settleDelay: opts.SettleDelay,
		minWait:     opts.MinWait,
		now:         opts.Now,
		sleep:       opts.Sleep,
	}
	if p.settleDelay == 0 {
		p.settleDelay = DefaultSettleDelay
	}
	if p.minWait == 0 {
		p.minWait = DefaultMinWait
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p
}

// SafeTime is the earliest time the candle following watermark can be read
// as closed: the watermark's minute plus two intervals plus the settle delay.
func (p *Pacer) SafeTime(watermark time.Time, interval time.Duration) time.Time {
	return watermark.Truncate(time.Minute).Add(2 * interval).Add(p.settleDelay)
}

// Wait sleeps until SafeTime, or MinWait if that moment has passed.
// Without a watermark it returns immediately. It returns the duration slept.
func (p *Pacer) Wait(ctx context.Context, watermark time.Time, ok bool, interval time.Duration) (time.Duration, error) {
	if !ok {
		return 0, nil
	}

	d := p.minWait
	target := p.SafeTime(watermark, interval)
	if now := p.now(); now.Before(target) {
		d = target.Sub(now)
	}

	if err := p.sleep(ctx, d); err != nil {
		return 0, err
	}
	return d, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
