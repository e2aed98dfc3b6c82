package timing

import (
	"log/slog"
	"time"
)

// TickerLimiter paces frames off a time.Ticker. The ticker channel holds a
// single tick, so a frame that overruns is followed by one immediate frame
// rather than a burst.
type TickerLimiter struct {
	ticker *time.Ticker
	period time.Duration

	lastTick time.Time
	frames   uint64
	late     uint64
}

func NewTickerLimiter() *TickerLimiter {
	return newTickerLimiter(FrameDuration())
}

func newTickerLimiter(period time.Duration) *TickerLimiter {
	return &TickerLimiter{
		ticker: time.NewTicker(period),
		period: period,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	tick := <-t.ticker.C
	t.frames++

	// a gap of more than one and a half periods means ticks were dropped
	if !t.lastTick.IsZero() && tick.Sub(t.lastTick) > t.period*3/2 {
		t.late++
		slog.Debug("Frame ticks dropped", "frame", t.frames, "gap", tick.Sub(t.lastTick))
	}
	t.lastTick = tick
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
	t.lastTick = time.Time{}
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}

// Frames returns how many frames were paced so far.
func (t *TickerLimiter) Frames() uint64 { return t.frames }

// Late returns how many frames started after one or more dropped ticks.
func (t *TickerLimiter) Late() uint64 { return t.late }
