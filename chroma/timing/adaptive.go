package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter sleeps for most of the frame and spins for the last
// stretch, nudging its schedule when it drifts.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
	windowStart     time.Time

	now func() time.Time
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	a := &AdaptiveLimiter{
		targetFrameTime: FrameDuration(),
		now:             time.Now,
	}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	sleepTime := a.nextFrameTime.Sub(now)

	switch {
	case sleepTime >= 2*time.Millisecond:
		time.Sleep(sleepTime - time.Millisecond)
		a.spinUntil(a.nextFrameTime)
	case sleepTime > 0:
		a.spinUntil(a.nextFrameTime)
	case sleepTime < -5*time.Millisecond:
		// too far behind to catch up, start a new schedule
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%60 == 0 {
		a.correctDrift()
	}
}

func (a *AdaptiveLimiter) spinUntil(deadline time.Time) {
	for a.now().Before(deadline) {
	}
}

func (a *AdaptiveLimiter) correctDrift() {
	actual := a.now()
	drift := actual.Sub(a.nextFrameTime.Add(-a.targetFrameTime))
	if drift.Abs() > 10*time.Millisecond {
		a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
	}

	elapsed := actual.Sub(a.windowStart)
	a.windowStart = actual
	if elapsed > 0 {
		slog.Debug("Frame pacing",
			"fps", 60*float64(time.Second)/float64(elapsed),
			"drift_ms", drift.Milliseconds())
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = a.now()
	a.windowStart = a.nextFrameTime
	a.frameCounter = 0
}

// Frames returns how many frames were paced since the last Reset.
func (a *AdaptiveLimiter) Frames() int64 {
	return a.frameCounter
}
