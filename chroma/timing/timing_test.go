package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetFPS(t *testing.T) {
	assert.InDelta(t, 59.7275, TargetFPS(), 0.001)
	assert.InDelta(t, 16742, FrameDuration().Microseconds(), 1)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"none", KindNone},
		{"Ticker", KindTicker},
		{"ADAPTIVE", KindAdaptive},
		{"", KindAdaptive},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseKind("vsync")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &noOpLimiter{}, New(KindNone))
	assert.IsType(t, &AdaptiveLimiter{}, New(KindAdaptive))

	ticker := New(KindTicker)
	require.IsType(t, &TickerLimiter{}, ticker)
	ticker.(*TickerLimiter).Stop()
}

func TestNoOpLimiterDoesNotBlock(t *testing.T) {
	limiter := NewNoOpLimiter()
	start := time.Now()
	for i := 0; i < 1000; i++ {
		limiter.WaitForNextFrame()
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAdaptiveLimiterPaces(t *testing.T) {
	limiter := NewAdaptiveLimiter()
	start := time.Now()
	for i := 0; i < 3; i++ {
		limiter.WaitForNextFrame()
	}
	// the first frame is due immediately
	assert.GreaterOrEqual(t, time.Since(start), 2*FrameDuration())
	assert.Equal(t, int64(3), limiter.Frames())

	limiter.Reset()
	assert.Zero(t, limiter.Frames())
}

func TestAdaptiveLimiterSkipsWhenBehind(t *testing.T) {
	limiter := NewAdaptiveLimiter()
	now := time.Now()
	limiter.now = func() time.Time { return now }
	limiter.nextFrameTime = now.Add(-time.Second)

	limiter.WaitForNextFrame()
	assert.Equal(t, now.Add(limiter.targetFrameTime), limiter.nextFrameTime)
}

func TestTickerLimiterCountsLateFrames(t *testing.T) {
	limiter := newTickerLimiter(5 * time.Millisecond)
	defer limiter.Stop()

	limiter.WaitForNextFrame()
	limiter.WaitForNextFrame()

	time.Sleep(30 * time.Millisecond)
	limiter.WaitForNextFrame() // buffered tick, delivered at once
	limiter.WaitForNextFrame()

	assert.Equal(t, uint64(4), limiter.Frames())
	assert.GreaterOrEqual(t, limiter.Late(), uint64(1))
}
