package timing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valerio/go-chroma/chroma/video"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// Kind selects a Limiter implementation.
type Kind string

const (
	KindNone     Kind = "none"
	KindTicker   Kind = "ticker"
	KindAdaptive Kind = "adaptive"
)

var ErrUnknownKind = errors.New("unknown frame limiter")

// ParseKind accepts the limiter names used on the command line.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(name)); k {
	case KindNone, KindTicker, KindAdaptive:
		return k, nil
	case "":
		return KindAdaptive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// New builds the limiter for kind, falling back to no limiting for
// unknown kinds.
func New(kind Kind) Limiter {
	switch kind {
	case KindTicker:
		return NewTickerLimiter()
	case KindAdaptive:
		return NewAdaptiveLimiter()
	default:
		return NewNoOpLimiter()
	}
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// CPUFrequency is the single speed machine clock. Double speed doubles the
// cycles per frame, not the frame rate.
const CPUFrequency = 4194304

// TargetFPS calculates the exact Game Boy frame rate.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(video.CyclesPerFrame)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}
