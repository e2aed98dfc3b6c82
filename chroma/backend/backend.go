package backend

import (
	"log/slog"

	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
	"github.com/valerio/go-chroma/chroma/video"
)

// Backend represents a complete emulator platform (rendering + input + audio)
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (snapshots, debug views)
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config BackendConfig) error

	// Update renders frame, polls the platform and returns the input
	// events seen since the previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// InputEvent is an action a backend observed.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// ActionHandler is implemented by backends with their own reactions to
// emulator actions, such as toggling a debug view.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// RumbleHandler is implemented by backends that can drive a force
// feedback device. Rumble is called once per frame with the motor duty
// over that frame, from 0 (off) to 1.
type RumbleHandler interface {
	Rumble(strength float64)
}

// AudioSource is drained by backends that play sound. GetSamples returns
// interleaved stereo int16 samples at SampleRate.
type AudioSource interface {
	GetSamples(count int) []int16
}

// DebugSource returns the state shown by debug views. It may return nil.
type DebugSource func() *debug.Data

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title      string
	Scale      int
	VSync      bool
	Fullscreen bool
	ShowDebug  bool        // Backends may ignore unsupported features
	Audio      AudioSource // nil plays nothing
	SampleRate int
	Debug      DebugSource
	LogLevel   *slog.LevelVar // shared filter for backends that show logs
}
