package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
)

// fakeClock is advanced by hand so debounce windows need no sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestHandlerDebounce(t *testing.T) {
	tests := []struct {
		name   string
		act    action.Action
		typ    event.Type
		gap    time.Duration
		passes bool
	}{
		{"emulator action repeated quickly", action.EmulatorPauseToggle, event.Press, 100 * time.Millisecond, false},
		{"emulator action just inside the window", action.EmulatorPauseToggle, event.Press, DefaultDebounce - time.Millisecond, false},
		{"emulator action after the window", action.EmulatorPauseToggle, event.Press, DefaultDebounce, true},
		{"joypad button is never debounced", action.GBButtonStart, event.Press, time.Millisecond, true},
		{"release passes", action.EmulatorSnapshot, event.Release, time.Millisecond, true},
		{"hold passes", action.EmulatorSnapshot, event.Hold, time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(0, 0)}
			h := newHandler(DefaultDebounce, clock.now)
			evt := backend.InputEvent{Action: tt.act, Type: tt.typ}

			assert.True(t, h.ProcessEvent(evt), "first event always passes")
			clock.advance(tt.gap)
			assert.Equal(t, tt.passes, h.ProcessEvent(evt))
		})
	}
}

func TestHandlerTracksActionsSeparately(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := newHandler(DefaultDebounce, clock.now)

	pause := backend.InputEvent{Action: action.EmulatorPauseToggle, Type: event.Press}
	mute := backend.InputEvent{Action: action.AudioMuteToggle, Type: event.Press}

	assert.True(t, h.ProcessEvent(pause))
	assert.True(t, h.ProcessEvent(mute), "a different action is not held back")
	assert.False(t, h.ProcessEvent(pause))

	clock.advance(200 * time.Millisecond)
	assert.False(t, h.ProcessEvent(mute))

	clock.advance(200 * time.Millisecond)
	assert.True(t, h.ProcessEvent(pause))
	assert.True(t, h.ProcessEvent(mute))
}

func TestHandlerRejectedPressDoesNotExtendWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := newHandler(DefaultDebounce, clock.now)
	evt := backend.InputEvent{Action: action.EmulatorDebugToggle, Type: event.Press}

	assert.True(t, h.ProcessEvent(evt))
	clock.advance(250 * time.Millisecond)
	assert.False(t, h.ProcessEvent(evt))
	clock.advance(50 * time.Millisecond)
	assert.True(t, h.ProcessEvent(evt), "the window counts from the last accepted press")
}
