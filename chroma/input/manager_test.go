package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
)

type press struct {
	act     action.Action
	pressed bool
}

type recorder struct {
	calls []press
}

func (r *recorder) HandleAction(act action.Action, pressed bool) {
	r.calls = append(r.calls, press{act, pressed})
}

func TestManagerForwardsJoypad(t *testing.T) {
	target := &recorder{}
	m := NewManager(target)

	m.Dispatch([]backend.InputEvent{
		{Action: action.GBButtonA, Type: event.Press},
		{Action: action.GBButtonA, Type: event.Release},
		{Action: action.GBButtonA, Type: event.Press},
		{Action: action.GBDPadLeft, Type: event.Hold},
	})

	assert.Equal(t, []press{
		{action.GBButtonA, true},
		{action.GBButtonA, false},
		{action.GBButtonA, true},
	}, target.calls)
}

func TestManagerCallbacks(t *testing.T) {
	target := &recorder{}
	m := NewManager(target)

	quits, pauses := 0, 0
	m.On(action.EmulatorQuit, func() { quits++ })
	m.On(action.EmulatorPauseToggle, func() { pauses++ })
	m.On(action.EmulatorPauseToggle, func() { pauses++ })

	m.Dispatch([]backend.InputEvent{
		{Action: action.EmulatorPauseToggle, Type: event.Press},
		{Action: action.EmulatorPauseToggle, Type: event.Release},
		{Action: action.EmulatorPauseToggle, Type: event.Press}, // debounced
		{Action: action.EmulatorQuit, Type: event.Press},
	})

	assert.Equal(t, 1, quits)
	assert.Equal(t, 2, pauses, "both callbacks run once")
	assert.Empty(t, target.calls, "emulator actions never reach the joypad")
}

func TestManagerUnhandledAction(t *testing.T) {
	m := NewManager(nil)
	assert.NotPanics(t, func() {
		m.Trigger(action.EmulatorSnapshot, event.Press)
		m.Trigger(action.GBButtonStart, event.Press)
	})
}

func TestDefaultKeyMap(t *testing.T) {
	act, ok := GetDefaultMapping("z")
	assert.True(t, ok)
	assert.Equal(t, action.GBButtonA, act)

	act, ok = GetDefaultMapping("F9")
	assert.True(t, ok)
	assert.Equal(t, action.EmulatorSnapshot, act)

	_, ok = GetDefaultMapping("F13")
	assert.False(t, ok)

	for key, act := range DefaultKeyMap {
		assert.NotContains(t, act.String(), "Action(", "key %q", key)
	}
}
