package input

import (
	"log/slog"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
)

// Target receives joypad presses and releases.
type Target interface {
	HandleAction(act action.Action, pressed bool)
}

// Manager routes backend events: joypad buttons go straight to the
// target, emulator actions run their registered callbacks once per
// debounced press.
type Manager struct {
	target   Target
	handler  *Handler
	handlers map[action.Action][]func()
}

func NewManager(target Target) *Manager {
	return &Manager{
		target:   target,
		handler:  NewHandler(),
		handlers: make(map[action.Action][]func()),
	}
}

// On registers a callback for presses of act.
func (m *Manager) On(act action.Action, callback func()) {
	m.handlers[act] = append(m.handlers[act], callback)
}

// Dispatch handles a batch of events in order.
func (m *Manager) Dispatch(events []backend.InputEvent) {
	for _, evt := range events {
		m.Trigger(evt.Action, evt.Type)
	}
}

// Trigger handles a single action.
func (m *Manager) Trigger(act action.Action, typ event.Type) {
	if !m.handler.ProcessEvent(backend.InputEvent{Action: act, Type: typ}) {
		return
	}

	if act.IsGameBoy() {
		if m.target == nil || typ == event.Hold {
			return
		}
		m.target.HandleAction(act, typ == event.Press)
		return
	}

	if typ != event.Press {
		return
	}
	callbacks := m.handlers[act]
	if len(callbacks) == 0 {
		slog.Debug("Unhandled action", "action", act)
		return
	}
	for _, callback := range callbacks {
		callback()
	}
}
