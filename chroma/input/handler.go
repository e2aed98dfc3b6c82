package input

import (
	"time"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
)

// DefaultDebounce is the minimum gap between two accepted presses of the
// same emulator action.
const DefaultDebounce = 300 * time.Millisecond

// Handler debounces emulator actions. Key repeat from terminals and
// window systems would otherwise toggle pause or debug views several
// times per keystroke.
type Handler struct {
	accepted map[action.Action]time.Time
	delay    time.Duration
	now      func() time.Time
}

func NewHandler() *Handler {
	return newHandler(DefaultDebounce, time.Now)
}

func newHandler(delay time.Duration, now func() time.Time) *Handler {
	return &Handler{
		accepted: make(map[action.Action]time.Time),
		delay:    delay,
		now:      now,
	}
}

// ProcessEvent reports whether evt should be handled. Only presses of
// emulator actions are debounced; joypad buttons, releases and holds
// always pass.
func (h *Handler) ProcessEvent(evt backend.InputEvent) bool {
	if evt.Type != event.Press || evt.Action.IsGameBoy() {
		return true
	}

	now := h.now()
	if last, ok := h.accepted[evt.Action]; ok && now.Sub(last) < h.delay {
		return false
	}
	h.accepted[evt.Action] = now
	return true
}
