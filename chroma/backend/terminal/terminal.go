package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/backend/terminal/render"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
	"github.com/valerio/go-chroma/chroma/video"
)

// keyTimeout is how long a key counts as held after its last repeat.
// Terminals report no releases, so a key is released when its repeats stop.
const keyTimeout = 100 * time.Millisecond

// Backend renders to a terminal with tcell, using half block characters in
// true colour so two Game Boy lines fit in one row.
type Backend struct {
	screen    tcell.Screen
	config    backend.BackendConfig
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	prevLog   *slog.Logger

	mu         sync.Mutex
	eventQueue []backend.InputEvent // non joypad events and signals

	keyStates  map[action.Action]time.Time // last time each key was seen
	activeKeys map[action.Action]bool      // keys held in the previous frame

	signals chan os.Signal
	now     func() time.Time
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{now: time.Now}
}

// NewWithScreen uses screen instead of the process terminal.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen, now: time.Now}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logLevel = config.LogLevel
	if t.logLevel == nil {
		t.logLevel = new(slog.LevelVar)
	}

	// the pane keeps debug records so lowering the filter shows history
	t.logBuffer = render.NewLogBuffer(200)
	t.prevLog = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go t.handleSignals(t.signals)

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

// Update polls keys, renders frame and returns the input seen.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.joypadEvents(now)

	t.mu.Lock()
	events = append(events, t.eventQueue...)
	t.eventQueue = nil
	t.mu.Unlock()

	t.render(frame)
	t.screen.Show()
	return events, nil
}

// joypadEvents turns key repeat timestamps into press, hold and release.
func (t *Backend) joypadEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	current := make(map[action.Action]bool)

	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		current[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !current[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = current
	return events
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
		close(t.signals)
		t.signals = nil
	}
	if t.prevLog != nil {
		slog.SetDefault(t.prevLog)
		t.prevLog = nil
	}
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}

// HandleAction reacts to the actions the terminal view owns.
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug display toggled", "enabled", t.config.ShowDebug)
	}
}

func (t *Backend) handleSignals(signals <-chan os.Signal) {
	if _, ok := <-signals; !ok {
		return
	}
	t.queue(action.EmulatorQuit)
}

func (t *Backend) queue(act action.Action) {
	t.mu.Lock()
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
	t.mu.Unlock()
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}

	if !act.IsGameBoy() {
		t.queue(act)
		return
	}

	// a new direction replaces the others, there is no way to know
	// whether the previous one is still held
	if act >= action.GBDPadUp && act <= action.GBDPadRight {
		for dir := action.GBDPadUp; dir <= action.GBDPadRight; dir++ {
			delete(t.keyStates, dir)
		}
	}
	t.keyStates[act] = now
}
