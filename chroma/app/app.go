package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-chroma/chroma"
	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/input"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/timing"
)

// Mixer is the part of the sound unit the channel shortcuts drive.
type Mixer interface {
	SetMuted(muted bool)
	Muted() bool
	ToggleChannel(channel int)
	SoloChannel(channel int)
	UnmuteAll()
}

// Options configures the run loop.
type Options struct {
	// ROMName prefixes snapshot file names.
	ROMName       string
	SnapshotDir   string
	SnapshotScale int

	// LogLevel is adjusted by the log level shortcuts. May be nil.
	LogLevel *slog.LevelVar

	// Mixer receives the audio shortcuts. May be nil.
	Mixer Mixer

	// StopOnFault ends Run as soon as the processor faults instead of
	// pausing on the faulting frame.
	StopOnFault bool
}

// App drives an emulator through a backend: run a frame, present it,
// route the input the backend collected.
type App struct {
	emu     chroma.Emulator
	backend backend.Backend
	input   *input.Manager
	opts    Options

	running bool
	paused  bool
	step    bool
	fault   error
	frames  uint64

	sleep func(time.Duration)
}

func New(emu chroma.Emulator, b backend.Backend, opts Options) *App {
	a := &App{
		emu:     emu,
		backend: b,
		input:   input.NewManager(emu),
		opts:    opts,
		sleep:   time.Sleep,
	}
	a.registerActions()
	return a
}

func (a *App) registerActions() {
	a.input.On(action.EmulatorQuit, a.Stop)
	a.input.On(action.EmulatorPauseToggle, a.TogglePause)
	a.input.On(action.EmulatorStepFrame, a.StepFrame)
	a.input.On(action.EmulatorSnapshot, a.snapshot)

	a.input.On(action.DebugLogLevelIncrease, func() { a.shiftLogLevel(-1) })
	a.input.On(action.DebugLogLevelDecrease, func() { a.shiftLogLevel(1) })

	if mixer := a.opts.Mixer; mixer != nil {
		a.input.On(action.AudioMuteToggle, func() {
			mixer.SetMuted(!mixer.Muted())
			slog.Info("Audio", "muted", mixer.Muted())
		})
		a.input.On(action.AudioUnmuteAll, mixer.UnmuteAll)
		for _, act := range []action.Action{
			action.AudioToggleChannel1, action.AudioToggleChannel2,
			action.AudioToggleChannel3, action.AudioToggleChannel4,
		} {
			ch := act.Channel()
			a.input.On(act, func() { mixer.ToggleChannel(ch) })
		}
		for _, act := range []action.Action{
			action.AudioSoloChannel1, action.AudioSoloChannel2,
			action.AudioSoloChannel3, action.AudioSoloChannel4,
		} {
			ch := act.Channel()
			a.input.On(act, func() { mixer.SoloChannel(ch) })
		}
	}

	// backends that draw their own overlays or own a clipboard see the
	// actions that concern them
	if handler, ok := a.backend.(backend.ActionHandler); ok {
		for _, act := range []action.Action{action.EmulatorDebugToggle, action.EmulatorSnapshot} {
			act := act
			a.input.On(act, func() { handler.HandleAction(act) })
		}
	}
}

// Run initializes the backend and loops until a quit action or the
// backend stops. It returns the processor fault if one happened.
func (a *App) Run(cfg backend.BackendConfig) error {
	if cfg.Debug == nil {
		cfg.Debug = a.DebugData
	}
	if cfg.LogLevel == nil {
		cfg.LogLevel = a.opts.LogLevel
	}

	if err := a.backend.Init(cfg); err != nil {
		return fmt.Errorf("init backend: %w", err)
	}

	a.running = true
	err := a.loop()
	if cerr := a.backend.Cleanup(); cerr != nil {
		slog.Warn("Backend cleanup failed", "error", cerr)
	}
	if err != nil {
		return err
	}

	slog.Info("Stopped", "frames", a.frames)
	return a.fault
}

func (a *App) loop() error {
	for a.running {
		a.advance()

		events, err := a.backend.Update(a.emu.GetCurrentFrame())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}
		a.input.Dispatch(events)
	}
	return nil
}

func (a *App) advance() {
	if a.fault != nil || (a.paused && !a.step) {
		a.sleep(timing.FrameDuration())
		return
	}
	a.step = false

	if err := a.emu.RunUntilFrame(); err != nil {
		a.fault = err
		slog.Error("Emulation stopped", "error", err, "frame", a.frames)
		if a.opts.StopOnFault {
			a.running = false
		}
		return
	}
	a.frames++
	a.forwardRumble()
}

// rumbleSource is implemented by emulators with a rumble cartridge.
type rumbleSource interface {
	TakeRumble() float64
}

// forwardRumble drains the motor accumulator once per frame, so it never
// grows across frames even when the backend cannot vibrate.
func (a *App) forwardRumble() {
	src, ok := a.emu.(rumbleSource)
	if !ok {
		return
	}
	strength := src.TakeRumble()
	if h, ok := a.backend.(backend.RumbleHandler); ok {
		h.Rumble(strength)
	}
}

func (a *App) Stop() { a.running = false }

func (a *App) TogglePause() {
	a.paused = !a.paused
	slog.Info("Pause", "paused", a.paused)
}

// StepFrame runs a single frame while paused.
func (a *App) StepFrame() {
	if !a.paused {
		return
	}
	a.step = true
}

func (a *App) Paused() bool   { return a.paused }
func (a *App) Running() bool  { return a.running }
func (a *App) Frames() uint64 { return a.frames }
func (a *App) Fault() error   { return a.fault }

// DebugData is the backend debug source: emulator state plus the run
// loop's own.
func (a *App) DebugData() *debug.Data {
	data := a.emu.ExtractDebugData()
	if data == nil {
		return nil
	}
	switch {
	case a.paused && a.step:
		data.DebuggerState = debug.DebuggerStepFrame
	case a.paused || a.fault != nil:
		data.DebuggerState = debug.DebuggerPaused
	default:
		data.DebuggerState = debug.DebuggerRunning
	}
	return data
}

func (a *App) snapshot() {
	path, err := debug.TakeSnapshot(a.emu.GetCurrentFrame(), a.opts.ROMName, a.opts.SnapshotDir, a.opts.SnapshotScale)
	if err != nil {
		slog.Error("Snapshot failed", "error", err)
		return
	}
	slog.Debug("Snapshot", "path", path)
}

var logLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// shiftLogLevel moves the level by delta steps, negative being more
// verbose, clamped to the known levels.
func (a *App) shiftLogLevel(delta int) {
	if a.opts.LogLevel == nil {
		return
	}

	current := a.opts.LogLevel.Level()
	idx := 0
	for i, level := range logLevels {
		if current >= level {
			idx = i
		}
	}
	idx = min(max(idx+delta, 0), len(logLevels)-1)

	a.opts.LogLevel.Set(logLevels[idx])
	slog.Info("Log level", "level", logLevels[idx])
}
