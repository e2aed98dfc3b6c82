//go:build ebiten

package ebitengine

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/backend/audioout"
	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
	"github.com/valerio/go-chroma/chroma/timing"
	"github.com/valerio/go-chroma/chroma/video"
)

// overlayScale is the logical resolution multiplier, large enough for the
// 7x13 debug font to be readable next to the picture.
const overlayScale = 3

// Backend runs an ebiten game loop on its own goroutine. Update hands it
// the latest frame and collects the keys it saw.
type Backend struct {
	config backend.BackendConfig

	mu        sync.Mutex
	pixels    []byte
	frame     *video.FrameBuffer // last frame, for clipboard snapshots
	events    []backend.InputEvent
	showDebug bool
	rumble    float64

	image   *ebiten.Image
	player  *audio.Player
	closing atomic.Bool
	ready   chan struct{}
	done    chan struct{}
	runErr  error

	clipboardOnce sync.Once
	clipboardOK   bool
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	b.config = config
	b.showDebug = config.ShowDebug
	b.pixels = debug.FrameImage(video.NewFrameBuffer(), 1).Pix
	b.ready = make(chan struct{})
	b.done = make(chan struct{})

	scale := config.Scale
	if scale <= 0 {
		scale = overlayScale
	}
	ebiten.SetWindowSize(video.FramebufferWidth*scale, video.FramebufferHeight*scale)
	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(config.VSync)
	ebiten.SetFullscreen(config.Fullscreen)

	if config.Audio != nil && config.SampleRate > 0 {
		player, err := audio.NewContext(config.SampleRate).NewPlayer(audioout.NewStream(config.Audio))
		if err != nil {
			slog.Warn("Audio unavailable, continuing without sound", "error", err)
		} else {
			player.SetBufferSize(50 * time.Millisecond)
			player.Play()
			b.player = player
		}
	}

	go func() {
		defer close(b.done)
		if err := ebiten.RunGame(game{b}); err != nil && !errors.Is(err, ebiten.Termination) {
			b.runErr = err
		}
	}()

	select {
	case <-b.ready:
		slog.Info("Ebiten backend initialized", "scale", scale, "audio", b.player != nil)
		return nil
	case <-b.done:
		if b.runErr == nil {
			return errors.New("ebiten exited before the first frame")
		}
		return fmt.Errorf("ebiten failed to start: %w", b.runErr)
	}
}

func (b *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	select {
	case <-b.done:
		if b.runErr != nil {
			return nil, b.runErr
		}
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
	default:
	}

	pixels := debug.FrameImage(frame, 1).Pix

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pixels = pixels
	b.frame = frame
	events := b.events
	b.events = nil
	return events, nil
}

func (b *Backend) Cleanup() error {
	if b.player != nil {
		b.player.Close()
		b.player = nil
	}
	if b.done == nil {
		return nil
	}
	b.closing.Store(true)
	select {
	case <-b.done:
	case <-time.After(time.Second):
		slog.Warn("Ebiten loop did not stop in time")
	}
	return b.runErr
}

// Rumble vibrates every connected gamepad for the next frame.
func (b *Backend) Rumble(strength float64) {
	b.mu.Lock()
	b.rumble = strength
	b.mu.Unlock()
}

// HandleAction toggles the overlay and copies snapshots to the clipboard.
func (b *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorDebugToggle:
		b.mu.Lock()
		b.showDebug = !b.showDebug
		b.mu.Unlock()
	case action.EmulatorSnapshot:
		b.copySnapshot()
	}
}

func (b *Backend) copySnapshot() {
	b.clipboardOnce.Do(func() {
		b.clipboardOK = clipboard.Init() == nil
	})
	if !b.clipboardOK {
		slog.Warn("Clipboard unavailable, snapshot not copied")
		return
	}

	b.mu.Lock()
	frame := b.frame
	b.mu.Unlock()
	if frame == nil {
		return
	}

	data, err := debug.PNGBytes(frame, 1)
	if err != nil {
		slog.Error("Failed to encode snapshot", "error", err)
		return
	}
	clipboard.Write(clipboard.FmtImage, data)
	slog.Info("Snapshot copied to clipboard")
}

// game adapts the backend to ebiten.Game.
type game struct {
	b *Backend
}

func (g game) Update() error {
	b := g.b
	if b.closing.Load() {
		return ebiten.Termination
	}

	var events []backend.InputEvent
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		if act, ok := mapKeyName(key.String()); ok {
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		if act, ok := mapKeyName(key.String()); ok {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	b.mu.Lock()
	b.events = append(b.events, events...)
	strength := b.rumble
	b.rumble = 0
	b.mu.Unlock()

	if strength > 0 {
		opts := &ebiten.VibrateGamepadOptions{
			Duration:        timing.FrameDuration(),
			StrongMagnitude: strength,
			WeakMagnitude:   strength,
		}
		for _, id := range ebiten.AppendGamepadIDs(nil) {
			ebiten.VibrateGamepad(id, opts)
		}
	}
	return nil
}

func (g game) Draw(screen *ebiten.Image) {
	b := g.b
	if b.image == nil {
		b.image = ebiten.NewImage(video.FramebufferWidth, video.FramebufferHeight)
	}

	b.mu.Lock()
	b.image.WritePixels(b.pixels)
	showDebug := b.showDebug
	b.mu.Unlock()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(overlayScale, overlayScale)
	screen.DrawImage(b.image, op)

	if showDebug && b.config.Debug != nil {
		drawOverlay(screen, b.config.Debug())
	}

	select {
	case <-b.ready:
	default:
		close(b.ready)
	}
}

func (g game) Layout(_, _ int) (int, int) {
	return video.FramebufferWidth * overlayScale, video.FramebufferHeight * overlayScale
}

func drawOverlay(screen *ebiten.Image, data *debug.Data) {
	if data == nil || data.CPU == nil {
		return
	}
	cpu := data.CPU
	lines := []string{
		fmt.Sprintf("PC %04X SP %04X  %s", cpu.PC, cpu.SP, cpu.Flags),
		fmt.Sprintf("A %02X BC %02X%02X DE %02X%02X HL %02X%02X", cpu.A, cpu.B, cpu.C, cpu.D, cpu.E, cpu.H, cpu.L),
		fmt.Sprintf("%s LY %d %s", data.Mode, data.Line, data.Model),
		fmt.Sprintf("FPS %.1f", ebiten.ActualFPS()),
	}
	if data.Fault != nil {
		lines = append(lines, data.Fault.Error())
	}

	shadow := color.RGBA{0, 0, 0, 0xC0}
	fg := color.RGBA{0xF0, 0xF0, 0x60, 0xFF}
	for i, line := range lines {
		y := 14 + i*14
		text.Draw(screen, line, basicfont.Face7x13, 5, y+1, shadow)
		text.Draw(screen, line, basicfont.Face7x13, 4, y, fg)
	}
}
