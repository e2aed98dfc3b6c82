//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/display"
	"github.com/valerio/go-chroma/chroma/input"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
	"github.com/valerio/go-chroma/chroma/video"
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	audio    *audioQueue
	config   backend.BackendConfig
	scale    int32
	events   []backend.InputEvent
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	s.scale = int32(config.Scale)
	if s.scale <= 0 {
		s.scale = display.DefaultPixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE)
	if config.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	window, err := sdl.CreateWindow(config.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*s.scale, video.FramebufferHeight*s.scale, flags)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if config.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer
	renderer.SetLogicalSize(video.FramebufferWidth, video.FramebufferHeight)

	// RGBA8888 is a packed native endian uint32, the frame buffer layout
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth, video.FramebufferHeight)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	if config.Audio != nil {
		if s.audio, err = openAudio(config.Audio, config.SampleRate); err != nil {
			slog.Warn("Audio unavailable, continuing without sound", "error", err)
		}
	}

	slog.Info("SDL2 backend initialized", "scale", s.scale, "audio", s.audio != nil)
	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	s.events = s.events[:0]
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		s.handleEvent(e)
	}

	if err := s.renderFrame(frame); err != nil {
		return nil, err
	}
	if s.audio != nil {
		s.audio.fill()
	}

	events := make([]backend.InputEvent, len(s.events))
	copy(events, s.events)
	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	if s.audio != nil {
		s.audio.close()
		s.audio = nil
	}
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	if s.renderer != nil {
		s.renderer.Destroy()
		s.renderer = nil
	}
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	sdl.Quit()
	return nil
}

// HandleAction toggles the sprite overlay.
func (s *Backend) HandleAction(act action.Action) {
	if act == action.EmulatorDebugToggle {
		s.config.ShowDebug = !s.config.ShowDebug
		slog.Info("Sprite overlay toggled", "enabled", s.config.ShowDebug)
	}
}

func (s *Backend) handleEvent(e sdl.Event) {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		s.push(action.EmulatorQuit, event.Press)

	case *sdl.KeyboardEvent:
		act, ok := input.GetDefaultMapping(keyName(e.Keysym.Sym))
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYUP:
			s.push(act, event.Release)
		case e.Repeat != 0:
			s.push(act, event.Hold)
		default:
			s.push(act, event.Press)
		}
	}
}

func (s *Backend) push(act action.Action, typ event.Type) {
	s.events = append(s.events, backend.InputEvent{Action: act, Type: typ})
}

// keyName converts SDL key names to the names used by the default map.
func keyName(key sdl.Keycode) string {
	switch key {
	case sdl.K_RETURN:
		return "Enter"
	case sdl.K_BACKSPACE:
		return "Backspace"
	case sdl.K_LSHIFT, sdl.K_RSHIFT:
		return "Shift"
	case sdl.K_SPACE:
		return "Space"
	}

	name := sdl.GetKeyName(key)
	if len([]rune(name)) == 1 {
		return strings.ToLower(name)
	}
	return name
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	pixels := frame.ToSlice()
	if err := s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*display.RGBABytesPerPixel); err != nil {
		return fmt.Errorf("update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	if s.config.ShowDebug && s.config.Debug != nil {
		s.drawSprites(s.config.Debug())
	}
	s.renderer.Present()
	return nil
}

// drawSprites outlines every on screen object, brighter for the ones
// covering the current line.
func (s *Backend) drawSprites(data *debug.Data) {
	if data == nil || data.OAM == nil {
		return
	}
	for _, sprite := range data.OAM.Sprites {
		if sprite.X <= -8 || sprite.X >= video.FramebufferWidth || sprite.Y <= -sprite.Height || sprite.Y >= video.FramebufferHeight {
			continue
		}
		if sprite.IsVisible {
			s.renderer.SetDrawColor(0xFF, 0x40, 0x40, 0xFF)
		} else {
			s.renderer.SetDrawColor(0x40, 0xC0, 0x40, 0xFF)
		}
		s.renderer.DrawRect(&sdl.Rect{X: int32(sprite.X), Y: int32(sprite.Y), W: 8, H: int32(sprite.Height)})
	}
}
