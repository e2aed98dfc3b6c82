package chroma

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valerio/go-chroma/chroma/audio"
	"github.com/valerio/go-chroma/chroma/cpu"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/memory"
	"github.com/valerio/go-chroma/chroma/serial"
	"github.com/valerio/go-chroma/chroma/timing"
	"github.com/valerio/go-chroma/chroma/video"
)

// GameBoy wires the processor, bus, display and sound unit into a machine.
type GameBoy struct {
	cpu     *cpu.CPU
	mem     *memory.MMU
	display *video.Display
	apu     *audio.APU

	port     serial.Port
	savePath string
	limiter  timing.Limiter
	cancel   context.CancelFunc

	frames uint64
}

type options struct {
	model    memory.Model
	auto     bool
	port     serial.Port
	savePath string
	now      func() time.Time
}

// Option customizes a GameBoy built with New.
type Option func(*options)

// WithModel forces the hardware model instead of picking it from the
// cartridge header.
func WithModel(model memory.Model) Option {
	return func(o *options) { o.model, o.auto = model, false }
}

// WithSerial plugs a device in the link port.
func WithSerial(port serial.Port) Option {
	return func(o *options) { o.port = port }
}

// WithSavePath loads battery backed RAM from path, and Save writes it back.
func WithSavePath(path string) Option {
	return func(o *options) { o.savePath = path }
}

// New builds a machine for a ROM image. With a boot image the machine
// starts at 0x0000 running it, otherwise in the state it leaves behind.
func New(rom, boot []byte, opts ...Option) (*GameBoy, error) {
	o := options{auto: true, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	cart, err := memory.NewCartridgeWithData(rom)
	if err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}

	model := o.model
	switch {
	case !o.auto:
	case len(boot) > 0:
		if model, err = memory.ModelForBoot(boot); err != nil {
			return nil, err
		}
	case cart.SupportsColor():
		model = memory.ModelCGB
	default:
		model = memory.ModelDMG
	}

	mem, err := memory.NewWithCartridge(cart, model, boot)
	if err != nil {
		return nil, fmt.Errorf("create bus: %w", err)
	}

	gb := &GameBoy{
		mem:      mem,
		display:  video.New(mem),
		apu:      audio.New(),
		port:     o.port,
		savePath: o.savePath,
		limiter:  timing.NewNoOpLimiter(),
	}
	gb.cpu = cpu.New(mem, gb.display, cpuModel(model, cart))
	mem.AttachAudio(gb.apu)
	if gb.port != nil {
		mem.AttachSerial(gb.port)
	}

	if len(boot) > 0 {
		gb.cpu.Reset(false)
		gb.apu.Reset(false)
	}

	if err := gb.loadSave(o.now()); err != nil {
		return nil, err
	}

	slog.Info("Cartridge loaded",
		"title", cart.Title(),
		"model", model,
		"mbc", cart.Kind(),
		"rom_banks", cart.ROMBanks(),
		"ram_banks", cart.RAMBanks(),
		"boot_rom", len(boot) > 0)
	return gb, nil
}

func cpuModel(model memory.Model, cart *memory.Cartridge) cpu.Model {
	switch {
	case model == memory.ModelDMG:
		return cpu.DMG
	case cart.SupportsColor():
		return cpu.CGB
	default:
		return cpu.CGBCompat
	}
}

// NewWithFile loads a ROM from disk and builds a machine for it following
// cfg: model, boot image, save file and link port.
func NewWithFile(path string, cfg Config) (*GameBoy, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rom: %w", err)
	}
	slog.Info("Loaded ROM", "path", path, "bytes", len(rom))

	var boot []byte
	if cfg.BootROM != "" {
		if boot, err = os.ReadFile(cfg.BootROM); err != nil {
			return nil, fmt.Errorf("read boot rom: %w", err)
		}
	}

	model, auto, err := ParseModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	savePath := cfg.SavePath
	if savePath == "" {
		savePath = strings.TrimSuffix(path, filepath.Ext(path)) + ".sav"
	}

	opts := []Option{WithSavePath(savePath)}
	if !auto {
		opts = append(opts, WithModel(model))
	}

	ctx, cancel := context.WithCancel(context.Background())
	port, err := openSerial(ctx, cfg.Serial)
	if err != nil {
		cancel()
		return nil, err
	}
	if port != nil {
		opts = append(opts, WithSerial(port))
	}

	gb, err := New(rom, boot, opts...)
	if err != nil {
		cancel()
		if c, ok := port.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	gb.cancel = cancel
	if !cfg.Audio {
		gb.apu.SetMuted(true)
	}
	if cfg.FrameLimit {
		gb.SetFrameLimiter(timing.New(timing.KindAdaptive))
	}
	return gb, nil
}

func openSerial(ctx context.Context, cfg SerialConfig) (serial.Port, error) {
	switch strings.ToLower(cfg.Mode) {
	case SerialLog:
		return serial.NewLogSink(), nil
	case SerialHost:
		return serial.Host(ctx, cfg.Address, slog.Default())
	case SerialJoin:
		return serial.Join(ctx, cfg.Address, slog.Default())
	case SerialNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSerialMode, cfg.Mode)
	}
}

func (gb *GameBoy) loadSave(now time.Time) error {
	if gb.savePath == "" || !gb.mem.HasSaveData() {
		return nil
	}

	data, err := os.ReadFile(gb.savePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read save: %w", err)
	}
	if err := gb.mem.LoadSaveData(data, now); err != nil {
		return fmt.Errorf("load save %s: %w", gb.savePath, err)
	}
	slog.Info("Loaded save", "path", gb.savePath, "bytes", len(data))
	return nil
}

// Step runs a single instruction and returns the cycles it took, 0 once
// the processor has faulted.
func (gb *GameBoy) Step() int {
	return gb.cpu.Step()
}

// RunUntilFrame runs until the display completes a frame, or for a frame's
// worth of cycles while the LCD is off. It returns the processor fault
// when execution cannot continue.
func (gb *GameBoy) RunUntilFrame() error {
	budget := video.CyclesPerFrame
	if gb.mem.DoubleSpeed() {
		budget *= 2
	}

	start := gb.display.FrameCount()
	for elapsed := 0; gb.display.FrameCount() == start; {
		cycles := gb.cpu.Step()
		if cycles == 0 {
			return gb.cpu.Fault()
		}
		elapsed += cycles
		if !gb.display.Enabled() && elapsed >= budget {
			break
		}
	}

	gb.frames++
	gb.limiter.WaitForNextFrame()
	return nil
}

// GetCurrentFrame returns a copy of the last completed frame.
func (gb *GameBoy) GetCurrentFrame() *video.FrameBuffer {
	return gb.display.GetFrame().Clone()
}

var joypadKeys = map[action.Action]memory.JoypadKey{
	action.GBButtonA:      memory.JoypadA,
	action.GBButtonB:      memory.JoypadB,
	action.GBButtonStart:  memory.JoypadStart,
	action.GBButtonSelect: memory.JoypadSelect,
	action.GBDPadUp:       memory.JoypadUp,
	action.GBDPadDown:     memory.JoypadDown,
	action.GBDPadLeft:     memory.JoypadLeft,
	action.GBDPadRight:    memory.JoypadRight,
}

// HandleAction presses or releases a Game Boy button. Emulator actions
// are left to the host.
func (gb *GameBoy) HandleAction(act action.Action, pressed bool) {
	key, ok := joypadKeys[act]
	if !ok {
		return
	}
	if pressed {
		gb.mem.HandleKeyPress(key)
	} else {
		gb.mem.HandleKeyRelease(key)
	}
}

// Save writes battery backed RAM, and the clock on carts that have one.
func (gb *GameBoy) Save() error {
	if gb.savePath == "" || !gb.mem.HasSaveData() {
		return nil
	}

	data := gb.mem.SaveData(time.Now())
	tmp := gb.savePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp, gb.savePath); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	slog.Debug("Saved", "path", gb.savePath, "bytes", len(data))
	return nil
}

// Close saves and releases the link port.
func (gb *GameBoy) Close() error {
	errs := []error{gb.Save()}

	switch p := gb.port.(type) {
	case *serial.LogSink:
		p.Flush()
	case io.Closer:
		errs = append(errs, p.Close())
	}
	if gb.cancel != nil {
		gb.cancel()
	}
	return errors.Join(errs...)
}

// SetFrameLimiter paces RunUntilFrame. nil runs unthrottled.
func (gb *GameBoy) SetFrameLimiter(limiter timing.Limiter) {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	gb.limiter = limiter
}

func (gb *GameBoy) FrameCount() uint64       { return gb.frames }
func (gb *GameBoy) InstructionCount() uint64 { return gb.cpu.InstructionCount() }
func (gb *GameBoy) Title() string            { return gb.mem.Cartridge().Title() }
func (gb *GameBoy) IsColor() bool            { return gb.mem.ColorMode() }

// TakeRumble returns the rumble motor strength since the last call.
func (gb *GameBoy) TakeRumble() float64 { return gb.mem.TakeRumble() }

// Audio exposes the sound unit to audio outputs.
func (gb *GameBoy) Audio() *audio.APU { return gb.apu }

// Serial returns the device in the link port, nil if nothing is plugged.
func (gb *GameBoy) Serial() serial.Port { return gb.port }

// Fault returns the error that stopped the processor, if any.
func (gb *GameBoy) Fault() error { return gb.cpu.Fault() }
