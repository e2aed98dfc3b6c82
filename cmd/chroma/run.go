package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/valerio/go-chroma/chroma"
	"github.com/valerio/go-chroma/chroma/app"
	"github.com/valerio/go-chroma/chroma/audio"
	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/backend/audioout"
	"github.com/valerio/go-chroma/chroma/backend/ebitengine"
	"github.com/valerio/go-chroma/chroma/backend/headless"
	"github.com/valerio/go-chroma/chroma/backend/sdl2"
	"github.com/valerio/go-chroma/chroma/backend/terminal"
	"github.com/valerio/go-chroma/chroma/timing"
)

const (
	backendTerminal = "terminal"
	backendSDL2     = "sdl2"
	backendEbiten   = "ebiten"
	backendHeadless = "headless"
)

var (
	errNoROM         = errors.New("no ROM path provided")
	errNoFrames      = errors.New("headless mode requires --frames option with a positive value")
	errUnknownLevel  = errors.New("unknown log level")
	errUnknownOutput = errors.New("unknown backend")
)

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errNoROM
		}
		romPath = c.Args().Get(0)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	levelVar := new(slog.LevelVar)
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	levelVar.Set(level)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})))

	kind, err := timing.ParseKind(c.String("limiter"))
	if err != nil {
		return err
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	output, err := chooseBackend(cfg.Backend, c.Bool("headless"), isTTY)
	if err != nil {
		return err
	}
	if output == backendHeadless && c.Int("frames") <= 0 {
		return errNoFrames
	}

	cfg.FrameLimit = false
	gb, err := chroma.NewWithFile(romPath, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := gb.Close(); err != nil {
			slog.Error("Failed to close emulator", "error", err)
		}
	}()
	if output != backendHeadless {
		gb.SetFrameLimiter(timing.New(kind))
	}

	romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	b, err := newBackend(output, c, romPath)
	if err != nil {
		return err
	}

	// without a limiter the display refresh paces emulation
	bcfg := backend.BackendConfig{
		Title:      fmt.Sprintf("Chroma - %s", gb.Title()),
		Scale:      cfg.Scale,
		VSync:      kind == timing.KindNone,
		SampleRate: audio.SampleRate,
		LogLevel:   levelVar,
	}
	if cfg.Audio || output == backendHeadless {
		bcfg.Audio = gb.Audio()
	}

	// the terminal cannot play sound itself
	if output == backendTerminal && cfg.Audio {
		player, err := audioout.Open(gb.Audio(), audio.SampleRate)
		if err != nil {
			slog.Warn("Audio output unavailable", "error", err)
		} else {
			defer player.Close()
		}
	}

	runner := app.New(gb, b, app.Options{
		ROMName:       romName,
		SnapshotDir:   c.String("snapshot-dir"),
		SnapshotScale: max(c.Int("snapshot-scale"), 1),
		LogLevel:      levelVar,
		Mixer:         gb.Audio(),
		StopOnFault:   output == backendHeadless,
	})
	return runner.Run(bcfg)
}

// loadConfig starts from the config file, or the defaults, and applies
// the flags the user set explicitly.
func loadConfig(c *cli.Context) (chroma.Config, error) {
	cfg := chroma.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = chroma.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("boot") {
		cfg.BootROM = c.String("boot")
	}
	if c.IsSet("save") {
		cfg.SavePath = c.String("save")
	}
	if c.IsSet("serial") {
		cfg.Serial.Mode = c.String("serial")
	}
	if c.IsSet("link-addr") {
		cfg.Serial.Address = c.String("link-addr")
	}
	if c.Bool("no-audio") {
		cfg.Audio = false
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("scale") {
		cfg.Scale = c.Int("scale")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, cfg.Validate()
}

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", errUnknownLevel, name)
	}
}

// chooseBackend resolves the backend name. --headless wins, and the
// terminal UI falls back to headless when stdout is not a terminal.
func chooseBackend(name string, forceHeadless, isTTY bool) (string, error) {
	if forceHeadless {
		return backendHeadless, nil
	}

	switch name = strings.ToLower(name); name {
	case backendTerminal, "":
		if !isTTY {
			slog.Info("Stdout is not a terminal, running headless")
			return backendHeadless, nil
		}
		return backendTerminal, nil
	case backendSDL2, backendEbiten, backendHeadless:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownOutput, name)
	}
}

func newBackend(name string, c *cli.Context, romPath string) (backend.Backend, error) {
	switch name {
	case backendHeadless:
		snapshots, err := headless.CreateSnapshotConfig(
			c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath, c.Int("snapshot-scale"))
		if err != nil {
			return nil, err
		}
		return headless.New(c.Int("frames"), snapshots), nil
	case backendSDL2:
		return sdl2.New(), nil
	case backendEbiten:
		return ebitengine.New(), nil
	default:
		return terminal.New(), nil
	}
}
