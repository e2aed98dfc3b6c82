package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/input/event"
	"github.com/valerio/go-chroma/chroma/video"
)

// Backend runs a fixed number of frames without any output, optionally
// writing PNG snapshots along the way.
type Backend struct {
	config         backend.BackendConfig
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	saved          []string
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
	Scale     int
}

func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	if h.maxFrames <= 0 {
		return fmt.Errorf("headless mode needs a positive frame count, got %d", h.maxFrames)
	}
	h.config = config

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

// Update counts the frame, saves snapshots when due and asks to quit once
// the frame budget is spent.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++

	// nothing plays the samples, keep the queue from overflowing
	if h.config.Audio != nil && h.config.SampleRate > 0 {
		h.config.Audio.GetSamples(2 * h.config.SampleRate / 60)
	}

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%60 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount < h.maxFrames {
		return nil, nil
	}

	// final frame is always captured
	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
		h.saveSnapshot(frame)
	}
	if h.snapshotConfig.Enabled {
		slog.Info("Headless execution completed", "frames", h.frameCount, "png_snapshots_saved_to", h.snapshotConfig.Directory)
	} else {
		slog.Info("Headless execution completed", "frames", h.frameCount)
	}
	return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Snapshots returns the paths written so far.
func (h *Backend) Snapshots() []string {
	return h.saved
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters.
// An empty directory gets a fresh temporary one.
func CreateSnapshotConfig(interval int, directory, romPath string, scale int) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		Scale:    max(scale, 1),
	}
	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "chroma-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))
	return config, nil
}

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	name := fmt.Sprintf("%s_frame_%d.png", h.snapshotConfig.ROMName, h.frameCount)
	path := filepath.Join(h.snapshotConfig.Directory, name)

	if err := debug.SaveFramePNG(frame, path, h.snapshotConfig.Scale); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
		return
	}
	h.saved = append(h.saved, path)
}
