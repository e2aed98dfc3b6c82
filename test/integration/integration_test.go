package integration

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chroma/chroma"
	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/memory"
	"github.com/valerio/go-chroma/chroma/serial"
	"github.com/valerio/go-chroma/chroma/video"
)

const romsDir = "../../test-roms/game-boy-test-roms"

// serialTest is a ROM that reports its verdict as text over the link port.
type serialTest struct {
	Name      string
	ROMPath   string
	MaxFrames int
}

// screenTest is a ROM whose final frame is compared to a golden capture.
type screenTest struct {
	Name    string
	ROMPath string
	Frames  int
	Model   memory.Model
}

func serialTests() []serialTest {
	cpuInstrs := filepath.Join(romsDir, "blargg", "cpu_instrs", "individual")
	tests := []serialTest{
		{"instr_timing", filepath.Join(romsDir, "blargg", "instr_timing", "instr_timing.gb"), 1200},
	}
	for _, name := range []string{
		"01-special", "02-interrupts", "03-op sp,hl", "04-op r,imm", "05-op rp",
		"06-ld r,r", "07-jr,jp,call,ret,rst", "08-misc instrs", "09-op r,r",
		"10-bit ops", "11-op a,(hl)",
	} {
		tests = append(tests, serialTest{name, filepath.Join(cpuInstrs, name+".gb"), 3000})
	}
	return tests
}

func screenTests() []screenTest {
	return []screenTest{
		{"dmg-acid2", filepath.Join(romsDir, "dmg-acid2", "dmg-acid2.gb"), 10, memory.ModelDMG},
		{"cgb-acid2", filepath.Join(romsDir, "cgb-acid2", "cgb-acid2.gbc"), 10, memory.ModelCGB},
	}
}

func loadROM(t *testing.T, path string) []byte {
	t.Helper()
	rom, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Skipf("test ROM not found: %s (clone game-boy-test-roms into test-roms/)", path)
	}
	require.NoError(t, err)
	return rom
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runSerialTest(t *testing.T, tc serialTest) {
	rom := loadROM(t, tc.ROMPath)

	sink := serial.NewLogSink(serial.WithLogger(quietLogger()))
	gb, err := chroma.New(rom, nil, chroma.WithSerial(sink))
	require.NoError(t, err)

	for frame := 0; frame < tc.MaxFrames; frame++ {
		require.NoError(t, gb.RunUntilFrame(), "frame %d", frame)

		out := sink.Output()
		if strings.Contains(out, "Passed") {
			return
		}
		if strings.Contains(out, "Failed") {
			break
		}
	}
	t.Errorf("%s did not pass, serial output:\n%s", tc.Name, sink.Output())
}

// frameBytes flattens a frame into a stable byte stream for hashing.
func frameBytes(fb *video.FrameBuffer) []byte {
	pixels := fb.ToSlice()
	data := make([]byte, 4*len(pixels))
	for i, p := range pixels {
		binary.BigEndian.PutUint32(data[4*i:], p)
	}
	return data
}

func runScreenTest(t *testing.T, tc screenTest) {
	rom := loadROM(t, tc.ROMPath)

	gb, err := chroma.New(rom, nil, chroma.WithModel(tc.Model))
	require.NoError(t, err)
	for frame := 0; frame < tc.Frames; frame++ {
		require.NoError(t, gb.RunUntilFrame(), "frame %d", frame)
	}

	fb := gb.GetCurrentFrame()
	data := frameBytes(fb)
	hash := fmt.Sprintf("%x", md5.Sum(data))

	goldenPath := filepath.Join("testdata", tc.Name+".bin")
	snapshotDir := filepath.Join("testdata", "snapshots")
	require.NoError(t, os.MkdirAll(snapshotDir, 0o755))

	if os.Getenv("CHROMA_GENERATE_GOLDEN") == "true" {
		require.NoError(t, os.WriteFile(goldenPath, data, 0o644))
		require.NoError(t, debug.SaveFramePNG(fb, filepath.Join(snapshotDir, tc.Name+".png"), 1))
		t.Logf("Reference files generated - hash: %s", hash)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		t.Skipf("golden file not found: %s (run with CHROMA_GENERATE_GOLDEN=true)", goldenPath)
	}
	require.NoError(t, err)

	if expectedHash := fmt.Sprintf("%x", md5.Sum(expected)); hash != expectedHash {
		actualPath := filepath.Join(snapshotDir, tc.Name+"_actual.png")
		_ = debug.SaveFramePNG(fb, actualPath, 1)
		assert.Failf(t, "frame differs from golden capture",
			"expected hash %s, got %s, actual frame saved to %s", expectedHash, hash, actualPath)
	}
}

func TestSerialReportingROMs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	for _, tc := range serialTests() {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			runSerialTest(t, tc)
		})
	}
}

func TestScreenROMs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	for _, tc := range screenTests() {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			runScreenTest(t, tc)
		})
	}
}
