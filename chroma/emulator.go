package chroma

import (
	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/input/action"
	"github.com/valerio/go-chroma/chroma/video"
)

// Emulator is what backends and the run loop drive.
type Emulator interface {
	RunUntilFrame() error
	GetCurrentFrame() *video.FrameBuffer
	HandleAction(act action.Action, pressed bool)
	ExtractDebugData() *debug.Data
}

var _ Emulator = (*GameBoy)(nil)

const (
	// snapshotBefore and snapshotSize frame the memory captured around PC
	// for the disassembly view.
	snapshotBefore = 64
	snapshotSize   = 200
)

// ExtractDebugData captures processor, OAM and memory state for debug
// views. It returns nil on a machine that was not built with New.
func (gb *GameBoy) ExtractDebugData() *debug.Data {
	if gb.cpu == nil || gb.mem == nil || gb.display == nil {
		return nil
	}

	state := gb.cpu.State()
	return &debug.Data{
		CPU: &debug.CPUState{
			A: gb.cpu.GetA(), F: gb.cpu.GetF(),
			B: uint8(state.BC >> 8), C: uint8(state.BC),
			D: uint8(state.DE >> 8), E: uint8(state.DE),
			H: uint8(state.HL >> 8), L: uint8(state.HL),
			SP:     state.SP,
			PC:     state.PC,
			IME:    gb.cpu.GetIME(),
			Halted: gb.cpu.IsHalted(),
			Cycles: gb.cpu.GetCycles(),
			Flags:  gb.cpu.GetFlagString(),
		},
		Memory:          gb.memorySnapshot(state.PC),
		OAM:             debug.ExtractOAMData(video.AllSprites(gb.mem), gb.display.Line()),
		InterruptEnable: gb.mem.IE(),
		InterruptFlags:  gb.mem.IF(),
		Model:           gb.mem.Model().String(),
		DoubleSpeed:     gb.mem.DoubleSpeed(),
		Mode:            gb.display.Mode().String(),
		Line:            gb.display.Line(),
		Fault:           gb.cpu.Fault(),
	}
}

// memorySnapshot reads the bytes around pc without side effects. The
// window never wraps past 0xFFFF.
func (gb *GameBoy) memorySnapshot(pc uint16) *debug.MemorySnapshot {
	start := uint16(0)
	if pc > snapshotBefore {
		start = pc - snapshotBefore
	}
	size := min(snapshotSize, 0x10000-int(start))

	snapshot := &debug.MemorySnapshot{StartAddr: start, Bytes: make([]uint8, size)}
	for i := range snapshot.Bytes {
		snapshot.Bytes[i] = gb.mem.ReadDirect(start + uint16(i))
	}
	return snapshot
}
