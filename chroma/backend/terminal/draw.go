package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-chroma/chroma/backend/terminal/render"
	"github.com/valerio/go-chroma/chroma/debug"
	"github.com/valerio/go-chroma/chroma/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	gameRows       = height / 2
	dividerX       = width + 1
	panelX         = dividerX + 2
	registerHeight = 12
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24
)

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	regStyle    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	asmStyle    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	pcStyle     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	faultStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, faultStyle)
		return
	}

	t.drawGameBoy(frame)
	t.drawBorders(termWidth, termHeight)

	logsY := 1
	var data *debug.Data
	if t.config.ShowDebug && t.config.Debug != nil {
		data = t.config.Debug()
	}
	if data != nil {
		t.drawRegisters(data, 1, termWidth-panelX)
		t.drawDisassembly(data, registerHeight+2, termWidth-panelX)
		logsY = registerHeight + disasmHeight + 3
	}
	t.drawLogs(logsY, termWidth-panelX, termHeight)
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	for _, ch := range render.Truncate(text, maxWidth) {
		t.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight int) {
	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}
	t.drawText(1, 0, width-2, fmt.Sprintf(" %s ", t.config.Title), titleStyle)

	if t.config.ShowDebug {
		for _, y := range []int{registerHeight + 1, registerHeight + disasmHeight + 2} {
			for x := dividerX + 1; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, borderStyle)
			}
			t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
		}
		t.drawText(panelX, 0, termWidth-panelX, " CPU Registers ", titleStyle)
		t.drawText(panelX, registerHeight+1, termWidth-panelX, " Disassembly ", titleStyle)
	}

	logTitleY := 0
	if t.config.ShowDebug {
		logTitleY = registerHeight + disasmHeight + 2
	}
	title := fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel.Level())
	t.drawText(panelX, logTitleY, termWidth-panelX, title, titleStyle)

	help := " F10=debug SPACE=pause F=frame F9=snapshot M=mute F1-F4=channels Q=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

// drawGameBoy packs two lines into one row, top pixel as foreground.
func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	pixels := frame.ToSlice()
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			ch, top, bottom := render.HalfBlock(pixels[y*width+x], pixels[(y+1)*width+x])
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			t.screen.SetContent(x, y/2+1, ch, nil, style)
		}
	}
}

func rgb(pixel uint32) tcell.Color {
	return tcell.NewRGBColor(render.RGB(pixel))
}

func (t *Backend) drawRegisters(data *debug.Data, startY, panelWidth int) {
	if data.CPU == nil || panelWidth <= 0 {
		return
	}
	cpu := data.CPU

	speed := "normal"
	if data.DoubleSpeed {
		speed = "double"
	}
	ime := "OFF"
	if cpu.IME {
		ime = "ON"
	}

	lines := []string{
		fmt.Sprintf("Status: %s  Halted: %t", data.DebuggerState, cpu.Halted),
		fmt.Sprintf("Model: %s  Speed: %s", data.Model, speed),
		fmt.Sprintf("A: 0x%02X  F: 0x%02X  [%s]", cpu.A, cpu.F, cpu.Flags),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", cpu.B, cpu.C),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", cpu.D, cpu.E),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", cpu.H, cpu.L),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", cpu.SP, cpu.PC),
		fmt.Sprintf("IME: %s  IE: 0x%02X  IF: 0x%02X", ime, data.InterruptEnable, data.InterruptFlags),
		fmt.Sprintf("LCD: %s  LY: %d", data.Mode, data.Line),
		fmt.Sprintf("Cycles: %d", cpu.Cycles),
	}
	if data.OAM != nil {
		lines = append(lines, data.OAM.FormatSummary())
	}

	for i, line := range lines {
		t.drawText(panelX, startY+i, panelWidth, line, regStyle)
	}
	if data.Fault != nil {
		t.drawText(panelX, startY+registerHeight-1, panelWidth, data.Fault.Error(), faultStyle)
	}
}

func (t *Backend) drawDisassembly(data *debug.Data, startY, panelWidth int) {
	if data.CPU == nil || data.Memory == nil || panelWidth <= 0 {
		return
	}

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		text := fmt.Sprintf("  0x%04X: %s", line.Address, line.Instruction)
		style := asmStyle
		if line.IsCurrent {
			text = "→" + text[1:]
			style = pcStyle
		}
		t.drawText(panelX, startY+i, panelWidth, text, style)
	}
}

func (t *Backend) drawLogs(startY, panelWidth, termHeight int) {
	rows := termHeight - startY - 1
	if panelWidth <= 0 || rows <= 0 {
		return
	}

	styles := map[string]tcell.Style{
		"DBG": tcell.StyleDefault.Foreground(tcell.ColorGray),
		"INF": tcell.StyleDefault.Foreground(tcell.ColorBlue),
		"WRN": tcell.StyleDefault.Foreground(tcell.ColorYellow),
		"ERR": faultStyle,
	}

	for i, entry := range t.logBuffer.GetRecent(rows, t.logLevel.Level()) {
		style := styles[render.LevelLabel(entry.Level)]
		t.drawText(panelX, startY+i, panelWidth, render.FormatLogEntry(entry), style)
	}
}
