package video

import (
	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/bit"
)

const (
	tileMapLow  = 0x9800
	tileMapHigh = 0x9C00

	// windowXOffset is subtracted from WX to get the screen column.
	windowXOffset = 7
)

// BG map attribute bits, stored in VRAM bank 1 in color mode.
const (
	attrBank     uint8 = 3
	attrFlipX    uint8 = 5
	attrFlipY    uint8 = 6
	attrPriority uint8 = 7
)

// renderLine composes the current scanline into the back buffer:
// background, then window, then sprites.
func (d *Display) renderLine() {
	if d.line >= visibleLines {
		return
	}
	lcdc := d.bus.ReadDirect(addr.LCDC)
	color := d.bus.ColorMode()

	// on monochrome hardware LCDC bit 0 blanks BG and window to color 0
	bgVisible := color || bit.IsSet(lcdcBGEnable, lcdc)

	d.renderBackground(lcdc, bgVisible, color)
	if bgVisible {
		d.renderWindow(lcdc, color)
	}
	if bit.IsSet(lcdcObjEnable, lcdc) {
		d.renderSprites(lcdc, color)
	}
}

// mapPixel fetches the color index of one pixel of a 256x256 tile map,
// along with its color mode attributes.
func (d *Display) mapPixel(mapBase uint16, lcdc, x, y uint8, color bool) (uint8, uint8) {
	mapAddress := mapBase + uint16(y/8)*tileMapWidth + uint16(x/8)
	tileNumber := d.bus.ReadVRAM(0, mapAddress)

	var attrs uint8
	if color {
		attrs = d.bus.ReadVRAM(1, mapAddress)
	}

	row := int(y % 8)
	if bit.IsSet(attrFlipY, attrs) {
		row = 7 - row
	}
	tileRow := fetchTileRow(d.bus, bit.Value(attrBank, attrs), tileDataAddress(lcdc, tileNumber), row)

	if bit.IsSet(attrFlipX, attrs) {
		return tileRow.GetPixelFlipped(int(x % 8)), attrs
	}
	return tileRow.GetPixel(int(x % 8)), attrs
}

func (d *Display) renderBackground(lcdc uint8, visible, color bool) {
	if !visible {
		for x := 0; x < FramebufferWidth; x++ {
			d.bgIndex[x] = 0
			d.bgPriority[x] = false
			d.back.SetPixel(x, d.line, WhiteColor)
		}
		return
	}

	mapBase := uint16(tileMapLow)
	if bit.IsSet(lcdcBGMap, lcdc) {
		mapBase = tileMapHigh
	}
	scx := d.bus.ReadDirect(addr.SCX)
	y := d.bus.ReadDirect(addr.SCY) + uint8(d.line)

	for x := 0; x < FramebufferWidth; x++ {
		index, attrs := d.mapPixel(mapBase, lcdc, scx+uint8(x), y, color)
		d.putBackground(x, index, attrs)
	}
}

// renderWindow draws the window over the background. The window keeps its
// own line counter, which only advances when a window pixel was drawn.
func (d *Display) renderWindow(lcdc uint8, color bool) {
	if !bit.IsSet(lcdcWindowEnable, lcdc) {
		return
	}
	wy := int(d.bus.ReadDirect(addr.WY))
	startX := int(d.bus.ReadDirect(addr.WX)) - windowXOffset
	if d.line < wy || startX >= FramebufferWidth {
		return
	}

	mapBase := uint16(tileMapLow)
	if bit.IsSet(lcdcWindowMap, lcdc) {
		mapBase = tileMapHigh
	}

	drawn := false
	for x := max(startX, 0); x < FramebufferWidth; x++ {
		index, attrs := d.mapPixel(mapBase, lcdc, uint8(x-startX), uint8(d.windowLine), color)
		d.putBackground(x, index, attrs)
		drawn = true
	}
	if drawn {
		d.windowLine++
	}
}

func (d *Display) putBackground(x int, index, attrs uint8) {
	d.bgIndex[x] = index
	d.bgPriority[x] = bit.IsSet(attrPriority, attrs)
	d.back.SetPixel(x, d.line, d.bgColor(attrs&0x07, index))
}

func (d *Display) renderSprites(lcdc uint8, color bool) {
	sprites := d.sprites[:d.spriteCount]
	d.priority.Clear()

	for slot := range sprites {
		sprite := &sprites[slot]
		tileAddress, row := sprite.rowAddress(d.line)
		bank := uint8(0)
		if color {
			bank = sprite.Bank
		}
		tileRow := fetchTileRow(d.bus, bank, tileAddress, row)

		// color mode ranks purely by OAM position
		rankX := sprite.X
		if color {
			rankX = 0
		}

		for px := 0; px < spriteWidth; px++ {
			var index uint8
			if sprite.FlipX {
				index = tileRow.GetPixelFlipped(px)
			} else {
				index = tileRow.GetPixel(px)
			}
			d.priority.TryClaimPixel(sprite.X+px, slot, rankX, index)
		}
	}

	// in color mode a clear LCDC bit 0 puts every sprite above BG and window
	masterPriority := !color || bit.IsSet(lcdcBGEnable, lcdc)

	for x := 0; x < FramebufferWidth; x++ {
		slot, index := d.priority.Owner(x)
		if slot < 0 {
			continue
		}
		sprite := &sprites[slot]
		if masterPriority && d.bgIndex[x] != 0 && (sprite.BehindBG || d.bgPriority[x]) {
			continue
		}
		d.back.SetPixel(x, d.line, d.objColor(sprite, index))
	}
}

// bgColor turns a BG color index into a pixel. palette is only used in
// color mode.
func (d *Display) bgColor(palette, index uint8) GBColor {
	switch {
	case d.bus.ColorMode():
		return ColorFromBGR555(d.bus.PaletteColor(false, palette, index))
	case d.bus.CompatMode():
		// monochrome software on color hardware: BGP picks among the
		// colors the boot ROM stored in palette 0
		return ColorFromBGR555(d.bus.PaletteColor(false, 0, shade(d.bus.ReadDirect(addr.BGP), index)))
	default:
		return dmgShades[shade(d.bus.ReadDirect(addr.BGP), index)]
	}
}

func (d *Display) objColor(sprite *Sprite, index uint8) GBColor {
	if d.bus.ColorMode() {
		return ColorFromBGR555(d.bus.PaletteColor(true, sprite.ColorPalette, index))
	}

	register, palette := addr.OBP0, uint8(0)
	if sprite.PaletteOBP1 {
		register, palette = addr.OBP1, 1
	}
	s := shade(d.bus.ReadDirect(register), index)
	if d.bus.CompatMode() {
		return ColorFromBGR555(d.bus.PaletteColor(true, palette, s))
	}
	return dmgShades[s]
}
