package video

import (
	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/bit"
)

const (
	oamEntries         = 40
	oamEntrySize       = 4
	maxSpritesPerLine  = 10
	spriteYOffset      = 16
	spriteXOffset      = 8
	spriteWidth        = 8
	spriteHeightNormal = 8
	spriteHeightTall   = 16
)

// Sprite represents a single sprite/object in OAM memory.
// The Game Boy has 40 sprites stored in OAM (Object Attribute Memory) from 0xFE00-0xFE9F.
type Sprite struct {
	Y         int   // screen position, without the +16 offset
	X         int   // screen position, without the +8 offset
	TileIndex uint8 // pattern number in the 0x8000 tile area
	Flags     uint8 // attribute byte
	OAMIndex  int
	Height    int // 8 or 16, from LCDC bit 2

	// parsed attribute flags for convenience
	PaletteOBP1  bool  // monochrome palette: false = OBP0, true = OBP1
	ColorPalette uint8 // CGB object palette 0-7
	Bank         uint8 // CGB VRAM bank holding the pattern
	BehindBG     bool  // hidden behind BG colors 1-3
	FlipX        bool
	FlipY        bool
}

func (s *Sprite) parseFlags() {
	s.ColorPalette = s.Flags & 0x07
	s.Bank = bit.Value(3, s.Flags)
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
}

// readSprite decodes OAM entry index.
func readSprite(bus Bus, index, height int) Sprite {
	base := addr.OAMStart + uint16(index*oamEntrySize)
	sprite := Sprite{
		Y:         int(bus.ReadDirect(base)) - spriteYOffset,
		X:         int(bus.ReadDirect(base+1)) - spriteXOffset,
		TileIndex: bus.ReadDirect(base + 2),
		Flags:     bus.ReadDirect(base + 3),
		OAMIndex:  index,
		Height:    height,
	}
	sprite.parseFlags()
	return sprite
}

// covers reports whether the sprite overlaps a scanline.
func (s *Sprite) covers(line int) bool {
	return s.Y <= line && line < s.Y+s.Height
}

// rowAddress returns the address of the pattern row the sprite shows on a
// scanline, flips and 8x16 tile pairs taken into account.
func (s *Sprite) rowAddress(line int) (uint16, int) {
	row := line - s.Y
	if s.FlipY {
		row = s.Height - 1 - row
	}
	tile := s.TileIndex
	if s.Height == spriteHeightTall {
		// the low bit is ignored, the pair starts on an even tile
		tile &^= 0x01
	}
	return tileDataUnsigned + uint16(tile)*tileBytes, row
}

// spriteHeight reads the object size selected by LCDC bit 2.
func spriteHeight(lcdc uint8) int {
	if bit.IsSet(lcdcObjSize, lcdc) {
		return spriteHeightTall
	}
	return spriteHeightNormal
}

// scanSprites performs the OAM search for a scanline: the first 10 entries
// in OAM order that cover it are kept, whatever their X position.
func scanSprites(bus Bus, line int, height int, out []Sprite) []Sprite {
	out = out[:0]
	for i := 0; i < oamEntries; i++ {
		sprite := readSprite(bus, i, height)
		if !sprite.covers(line) {
			continue
		}
		out = append(out, sprite)
		if len(out) == maxSpritesPerLine {
			break
		}
	}
	return out
}

// AllSprites decodes the full OAM table, for debug views.
func AllSprites(bus Bus) []Sprite {
	height := spriteHeight(bus.ReadDirect(addr.LCDC))
	result := make([]Sprite, oamEntries)
	for i := 0; i < oamEntries; i++ {
		result[i] = readSprite(bus, i, height)
	}
	return result
}
