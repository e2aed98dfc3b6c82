package video

import "github.com/valerio/go-chroma/chroma/bit"

const (
	tileBytes        = 16
	tileMapWidth     = 32
	tileDataUnsigned = 0x8000
	tileDataSigned   = 0x9000
)

// TileRow represents one row of a tile pattern (8 pixels).
//
// Game Boy tiles are 8x8 pixels, with 2 bits per pixel allowing 4 colors.
// Each tile row uses 2 bytes in a bit-plane format:
//
//	Byte 1 (Low):  Bit plane 0 - provides bit 0 of each pixel's color
//	Byte 2 (High): Bit plane 1 - provides bit 1 of each pixel's color
//
// Bit 7 represents the leftmost pixel, bit 0 the rightmost:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel extracts a color index (0-3). pixelX 0 is the leftmost pixel.
func (t TileRow) GetPixel(pixelX int) uint8 {
	return t.pixelAt(uint8(7 - pixelX))
}

// GetPixelFlipped extracts a color index with horizontal flip.
func (t TileRow) GetPixelFlipped(pixelX int) uint8 {
	return t.pixelAt(uint8(pixelX))
}

func (t TileRow) pixelAt(bitIndex uint8) uint8 {
	var pixel uint8
	if bit.IsSet(bitIndex, t.Low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		pixel |= 2
	}
	return pixel
}

// tileDataAddress returns where a BG or window tile starts. With LCDC bit 4
// set tiles are numbered 0-255 from 0x8000, otherwise -128..127 around
// 0x9000.
func tileDataAddress(lcdc, tileNumber uint8) uint16 {
	if bit.IsSet(lcdcTileData, lcdc) {
		return tileDataUnsigned + uint16(tileNumber)*tileBytes
	}
	return uint16(int32(tileDataSigned) + int32(int8(tileNumber))*tileBytes)
}

// fetchTileRow reads one row of a tile from a VRAM bank.
func fetchTileRow(bus Bus, bank uint8, tileAddress uint16, row int) TileRow {
	address := tileAddress + uint16(row*2)
	return TileRow{
		Low:  bus.ReadVRAM(bank, address),
		High: bus.ReadVRAM(bank, address+1),
	}
}
