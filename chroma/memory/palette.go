package memory

const paletteRAMSize = 64

// PaletteRAM is one of the two CGB color palette memories: 8 palettes of
// 4 colors, each color a little endian BGR555 word. It is reached through
// an index register (bit 7 enables auto increment) and a data register.
type PaletteRAM struct {
	data          [paletteRAMSize]uint8
	index         uint8
	autoIncrement bool
}

// WriteIndex handles writes to BCPS/OCPS.
func (p *PaletteRAM) WriteIndex(value uint8) {
	p.index = value & 0x3F
	p.autoIncrement = value&0x80 != 0
}

// ReadIndex handles reads of BCPS/OCPS; bit 6 is unused and reads as 1.
func (p *PaletteRAM) ReadIndex() uint8 {
	value := p.index | 0x40
	if p.autoIncrement {
		value |= 0x80
	}
	return value
}

// WriteData handles writes to BCPD/OCPD.
func (p *PaletteRAM) WriteData(value uint8) {
	p.data[p.index] = value
	if p.autoIncrement {
		p.index = (p.index + 1) & 0x3F
	}
}

// ReadData handles reads of BCPD/OCPD. Reads never increment the index.
func (p *PaletteRAM) ReadData() uint8 {
	return p.data[p.index]
}

// Color returns the BGR555 value of a color in a palette.
func (p *PaletteRAM) Color(palette, color uint8) uint16 {
	offset := (palette&0x07)*8 + (color&0x03)*2
	return uint16(p.data[offset]) | uint16(p.data[offset+1])<<8
}

// SetColor stores a BGR555 value, used to seed compatibility palettes.
func (p *PaletteRAM) SetColor(palette, color uint8, value uint16) {
	offset := (palette&0x07)*8 + (color&0x03)*2
	p.data[offset] = uint8(value)
	p.data[offset+1] = uint8(value >> 8)
}
