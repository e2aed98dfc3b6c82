package memory

import (
	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/bit"
)

const (
	oamDMALength  = 0xA0
	hdmaChunkSize = 0x10
)

// oamDMA copies 160 bytes into OAM, one byte per cycle, so a transfer
// lasts 160 cycles.
type oamDMA struct {
	active bool
	source uint16
	copied int
}

func (m *MMU) startOAMDMA(value uint8) {
	source := uint16(value) << 8
	if source >= addr.EchoStart {
		source -= 0x2000
	}
	m.dma = oamDMA{active: true, source: source}
}

func (m *MMU) advanceOAMDMA(cycles int) {
	if !m.dma.active {
		return
	}
	for ; m.dma.active && cycles > 0; cycles-- {
		m.oam[m.dma.copied] = m.ReadDirect(m.dma.source + uint16(m.dma.copied))
		m.dma.copied++
		if m.dma.copied == oamDMALength {
			m.dma.active = false
		}
	}
}

// dmaBusByte is what the CPU sees while the DMA owns the bus.
func (m *MMU) dmaBusByte() uint8 {
	return m.ReadDirect(m.dma.source + uint16(m.dma.copied))
}

// DMAActive reports whether an OAM transfer is in progress.
func (m *MMU) DMAActive() bool { return m.dma.active }

// hdma is the CGB VRAM transfer engine. Lengths are counted in 16 byte
// chunks.
type hdma struct {
	active    bool
	hblank    bool
	source    uint16
	dest      uint16
	remaining int
}

func (m *MMU) writeHDMA5(value uint8) {
	if m.hdma.active && m.hdma.hblank && value&0x80 == 0 {
		m.hdma.active = false
		return
	}

	io := func(a uint16) uint8 { return m.io[a-addr.IOStart] }
	m.hdma = hdma{
		source:    bit.Combine(io(addr.HDMA1), io(addr.HDMA2)) & 0xFFF0,
		dest:      addr.VRAMStart | bit.Combine(io(addr.HDMA3), io(addr.HDMA4))&0x1FF0,
		remaining: int(value&0x7F) + 1,
	}

	if value&0x80 != 0 {
		m.hdma.active = true
		m.hdma.hblank = true
		return
	}

	for m.hdma.remaining > 0 {
		m.copyHDMAChunk()
	}
}

func (m *MMU) copyHDMAChunk() {
	for i := uint16(0); i < hdmaChunkSize; i++ {
		value := m.ReadDirect(m.hdma.source + i)
		m.vram[m.vramBank][(m.hdma.dest+i)&0x1FFF] = value
	}
	m.hdma.source += hdmaChunkSize
	m.hdma.dest = addr.VRAMStart | (m.hdma.dest+hdmaChunkSize)&0x1FFF
	m.hdma.remaining--
	if m.hdma.remaining == 0 {
		m.hdma.active = false
	}
}

func (m *MMU) hdmaStatus() uint8 {
	length := uint8(m.hdma.remaining-1) & 0x7F
	if m.hdma.active {
		return length
	}
	return 0x80 | length
}

// HBlank is called by the display when a line enters HBlank, moving one
// chunk of a pending HBlank transfer.
func (m *MMU) HBlank() {
	if m.hdma.active && m.hdma.hblank {
		m.copyHDMAChunk()
	}
}
