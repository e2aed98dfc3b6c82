package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chroma/chroma/addr"
)

func TestOAMDMA(t *testing.T) {
	m := New()
	for i := uint16(0); i < oamDMALength; i++ {
		m.Write(0xC100+i, uint8(i))
	}
	m.Write(0xFF90, 0x77)

	m.Write(addr.DMA, 0xC1)
	require.True(t, m.DMAActive())

	assert.Equal(t, uint8(0x00), m.Read(0x0000), "bus returns the byte being copied")
	assert.Equal(t, uint8(0x77), m.Read(0xFF90), "HRAM stays reachable")

	m.Advance(10, false)
	assert.Equal(t, uint8(10), m.Read(0xD000))
	assert.Equal(t, uint8(9), m.ReadDirect(addr.OAMStart+9))
	assert.Equal(t, uint8(0x00), m.ReadDirect(addr.OAMStart+10), "not copied yet")

	m.Advance(149, false)
	assert.True(t, m.DMAActive())
	m.Advance(1, false)
	assert.False(t, m.DMAActive(), "done after 160 cycles")
	assert.Equal(t, uint8(5), m.Read(0xC105), "bus released")

	for i := uint16(0); i < oamDMALength; i++ {
		assert.Equal(t, uint8(i), m.Read(addr.OAMStart+i))
	}
}

func TestOAMDMALastsOneCyclePerByte(t *testing.T) {
	m := New()
	m.Write(addr.DMA, 0xC1)

	m.Advance(oamDMALength-1, false)
	assert.True(t, m.DMAActive())
	assert.Equal(t, oamDMALength-1, m.dma.copied)

	m.Advance(oamDMALength, false)
	assert.False(t, m.DMAActive(), "surplus cycles do not run past the table")
	assert.Equal(t, oamDMALength, m.dma.copied)
}

func TestOAMDMAFromEchoSource(t *testing.T) {
	m := New()
	m.Write(0xC000, 0x5A)
	m.Write(addr.DMA, 0xE0)
	m.Advance(oamDMALength, false)
	assert.Equal(t, uint8(0x5A), m.Read(addr.OAMStart))
}

func TestHDMAGeneral(t *testing.T) {
	m := newColorMMU(t)
	for i := uint16(0); i < 0x40; i++ {
		m.Write(0xC000+i, uint8(i+1))
	}

	m.Write(addr.HDMA1, 0xC0)
	m.Write(addr.HDMA2, 0x0F) // low nibble ignored
	m.Write(addr.HDMA3, 0xE1) // top bits ignored
	m.Write(addr.HDMA4, 0x00)
	m.Write(addr.HDMA5, 0x03)

	for i := uint16(0); i < 0x40; i++ {
		assert.Equal(t, uint8(i+1), m.Read(0x8100+i))
	}
	assert.Equal(t, uint8(0xFF), m.Read(addr.HDMA5))
}

func TestHDMAHBlank(t *testing.T) {
	m := newColorMMU(t)
	for i := uint16(0); i < 0x30; i++ {
		m.Write(0xC000+i, 0xA0+uint8(i))
	}
	m.Write(addr.HDMA1, 0xC0)
	m.Write(addr.HDMA2, 0x00)
	m.Write(addr.HDMA3, 0x00)
	m.Write(addr.HDMA4, 0x00)
	m.Write(addr.HDMA5, 0x80|0x02)

	assert.Equal(t, uint8(0x02), m.Read(addr.HDMA5))
	assert.Equal(t, uint8(0x00), m.Read(0x8000), "nothing before the first HBlank")

	m.HBlank()
	assert.Equal(t, uint8(0xA0), m.Read(0x8000))
	assert.Equal(t, uint8(0x00), m.Read(0x8010))
	assert.Equal(t, uint8(0x01), m.Read(addr.HDMA5))

	m.Write(addr.HDMA5, 0x00)
	assert.Equal(t, uint8(0x81), m.Read(addr.HDMA5), "cancelled with one chunk left")

	m.HBlank()
	assert.Equal(t, uint8(0x00), m.Read(0x8010), "no copy after cancel")
}
