package memory

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaveMMU(t *testing.T, cartType, ramCode uint8) *MMU {
	t.Helper()
	cart, err := NewCartridgeWithData(headerROM(0x8000, cartType, 0x00, ramCode, "SAVE"))
	require.NoError(t, err)
	m, err := NewWithCartridge(cart, ModelDMG, nil)
	require.NoError(t, err)
	return m
}

func TestSaveRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	m := newSaveMMU(t, 0x03, 0x03)
	require.True(t, m.HasSaveData())
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x12)
	m.Write(0xBFFF, 0x34)

	data := m.SaveData(now)
	require.Len(t, data, 4*ramBankSize)

	restored := newSaveMMU(t, 0x03, 0x03)
	require.NoError(t, restored.LoadSaveData(data, now))
	assert.Equal(t, data, restored.SaveData(now))

	restored.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0x12), restored.Read(0xA000))
	assert.Equal(t, uint8(0x34), restored.Read(0xBFFF))
}

func TestSaveRTCTrailer(t *testing.T) {
	saved := time.Unix(1_700_000_000, 0)

	m := newSaveMMU(t, 0x10, 0x03)
	m.RTC().Write(RTCHours, 5)
	m.RTC().Write(RTCDayLow, 7)

	data := m.SaveData(saved)
	require.Len(t, data, 4*ramBankSize+rtcTrailerSize)

	trailer := data[4*ramBankSize:]
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(trailer[RTCHours*4:]))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(trailer[20+RTCHours*4:]))
	assert.Equal(t, saved.Unix(), int64(binary.LittleEndian.Uint64(trailer[40:])))

	t.Run("same instant is bit identical", func(t *testing.T) {
		restored := newSaveMMU(t, 0x10, 0x03)
		require.NoError(t, restored.LoadSaveData(data, saved))
		assert.Equal(t, data, restored.SaveData(saved))
	})

	t.Run("elapsed wall time advances the clock", func(t *testing.T) {
		restored := newSaveMMU(t, 0x10, 0x03)
		require.NoError(t, restored.LoadSaveData(data, saved.Add(3661*time.Second)))

		live, latched := restored.RTC().Registers()
		assert.Equal(t, [rtcRegisterCount]uint8{1, 1, 6, 7, 0}, live)
		assert.Equal(t, uint8(5), latched[RTCHours], "latched copy untouched")
	})
}

func TestLoadTruncatedSave(t *testing.T) {
	m := newSaveMMU(t, 0x10, 0x03)
	err := m.LoadSaveData(make([]byte, 4*ramBankSize), time.Now())
	assert.ErrorIs(t, err, ErrTruncatedSave)

	m = newSaveMMU(t, 0x03, 0x03)
	err = m.LoadSaveData(make([]byte, 100), time.Now())
	assert.ErrorIs(t, err, ErrTruncatedSave)
}

func TestMBC2SaveIsWidened(t *testing.T) {
	m := newSaveMMU(t, 0x06, 0x00)
	assert.Len(t, m.SaveData(time.Now()), ramBankSize)
}
