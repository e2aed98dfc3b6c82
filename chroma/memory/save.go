package memory

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// rtcTrailerSize is the clock state appended to saves of MBC3+RTC carts:
// five live registers and five latched registers as little endian
// uint32s, then the unix time of the save as a little endian int64.
const rtcTrailerSize = 48

// ErrTruncatedSave is returned when a save file is shorter than the
// cartridge RAM plus clock trailer it should hold.
var ErrTruncatedSave = errors.New("save file is truncated")

type rtcTrailer struct {
	Live      [rtcRegisterCount]uint32
	Latched   [rtcRegisterCount]uint32
	Timestamp int64
}

// HasSaveData reports whether the cartridge keeps state across power cycles.
func (m *MMU) HasSaveData() bool {
	return m.cart.hasBattery && (len(m.mbc.RAM()) > 0 || m.RTC() != nil)
}

// SaveData serializes battery backed RAM and, on clock carts, the RTC
// stamped with now.
func (m *MMU) SaveData(now time.Time) []byte {
	var buf bytes.Buffer
	buf.Write(m.mbc.RAM())

	if rtc := m.RTC(); rtc != nil {
		var trailer rtcTrailer
		live, latched := rtc.Registers()
		for i := range live {
			trailer.Live[i] = uint32(live[i])
			trailer.Latched[i] = uint32(latched[i])
		}
		trailer.Timestamp = now.Unix()
		// writes to a bytes.Buffer cannot fail
		_ = binary.Write(&buf, binary.LittleEndian, &trailer)
	}

	return buf.Bytes()
}

// LoadSaveData restores what SaveData produced. The clock is fast
// forwarded by the wall time elapsed since the save was written.
func (m *MMU) LoadSaveData(data []byte, now time.Time) error {
	ram := m.mbc.RAM()
	rtc := m.RTC()

	want := len(ram)
	if rtc != nil {
		want += rtcTrailerSize
	}
	if len(data) < want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrTruncatedSave, len(data), want)
	}

	copy(ram, data[:len(ram)])
	if rtc == nil {
		return nil
	}

	var trailer rtcTrailer
	if err := binary.Read(bytes.NewReader(data[len(ram):want]), binary.LittleEndian, &trailer); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncatedSave, err)
	}

	var live, latched [rtcRegisterCount]uint8
	for i := range live {
		live[i] = uint8(trailer.Live[i])
		latched[i] = uint8(trailer.Latched[i])
	}
	rtc.SetRegisters(live, latched)

	if elapsed := now.Unix() - trailer.Timestamp; elapsed > 0 {
		rtc.FastForward(elapsed)
	}
	return nil
}
