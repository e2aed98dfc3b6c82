package memory

// Clock register indexes, in the order they are selected (0x08-0x0C)
// and persisted.
const (
	RTCSeconds = iota
	RTCMinutes
	RTCHours
	RTCDayLow
	RTCDayHigh
	rtcRegisterCount
)

const (
	rtcCyclesPerSecond = 4194304
	rtcDayHighBit      = 0x01
	rtcHaltBit         = 0x40
	rtcCarryBit        = 0x80
)

var rtcWriteMasks = [rtcRegisterCount]uint8{0x3F, 0x3F, 0x1F, 0xFF, 0xC1}

// RTC is the MBC3 real time clock. The cartridge program only ever reads
// the latched copy, which is refreshed from the live counters when 0 and
// then 1 are written to the latch register.
type RTC struct {
	live       [rtcRegisterCount]uint8
	latched    [rtcRegisterCount]uint8
	latchArmed bool
	subSecond  int
}

// Read returns a latched register.
func (r *RTC) Read(reg int) uint8 {
	return r.latched[reg]
}

// Write sets a live register. Writing the seconds resets the sub-second
// divider.
func (r *RTC) Write(reg int, value uint8) {
	value &= rtcWriteMasks[reg]
	r.live[reg] = value
	r.latched[reg] = value
	if reg == RTCSeconds {
		r.subSecond = 0
	}
}

// Latch implements the 0 -> 1 latch sequence.
func (r *RTC) Latch(value uint8) {
	if value == 0x01 && r.latchArmed {
		r.latched = r.live
	}
	r.latchArmed = value == 0x00
}

func (r *RTC) halted() bool {
	return r.live[RTCDayHigh]&rtcHaltBit != 0
}

// Tick advances the clock by the given amount of 4MHz cycles.
func (r *RTC) Tick(cycles int) {
	if r.halted() {
		return
	}
	r.subSecond += cycles
	for r.subSecond >= rtcCyclesPerSecond {
		r.subSecond -= rtcCyclesPerSecond
		r.advanceSecond()
	}
}

// advanceSecond mirrors the hardware counter chain: registers that were
// written with out of range values keep counting up to their bit width
// before wrapping, without carrying into the next register.
func (r *RTC) advanceSecond() {
	r.live[RTCSeconds] = (r.live[RTCSeconds] + 1) & 0x3F
	if r.live[RTCSeconds] != 60 {
		return
	}
	r.live[RTCSeconds] = 0

	r.live[RTCMinutes] = (r.live[RTCMinutes] + 1) & 0x3F
	if r.live[RTCMinutes] != 60 {
		return
	}
	r.live[RTCMinutes] = 0

	r.live[RTCHours] = (r.live[RTCHours] + 1) & 0x1F
	if r.live[RTCHours] != 24 {
		return
	}
	r.live[RTCHours] = 0

	r.setDays(r.days() + 1)
}

func (r *RTC) days() int {
	return int(r.live[RTCDayLow]) | int(r.live[RTCDayHigh]&rtcDayHighBit)<<8
}

// setDays stores a 9 bit day counter, raising the carry flag on overflow.
func (r *RTC) setDays(days int) {
	if days > 0x1FF {
		r.live[RTCDayHigh] |= rtcCarryBit
		days &= 0x1FF
	}
	r.live[RTCDayLow] = uint8(days)
	r.live[RTCDayHigh] = r.live[RTCDayHigh]&^rtcDayHighBit | uint8(days>>8)&rtcDayHighBit
}

// FastForward adds whole seconds of wall clock time to the live counters.
// Used when loading a save to account for the time the emulator was off.
func (r *RTC) FastForward(seconds int64) {
	if seconds <= 0 || r.halted() {
		return
	}

	total := int64(r.live[RTCSeconds]) + seconds
	r.live[RTCSeconds] = uint8(total % 60)
	total /= 60

	total += int64(r.live[RTCMinutes])
	r.live[RTCMinutes] = uint8(total % 60)
	total /= 60

	total += int64(r.live[RTCHours])
	r.live[RTCHours] = uint8(total % 24)
	total /= 24

	days := int64(r.days()) + total
	if days > 0x1FF {
		r.live[RTCDayHigh] |= rtcCarryBit
		days %= 0x200
	}
	r.setDays(int(days))
}

// Registers returns copies of the live and latched register sets.
func (r *RTC) Registers() (live, latched [rtcRegisterCount]uint8) {
	return r.live, r.latched
}

// SetRegisters restores both register sets, as read from a save file.
func (r *RTC) SetRegisters(live, latched [rtcRegisterCount]uint8) {
	for i := range live {
		r.live[i] = live[i] & rtcWriteMasks[i]
		r.latched[i] = latched[i] & rtcWriteMasks[i]
	}
	r.subSecond = 0
}
