package audio

import (
	"sync"

	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/bit"
)

// channel holds the state of one of the four voices. Not every field is
// used by every voice: duty is pulse only, sweep is channel 1 only, and so on.
type channel struct {
	enabled    bool
	dacEnabled bool
	left       bool
	right      bool

	length        int
	lengthEnabled bool

	// period is the 11 bit frequency value, freqTimer counts down to the
	// next waveform step
	period    uint16
	freqTimer int

	duty     uint8
	dutyStep uint8

	volume        uint8
	envelopeUp    bool
	envelopePace  uint8
	envelopeTimer uint8

	sweepPeriod  uint8
	sweepDown    bool
	sweepStep    uint8
	sweepTimer   uint8
	sweepEnabled bool
	shadow       uint16

	outputLevel  uint8
	wavePosition uint8

	lfsr       uint16
	clockShift uint8
	narrow     bool
	divisor    uint8

	// Debug
	muted bool
}

// APU implements the Game Boy's Audio Processing Unit
// Reference: https://gbdev.io/pandocs/Audio.html
type APU struct {
	// mu guards everything below; the emulation loop writes registers and
	// advances the unit while an audio output drains samples
	mu sync.Mutex

	enabled   bool               // Master audio enable (NR52 bit 7)
	registers [0x17]byte         // FF10-FF26 as last written
	waveRAM   [waveRAMSize]uint8 // FF30-FF3F
	ch        [4]channel         // indexed 0-3 for channels 1-4
	volLeft   uint8              // NR50 bits 6-4
	volRight  uint8              // NR50 bits 2-0

	// Frame sequencer state
	// Runs at 512 Hz, advances every cyclesPerStep (8192) CPU cycles
	frameStep   int
	frameCycles int

	// halfCycle keeps the odd cycle when halving double speed counts
	halfCycle int

	// samples is a ring of interleaved stereo samples, oldest at head
	sampleCounter int
	samples       [maxBufferedSamples]int16
	head          int
	size          int
	muted         bool
}

// New creates an APU in the state the boot ROM leaves it in.
func New() *APU {
	a := &APU{}
	a.Reset(true)
	return a
}

// Reset powers the unit down. With postBoot the registers are then
// programmed as the boot ROM leaves them.
// Reference: https://gbdev.io/pandocs/Power_Up_Sequence.html#hardware-registers
func (a *APU) Reset(postBoot bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.powerOff()
	a.frameCycles = 0
	a.halfCycle = 0
	a.sampleCounter = 0
	a.head, a.size = 0, 0
	for i := range a.ch {
		a.ch[i] = channel{lfsr: lfsrInitialValue}
	}
	if !postBoot {
		return
	}

	defaults := []struct {
		address uint16
		value   uint8
	}{
		{addr.NR52, 0xF1},
		{addr.NR10, 0x80}, {addr.NR11, 0xBF}, {addr.NR12, 0xF3}, {addr.NR14, 0xBF},
		{addr.NR21, 0x3F}, {addr.NR22, 0x00}, {addr.NR24, 0xBF},
		{addr.NR30, 0x7F}, {addr.NR31, 0xFF}, {addr.NR32, 0x9F}, {addr.NR34, 0xBF},
		{addr.NR41, 0xFF}, {addr.NR42, 0x00}, {addr.NR43, 0x00}, {addr.NR44, 0xBF},
		{addr.NR50, 0x77}, {addr.NR51, 0xF3},
	}
	for _, d := range defaults {
		a.write(d.address, d.value)
	}
	// the boot chime on channel 1 has faded out by the time the cartridge runs
	a.ch[0].volume = 0
}

// Advance runs the unit for cycles CPU cycles. The sound hardware does
// not speed up with the CPU, so in double speed it sees half of them.
func (a *APU) Advance(cycles int, doubleSpeed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if doubleSpeed {
		cycles += a.halfCycle
		a.halfCycle = cycles & 1
		cycles >>= 1
	}

	if a.enabled {
		a.frameCycles += cycles
		for a.frameCycles >= cyclesPerStep {
			a.frameCycles -= cyclesPerStep
			a.updateFrameSequencer()
		}
		a.clockTimers(cycles)
	}

	a.sampleCounter += cycles * SampleRate
	for a.sampleCounter >= cpuFrequency {
		a.sampleCounter -= cpuFrequency
		a.generateSample()
	}
}

// updateFrameSequencer advances the frame sequencer which controls
// sweep, length counter, and envelope timing
// The frame sequencer has 8 steps (0-7) and runs at 512 Hz
// Frame sequencer step actions:
//
//	Step   Length  Sweep  Envelope
//	0      Clock   -      -
//	1      -       -      -
//	2      Clock   Clock  -
//	3      -       -      -
//	4      Clock   -      -
//	5      -       -      -
//	6      Clock   Clock  -
//	7      -       -      Clock
//
// Reference: https://gbdev.io/pandocs/Audio_details.html#frame-sequencer
func (a *APU) updateFrameSequencer() {
	switch a.frameStep {
	case 0, 4:
		a.updateLengthCounters()
	case 2, 6:
		a.updateLengthCounters()
		a.updateSweep()
	case 7:
		a.updateEnvelopes()
	}
	a.frameStep = (a.frameStep + 1) & 7
}

func (a *APU) updateLengthCounters() {
	for i := range a.ch {
		c := &a.ch[i]
		if c.lengthEnabled && c.length > 0 {
			c.length--
			if c.length == 0 {
				c.enabled = false
			}
		}
	}
}

func (a *APU) updateSweep() {
	c := &a.ch[0]
	if c.sweepTimer > 0 {
		c.sweepTimer--
	}
	if c.sweepTimer != 0 {
		return
	}
	c.sweepTimer = sweepReload(c.sweepPeriod)
	if !c.sweepEnabled || c.sweepPeriod == 0 {
		return
	}

	next, ok := c.sweepTarget()
	if !ok {
		c.enabled = false
		return
	}
	if c.sweepStep != 0 {
		c.shadow = next
		c.period = next
		// a second overflow check runs with the new value
		if _, ok := c.sweepTarget(); !ok {
			c.enabled = false
		}
	}
}

// sweepTarget computes the next sweep frequency. ok is false when it
// overflows 11 bits, which silences the channel.
func (c *channel) sweepTarget() (uint16, bool) {
	delta := c.shadow >> c.sweepStep
	if c.sweepDown {
		return c.shadow - delta, true
	}
	next := c.shadow + delta
	return next, next <= maxPeriod
}

// sweepReload returns the sweep timer period; 0 behaves as 8.
func sweepReload(period uint8) uint8 {
	if period == 0 {
		return 8
	}
	return period
}

func (a *APU) updateEnvelopes() {
	// Only channels 0, 1, 3 have envelopes (ch1, ch2, ch4)
	for _, i := range []int{0, 1, 3} {
		c := &a.ch[i]
		if c.envelopePace == 0 {
			continue
		}
		if c.envelopeTimer > 0 {
			c.envelopeTimer--
		}
		if c.envelopeTimer != 0 {
			continue
		}
		c.envelopeTimer = c.envelopePace
		if c.envelopeUp && c.volume < 15 {
			c.volume++
		} else if !c.envelopeUp && c.volume > 0 {
			c.volume--
		}
	}
}

// timerPeriod returns the cycles between two waveform steps of a channel.
func (a *APU) timerPeriod(index int) int {
	c := &a.ch[index]
	switch index {
	case 0, 1:
		return (2048 - int(c.period)) * 4
	case 2:
		return (2048 - int(c.period)) * 2
	default:
		return noiseDivisors[c.divisor] << c.clockShift
	}
}

func (a *APU) clockTimers(cycles int) {
	for i := range a.ch {
		c := &a.ch[i]
		if !c.enabled {
			continue
		}
		c.freqTimer -= cycles
		for c.freqTimer <= 0 {
			c.freqTimer += a.timerPeriod(i)
			switch i {
			case 0, 1:
				c.dutyStep = (c.dutyStep + 1) & 7
			case 2:
				c.wavePosition = (c.wavePosition + 1) & 31
			case 3:
				c.clockLFSR()
			}
		}
	}
}

func (c *channel) clockLFSR() {
	feedback := (c.lfsr & 1) ^ ((c.lfsr >> 1) & 1)
	c.lfsr = (c.lfsr >> 1) | (feedback << 14)
	// 7 bit mode also feeds bit 6
	if c.narrow {
		c.lfsr = (c.lfsr &^ 0x40) | (feedback << 6)
	}
}

// output returns the digital level (0-15) a channel currently produces.
func (a *APU) output(index int) int {
	c := &a.ch[index]
	switch index {
	case 0, 1:
		if bit.IsSet(7-c.dutyStep, dutyPatterns[c.duty]) {
			return int(c.volume)
		}
		return 0
	case 2:
		sample := a.waveRAM[c.wavePosition/2]
		if c.wavePosition&1 == 0 {
			sample >>= 4
		}
		return int((sample & 0x0F) >> waveShifts[c.outputLevel])
	default:
		if c.lfsr&1 == 0 {
			return int(c.volume)
		}
		return 0
	}
}

func (a *APU) generateSample() {
	var left, right int
	if a.enabled && !a.muted {
		for i := range a.ch {
			c := &a.ch[i]
			if !c.enabled || !c.dacEnabled || c.muted {
				continue
			}
			// the DAC maps 0..15 onto a signed swing
			analog := a.output(i)*2 - 15
			if c.left {
				left += analog
			}
			if c.right {
				right += analog
			}
		}
		left *= int(a.volLeft) + 1
		right *= int(a.volRight) + 1
	}

	a.push(int16(left*sampleScale), int16(right*sampleScale))
}

// push queues one stereo frame, dropping the oldest one when full.
func (a *APU) push(left, right int16) {
	if a.size == maxBufferedSamples {
		a.head = (a.head + 2) % maxBufferedSamples
		a.size -= 2
	}
	tail := a.head + a.size
	a.samples[tail%maxBufferedSamples] = left
	a.samples[(tail+1)%maxBufferedSamples] = right
	a.size += 2
}

// GetSamples moves up to count queued samples into a new slice. The
// result always has count entries; missing samples are silence.
func (a *APU) GetSamples(count int) []int16 {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]int16, count)
	n := min(count, a.size)
	for i := 0; i < n; i++ {
		out[i] = a.samples[(a.head+i)%maxBufferedSamples]
	}
	a.head = (a.head + n) % maxBufferedSamples
	a.size -= n
	return out
}

// Buffered returns how many samples are queued.
func (a *APU) Buffered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

// ReadRegister reads an audio register as the CPU sees it.
func (a *APU) ReadRegister(address uint16) uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd:
		return a.waveRAM[address-addr.WaveRAMStart]
	case address == addr.NR52:
		// the channel status bits are folded in by the bus
		status := readMasks[address-addr.AudioStart]
		if a.enabled {
			status |= 0x80
		}
		return status
	case address < addr.AudioStart || address > addr.NR52:
		return 0xFF
	}
	index := address - addr.AudioStart
	return a.registers[index] | readMasks[index]
}

// ChannelsActive returns one bit per playing channel, as in NR52.
func (a *APU) ChannelsActive() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.channelBits()
}

func (a *APU) channelBits() uint8 {
	var bits uint8
	for i := range a.ch {
		if a.ch[i].enabled {
			bits |= 1 << i
		}
	}
	return bits
}

// WriteRegister writes to an audio register
func (a *APU) WriteRegister(address uint16, value uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.write(address, value)
}

func (a *APU) write(address uint16, value uint8) {
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		// wave RAM stays writable while powered off
		a.waveRAM[address-addr.WaveRAMStart] = value
		return
	}
	if address < addr.AudioStart || address > addr.NR52 {
		return
	}

	if address == addr.NR52 {
		switch on := bit.IsSet(7, value); {
		case on && !a.enabled:
			a.enabled = true
			a.frameStep = 0
			a.frameCycles = 0
		case !on && a.enabled:
			a.powerOff()
		}
		return
	}
	if !a.enabled {
		return
	}

	a.registers[address-addr.AudioStart] = value
	a.mapRegisterToState(address, value)
}

// powerOff clears every register but wave RAM and silences all channels.
func (a *APU) powerOff() {
	a.enabled = false
	a.registers = [0x17]byte{}
	a.volLeft, a.volRight = 0, 0
	for i := range a.ch {
		muted := a.ch[i].muted
		a.ch[i] = channel{lfsr: lfsrInitialValue, muted: muted}
	}
}

// updateFrequencyLow updates the low 8 bits of a frequency value
func updateFrequencyLow(current uint16, lowByte uint8) uint16 {
	return (current & 0x700) | uint16(lowByte)
}

// updateFrequencyHigh updates the high 3 bits of a frequency value
func updateFrequencyHigh(current uint16, highBits uint8) uint16 {
	return (current & 0xFF) | (uint16(highBits&0x07) << 8)
}

func (c *channel) writeEnvelope(value uint8) {
	c.envelopeUp = bit.IsSet(3, value)
	c.envelopePace = value & 0x07
	// DAC enabled if bits 3-7 are not all zero
	c.dacEnabled = value&0xF8 != 0
	if !c.dacEnabled {
		c.enabled = false
	}
}

// mapRegisterToState updates internal channel state based on register writes
func (a *APU) mapRegisterToState(address uint16, value uint8) {
	switch address {
	case addr.NR10:
		c := &a.ch[0]
		c.sweepPeriod = (value >> 4) & 0x07
		c.sweepDown = bit.IsSet(3, value)
		c.sweepStep = value & 0x07
	case addr.NR11, addr.NR21:
		c := &a.ch[channelFor(address)]
		c.duty = value >> 6
		c.length = pulseLength - int(value&0x3F)
	case addr.NR12, addr.NR22, addr.NR42:
		c := &a.ch[channelFor(address)]
		c.volume = value >> 4
		c.writeEnvelope(value)
	case addr.NR13, addr.NR23, addr.NR33:
		c := &a.ch[channelFor(address)]
		c.period = updateFrequencyLow(c.period, value)
	case addr.NR14, addr.NR24, addr.NR34, addr.NR44:
		index := channelFor(address)
		c := &a.ch[index]
		if address != addr.NR44 {
			c.period = updateFrequencyHigh(c.period, value)
		}
		c.lengthEnabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			a.trigger(index)
		}
	case addr.NR30:
		c := &a.ch[2]
		c.dacEnabled = bit.IsSet(7, value)
		if !c.dacEnabled {
			c.enabled = false
		}
	case addr.NR31:
		a.ch[2].length = waveLength - int(value)
	case addr.NR32:
		a.ch[2].outputLevel = (value >> 5) & 0x03
	case addr.NR41:
		a.ch[3].length = noiseLength - int(value&0x3F)
	case addr.NR43:
		c := &a.ch[3]
		c.clockShift = value >> 4
		c.narrow = bit.IsSet(3, value)
		c.divisor = value & 0x07
	case addr.NR50:
		a.volLeft = (value >> 4) & 0x07
		a.volRight = value & 0x07
	case addr.NR51:
		for i := range a.ch {
			a.ch[i].right = bit.IsSet(uint8(i), value)
			a.ch[i].left = bit.IsSet(uint8(i+4), value)
		}
	}
}

// channelFor maps a channel register to its channel index.
func channelFor(address uint16) int {
	switch {
	case address <= addr.NR14:
		return 0
	case address <= addr.NR24:
		return 1
	case address <= addr.NR34:
		return 2
	default:
		return 3
	}
}

// envelopeRegisters holds NRx2 for the channels that have an envelope.
var envelopeRegisters = [4]uint16{addr.NR12, addr.NR22, 0, addr.NR42}

// trigger restarts a channel (NRx4 bit 7). It only starts playing if its
// DAC is on.
func (a *APU) trigger(index int) {
	c := &a.ch[index]
	c.enabled = c.dacEnabled

	if c.length == 0 {
		c.length = pulseLength
		if index == 2 {
			c.length = waveLength
		}
	}
	c.freqTimer = a.timerPeriod(index)

	switch index {
	case 2:
		c.wavePosition = 0
	case 3:
		c.lfsr = lfsrInitialValue
	}

	if envelope := envelopeRegisters[index]; envelope != 0 {
		c.volume = a.registers[envelope-addr.AudioStart] >> 4
		c.envelopeTimer = c.envelopePace
	}

	if index == 0 {
		c.shadow = c.period
		c.sweepTimer = sweepReload(c.sweepPeriod)
		c.sweepEnabled = c.sweepPeriod != 0 || c.sweepStep != 0
		if c.sweepStep != 0 {
			if _, ok := c.sweepTarget(); !ok {
				c.enabled = false
			}
		}
	}
}

// SetMuted silences the output without stopping emulation.
func (a *APU) SetMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = muted
}

func (a *APU) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// ToggleChannel toggles muting for a specific channel (1-4)
func (a *APU) ToggleChannel(channel int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if channel >= 1 && channel <= 4 {
		a.ch[channel-1].muted = !a.ch[channel-1].muted
	}
}

// SoloChannel mutes all channels except the specified one
func (a *APU) SoloChannel(channel int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.ch {
		a.ch[i].muted = i != channel-1
	}
}

// UnmuteAll unmutes all channels
func (a *APU) UnmuteAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.ch {
		a.ch[i].muted = false
	}
}

// GetChannelStatus reports, per channel, whether it is playing and audible
func (a *APU) GetChannelStatus() (ch1, ch2, ch3, ch4 bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	audible := func(i int) bool { return a.ch[i].enabled && !a.ch[i].muted }
	return audible(0), audible(1), audible(2), audible(3)
}
