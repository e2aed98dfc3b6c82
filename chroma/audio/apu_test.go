package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chroma/chroma/addr"
)

func TestAPU_RegisterMapping(t *testing.T) {
	tests := []struct {
		name     string
		register uint16
		value    uint8
		testFunc func(t *testing.T, apu *APU)
	}{
		{
			name:     "NR52 power control",
			register: addr.NR52, value: 0x80,
			testFunc: func(t *testing.T, apu *APU) {
				assert.True(t, apu.enabled, "APU should be enabled when NR52 bit 7 is set")
			},
		},
		{
			name:     "NR51 panning",
			register: addr.NR51, value: 0xFF, // all channels to both sides
			testFunc: func(t *testing.T, apu *APU) {
				for i := 0; i < 4; i++ {
					assert.True(t, apu.ch[i].left, "Channel %d should be panned left", i)
					assert.True(t, apu.ch[i].right, "Channel %d should be panned right", i)
				}
			},
		},
		{
			name:     "NR50 master volume",
			register: addr.NR50, value: 0x77, // max volume both sides
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, uint8(7), apu.volLeft, "Left volume should be 7")
				assert.Equal(t, uint8(7), apu.volRight, "Right volume should be 7")
			},
		},
		{
			name:     "NR11 duty and length timer",
			register: addr.NR11, value: 0xBF, // duty=2, length timer=63
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, uint8(2), apu.ch[0].duty, "CH1 duty should be 2")
				assert.Equal(t, 1, apu.ch[0].length, "CH1 length should be 64-63")
			},
		},
		{
			name:     "NR12 volume and envelope",
			register: addr.NR12, value: 0xF7, // vol=15, up=0, pace=7
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, uint8(15), apu.ch[0].volume, "CH1 volume should be 15")
				assert.False(t, apu.ch[0].envelopeUp, "CH1 envelope should be down")
				assert.Equal(t, uint8(7), apu.ch[0].envelopePace, "CH1 envelope pace should be 7")
				assert.True(t, apu.ch[0].dacEnabled, "CH1 DAC should be enabled (volume > 0)")
			},
		},
		{
			name:     "Wave RAM write/read",
			register: addr.WaveRAMStart, value: 0xAB,
			testFunc: func(t *testing.T, apu *APU) {
				read := apu.ReadRegister(addr.WaveRAMStart)
				assert.Equal(t, uint8(0xAB), read, "Wave RAM should store and return values")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apu := New()
			// Power on
			apu.WriteRegister(addr.NR52, 0x80)
			apu.WriteRegister(tt.register, tt.value)
			tt.testFunc(t, apu)
		})
	}
}

func TestAPU_ReadMasks(t *testing.T) {
	apu := New()

	// Write-only registers should return 0xFF
	for _, addr := range []uint16{addr.NR13, addr.NR23, addr.NR33, addr.NR41} {
		apu.WriteRegister(addr, 0x00)
		assert.Equal(t, uint8(0xFF), apu.ReadRegister(addr), "Register 0x%X should read as 0xFF (write-only)", addr)
	}
}

func TestAPU_PowerOffLogic(t *testing.T) {
	apu := New()

	// Power on and set up some state
	apu.WriteRegister(addr.NR52, 0x80) // Power on
	apu.WriteRegister(addr.NR10, 0x5E) // CH1 sweep: period=5, down=1, step=6
	apu.WriteRegister(addr.NR11, 0xC3) // CH1: duty=3, length=3
	apu.WriteRegister(addr.NR12, 0xFB) // CH1: volume=15, up=1, pace=3
	apu.WriteRegister(addr.NR50, 0x77) // Master volume: 7/7
	apu.WriteRegister(addr.NR51, 0xFF) // All channels panned to both sides
	apu.WriteRegister(addr.WaveRAMStart, 0xAA)
	apu.WriteRegister(addr.WaveRAMStart+1, 0xBB)

	// Power off
	apu.WriteRegister(addr.NR52, 0x00)
	assert.False(t, apu.enabled, "APU should be disabled")

	// Check that all computed state was cleared
	assert.Equal(t, uint8(0), apu.ch[0].sweepPeriod, "CH1 sweep period should be cleared")
	assert.False(t, apu.ch[0].sweepDown, "CH1 sweep down should be cleared")
	assert.Equal(t, uint8(0), apu.ch[0].sweepStep, "CH1 sweep step should be cleared")
	assert.Equal(t, uint8(0), apu.ch[0].duty, "CH1 duty should be cleared")
	assert.Equal(t, uint8(0), apu.ch[0].volume, "CH1 volume should be cleared")
	assert.False(t, apu.ch[0].envelopeUp, "CH1 envelope up should be cleared")
	assert.Equal(t, uint8(0), apu.volLeft, "Left volume should be cleared")
	assert.Equal(t, uint8(0), apu.volRight, "Right volume should be cleared")
	assert.False(t, apu.ch[0].left, "CH1 left panning should be cleared")
	assert.False(t, apu.ch[0].right, "CH1 right panning should be cleared")
	for i := 0; i < 4; i++ {
		assert.False(t, apu.ch[i].enabled, "Channel %d should be disabled", i)
		assert.False(t, apu.ch[i].dacEnabled, "Channel %d DAC should be disabled", i)
	}

	assert.Equal(t, uint8(0xAA), apu.waveRAM[0], "Wave RAM[0] should be preserved")
	assert.Equal(t, uint8(0xBB), apu.waveRAM[1], "Wave RAM[1] should be preserved")

	// Ignore writes while powered off
	apu.WriteRegister(addr.NR10, 0x77)
	apu.WriteRegister(addr.NR50, 0x55)
	assert.Equal(t, uint8(0), apu.ch[0].sweepPeriod, "CH1 sweep should remain 0 (write ignored)")
	assert.Equal(t, uint8(0), apu.volLeft, "Volume should remain 0 (write ignored)")
	// Wave RAM writes still allowed
	apu.WriteRegister(addr.WaveRAMStart+2, 0xCC)
	assert.Equal(t, uint8(0xCC), apu.waveRAM[2], "Wave RAM should be writable while powered off")
	apu.WriteRegister(addr.NR52, 0x80) // Power back on
	assert.True(t, apu.enabled, "APU should be enabled again")

	// Test that registers become writable again after power on
	apu.WriteRegister(addr.NR52, 0x80)
	apu.WriteRegister(addr.NR10, 0x34)
	apu.WriteRegister(addr.NR50, 0x66)
	assert.Equal(t, uint8(3), apu.ch[0].sweepPeriod, "CH1 sweep period should be writable after power on")
	assert.Equal(t, uint8(6), apu.volLeft, "Volume should be writable after power on")
}

func TestAPU_PostBootState(t *testing.T) {
	apu := New()

	assert.Equal(t, uint8(0xF0), apu.ReadRegister(addr.NR52), "power bit only")
	assert.Equal(t, uint8(0x01), apu.ChannelsActive())
	assert.Equal(t, uint8(0x77), apu.ReadRegister(addr.NR50))
	assert.Equal(t, uint8(0xF3), apu.ReadRegister(addr.NR51))
	assert.Equal(t, uint8(0xBF), apu.ReadRegister(addr.NR11))
	assert.Equal(t, uint8(0xFF), apu.ReadRegister(0xFF15), "unused register")
	assert.Equal(t, uint8(0xFF), apu.ReadRegister(0xFF27), "unused register")

	apu.Reset(false)
	assert.Equal(t, uint8(0x70), apu.ReadRegister(addr.NR52))
}

func TestAPU_FrameSequencer(t *testing.T) {
	t.Run("length expires on the first step", func(t *testing.T) {
		apu := New()
		apu.WriteRegister(addr.NR22, 0xF0)
		apu.WriteRegister(addr.NR21, 0x3F) // length 1
		apu.WriteRegister(addr.NR24, 0xC0) // trigger with length enabled
		require.Equal(t, uint8(0x03), apu.ChannelsActive())

		apu.Advance(cyclesPerStep-4, false)
		assert.Equal(t, uint8(0x03), apu.ChannelsActive())
		apu.Advance(4, false)
		assert.Equal(t, uint8(0x01), apu.ChannelsActive())
	})

	t.Run("envelope is clocked on step 7", func(t *testing.T) {
		apu := New()
		apu.WriteRegister(addr.NR22, 0xF1) // volume 15, down, pace 1
		apu.WriteRegister(addr.NR24, 0x80)

		apu.Advance(cyclesPerStep*7, false)
		assert.Equal(t, uint8(15), apu.ch[1].volume)
		apu.Advance(cyclesPerStep, false)
		assert.Equal(t, uint8(14), apu.ch[1].volume)
	})

	t.Run("sweep moves the period", func(t *testing.T) {
		apu := New()
		apu.WriteRegister(addr.NR10, 0x19) // pace 1, down, step 1
		apu.WriteRegister(addr.NR12, 0xF0)
		apu.WriteRegister(addr.NR13, 0x00)
		apu.WriteRegister(addr.NR14, 0x84) // period 0x400, trigger

		apu.Advance(cyclesPerStep*3, false)
		assert.Equal(t, uint16(0x200), apu.ch[0].period)
		assert.True(t, apu.ch[0].enabled)
	})
}

func TestAPU_SweepOverflowOnTrigger(t *testing.T) {
	apu := New()
	apu.WriteRegister(addr.NR10, 0x11) // pace 1, up, step 1
	apu.WriteRegister(addr.NR12, 0xF0)
	apu.WriteRegister(addr.NR13, 0xFF)
	apu.WriteRegister(addr.NR14, 0x87)

	assert.False(t, apu.ch[0].enabled, "2047 + 1023 overflows 11 bits")
}

func TestAPU_TriggerBehavior(t *testing.T) {
	tests := []struct {
		name    string
		dac     uint16
		dacOn   uint8
		control uint16
		channel int
		length  int
	}{
		{"pulse", addr.NR12, 0xF0, addr.NR14, 0, pulseLength},
		{"wave", addr.NR30, 0x80, addr.NR34, 2, waveLength},
		{"noise", addr.NR42, 0xF0, addr.NR44, 3, noiseLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apu := New()
			apu.WriteRegister(tt.dac, 0x00)
			apu.WriteRegister(tt.control, 0x80)
			assert.False(t, apu.ch[tt.channel].enabled, "DAC off keeps the channel silent")

			apu.ch[tt.channel].length = 0
			apu.WriteRegister(tt.dac, tt.dacOn)
			apu.WriteRegister(tt.control, 0x80)
			assert.True(t, apu.ch[tt.channel].enabled)
			assert.Equal(t, tt.length, apu.ch[tt.channel].length, "zero length reloads to max")
		})
	}
}

func TestAPU_WaveOutput(t *testing.T) {
	apu := New()
	apu.WriteRegister(addr.WaveRAMStart, 0xAB)

	tests := []struct {
		level    uint8
		position uint8
		want     int
	}{
		{0x20, 0, 0x0A},
		{0x20, 1, 0x0B},
		{0x40, 0, 0x05},
		{0x60, 1, 0x02},
		{0x00, 0, 0},
	}

	for _, tt := range tests {
		apu.WriteRegister(addr.NR32, tt.level)
		apu.ch[2].wavePosition = tt.position
		assert.Equal(t, tt.want, apu.output(2), "NR32 0x%02X position %d", tt.level, tt.position)
	}
}

func TestAPU_NoiseLFSR(t *testing.T) {
	c := channel{lfsr: lfsrInitialValue}
	c.clockLFSR()
	assert.Equal(t, uint16(0x3FFF), c.lfsr)

	c = channel{lfsr: lfsrInitialValue, narrow: true}
	c.clockLFSR()
	assert.Equal(t, uint16(0x3FBF), c.lfsr)
}

func TestAPU_SampleGeneration(t *testing.T) {
	t.Run("rate", func(t *testing.T) {
		apu := New()
		apu.Advance(cpuFrequency/8, false)
		assert.Equal(t, SampleRate/8*2, apu.Buffered())
	})

	t.Run("queue is bounded", func(t *testing.T) {
		apu := New()
		apu.Advance(cpuFrequency, false)
		assert.Equal(t, maxBufferedSamples, apu.Buffered())
	})

	t.Run("GetSamples drains and pads", func(t *testing.T) {
		apu := New()
		assert.Equal(t, make([]int16, 4), apu.GetSamples(4))

		apu.Advance(cpuFrequency/8, false)
		assert.Len(t, apu.GetSamples(100), 100)
		assert.Equal(t, SampleRate/8*2-100, apu.Buffered())
	})

	t.Run("a playing channel is audible", func(t *testing.T) {
		apu := New()
		apu.WriteRegister(addr.NR21, 0x80)
		apu.WriteRegister(addr.NR22, 0xF0)
		apu.WriteRegister(addr.NR23, 0x00)
		apu.WriteRegister(addr.NR24, 0x87)

		apu.Advance(cpuFrequency/60, false)
		samples := apu.GetSamples(apu.Buffered())
		low, high := samples[0], samples[0]
		for _, s := range samples {
			low, high = min(low, s), max(high, s)
		}
		assert.Greater(t, high, low)
	})

	t.Run("muted output is silence", func(t *testing.T) {
		apu := New()
		apu.SetMuted(true)
		assert.True(t, apu.Muted())

		apu.Advance(cpuFrequency/60, false)
		for _, s := range apu.GetSamples(apu.Buffered()) {
			require.Zero(t, s)
		}
	})
}

func TestAPU_DoubleSpeedHalvesCycles(t *testing.T) {
	apu := New()
	apu.Advance(3, true)
	assert.Equal(t, 1, apu.frameCycles)
	apu.Advance(3, true)
	assert.Equal(t, 3, apu.frameCycles)

	apu.Advance(cyclesPerStep*2, true)
	assert.Equal(t, 1, apu.frameStep)
}

func TestAPU_ChannelControls(t *testing.T) {
	apu := New()
	apu.WriteRegister(addr.NR22, 0xF0)
	apu.WriteRegister(addr.NR24, 0x80)

	ch1, ch2, ch3, ch4 := apu.GetChannelStatus()
	assert.Equal(t, []bool{true, true, false, false}, []bool{ch1, ch2, ch3, ch4})

	apu.ToggleChannel(1)
	ch1, ch2, _, _ = apu.GetChannelStatus()
	assert.False(t, ch1)
	assert.True(t, ch2)

	apu.SoloChannel(1)
	ch1, ch2, _, _ = apu.GetChannelStatus()
	assert.True(t, ch1)
	assert.False(t, ch2)

	apu.UnmuteAll()
	ch1, ch2, _, _ = apu.GetChannelStatus()
	assert.True(t, ch1)
	assert.True(t, ch2)

	apu.ToggleChannel(9)
}
