package audio

// Timing constants
// Reference: https://gbdev.io/pandocs/Audio_details.html
const (
	// cpuFrequency is the reference clock the sound hardware runs on,
	// whatever the CPU speed.
	cpuFrequency = 4194304

	// SampleRate is the rate of the produced stereo stream.
	SampleRate = 48000

	// cyclesPerStep is the number of CPU cycles per frame sequencer tick.
	// The frame sequencer runs at 512 Hz: 4194304 Hz / 512 Hz = 8192 t-cycles
	cyclesPerStep = 8192

	// maxBufferedSamples bounds the queue to a quarter second of
	// interleaved stereo samples; older samples are dropped first.
	maxBufferedSamples = SampleRate / 4 * 2
)

// Channel constants
const (
	// waveRAMSize is the size of wave pattern RAM in bytes (16 bytes = 32 nibbles)
	waveRAMSize = 16

	pulseLength = 64
	waveLength  = 256
	noiseLength = 64

	lfsrInitialValue = 0x7FFF
	maxPeriod        = 2047

	// sampleScale maps the loudest mix (4 channels x 15 x volume 8) onto int16.
	sampleScale = 68
)

// dutyPatterns holds the 8 step waveforms for 12.5%, 25%, 50% and 75%
// duty, most significant bit first.
var dutyPatterns = [4]uint8{0x01, 0x81, 0x87, 0x7E}

// noiseDivisors maps the NR43 divisor code to a base period in cycles.
var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// waveShifts maps the NR32 output level to a right shift of the sample;
// level 0 mutes the channel.
var waveShifts = [4]uint8{4, 0, 1, 2}

// readMasks lists the bits of FF10-FF26 that always read back as 1.
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
var readMasks = [0x17]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70,             // NR50-NR52
}
