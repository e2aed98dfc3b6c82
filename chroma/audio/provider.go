package audio

// Unit is the sound hardware as the memory bus sees it.
type Unit interface {
	WriteRegister(address uint16, value uint8)
	ReadRegister(address uint16) uint8
	// Advance runs the unit for cycles CPU cycles.
	Advance(cycles int, doubleSpeed bool)
	// ChannelsActive returns the channel status bits of NR52.
	ChannelsActive() uint8
}

// Provider is what audio outputs pull samples from.
type Provider interface {
	// GetSamples retrieves interleaved stereo samples for playback
	GetSamples(count int) []int16

	// Audio debugging controls

	ToggleChannel(channel int)
	SoloChannel(channel int)
	GetChannelStatus() (ch1, ch2, ch3, ch4 bool)
}

var (
	_ Unit     = (*APU)(nil)
	_ Provider = (*APU)(nil)
)
