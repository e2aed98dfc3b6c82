package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGameBoy(t *testing.T) {
	for a := GBButtonA; a <= GBDPadRight; a++ {
		assert.True(t, a.IsGameBoy(), a.String())
	}
	assert.False(t, EmulatorQuit.IsGameBoy())
	assert.False(t, AudioSoloChannel1.IsGameBoy())
}

func TestChannel(t *testing.T) {
	assert.Equal(t, 1, AudioToggleChannel1.Channel())
	assert.Equal(t, 4, AudioToggleChannel4.Channel())
	assert.Equal(t, 3, AudioSoloChannel3.Channel())
	assert.Equal(t, 0, AudioMuteToggle.Channel())
	assert.Equal(t, 0, GBButtonA.Channel())
}

func TestString(t *testing.T) {
	assert.Equal(t, "Start", GBButtonStart.String())
	assert.Equal(t, "Action(999)", Action(999).String())
}
