package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorQuit

	// Audio controls
	AudioMuteToggle
	AudioToggleChannel1
	AudioToggleChannel2
	AudioToggleChannel3
	AudioToggleChannel4
	AudioSoloChannel1
	AudioSoloChannel2
	AudioSoloChannel3
	AudioSoloChannel4
	AudioUnmuteAll

	// Logging
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

var names = map[Action]string{
	GBButtonA:             "A",
	GBButtonB:             "B",
	GBButtonStart:         "Start",
	GBButtonSelect:        "Select",
	GBDPadUp:              "Up",
	GBDPadDown:            "Down",
	GBDPadLeft:            "Left",
	GBDPadRight:           "Right",
	EmulatorDebugToggle:   "DebugToggle",
	EmulatorSnapshot:      "Snapshot",
	EmulatorPauseToggle:   "PauseToggle",
	EmulatorStepFrame:     "StepFrame",
	EmulatorQuit:          "Quit",
	AudioMuteToggle:       "MuteToggle",
	AudioToggleChannel1:   "ToggleChannel1",
	AudioToggleChannel2:   "ToggleChannel2",
	AudioToggleChannel3:   "ToggleChannel3",
	AudioToggleChannel4:   "ToggleChannel4",
	AudioSoloChannel1:     "SoloChannel1",
	AudioSoloChannel2:     "SoloChannel2",
	AudioSoloChannel3:     "SoloChannel3",
	AudioSoloChannel4:     "SoloChannel4",
	AudioUnmuteAll:        "UnmuteAll",
	DebugLogLevelIncrease: "LogLevelIncrease",
	DebugLogLevelDecrease: "LogLevelDecrease",
}

func (a Action) String() string {
	if name, ok := names[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// IsGameBoy reports whether the action maps to a joypad line.
func (a Action) IsGameBoy() bool {
	return a >= GBButtonA && a <= GBDPadRight
}

// Channel returns the 1-based audio channel an audio toggle or solo action
// targets, or 0 for any other action.
func (a Action) Channel() int {
	switch {
	case a >= AudioToggleChannel1 && a <= AudioToggleChannel4:
		return int(a-AudioToggleChannel1) + 1
	case a >= AudioSoloChannel1 && a <= AudioSoloChannel4:
		return int(a-AudioSoloChannel1) + 1
	}
	return 0
}
