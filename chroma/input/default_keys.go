package input

import "github.com/valerio/go-chroma/chroma/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends translate their native key names to these and may extend them.
var DefaultKeyMap = map[string]action.Action{
	// Game Boy controls
	"z":         action.GBButtonA,
	"x":         action.GBButtonB,
	"Enter":     action.GBButtonStart,
	"Backspace": action.GBButtonSelect,
	"Shift":     action.GBButtonSelect,
	"Up":        action.GBDPadUp,
	"Down":      action.GBDPadDown,
	"Left":      action.GBDPadLeft,
	"Right":     action.GBDPadRight,

	// WASD
	"w": action.GBDPadUp,
	"s": action.GBDPadDown,
	"a": action.GBDPadLeft,
	"d": action.GBDPadRight,

	// Emulator controls
	"Space":  action.EmulatorPauseToggle,
	"p":      action.EmulatorPauseToggle,
	"f":      action.EmulatorStepFrame,
	"F9":     action.EmulatorSnapshot,
	"F10":    action.EmulatorDebugToggle,
	"Escape": action.EmulatorQuit,
	"q":      action.EmulatorQuit,

	// Audio
	"m":  action.AudioMuteToggle,
	"F1": action.AudioToggleChannel1,
	"F2": action.AudioToggleChannel2,
	"F3": action.AudioToggleChannel3,
	"F4": action.AudioToggleChannel4,
	"1":  action.AudioSoloChannel1,
	"2":  action.AudioSoloChannel2,
	"3":  action.AudioSoloChannel3,
	"4":  action.AudioSoloChannel4,
	"0":  action.AudioUnmuteAll,

	// Logging
	"+": action.DebugLogLevelIncrease,
	"=": action.DebugLogLevelIncrease, // without shift
	"-": action.DebugLogLevelDecrease,
	"_": action.DebugLogLevelDecrease, // with shift
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
