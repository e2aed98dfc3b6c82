package ebitengine

import (
	"strings"

	"github.com/valerio/go-chroma/chroma/input"
	"github.com/valerio/go-chroma/chroma/input/action"
)

var keyAliases = map[string]string{
	"ArrowUp":    "Up",
	"ArrowDown":  "Down",
	"ArrowLeft":  "Left",
	"ArrowRight": "Right",
	"ShiftLeft":  "Shift",
	"ShiftRight": "Shift",
	"Minus":      "-",
	"Equal":      "=",
}

// keyName converts an ebiten key name to the names used by the default
// key map.
func keyName(name string) string {
	if alias, ok := keyAliases[name]; ok {
		return alias
	}
	if digit, ok := strings.CutPrefix(name, "Digit"); ok {
		return digit
	}
	if len(name) == 1 {
		return strings.ToLower(name)
	}
	return name
}

// mapKeyName looks up the action bound to an ebiten key name.
func mapKeyName(name string) (action.Action, bool) {
	return input.GetDefaultMapping(keyName(name))
}
