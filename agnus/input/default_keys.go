package input

import "github.com/valerio/go-agnus/agnus/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends can use these mappings as a base and override/extend as needed.
var DefaultKeyMap = map[string]action.Action{
	"Up":    action.PlayerUp,
	"Down":  action.PlayerDown,
	"Left":  action.PlayerLeft,
	"Right": action.PlayerRight,
	"Ctrl":  action.PlayerFire,
	"z":     action.PlayerFire,

	// WASD
	"w": action.PlayerUp,
	"s": action.PlayerDown,
	"a": action.PlayerLeft,
	"d": action.PlayerRight,

	"Space":  action.EnginePauseToggle,
	"p":      action.EnginePauseToggle,
	"o":      action.EngineStepFrame,
	"F9":     action.EngineSnapshot,
	"F10":    action.EngineDebugToggle,
	"F11":    action.EngineDumpCopper,
	"Escape": action.EngineQuit,
	"q":      action.EngineQuit,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
