package action

// Action represents input actions the engine and its stages react to
type Action int

const (
	// Player controls, delivered to the running stage
	PlayerUp Action = iota
	PlayerDown
	PlayerLeft
	PlayerRight
	PlayerFire

	// Engine features
	EnginePauseToggle
	EngineStepFrame
	EngineSnapshot
	EngineDumpCopper
	EngineDebugToggle
	EngineQuit
)

var names = map[Action]string{
	PlayerUp:          "player-up",
	PlayerDown:        "player-down",
	PlayerLeft:        "player-left",
	PlayerRight:       "player-right",
	PlayerFire:        "player-fire",
	EnginePauseToggle: "pause",
	EngineStepFrame:   "step-frame",
	EngineSnapshot:    "snapshot",
	EngineDumpCopper:  "dump-copper",
	EngineDebugToggle: "debug",
	EngineQuit:        "quit",
}

func (a Action) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return "unknown"
}

// IsPlayer reports whether a is a player control. Player controls are
// tracked per frame and never debounced.
func (a Action) IsPlayer() bool {
	return a <= PlayerFire
}
