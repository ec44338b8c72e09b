package component

// RespawnRequest asks for the player to be moved to X, Y with full health
// and a reset movement state.
type RespawnRequest struct {
	X float64
	Y float64
}

var RespawnRequestComponent = NewComponent[RespawnRequest]()
