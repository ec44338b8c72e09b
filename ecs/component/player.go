package component

import "github.com/milk9111/metroidvania/movement"

// Player owns the movement engine driving the player body.
type Player struct {
	Engine *movement.Engine
}

var PlayerComponent = NewComponent[Player]()
