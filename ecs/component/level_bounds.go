package component

import "image/color"

// LevelBounds stores the size and backdrop of the current room.
type LevelBounds struct {
	Width      float64
	Height     float64
	Background color.Color
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
