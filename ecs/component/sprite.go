package component

import "image/color"

// Sprite draws the entity as a filled rectangle centered on Transform.
// Lower layers draw first.
type Sprite struct {
	Width  float64
	Height float64
	Color  color.Color
	Layer  int
}

var SpriteComponent = NewComponent[Sprite]()
