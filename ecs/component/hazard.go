package component

// Hazard damages the player on overlap. Bounds are centered on Transform.
type Hazard struct {
	Damage int
	Width  float64
	Height float64
}

var HazardComponent = NewComponent[Hazard]()
