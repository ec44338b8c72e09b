package component

// Pickup is a collectible that grants an ability on overlap.
type Pickup struct {
	CollectibleID   string
	AbilityID       string
	BaseY           float64
	BobAmplitude    float64
	BobSpeed        float64
	BobPhase        float64
	CollisionWidth  float64
	CollisionHeight float64
}

var PickupComponent = NewComponent[Pickup]()
