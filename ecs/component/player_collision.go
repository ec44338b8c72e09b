package component

// PlayerCollision stores contact flags derived from physics this tick.
type PlayerCollision struct {
	Grounded     bool
	BlockedLeft  bool
	BlockedRight bool
}

var PlayerCollisionComponent = NewComponent[PlayerCollision]()
