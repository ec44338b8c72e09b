package component

// Health tracks hit points. Invulnerable counts down in seconds; while it is
// positive incoming damage is ignored.
type Health struct {
	Current       int
	Max           int
	Invulnerable  float64
	Invincibility float64
}

func (h *Health) Alive() bool {
	return h.Current > 0
}

var HealthComponent = NewComponent[Health]()
