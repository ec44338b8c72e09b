package component

import "github.com/d5/tengo/v2"

// Enemy is a scripted room-scoped enemy. Script is a per-entity clone of the
// archetype's compiled behaviour.
type Enemy struct {
	ID          string
	Type        string
	StartX      float64
	Dir         float64
	PatrolSpeed float64
	ChaseSpeed  float64
	ChaseRange  float64
	PatrolRange float64
	Script      *tengo.Compiled
}

var EnemyComponent = NewComponent[Enemy]()
