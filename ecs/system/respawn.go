package system

import (
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
)

// RespawnSystem performs pending respawn requests: the entity is moved, its
// health refilled and its movement state reset. It runs after physics so the
// teleport is not undone by the step.
type RespawnSystem struct {
	physics *PhysicsSystem
}

func NewRespawnSystem(physics *PhysicsSystem) *RespawnSystem {
	return &RespawnSystem{physics: physics}
}

func (s *RespawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.RespawnRequestComponent.Kind(), func(e ecs.Entity, req *component.RespawnRequest) {
		s.physics.Teleport(w, e, req.X, req.Y)

		if h, ok := ecs.Get(w, e, component.HealthComponent.Kind()); ok {
			h.Current = h.Max
			h.Invulnerable = h.Invincibility
		}
		if p, ok := ecs.Get(w, e, component.PlayerComponent.Kind()); ok && p.Engine != nil {
			p.Engine.Reset()
		}
		if pc, ok := ecs.Get(w, e, component.PlayerCollisionComponent.Kind()); ok {
			*pc = component.PlayerCollision{}
		}

		ecs.Remove(w, e, component.RespawnRequestComponent.Kind())
	})
}
