package system

import (
	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/event"
	"go.uber.org/zap"
)

// DamagedPayload is published on combat:damaged.
type DamagedPayload struct {
	Entity  ecs.Entity
	Source  ecs.Entity
	Amount  int
	Current int
	Max     int
}

// DefeatedPayload is published on combat:defeated.
type DefeatedPayload struct {
	Entity ecs.Entity
	Source ecs.Entity
}

// HazardSystem applies contact damage from hazards to the player and counts
// down invulnerability. Damage timing is independent of movement timers.
type HazardSystem struct {
	bus   *event.Bus
	log   *zap.Logger
	spawn func() (common.Vec2, bool)
}

// NewHazardSystem builds the system. spawn reports where a defeated player
// respawns; when it reports false the player stays where it fell.
func NewHazardSystem(bus *event.Bus, log *zap.Logger, spawn func() (common.Vec2, bool)) *HazardSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &HazardSystem{bus: bus, log: log.Named("combat"), spawn: spawn}
}

func (s *HazardSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach(w, component.HealthComponent.Kind(), func(_ ecs.Entity, h *component.Health) {
		if h.Invulnerable > 0 {
			h.Invulnerable -= dt
			if h.Invulnerable < 0 {
				h.Invulnerable = 0
			}
		}
	})

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	health, ok := ecs.Get(w, player, component.HealthComponent.Kind())
	if !ok || !health.Alive() || ecs.Has(w, player, component.RespawnRequestComponent.Kind()) {
		return
	}
	playerBounds, ok := physicsBodyAABB(w, player)
	if !ok {
		return
	}

	ecs.ForEach2(w, component.HazardComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, hz *component.Hazard, t *component.Transform) {
		if health.Invulnerable > 0 || !health.Alive() || hz.Damage <= 0 {
			return
		}
		if !playerBounds.Intersects(common.RectAround(common.Vec2{X: t.X, Y: t.Y}, hz.Width, hz.Height)) {
			return
		}
		s.damage(w, player, e, health, hz.Damage)
	})
}

func (s *HazardSystem) damage(w *ecs.World, target, source ecs.Entity, h *component.Health, amount int) {
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
	h.Invulnerable = h.Invincibility

	s.log.Debug("damaged", zap.Stringer("entity", target), zap.Int("amount", amount), zap.Int("health", h.Current))
	s.bus.Publish(event.CombatDamaged, DamagedPayload{
		Entity:  target,
		Source:  source,
		Amount:  amount,
		Current: h.Current,
		Max:     h.Max,
	})
	if h.Alive() {
		return
	}

	s.log.Info("defeated", zap.Stringer("entity", target))
	s.bus.Publish(event.CombatDefeated, DefeatedPayload{Entity: target, Source: source})

	req := &component.RespawnRequest{}
	if t, ok := ecs.Get(w, target, component.TransformComponent.Kind()); ok {
		req.X, req.Y = t.X, t.Y
	}
	if s.spawn != nil {
		if p, ok := s.spawn(); ok {
			req.X, req.Y = p.X, p.Y
		}
	}
	if err := ecs.Add(w, target, component.RespawnRequestComponent.Kind(), req); err != nil {
		s.log.Error("respawn request", zap.Error(err))
	}
}

// physicsBodyAABB returns the collider rectangle of e centered on its
// Transform.
func physicsBodyAABB(w *ecs.World, e ecs.Entity) (common.Rect, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return common.Rect{}, false
	}
	b, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || b.Width <= 0 || b.Height <= 0 {
		return common.Rect{}, false
	}
	return common.RectAround(common.Vec2{X: t.X, Y: t.Y}, b.Width, b.Height), true
}
