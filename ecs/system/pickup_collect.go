package system

import (
	"math"

	"github.com/milk9111/metroidvania/ability"
	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"go.uber.org/zap"
)

const defaultPickupSize = 24.0

// PickupCollectSystem bobs pickups and hands overlapped ones to the ability
// registry. It is the only system that mutates the registry.
type PickupCollectSystem struct {
	registry *ability.Registry
	log      *zap.Logger
	elapsed  float64
}

func NewPickupCollectSystem(registry *ability.Registry, log *zap.Logger) *PickupCollectSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &PickupCollectSystem{registry: registry, log: log.Named("pickup")}
}

func (s *PickupCollectSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	s.elapsed += w.DeltaTime()

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	playerBounds, ok := physicsBodyAABB(w, player)
	if !ok {
		return
	}

	ecs.ForEach2(w, component.PickupComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pickup *component.Pickup, t *component.Transform) {
		if pickup.BobAmplitude != 0 {
			t.Y = pickup.BaseY + pickup.BobAmplitude*math.Sin(s.elapsed*pickup.BobSpeed+pickup.BobPhase)
		}

		kw, kh := pickup.CollisionWidth, pickup.CollisionHeight
		if kw <= 0 || kh <= 0 {
			kw, kh = defaultPickupSize, defaultPickupSize
		}
		if !playerBounds.Intersects(common.RectAround(common.Vec2{X: t.X, Y: t.Y}, kw, kh)) {
			return
		}

		res, err := s.registry.Collect(pickup.CollectibleID, pickup.AbilityID)
		if err != nil {
			s.log.Warn("pickup rejected",
				zap.String("collectible", pickup.CollectibleID),
				zap.String("ability", pickup.AbilityID),
				zap.Error(err))
		} else {
			s.log.Info("pickup collected",
				zap.String("collectible", pickup.CollectibleID),
				zap.String("ability", pickup.AbilityID),
				zap.Stringer("result", res))
		}
		ecs.DestroyEntity(w, e)
	})
}
