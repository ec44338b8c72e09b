package system

import (
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"go.uber.org/zap"
)

// EnemySystem runs each enemy's behaviour script once per tick. The script
// sees its own position, the player's position and its tuning as globals and
// leaves the desired horizontal speed in vx. Gravity stays with physics.
type EnemySystem struct {
	log *zap.Logger
}

func NewEnemySystem(log *zap.Logger) *EnemySystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnemySystem{log: log.Named("enemy")}
}

func (s *EnemySystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	px, py := 0.0, 0.0
	if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
		if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
			px, py = t.X, t.Y
		}
	}

	ecs.ForEach3(w,
		component.EnemyComponent.Kind(),
		component.TransformComponent.Kind(),
		component.PhysicsBodyComponent.Kind(),
		func(e ecs.Entity, en *component.Enemy, t *component.Transform, pb *component.PhysicsBody) {
			if en.Script == nil || pb.Body == nil {
				return
			}
			vx, err := s.run(en, t, px, py)
			if err != nil {
				// A broken script would fail every tick; park the enemy.
				s.log.Warn("enemy script failed", zap.String("enemy", en.ID), zap.String("type", en.Type), zap.Error(err))
				en.Script = nil
				pb.Body.SetVelocity(0, pb.Body.Velocity().Y)
				return
			}
			pb.Body.SetVelocity(vx, pb.Body.Velocity().Y)
		})
}

func (s *EnemySystem) run(en *component.Enemy, t *component.Transform, px, py float64) (float64, error) {
	c := en.Script
	inputs := []struct {
		name  string
		value float64
	}{
		{"x", t.X},
		{"y", t.Y},
		{"player_x", px},
		{"player_y", py},
		{"start_x", en.StartX},
		{"dir", en.Dir},
		{"patrol_speed", en.PatrolSpeed},
		{"chase_speed", en.ChaseSpeed},
		{"chase_range", en.ChaseRange},
		{"patrol_range", en.PatrolRange},
	}
	for _, in := range inputs {
		if err := c.Set(in.name, in.value); err != nil {
			return 0, err
		}
	}
	if err := c.Run(); err != nil {
		return 0, err
	}
	if d := c.Get("dir").Float(); d != 0 {
		en.Dir = d
	}
	return c.Get("vx").Float(), nil
}
