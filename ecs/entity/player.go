package entity

import (
	"fmt"

	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/movement"
	"github.com/milk9111/metroidvania/prefabs"
	"golang.org/x/image/colornames"
)

// NewPlayer creates the player at pos. The player is not room scoped; it
// survives every room switch.
func NewPlayer(w *ecs.World, spec *prefabs.PlayerSpec, pos common.Vec2) (ecs.Entity, error) {
	if spec == nil {
		def := prefabs.DefaultPlayerSpec()
		spec = &def
	}

	entity := ecs.CreateEntity(w)
	if err := ecs.Add(w, entity, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		return 0, fmt.Errorf("player: add player tag: %w", err)
	}
	if err := ecs.Add(w, entity, component.PlayerComponent.Kind(), &component.Player{
		Engine: movement.NewEngine(spec.Movement),
	}); err != nil {
		return 0, fmt.Errorf("player: add player: %w", err)
	}
	if err := ecs.Add(w, entity, component.InputComponent.Kind(), &component.Input{}); err != nil {
		return 0, fmt.Errorf("player: add input: %w", err)
	}
	if err := ecs.Add(w, entity, component.PlayerCollisionComponent.Kind(), &component.PlayerCollision{}); err != nil {
		return 0, fmt.Errorf("player: add player collision: %w", err)
	}
	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y}); err != nil {
		return 0, fmt.Errorf("player: add transform: %w", err)
	}
	if err := ecs.Add(w, entity, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:  spec.Width,
		Height: spec.Height,
		Mass:   1,
	}); err != nil {
		return 0, fmt.Errorf("player: add physics body: %w", err)
	}
	if err := ecs.Add(w, entity, component.HealthComponent.Kind(), &component.Health{
		Current:       spec.MaxHealth,
		Max:           spec.MaxHealth,
		Invincibility: spec.Invincibility,
	}); err != nil {
		return 0, fmt.Errorf("player: add health: %w", err)
	}

	sprite := &component.Sprite{Width: spec.Width, Height: spec.Height, Color: colornames.Dodgerblue, Layer: layerPlayer}
	if spec.Color != nil {
		sprite.Color = spec.Color.Color
	}
	if err := ecs.Add(w, entity, component.SpriteComponent.Kind(), sprite); err != nil {
		return 0, fmt.Errorf("player: add sprite: %w", err)
	}
	return entity, nil
}
