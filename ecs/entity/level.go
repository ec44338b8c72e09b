package entity

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/event"
	"github.com/milk9111/metroidvania/prefabs"
	"github.com/milk9111/metroidvania/room"
	"github.com/milk9111/metroidvania/traversal"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

// Draw order.
const (
	layerGeometry = iota
	layerPickups
	layerActors
	layerPlayer
)

const (
	pickupSize         = 24.0
	pickupBobAmplitude = 6.0
	pickupBobSpeed     = 3.0
)

// CollectedSet reports pickups that must not respawn.
type CollectedSet interface {
	IsCollected(collectibleID string) bool
}

// EnemySpawnedPayload is published on enemy:spawned.
type EnemySpawnedPayload struct {
	RoomID  string
	EnemyID string
	Type    string
	Entity  ecs.Entity
}

// RoomBuilder turns room data into entities. Every entity it creates is
// registered with the room's resources so leaving the room destroys it.
type RoomBuilder struct {
	world     *ecs.World
	enemies   *EnemyFactory
	collected CollectedSet
	bus       *event.Bus
	log       *zap.Logger
}

func NewRoomBuilder(w *ecs.World, enemies *EnemyFactory, collected CollectedSet, bus *event.Bus, log *zap.Logger) *RoomBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomBuilder{world: w, enemies: enemies, collected: collected, bus: bus, log: log.Named("level")}
}

// BuildRoom creates bounds, geometry, pickups and enemies for r. On error the
// entities built so far are still registered with res.
func (b *RoomBuilder) BuildRoom(r room.Room, res *traversal.Resources) error {
	if b == nil || b.world == nil {
		return errors.New("level: builder has no world")
	}
	w := b.world

	bg := color.Color(colornames.Black)
	if r.BackgroundColor != "" {
		if c, err := prefabs.ParseHexColor(r.BackgroundColor); err == nil {
			bg = c
		} else {
			b.log.Warn("bad background color", zap.String("room", r.ID), zap.Error(err))
		}
	}
	bounds := ecs.CreateEntity(w)
	b.own(res, "bounds", bounds)
	if err := ecs.Add(w, bounds, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:      r.Width,
		Height:     r.Height,
		Background: bg,
	}); err != nil {
		return fmt.Errorf("level: add bounds: %w", err)
	}
	if err := b.scope(bounds, r.ID); err != nil {
		return err
	}

	for i, rect := range r.Platforms {
		if _, err := b.solid(res, r.ID, fmt.Sprintf("platform[%d]", i), rect, colornames.Slategray); err != nil {
			return err
		}
	}
	for i, rect := range r.Walls {
		if _, err := b.solid(res, r.ID, fmt.Sprintf("wall[%d]", i), rect, colornames.Dimgray); err != nil {
			return err
		}
	}

	for _, c := range r.Collectibles {
		if b.collected != nil && b.collected.IsCollected(c.ID) {
			continue
		}
		e, err := NewPickup(w, c)
		if err != nil {
			return err
		}
		b.own(res, "pickup "+c.ID, e)
		if err := b.scope(e, r.ID); err != nil {
			return err
		}
	}

	for _, def := range r.Enemies {
		if b.enemies == nil {
			return fmt.Errorf("level: room %s places enemies but no factory is set", r.ID)
		}
		e, err := b.enemies.Spawn(w, r.ID, def)
		if err != nil {
			return fmt.Errorf("level: %w", err)
		}
		b.own(res, "enemy "+def.ID, e)
		b.bus.Publish(event.EnemySpawned, EnemySpawnedPayload{RoomID: r.ID, EnemyID: def.ID, Type: def.Type, Entity: e})
	}

	b.log.Debug("room built",
		zap.String("room", r.ID),
		zap.Int("platforms", len(r.Platforms)),
		zap.Int("walls", len(r.Walls)),
		zap.Int("resources", res.Len()))
	return nil
}

func (b *RoomBuilder) own(res *traversal.Resources, name string, e ecs.Entity) {
	w := b.world
	res.Add(name, func() { ecs.DestroyEntity(w, e) })
}

func (b *RoomBuilder) scope(e ecs.Entity, roomID string) error {
	if err := ecs.Add(b.world, e, component.RoomScopedComponent.Kind(), &component.RoomScoped{RoomID: roomID}); err != nil {
		return fmt.Errorf("level: add room scope: %w", err)
	}
	return nil
}

func (b *RoomBuilder) solid(res *traversal.Resources, roomID, name string, rect common.Rect, c color.Color) (ecs.Entity, error) {
	w := b.world
	e := ecs.CreateEntity(w)
	b.own(res, name, e)

	center := rect.Center()
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: center.X, Y: center.Y}); err != nil {
		return 0, fmt.Errorf("level: %s: add transform: %w", name, err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:  rect.W,
		Height: rect.H,
		Static: true,
	}); err != nil {
		return 0, fmt.Errorf("level: %s: add physics body: %w", name, err)
	}
	if err := ecs.Add(w, e, component.SpriteComponent.Kind(), &component.Sprite{
		Width:  rect.W,
		Height: rect.H,
		Color:  c,
		Layer:  layerGeometry,
	}); err != nil {
		return 0, fmt.Errorf("level: %s: add sprite: %w", name, err)
	}
	return e, b.scope(e, roomID)
}

// NewPickup creates a bobbing collectible.
func NewPickup(w *ecs.World, c room.Collectible) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.PickupComponent.Kind(), &component.Pickup{
		CollectibleID:   c.ID,
		AbilityID:       c.Type,
		BaseY:           c.Y,
		BobAmplitude:    pickupBobAmplitude,
		BobSpeed:        pickupBobSpeed,
		BobPhase:        c.X,
		CollisionWidth:  pickupSize,
		CollisionHeight: pickupSize,
	}); err != nil {
		return 0, fmt.Errorf("pickup: add pickup: %w", err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: c.X, Y: c.Y}); err != nil {
		return 0, fmt.Errorf("pickup: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.SpriteComponent.Kind(), &component.Sprite{
		Width:  pickupSize,
		Height: pickupSize,
		Color:  colornames.Gold,
		Layer:  layerPickups,
	}); err != nil {
		return 0, fmt.Errorf("pickup: add sprite: %w", err)
	}
	return e, nil
}
