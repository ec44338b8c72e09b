package system

import (
	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/ecs/entity"
	"github.com/milk9111/metroidvania/room"
	"github.com/milk9111/metroidvania/traversal"
	"go.uber.org/zap"
)

// RoomTraversalSystem feeds the player's position to the traversal
// controller once per tick. Room switches happen inside the controller's Tick.
type RoomTraversalSystem struct {
	controller *traversal.Controller
}

func NewRoomTraversalSystem(controller *traversal.Controller) *RoomTraversalSystem {
	return &RoomTraversalSystem{controller: controller}
}

func (s *RoomTraversalSystem) Update(w *ecs.World) {
	if s == nil || s.controller == nil || w == nil {
		return
	}

	pos, ok := playerPosition(w)
	if !ok && s.controller.State() == traversal.Idle {
		return
	}
	s.controller.Tick(w.DeltaTime(), pos)
}

// Transitioning reports whether a room switch is in flight. The player
// controller freezes on it.
func (s *RoomTraversalSystem) Transitioning() bool {
	return s != nil && s.controller != nil && s.controller.State() == traversal.Transitioning
}

func playerPosition(w *ecs.World) (common.Vec2, bool) {
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return common.Vec2{}, false
	}
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return common.Vec2{}, false
	}
	return common.Vec2{X: t.X, Y: t.Y}, true
}

// RoomHost builds rooms into the world and places the player at their spawn
// points. Placement moves the body and stops it; the movement state carries
// over, only a respawn resets it.
type RoomHost struct {
	world   *ecs.World
	builder *entity.RoomBuilder
	physics *PhysicsSystem
	player  ecs.Entity
	log     *zap.Logger
}

func NewRoomHost(w *ecs.World, builder *entity.RoomBuilder, physics *PhysicsSystem, player ecs.Entity, log *zap.Logger) *RoomHost {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomHost{world: w, builder: builder, physics: physics, player: player, log: log}
}

// BuildRoom implements traversal.Host. Room scoped entities that outlived
// the previous room's release are logged and destroyed first.
func (h *RoomHost) BuildRoom(r room.Room, res *traversal.Resources) error {
	ecs.ForEach(h.world, component.RoomScopedComponent.Kind(), func(e ecs.Entity, rs *component.RoomScoped) {
		h.log.Warn("room entity survived release",
			zap.String("room", rs.RoomID), zap.String("next", r.ID), zap.Uint64("entity", uint64(e)))
		ecs.DestroyEntity(h.world, e)
	})
	return h.builder.BuildRoom(r, res)
}

// PlacePlayer implements traversal.Host.
func (h *RoomHost) PlacePlayer(spawn common.Vec2) {
	h.physics.Teleport(h.world, h.player, spawn.X, spawn.Y)
}
