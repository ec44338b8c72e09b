package system

import (
	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/event"
	"github.com/milk9111/metroidvania/movement"
)

// PlayerMovementPayload accompanies every player:* topic.
type PlayerMovementPayload struct {
	Position  common.Vec2
	Direction int
}

var movementTopics = map[movement.EventKind]event.Topic{
	movement.Landed:       event.PlayerLanded,
	movement.Jumped:       event.PlayerJumped,
	movement.DoubleJumped: event.PlayerDoubleJumped,
	movement.WallJumped:   event.PlayerWallJumped,
	movement.Dashed:       event.PlayerDashed,
}

// PlayerControllerSystem feeds input and contacts into the player's movement
// engine and writes the resulting velocity back to the physics body.
type PlayerControllerSystem struct {
	abilities movement.AbilitySet
	bus       *event.Bus
	frozen    func() bool
}

func NewPlayerControllerSystem(abilities movement.AbilitySet, bus *event.Bus) *PlayerControllerSystem {
	return &PlayerControllerSystem{abilities: abilities, bus: bus}
}

// FreezeWhile suspends movement whenever fn reports true, e.g. during a room
// transition.
func (p *PlayerControllerSystem) FreezeWhile(fn func() bool) {
	p.frozen = fn
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach4(w,
		component.PlayerComponent.Kind(),
		component.InputComponent.Kind(),
		component.TransformComponent.Kind(),
		component.PhysicsBodyComponent.Kind(),
		func(e ecs.Entity, player *component.Player, input *component.Input, t *component.Transform, pb *component.PhysicsBody) {
			if player.Engine == nil {
				return
			}
			pc, _ := ecs.Get(w, e, component.PlayerCollisionComponent.Kind())
			body := &playerBody{t: t, pb: pb, pc: pc}

			if p.frozen != nil && p.frozen() {
				body.SetVelocity(common.Vec2{})
				return
			}

			in := movement.Input{
				Left:        input.MoveX < 0,
				Right:       input.MoveX > 0,
				JumpPressed: input.JumpPressed,
				JumpHeld:    input.Jump,
				DashPressed: input.DashPressed,
			}
			for _, ev := range player.Engine.Advance(w.DeltaTime(), in, body, p.abilities) {
				topic, ok := movementTopics[ev.Kind]
				if !ok {
					continue
				}
				p.bus.Publish(topic, PlayerMovementPayload{Position: ev.Position, Direction: ev.Direction})
			}
		})
}

// playerBody adapts ECS physics state to movement.Body.
type playerBody struct {
	t  *component.Transform
	pb *component.PhysicsBody
	pc *component.PlayerCollision
}

func (b *playerBody) Velocity() common.Vec2 {
	if b.pb == nil || b.pb.Body == nil {
		return common.Vec2{}
	}
	v := b.pb.Body.Velocity()
	return common.Vec2{X: v.X, Y: v.Y}
}

func (b *playerBody) SetVelocity(v common.Vec2) {
	if b.pb == nil || b.pb.Body == nil {
		return
	}
	b.pb.Body.SetVelocity(v.X, v.Y)
}

func (b *playerBody) Position() common.Vec2 {
	return common.Vec2{X: b.t.X, Y: b.t.Y}
}

func (b *playerBody) Contacts() movement.Contacts {
	if b.pc == nil {
		return movement.Contacts{}
	}
	return movement.Contacts{
		BlockedLeft:  b.pc.BlockedLeft,
		BlockedRight: b.pc.BlockedRight,
		BlockedDown:  b.pc.Grounded,
	}
}
