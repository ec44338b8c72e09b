package system

import (
	"testing"

	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/event"
	"github.com/milk9111/metroidvania/movement"
)

func mustAdd[T any](t *testing.T, w *ecs.World, e ecs.Entity, kind component.ComponentKind[T], v *T) {
	t.Helper()
	if err := ecs.Add(w, e, kind, v); err != nil {
		t.Fatalf("add component: %v", err)
	}
}

// addPlayer creates a 24x40 player centered at pos.
func addPlayer(t *testing.T, w *ecs.World, pos common.Vec2) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	mustAdd(t, w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	mustAdd(t, w, e, component.PlayerComponent.Kind(), &component.Player{Engine: movement.NewEngine(movement.DefaultConstants())})
	mustAdd(t, w, e, component.InputComponent.Kind(), &component.Input{})
	mustAdd(t, w, e, component.PlayerCollisionComponent.Kind(), &component.PlayerCollision{})
	mustAdd(t, w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y})
	mustAdd(t, w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Width: 24, Height: 40, Mass: 1})
	mustAdd(t, w, e, component.HealthComponent.Kind(), &component.Health{Current: 100, Max: 100, Invincibility: 1.5})
	return e
}

// addSolid creates a static box from a top-left rect.
func addSolid(t *testing.T, w *ecs.World, r common.Rect) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	c := r.Center()
	mustAdd(t, w, e, component.TransformComponent.Kind(), &component.Transform{X: c.X, Y: c.Y})
	mustAdd(t, w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Width: r.W, Height: r.H, Static: true})
	return e
}

type recorded struct {
	topics   []event.Topic
	payloads []any
}

func record(bus *event.Bus, topics ...event.Topic) *recorded {
	r := &recorded{}
	for _, topic := range topics {
		bus.Subscribe(topic, func(e event.Event) {
			r.topics = append(r.topics, e.Topic)
			r.payloads = append(r.payloads, e.Payload)
		})
	}
	return r
}
