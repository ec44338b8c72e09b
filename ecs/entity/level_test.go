package entity

import (
	"testing"

	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/event"
	"github.com/milk9111/metroidvania/prefabs"
	"github.com/milk9111/metroidvania/room"
	"github.com/milk9111/metroidvania/traversal"
)

type collectedSet map[string]bool

func (c collectedSet) IsCollected(id string) bool { return c[id] }

func testRoom() room.Room {
	return room.Room{
		ID:              "room_test",
		Width:           1280,
		Height:          720,
		BackgroundColor: "#203040",
		Platforms:       []common.Rect{{X: 0, Y: 680, W: 1280, H: 40}, {X: 400, Y: 500, W: 200, H: 20}},
		Walls:           []common.Rect{{X: 0, Y: 0, W: 20, H: 680}},
		Collectibles: []room.Collectible{
			{ID: "c_dash", Type: "dash", X: 500, Y: 460},
			{ID: "c_taken", Type: "glide", X: 900, Y: 600},
		},
		Enemies: []room.Enemy{{ID: "e1", Type: "patroller", X: 800, Y: 640}},
	}
}

func newTestBuilder(t *testing.T, w *ecs.World, bus *event.Bus) *RoomBuilder {
	t.Helper()
	specs, err := prefabs.LoadEnemySpecs()
	if err != nil {
		t.Fatalf("load enemy specs: %v", err)
	}
	return NewRoomBuilder(w, NewEnemyFactory(specs), collectedSet{"c_taken": true}, bus, nil)
}

func TestBuildRoom(t *testing.T) {
	w := ecs.NewWorld()
	bus := event.NewBus(nil)
	var spawned []EnemySpawnedPayload
	bus.Subscribe(event.EnemySpawned, func(e event.Event) {
		spawned = append(spawned, e.Payload.(EnemySpawnedPayload))
	})
	b := newTestBuilder(t, w, bus)
	res := traversal.NewResources(nil)

	if err := b.BuildRoom(testRoom(), res); err != nil {
		t.Fatalf("BuildRoom: %v", err)
	}

	counts := []struct {
		name string
		got  int
		want int
	}{
		{"bounds", len(ecs.Query(w, component.LevelBoundsComponent.Kind())), 1},
		{"pickups", len(ecs.Query(w, component.PickupComponent.Kind())), 1},
		{"enemies", len(ecs.Query(w, component.EnemyComponent.Kind())), 1},
		{"physics_bodies", len(ecs.Query(w, component.PhysicsBodyComponent.Kind())), 4},
		{"room_scoped", len(ecs.Query(w, component.RoomScopedComponent.Kind())), 6},
		{"resources", res.Len(), 6},
	}
	for _, c := range counts {
		t.Run(c.name, func(t *testing.T) {
			if c.got != c.want {
				t.Fatalf("expected %d, got %d", c.want, c.got)
			}
		})
	}

	bounds, _ := ecs.First(w, component.LevelBoundsComponent.Kind())
	lb, _ := ecs.Get(w, bounds, component.LevelBoundsComponent.Kind())
	if lb.Width != 1280 || lb.Height != 720 || lb.Background == nil {
		t.Fatalf("unexpected bounds %+v", *lb)
	}

	pickup, _ := ecs.First(w, component.PickupComponent.Kind())
	p, _ := ecs.Get(w, pickup, component.PickupComponent.Kind())
	if p.CollectibleID != "c_dash" || p.AbilityID != "dash" {
		t.Fatalf("wrong pickup spawned: %+v", *p)
	}

	if len(spawned) != 1 || spawned[0].EnemyID != "e1" || spawned[0].RoomID != "room_test" {
		t.Fatalf("unexpected enemy:spawned payloads %+v", spawned)
	}

	if n := res.Release(); n != 6 {
		t.Fatalf("expected 6 releases, got %d", n)
	}
	if n := len(ecs.Entities(w)); n != 0 {
		t.Fatalf("expected an empty world after release, got %d entities", n)
	}
}

func TestBuildRoomPlatformGeometry(t *testing.T) {
	w := ecs.NewWorld()
	b := NewRoomBuilder(w, nil, nil, nil, nil)
	r := room.Room{ID: "r", Width: 100, Height: 100, Platforms: []common.Rect{{X: 10, Y: 20, W: 40, H: 10}}}
	if err := b.BuildRoom(r, traversal.NewResources(nil)); err != nil {
		t.Fatal(err)
	}

	var found bool
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, pb *component.PhysicsBody, tr *component.Transform) {
		found = true
		if !pb.Static || pb.Width != 40 || pb.Height != 10 {
			t.Fatalf("unexpected body %+v", *pb)
		}
		if tr.X != 30 || tr.Y != 25 {
			t.Fatalf("expected the transform at the rect center, got %+v", *tr)
		}
	})
	if !found {
		t.Fatalf("platform not built")
	}
}

func TestBuildRoomErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func(w *ecs.World) *RoomBuilder
		room    room.Room
	}{
		{
			name:    "unknown_enemy_type",
			builder: func(w *ecs.World) *RoomBuilder { return newTestBuilder(t, w, nil) },
			room:    room.Room{ID: "r", Width: 100, Height: 100, Enemies: []room.Enemy{{ID: "e", Type: "dragon"}}},
		},
		{
			name:    "enemies_without_factory",
			builder: func(w *ecs.World) *RoomBuilder { return NewRoomBuilder(w, nil, nil, nil, nil) },
			room:    room.Room{ID: "r", Width: 100, Height: 100, Enemies: []room.Enemy{{ID: "e", Type: "patroller"}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			res := traversal.NewResources(nil)
			if err := tc.builder(w).BuildRoom(tc.room, res); err == nil {
				t.Fatalf("expected an error")
			}
			res.Release()
			if n := len(ecs.Entities(w)); n != 0 {
				t.Fatalf("partial room leaked %d entities", n)
			}
		})
	}
}

func TestNewPlayer(t *testing.T) {
	w := ecs.NewWorld()
	e, err := NewPlayer(w, nil, common.Vec2{X: 320, Y: 480})
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	if !ecs.Has(w, e, component.PlayerTagComponent.Kind()) || !ecs.Has(w, e, component.InputComponent.Kind()) {
		t.Fatalf("player is missing tag or input")
	}
	if ecs.Has(w, e, component.RoomScopedComponent.Kind()) {
		t.Fatalf("player must survive room switches")
	}
	h, _ := ecs.Get(w, e, component.HealthComponent.Kind())
	if h.Current != 100 || h.Max != 100 || h.Invincibility != 1.5 {
		t.Fatalf("unexpected health %+v", *h)
	}
	p, _ := ecs.Get(w, e, component.PlayerComponent.Kind())
	if p.Engine == nil {
		t.Fatalf("player has no movement engine")
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	if tr.X != 320 || tr.Y != 480 {
		t.Fatalf("unexpected position %+v", *tr)
	}
}

func TestEnemyFactorySpawn(t *testing.T) {
	specs, err := prefabs.LoadEnemySpecs()
	if err != nil {
		t.Fatal(err)
	}
	f := NewEnemyFactory(specs)
	w := ecs.NewWorld()

	a, err := f.Spawn(w, "r", room.Enemy{ID: "e1", Type: "patroller", X: 100, Y: 200})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	b, err := f.Spawn(w, "r", room.Enemy{ID: "e2", Type: "patroller", X: 300, Y: 200})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	ea, _ := ecs.Get(w, a, component.EnemyComponent.Kind())
	eb, _ := ecs.Get(w, b, component.EnemyComponent.Kind())
	if ea.Script == nil || eb.Script == nil || ea.Script == eb.Script {
		t.Fatalf("each enemy needs its own script instance")
	}
	if ea.StartX != 100 || ea.ChaseRange != 300 {
		t.Fatalf("unexpected enemy %+v", *ea)
	}
	hz, _ := ecs.Get(w, a, component.HazardComponent.Kind())
	if hz.Damage != 10 {
		t.Fatalf("expected contact damage 10, got %d", hz.Damage)
	}
}
