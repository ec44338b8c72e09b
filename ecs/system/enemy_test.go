package system

import (
	"testing"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/ecs/entity"
	"github.com/milk9111/metroidvania/movement"
)

func addEnemy(t *testing.T, w *ecs.World, pos common.Vec2, script *tengo.Compiled) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	mustAdd(t, w, e, component.EnemyComponent.Kind(), &component.Enemy{
		ID:          "enemy_1",
		Type:        "patroller",
		StartX:      pos.X,
		Dir:         1,
		PatrolSpeed: 80,
		ChaseSpeed:  150,
		ChaseRange:  300,
		PatrolRange: 200,
		Script:      script,
	})
	mustAdd(t, w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y})
	mustAdd(t, w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Width: 32, Height: 32, Mass: 1})
	return e
}

func TestEnemyScriptSetsVelocity(t *testing.T) {
	tmpl, err := entity.CompileEnemyScript("patroller.tengo")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	tests := []struct {
		name    string
		player  common.Vec2
		wantVX  float64
		wantDir float64
	}{
		{"patrol_when_far", common.Vec2{X: 1000, Y: 100}, 80, 1},
		{"chase_left", common.Vec2{X: 400, Y: 100}, -150, -1},
		{"chase_right", common.Vec2{X: 700, Y: 100}, 150, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			ps := NewPhysicsSystem(movement.DefaultConstants())
			es := NewEnemySystem(nil)

			addPlayer(t, w, tc.player)
			enemy := addEnemy(t, w, common.Vec2{X: 600, Y: 100}, tmpl.Clone())
			ps.Update(w)

			es.Update(w)

			pb, _ := ecs.Get(w, enemy, component.PhysicsBodyComponent.Kind())
			if vx := pb.Body.Velocity().X; vx != tc.wantVX {
				t.Fatalf("expected vx %v, got %v", tc.wantVX, vx)
			}
			en, _ := ecs.Get(w, enemy, component.EnemyComponent.Kind())
			if en.Dir != tc.wantDir {
				t.Fatalf("expected dir %v, got %v", tc.wantDir, en.Dir)
			}
		})
	}
}

func TestEnemyPatrolTurnsAtRange(t *testing.T) {
	tmpl, err := entity.CompileEnemyScript("patroller.tengo")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(movement.DefaultConstants())
	es := NewEnemySystem(nil)
	enemy := addEnemy(t, w, common.Vec2{X: 600, Y: 100}, tmpl.Clone())
	ps.Update(w)

	tr, _ := ecs.Get(w, enemy, component.TransformComponent.Kind())
	tr.X = 801
	es.Update(w)

	en, _ := ecs.Get(w, enemy, component.EnemyComponent.Kind())
	if en.Dir != -1 {
		t.Fatalf("expected the patrol to turn back, dir=%v", en.Dir)
	}
}

func TestEnemyBrokenScriptIsParked(t *testing.T) {
	// Compiled without the input globals, so setting them fails.
	compiled, err := tengo.NewScript([]byte(`vx := 1.0`)).Compile()
	if err != nil {
		t.Fatal(err)
	}

	w := ecs.NewWorld()
	ps := NewPhysicsSystem(movement.DefaultConstants())
	es := NewEnemySystem(nil)
	enemy := addEnemy(t, w, common.Vec2{X: 600, Y: 100}, compiled)
	ps.Update(w)

	es.Update(w)

	en, _ := ecs.Get(w, enemy, component.EnemyComponent.Kind())
	if en.Script != nil {
		t.Fatalf("expected the failing script to be dropped")
	}
	pb, _ := ecs.Get(w, enemy, component.PhysicsBodyComponent.Kind())
	if vx := pb.Body.Velocity().X; vx != 0 {
		t.Fatalf("expected a parked enemy, vx=%v", vx)
	}
}
