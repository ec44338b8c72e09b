package entity

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/prefabs"
	"github.com/milk9111/metroidvania/room"
	"golang.org/x/image/colornames"
)

// enemyScriptGlobals are set by the enemy system before every run.
var enemyScriptGlobals = []string{
	"x", "y", "player_x", "player_y", "start_x", "dir",
	"patrol_speed", "chase_speed", "chase_range", "patrol_range",
}

// CompileEnemyScript compiles a behaviour script with every input global
// predeclared. The result is a template; each enemy runs its own Clone.
func CompileEnemyScript(name string) (*tengo.Compiled, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("enemy script %q: %w", name, err)
	}
	script := tengo.NewScript(src)
	for _, g := range enemyScriptGlobals {
		if err := script.Add(g, 0.0); err != nil {
			return nil, fmt.Errorf("enemy script %q: add %s: %w", name, g, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("enemy script %q: %w", name, err)
	}
	return compiled, nil
}

// EnemyFactory spawns enemies from archetype specs, compiling each script
// once.
type EnemyFactory struct {
	specs    map[string]prefabs.EnemySpec
	compiled map[string]*tengo.Compiled
}

func NewEnemyFactory(specs map[string]prefabs.EnemySpec) *EnemyFactory {
	return &EnemyFactory{specs: specs, compiled: make(map[string]*tengo.Compiled)}
}

// SetSpecs swaps the archetype table and drops compiled scripts so the next
// spawn picks up edited files.
func (f *EnemyFactory) SetSpecs(specs map[string]prefabs.EnemySpec) {
	f.specs = specs
	f.compiled = make(map[string]*tengo.Compiled)
}

func (f *EnemyFactory) script(name string) (*tengo.Compiled, error) {
	if c, ok := f.compiled[name]; ok {
		return c, nil
	}
	c, err := CompileEnemyScript(name)
	if err != nil {
		return nil, err
	}
	f.compiled[name] = c
	return c, nil
}

// Spawn creates the enemy placed by def in roomID.
func (f *EnemyFactory) Spawn(w *ecs.World, roomID string, def room.Enemy) (ecs.Entity, error) {
	spec, ok := f.specs[def.Type]
	if !ok {
		return 0, fmt.Errorf("enemy %s: unknown type %q", def.ID, def.Type)
	}

	var clone *tengo.Compiled
	if spec.Script != "" {
		tmpl, err := f.script(spec.Script)
		if err != nil {
			return 0, err
		}
		clone = tmpl.Clone()
	}

	entity := ecs.CreateEntity(w)
	if err := ecs.Add(w, entity, component.EnemyComponent.Kind(), &component.Enemy{
		ID:          def.ID,
		Type:        def.Type,
		StartX:      def.X,
		Dir:         1,
		PatrolSpeed: spec.PatrolSpeed,
		ChaseSpeed:  spec.ChaseSpeed,
		ChaseRange:  spec.ChaseRange,
		PatrolRange: spec.PatrolRange,
		Script:      clone,
	}); err != nil {
		return 0, fmt.Errorf("enemy: add enemy component: %w", err)
	}
	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{X: def.X, Y: def.Y}); err != nil {
		return 0, fmt.Errorf("enemy: add transform: %w", err)
	}
	if err := ecs.Add(w, entity, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:  spec.Width,
		Height: spec.Height,
		Mass:   1,
	}); err != nil {
		return 0, fmt.Errorf("enemy: add physics body: %w", err)
	}
	if err := ecs.Add(w, entity, component.HazardComponent.Kind(), &component.Hazard{
		Damage: spec.Damage,
		Width:  spec.Width,
		Height: spec.Height,
	}); err != nil {
		return 0, fmt.Errorf("enemy: add hazard: %w", err)
	}
	if err := ecs.Add(w, entity, component.HealthComponent.Kind(), &component.Health{
		Current: spec.Health,
		Max:     spec.Health,
	}); err != nil {
		return 0, fmt.Errorf("enemy: add health: %w", err)
	}

	sprite := &component.Sprite{Width: spec.Width, Height: spec.Height, Color: colornames.Crimson, Layer: layerActors}
	if spec.Color != nil {
		sprite.Color = spec.Color.Color
	}
	if err := ecs.Add(w, entity, component.SpriteComponent.Kind(), sprite); err != nil {
		return 0, fmt.Errorf("enemy: add sprite: %w", err)
	}
	if err := ecs.Add(w, entity, component.RoomScopedComponent.Kind(), &component.RoomScoped{RoomID: roomID}); err != nil {
		return 0, fmt.Errorf("enemy: add room scope: %w", err)
	}
	return entity, nil
}
