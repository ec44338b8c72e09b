package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/movement"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeSolid
	collisionTypeEnemy
)

const contactNormalThreshold = 0.5

// PhysicsSystem owns the Chipmunk space. Bodies are created lazily for any
// entity with a PhysicsBody and Transform, and removed once the entity dies
// or loses its PhysicsBody.
type PhysicsSystem struct {
	space         *cp.Space
	handlersReady bool
	maxFallSpeed  float64

	entities     map[ecs.Entity]*bodyInfo
	playerShapes map[*cp.Shape]ecs.Entity
	playerStates map[ecs.Entity]*playerContactState
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

type playerContactState struct {
	grounded     bool
	blockedLeft  bool
	blockedRight bool
}

func NewPhysicsSystem(c movement.Constants) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	ps := &PhysicsSystem{
		space:        space,
		entities:     make(map[ecs.Entity]*bodyInfo),
		playerShapes: make(map[*cp.Shape]ecs.Entity),
		playerStates: make(map[ecs.Entity]*playerContactState),
	}
	ps.SetConstants(c)
	return ps
}

// SetConstants applies gravity and the fall speed clamp from c.
func (ps *PhysicsSystem) SetConstants(c movement.Constants) {
	if ps == nil {
		return
	}
	ps.space.SetGravity(cp.Vector{X: 0, Y: c.Gravity})
	ps.maxFallSpeed = c.MaxFallSpeed
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.ensureHandlers()
	ps.syncEntities(w)
	ps.syncWorldBounds(w)
	ps.resetPlayerContacts(w)

	ps.space.Step(w.DeltaTime())

	ps.syncTransforms(w)
	ps.flushPlayerContacts(w)
}

// Teleport moves e's body to (x, y) and stops it.
func (ps *PhysicsSystem) Teleport(w *ecs.World, e ecs.Entity, x, y float64) {
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		t.X = x
		t.Y = y
	}
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil || pb.Static {
		return
	}
	pb.Body.SetPosition(cp.Vector{X: x, Y: y})
	pb.Body.SetVelocity(0, 0)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady {
		return
	}

	solidHandler := ps.space.NewCollisionHandler(collisionTypePlayer, collisionTypeSolid)
	solidHandler.UserData = ps
	solidHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		playerEntity, playerIsA := sys.playerShapes[shapeA]
		if !playerIsA {
			var okB bool
			playerEntity, okB = sys.playerShapes[shapeB]
			if !okB {
				return true
			}
		}

		st := sys.playerStates[playerEntity]
		if st == nil {
			st = &playerContactState{}
			sys.playerStates[playerEntity] = st
		}

		// Normal points from the player toward the solid, +Y is down.
		n := arb.Normal()
		if !playerIsA {
			n = n.Neg()
		}
		switch {
		case n.Y > contactNormalThreshold:
			st.grounded = true
		case n.X < -contactNormalThreshold:
			st.blockedLeft = true
		case n.X > contactNormalThreshold:
			st.blockedRight = true
		}
		return true
	}

	// Enemies hurt through Hazard overlap, not by pushing the player around.
	passThrough := ps.space.NewCollisionHandler(collisionTypePlayer, collisionTypeEnemy)
	passThrough.BeginFunc = func(*cp.Arbiter, *cp.Space, interface{}) bool { return false }
	enemies := ps.space.NewCollisionHandler(collisionTypeEnemy, collisionTypeEnemy)
	enemies.BeginFunc = func(*cp.Arbiter, *cp.Space, interface{}) bool { return false }

	ps.handlersReady = true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if _, exists := ps.entities[e]; exists {
			return
		}

		collisionType := collisionTypeSolid
		switch {
		case ecs.Has(w, e, component.PlayerTagComponent.Kind()):
			collisionType = collisionTypePlayer
		case ecs.Has(w, e, component.EnemyComponent.Kind()):
			collisionType = collisionTypeEnemy
		}

		info := ps.createBodyInfo(t, pb, collisionType)
		if info == nil {
			return
		}
		ps.entities[e] = info
		if collisionType == collisionTypePlayer {
			ps.playerShapes[pb.Shape] = e
		}
	})
}

func (ps *PhysicsSystem) createBodyInfo(t *component.Transform, pb *component.PhysicsBody, collisionType cp.CollisionType) *bodyInfo {
	width, height := pb.Width, pb.Height
	if width <= 0 || height <= 0 {
		width, height = 32, 32
	}

	if pb.Static {
		bb := cp.BB{L: t.X - width/2, B: t.Y - height/2, R: t.X + width/2, T: t.Y + height/2}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(pb.Friction)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)

		pb.Body = ps.space.StaticBody
		pb.Shape = shape
		return &bodyInfo{body: ps.space.StaticBody, shapes: []*cp.Shape{shape}, static: true}
	}

	mass := pb.Mass
	if mass <= 0 {
		mass = 1
	}
	// Infinite moment keeps characters upright.
	body := cp.NewBody(mass, cp.INFINITY)
	body.SetPosition(cp.Vector{X: t.X, Y: t.Y})
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(b, gravity, damping, dt)
		if v := b.Velocity(); ps.maxFallSpeed > 0 && v.Y > ps.maxFallSpeed {
			b.SetVelocity(v.X, ps.maxFallSpeed)
		}
	})

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(pb.Friction)
	shape.SetCollisionType(collisionType)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	pb.Body = body
	pb.Shape = shape
	return &bodyInfo{body: body, shapes: []*cp.Shape{shape}}
}

func (ps *PhysicsSystem) syncWorldBounds(w *ecs.World) {
	boundsEntity, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		return
	}
	if _, exists := ps.entities[boundsEntity]; exists {
		return
	}
	bounds, ok := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
	if !ok || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}

	worldW, worldH := bounds.Width, bounds.Height
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},           // top
		{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},           // left
		{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}}, // right
	}

	info := &bodyInfo{static: true, body: ps.space.StaticBody}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, 1)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		info.shapes = append(info.shapes, shape)
	}
	ps.entities[boundsEntity] = info
}

func (ps *PhysicsSystem) resetPlayerContacts(w *ecs.World) {
	seen := make(map[ecs.Entity]struct{})
	ecs.ForEach(w, component.PlayerCollisionComponent.Kind(), func(e ecs.Entity, _ *component.PlayerCollision) {
		seen[e] = struct{}{}
		ps.playerStates[e] = &playerContactState{}
	})
	for e := range ps.playerStates {
		if _, ok := seen[e]; !ok {
			delete(ps.playerStates, e)
		}
	}
}

func (ps *PhysicsSystem) flushPlayerContacts(w *ecs.World) {
	for e, st := range ps.playerStates {
		pc, ok := ecs.Get(w, e, component.PlayerCollisionComponent.Kind())
		if !ok {
			continue
		}
		pc.Grounded = st.grounded
		pc.BlockedLeft = st.blockedLeft
		pc.BlockedRight = st.blockedRight
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Static || pb.Body == nil {
			return
		}
		pos := pb.Body.Position()
		t.X = pos.X
		t.Y = pos.Y
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) &&
			(ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) || ecs.Has(w, e, component.LevelBoundsComponent.Kind())) {
			continue
		}

		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
			delete(ps.playerShapes, shape)
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
		delete(ps.playerStates, e)
	}
}
