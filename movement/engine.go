// Package movement is the per-tick player movement state machine. It reads
// collision flags and velocity from a Body, reads the unlocked abilities from
// an AbilitySet and writes a new velocity back. Gravity and integration
// belong to the physics collaborator.
package movement

import (
	"math"

	"github.com/milk9111/metroidvania/ability"
	"github.com/milk9111/metroidvania/common"
)

// Engine owns one actor's State.
type Engine struct {
	constants Constants
	state     State
	events    []Event
}

func NewEngine(c Constants) *Engine {
	return &Engine{constants: c, events: make([]Event, 0, 4)}
}

// State returns a copy of the current movement state.
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Constants() Constants {
	return e.constants
}

// SetConstants replaces the tuning used from the next Advance on.
func (e *Engine) SetConstants(c Constants) {
	e.constants = c
}

// Reset restores the default state, e.g. on respawn.
func (e *Engine) Reset() {
	e.state = State{}
}

// Advance runs one tick. The returned slice is reused by the next call.
func (e *Engine) Advance(dt float64, in Input, body Body, abilities AbilitySet) []Event {
	e.events = e.events[:0]
	if dt <= 0 || body == nil {
		return e.events
	}

	c := &e.constants
	st := &e.state

	st.Timers.Tick(dt)

	contacts := body.Contacts()
	grounded := contacts.BlockedDown
	if grounded && !st.Grounded {
		st.HasDoubleJumped = false
		e.emit(Landed, body, 0)
	}
	st.Grounded = grounded

	if grounded {
		st.Timers.Coyote = c.CoyoteTime
	}
	if in.JumpPressed {
		st.Timers.JumpBuffer = c.JumpBuffer
	}

	vel := body.Velocity()

	if st.IsDashing && st.Timers.Dash <= 0 {
		st.IsDashing = false
	}

	if st.IsDashing {
		vel.X = st.Facing.Dir() * c.DashSpeed
	} else {
		vel.X = e.horizontal(dt, in, vel.X)
		vel.Y = e.wallSlide(contacts, abilities, vel.Y)
		vel = e.jump(body, abilities, vel)

		if !in.JumpHeld && vel.Y < 0 {
			vel.Y *= c.JumpReleaseDeceleration
		}
	}

	if has(abilities, ability.Glide) && in.JumpHeld && vel.Y > 0 && !grounded {
		vel.Y = math.Min(vel.Y, c.GlideFallSpeed)
	}

	if has(abilities, ability.Dash) && in.DashPressed && !st.IsDashing && st.Timers.DashCooldown <= 0 {
		vel = e.startDash(body)
	}

	body.SetVelocity(vel)
	return e.events
}

func (e *Engine) horizontal(dt float64, in Input, vx float64) float64 {
	c := &e.constants

	var target float64
	switch {
	case in.Left:
		target = -c.MoveSpeed
		e.state.Facing = FacingLeft
	case in.Right:
		target = c.MoveSpeed
		e.state.Facing = FacingRight
	}

	if target != 0 {
		vx = common.Approach(vx, target, c.Acceleration*dt)
		return common.Clamp(vx, -c.MoveSpeed, c.MoveSpeed)
	}

	friction := c.Friction * dt
	if math.Abs(vx) <= friction {
		return 0
	}
	return vx - common.Sign(vx)*friction
}

func (e *Engine) wallSlide(contacts Contacts, abilities AbilitySet, vy float64) float64 {
	st := &e.state
	st.IsWallSliding = false
	st.WallDirection = 0

	if st.Grounded || !has(abilities, ability.WallJump) {
		return vy
	}
	switch {
	case contacts.BlockedLeft:
		st.IsWallSliding = true
		st.WallDirection = -1
	case contacts.BlockedRight:
		st.IsWallSliding = true
		st.WallDirection = 1
	}

	// damping is per tick, not per second
	if st.IsWallSliding && vy > 0 {
		vy *= e.constants.WallSlideFriction
	}
	return vy
}

func (e *Engine) jump(body Body, abilities AbilitySet, vel common.Vec2) common.Vec2 {
	c := &e.constants
	st := &e.state

	kind := ResolveJump(st.Timers, JumpFlags{
		Grounded:          st.Grounded,
		WallSliding:       st.IsWallSliding,
		DoubleJumpAllowed: has(abilities, ability.DoubleJump),
		HasDoubleJumped:   st.HasDoubleJumped,
	})

	switch kind {
	case CoyoteJump:
		vel.Y = c.JumpVelocity
		st.Timers.JumpBuffer = 0
		st.Timers.Coyote = 0
		e.emit(Jumped, body, 0)
	case WallJump:
		away := -st.WallDirection
		vel.Y = c.WallJumpVertical
		vel.X = float64(away) * c.WallJumpHorizontal
		st.IsWallSliding = false
		st.WallDirection = 0
		st.Timers.JumpBuffer = 0
		e.emit(WallJumped, body, away)
	case DoubleJump:
		vel.Y = c.JumpVelocity
		st.HasDoubleJumped = true
		st.Timers.JumpBuffer = 0
		e.emit(DoubleJumped, body, 0)
	}
	return vel
}

func (e *Engine) startDash(body Body) common.Vec2 {
	c := &e.constants
	st := &e.state

	st.IsDashing = true
	st.IsWallSliding = false
	st.WallDirection = 0
	st.Timers.Dash = c.DashDuration
	st.Timers.DashCooldown = c.DashCooldown

	dir := st.Facing.Dir()
	e.emit(Dashed, body, int(dir))
	return common.Vec2{X: dir * c.DashSpeed, Y: 0}
}

func (e *Engine) emit(kind EventKind, body Body, dir int) {
	e.events = append(e.events, Event{Kind: kind, Position: body.Position(), Direction: dir})
}

func has(abilities AbilitySet, id string) bool {
	return abilities != nil && abilities.Has(id)
}
