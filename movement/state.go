package movement

import "github.com/milk9111/metroidvania/common"

// Facing is the horizontal direction the actor looks toward.
type Facing int

const (
	FacingRight Facing = iota
	FacingLeft
)

func (f Facing) String() string {
	if f == FacingLeft {
		return "left"
	}
	return "right"
}

// Dir returns -1 for left and 1 for right.
func (f Facing) Dir() float64 {
	if f == FacingLeft {
		return -1
	}
	return 1
}

// Timers are countdowns in seconds. Tick is the only place they decrease.
type Timers struct {
	Coyote       float64
	JumpBuffer   float64
	Dash         float64
	DashCooldown float64
}

// Tick counts every timer down by dt and floors it at zero.
func (t *Timers) Tick(dt float64) {
	t.Coyote = countdown(t.Coyote, dt)
	t.JumpBuffer = countdown(t.JumpBuffer, dt)
	t.Dash = countdown(t.Dash, dt)
	t.DashCooldown = countdown(t.DashCooldown, dt)
}

func countdown(v, dt float64) float64 {
	v -= dt
	if v < 0 {
		return 0
	}
	return v
}

// State is the per-actor movement state owned by an Engine.
type State struct {
	Facing          Facing
	Grounded        bool
	Timers          Timers
	HasDoubleJumped bool
	IsDashing       bool
	IsWallSliding   bool
	// WallDirection is -1 for a wall on the left, 1 on the right, 0 for none.
	WallDirection int
}

// Input is one tick of player intent. JumpPressed and DashPressed are edges
// (true only on the tick the button went down); JumpHeld is level.
type Input struct {
	Left        bool
	Right       bool
	JumpPressed bool
	JumpHeld    bool
	DashPressed bool
}

// Contacts are the body's collision flags from the last physics step.
type Contacts struct {
	BlockedLeft  bool
	BlockedRight bool
	BlockedDown  bool
}

// Body is the physics collaborator. Positive Y points down.
type Body interface {
	Velocity() common.Vec2
	SetVelocity(v common.Vec2)
	Position() common.Vec2
	Contacts() Contacts
}

// AbilitySet answers whether an ability id is unlocked.
type AbilitySet interface {
	Has(id string) bool
}

// EventKind identifies a discrete movement event.
type EventKind int

const (
	Landed EventKind = iota
	Jumped
	DoubleJumped
	WallJumped
	Dashed
)

func (k EventKind) String() string {
	switch k {
	case Landed:
		return "landed"
	case Jumped:
		return "jumped"
	case DoubleJumped:
		return "doubleJumped"
	case WallJumped:
		return "wallJumped"
	case Dashed:
		return "dashed"
	default:
		return "unknown"
	}
}

// Event is emitted by Advance. Direction is set for wall jumps and dashes.
type Event struct {
	Kind      EventKind
	Position  common.Vec2
	Direction int
}
