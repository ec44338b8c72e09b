package movement

// JumpKind is the jump branch chosen for a tick.
type JumpKind int

const (
	NoJump JumpKind = iota
	CoyoteJump
	WallJump
	DoubleJump
)

func (k JumpKind) String() string {
	switch k {
	case CoyoteJump:
		return "coyote"
	case WallJump:
		return "wall"
	case DoubleJump:
		return "double"
	default:
		return "none"
	}
}

// JumpFlags are the non-timer inputs to ResolveJump. Ability gating is folded
// in by the caller: WallSliding is only ever set with wall jump unlocked.
type JumpFlags struct {
	Grounded          bool
	WallSliding       bool
	DoubleJumpAllowed bool
	HasDoubleJumped   bool
}

// ResolveJump picks at most one jump branch. A buffered press is required;
// priority is coyote, then wall, then double.
func ResolveJump(t Timers, f JumpFlags) JumpKind {
	if t.JumpBuffer <= 0 {
		return NoJump
	}
	switch {
	case t.Coyote > 0:
		return CoyoteJump
	case f.WallSliding:
		return WallJump
	case f.DoubleJumpAllowed && !f.Grounded && !f.HasDoubleJumped:
		return DoubleJump
	}
	return NoJump
}
