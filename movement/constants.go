package movement

import (
	"errors"
	"fmt"
)

// Constants is the tuning record for player movement. Values are in pixels
// and seconds. A Constants value is never mutated once handed to an Engine;
// retuning builds a new value and swaps it in with Engine.SetConstants.
type Constants struct {
	MoveSpeed               float64 `yaml:"move_speed"`
	Acceleration            float64 `yaml:"acceleration"`
	Friction                float64 `yaml:"friction"`
	JumpVelocity            float64 `yaml:"jump_velocity"`
	JumpReleaseDeceleration float64 `yaml:"jump_release_deceleration"`
	Gravity                 float64 `yaml:"gravity"`
	MaxFallSpeed            float64 `yaml:"max_fall_speed"`
	DashSpeed               float64 `yaml:"dash_speed"`
	DashDuration            float64 `yaml:"dash_duration"`
	DashCooldown            float64 `yaml:"dash_cooldown"`
	WallSlideFriction       float64 `yaml:"wall_slide_friction"`
	WallJumpHorizontal      float64 `yaml:"wall_jump_horizontal"`
	WallJumpVertical        float64 `yaml:"wall_jump_vertical"`
	CoyoteTime              float64 `yaml:"coyote_time"`
	JumpBuffer              float64 `yaml:"jump_buffer"`
	GlideFallSpeed          float64 `yaml:"glide_fall_speed"`
}

// DefaultConstants returns the stock tuning.
func DefaultConstants() Constants {
	return Constants{
		MoveSpeed:               200,
		Acceleration:            1200,
		Friction:                800,
		JumpVelocity:            -500,
		JumpReleaseDeceleration: 0.5,
		Gravity:                 800,
		MaxFallSpeed:            600,
		DashSpeed:               400,
		DashDuration:            0.3,
		DashCooldown:            0.5,
		WallSlideFriction:       0.5,
		WallJumpHorizontal:      300,
		WallJumpVertical:        -450,
		CoyoteTime:              0.1,
		JumpBuffer:              0.1,
		GlideFallSpeed:          100,
	}
}

var ErrInvalidConstants = errors.New("movement: invalid constants")

// Validate rejects tuning the engine cannot run with.
func (c Constants) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"move_speed", c.MoveSpeed},
		{"acceleration", c.Acceleration},
		{"friction", c.Friction},
		{"gravity", c.Gravity},
		{"max_fall_speed", c.MaxFallSpeed},
		{"dash_speed", c.DashSpeed},
		{"glide_fall_speed", c.GlideFallSpeed},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %v", ErrInvalidConstants, p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"dash_duration", c.DashDuration},
		{"dash_cooldown", c.DashCooldown},
		{"coyote_time", c.CoyoteTime},
		{"jump_buffer", c.JumpBuffer},
		{"wall_jump_horizontal", c.WallJumpHorizontal},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConstants, p.name, p.v)
		}
	}

	// jump velocities point up (negative y)
	if c.JumpVelocity >= 0 {
		return fmt.Errorf("%w: jump_velocity must be < 0, got %v", ErrInvalidConstants, c.JumpVelocity)
	}
	if c.WallJumpVertical >= 0 {
		return fmt.Errorf("%w: wall_jump_vertical must be < 0, got %v", ErrInvalidConstants, c.WallJumpVertical)
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"jump_release_deceleration", c.JumpReleaseDeceleration},
		{"wall_slide_friction", c.WallSlideFriction},
	} {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidConstants, f.name, f.v)
		}
	}
	return nil
}
