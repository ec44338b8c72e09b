package ability

import (
	"errors"
	"fmt"
)

// Well-known ability ids referenced by movement and room data.
const (
	Dash        = "dash"
	DoubleJump  = "doubleJump"
	WallJump    = "wallJump"
	Glide       = "glide"
	GroundPound = "groundPound"
	Grapple     = "grapple"
	Sprint      = "sprint"
	HealthUp    = "healthUp"
	Key01       = "key_01"
)

// Category groups abilities for presentation.
type Category string

const (
	CategoryMovement Category = "movement"
	CategoryCombat   Category = "combat"
	CategoryUpgrade  Category = "upgrade"
	CategoryKey      Category = "key"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMovement, CategoryCombat, CategoryUpgrade, CategoryKey:
		return true
	}
	return false
}

// Ability is an immutable ability definition.
type Ability struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Category    Category `yaml:"category" json:"category"`
}

var (
	ErrUnknownAbility    = errors.New("ability: unknown ability")
	ErrInvalidDefinition = errors.New("ability: invalid definition")
)

// DefaultDefinitions returns the built-in ability table used when no
// definitions file is supplied.
func DefaultDefinitions() []Ability {
	return []Ability{
		{ID: Dash, Name: "Dash", Description: "Quick burst of speed in any direction", Category: CategoryMovement},
		{ID: DoubleJump, Name: "Double Jump", Description: "Jump again while in mid-air", Category: CategoryMovement},
		{ID: WallJump, Name: "Wall Jump", Description: "Jump off walls to reach higher areas", Category: CategoryMovement},
		{ID: Glide, Name: "Glide", Description: "Hold jump to slow your fall", Category: CategoryMovement},
		{ID: GroundPound, Name: "Ground Pound", Description: "Smash downward to break obstacles", Category: CategoryCombat},
		{ID: Grapple, Name: "Grappling Hook", Description: "Swing from grapple points", Category: CategoryMovement},
		{ID: Sprint, Name: "Sprint", Description: "Increased movement speed", Category: CategoryMovement},
		{ID: HealthUp, Name: "Health Upgrade", Description: "Permanently increases maximum health by 20", Category: CategoryUpgrade},
		{ID: Key01, Name: "Ancient Key", Description: "Unlocks the sealed treasury", Category: CategoryKey},
	}
}

func validateDefinitions(defs []Ability) error {
	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("%w: entry %d has empty id", ErrInvalidDefinition, i)
		}
		if !d.Category.Valid() {
			return fmt.Errorf("%w: %s has category %q", ErrInvalidDefinition, d.ID, d.Category)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidDefinition, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}
