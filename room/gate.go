package room

import "fmt"

// AbilitySet answers whether an ability id is unlocked.
type AbilitySet interface {
	Has(id string) bool
}

// CanPass reports whether conn is currently traversable. Ability and locked
// doors share the same predicate; only their presentation differs.
func CanPass(conn Connection, abilities AbilitySet) bool {
	switch conn.DoorType {
	case DoorOpen, DoorBoss:
		return true
	case DoorAbility, DoorLocked:
		return abilities != nil && abilities.Has(conn.Requires)
	}
	return false
}

// Describe returns the player-facing state of a door, e.g. "Locked (Need: dash)".
func Describe(conn Connection, abilities AbilitySet) string {
	switch conn.DoorType {
	case DoorOpen:
		return "Open"
	case DoorBoss:
		return "Boss Door"
	case DoorAbility, DoorLocked:
		if CanPass(conn, abilities) {
			return "Unlocked"
		}
		return fmt.Sprintf("Locked (Need: %s)", conn.Requires)
	}
	return "Unknown"
}
