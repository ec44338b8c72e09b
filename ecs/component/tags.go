package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// RoomScoped marks an entity owned by the room it was built for. It is
// destroyed when that room's resources are released.
type RoomScoped struct {
	RoomID string
}

var RoomScopedComponent = NewComponent[RoomScoped]()
