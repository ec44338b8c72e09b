package room

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

// Graph is the read-only room table.
type Graph struct {
	rooms map[string]Room
	ids   []string
	log   *zap.Logger
}

// NewGraph indexes rooms by key. A room with an empty ID takes its key.
func NewGraph(rooms map[string]Room, log *zap.Logger) *Graph {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Graph{
		rooms: make(map[string]Room, len(rooms)),
		ids:   make([]string, 0, len(rooms)),
		log:   log.Named("room"),
	}
	for id, r := range rooms {
		if r.ID == "" {
			r.ID = id
		}
		g.rooms[id] = r
		g.ids = append(g.ids, id)
	}
	sort.Strings(g.ids)
	return g
}

// Room looks up id. Unknown ids return ErrMissingRoom.
func (g *Graph) Room(id string) (Room, error) {
	r, ok := g.rooms[id]
	if !ok {
		return Room{}, fmt.Errorf("%w: %q", ErrMissingRoom, id)
	}
	return r, nil
}

func (g *Graph) Len() int {
	return len(g.rooms)
}

// IDs returns every room id in sorted order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.ids...)
}

// Connections returns a copy of the room's connections, or nil if the room
// does not exist.
func (g *Graph) Connections(id string) map[Direction]Connection {
	r, ok := g.rooms[id]
	if !ok {
		return nil
	}
	out := make(map[Direction]Connection, len(r.Connections))
	for d, c := range r.Connections {
		out[d] = c
	}
	return out
}

func (g *Graph) HasConnection(id string, dir Direction) bool {
	_, ok := g.rooms[id].Connections[dir]
	return ok
}

// ConnectedRoom returns the target of the connection leaving id through dir.
func (g *Graph) ConnectedRoom(id string, dir Direction) (string, bool) {
	c, ok := g.rooms[id].Connections[dir]
	if !ok {
		return "", false
	}
	return c.RoomID, true
}

// ValidateConnections returns one error wrapping ErrDanglingConnection per
// connection whose target room does not exist. Errors are logged, never fatal.
func (g *Graph) ValidateConnections() []error {
	var errs []error
	g.eachConnection(func(from string, dir Direction, c Connection) {
		if _, ok := g.rooms[c.RoomID]; ok {
			return
		}
		err := &ConnectionError{RoomID: from, Direction: dir, Target: c.RoomID, Err: ErrDanglingConnection}
		g.log.Warn("dangling connection",
			zap.String("room", from),
			zap.String("direction", string(dir)),
			zap.String("target", c.RoomID))
		errs = append(errs, err)
	})
	return errs
}

// ValidateDoors reports malformed connection data: unknown directions or
// door types, and gated doors without a requirement.
func (g *Graph) ValidateDoors() []error {
	var errs []error
	g.eachConnection(func(from string, dir Direction, c Connection) {
		var reason string
		switch {
		case !dir.Valid():
			reason = "unknown direction"
		case c.DoorType != DoorOpen && c.DoorType != DoorAbility && c.DoorType != DoorLocked && c.DoorType != DoorBoss:
			reason = fmt.Sprintf("unknown door type %q", c.DoorType)
		case (c.DoorType == DoorAbility || c.DoorType == DoorLocked) && c.Requires == "":
			reason = "gated door without requires"
		default:
			return
		}
		errs = append(errs, &ConnectionError{
			RoomID:    from,
			Direction: dir,
			Target:    c.RoomID,
			Err:       fmt.Errorf("%w: %s", ErrInvalidConnection, reason),
		})
		g.log.Warn("invalid connection",
			zap.String("room", from),
			zap.String("direction", string(dir)),
			zap.String("reason", reason))
	})
	return errs
}

// Reachable returns every room reachable from start through doors that are
// passable with abilities, in breadth-first order. start is included.
func (g *Graph) Reachable(start string, abilities AbilitySet) []string {
	if _, ok := g.rooms[start]; !ok {
		return nil
	}

	visited := mapset.New[string]()
	visited.Put(start)
	order := []string{start}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		r := g.rooms[current]
		for _, dir := range Directions {
			c, ok := r.Connections[dir]
			if !ok || !CanPass(c, abilities) {
				continue
			}
			if _, exists := g.rooms[c.RoomID]; !exists || visited.Has(c.RoomID) {
				continue
			}
			visited.Put(c.RoomID)
			order = append(order, c.RoomID)
			queue = append(queue, c.RoomID)
		}
	}
	return order
}

// eachConnection visits connections in room id order, then direction order.
// Directions outside the four known ones are visited last, sorted.
func (g *Graph) eachConnection(fn func(from string, dir Direction, c Connection)) {
	for _, id := range g.ids {
		conns := g.rooms[id].Connections
		for _, dir := range Directions {
			if c, ok := conns[dir]; ok {
				fn(id, dir, c)
			}
		}
		var extra []string
		for dir := range conns {
			if !dir.Valid() {
				extra = append(extra, string(dir))
			}
		}
		sort.Strings(extra)
		for _, dir := range extra {
			fn(id, Direction(dir), conns[Direction(dir)])
		}
	}
}
