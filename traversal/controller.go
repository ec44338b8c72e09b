// Package traversal moves the player between rooms. Each tick the Controller
// checks the player's position against the current room's edges, asks the
// door gate whether the edge is passable and either starts a faded room
// switch or publishes a door:locked notification.
package traversal

import (
	"errors"
	"fmt"

	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/event"
	"github.com/milk9111/metroidvania/room"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

// State is the coarse controller state.
type State int

const (
	Idle State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// Phase is the step of an in-flight transition.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseFadeOut
	PhaseHold
	PhaseFadeIn
)

// Config holds the trigger distance in pixels and the fade timings in seconds.
type Config struct {
	Threshold float64 `yaml:"edge_threshold"`
	FadeOut   float64 `yaml:"fade_out"`
	Hold      float64 `yaml:"fade_hold"`
	FadeIn    float64 `yaml:"fade_in"`
}

func DefaultConfig() Config {
	return Config{Threshold: 50, FadeOut: 0.5, Hold: 0.1, FadeIn: 0.5}
}

// Host builds room contents and places the player. BuildRoom registers
// everything it spawns on res so the next switch can tear it down.
type Host interface {
	BuildRoom(r room.Room, res *Resources) error
	PlacePlayer(spawn common.Vec2)
}

// Payloads published on the bus.
type (
	EnteredPayload struct {
		RoomID     string
		RoomName   string
		SpawnPoint common.Vec2
		Room       room.Room
	}
	ExitedPayload struct {
		RoomID string
	}
	ChangedPayload struct {
		RoomID         string
		PreviousRoomID string
	}
	LockedPayload struct {
		Direction room.Direction
		Feedback  string
		Requires  string
	}
)

type pending struct {
	dir  room.Direction
	conn room.Connection
}

// Controller is the Idle/Transitioning state machine. It is driven from the
// single game goroutine and is not safe for concurrent use.
type Controller struct {
	graph     *room.Graph
	abilities room.AbilitySet
	host      Host
	bus       *event.Bus
	cfg       Config
	log       *zap.Logger

	current string
	res     *Resources

	state   State
	phase   Phase
	timer   float64
	pending pending

	explored      mapset.Set[string]
	exploredOrder []string

	// edges the player is standing in that must be left before they fire
	suppressed map[room.Direction]bool
	// last door:locked notification, cleared once the player steps away
	latched room.Direction
}

func NewController(graph *room.Graph, abilities room.AbilitySet, host Host, bus *event.Bus, cfg Config, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("traversal")
	return &Controller{
		graph:      graph,
		abilities:  abilities,
		host:       host,
		bus:        bus,
		cfg:        cfg,
		log:        log,
		res:        NewResources(log),
		explored:   mapset.New[string](),
		suppressed: map[room.Direction]bool{},
	}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) CurrentRoomID() string { return c.current }

// Resources returns the owner of the current room's spawned entities.
func (c *Controller) Resources() *Resources { return c.res }

// SetConfig replaces the thresholds and timings. An in-flight transition
// keeps its current timer.
func (c *Controller) SetConfig(cfg Config) {
	c.cfg = cfg
}

// CurrentRoom returns the room the player is in.
func (c *Controller) CurrentRoom() (room.Room, bool) {
	if c.current == "" {
		return room.Room{}, false
	}
	r, err := c.graph.Room(c.current)
	return r, err == nil
}

// Pending returns the connection being traversed while Transitioning.
func (c *Controller) Pending() (room.Direction, room.Connection, bool) {
	if c.state != Transitioning {
		return "", room.Connection{}, false
	}
	return c.pending.dir, c.pending.conn, true
}

// Alpha is the fade overlay opacity in [0,1].
func (c *Controller) Alpha() float64 {
	switch c.phase {
	case PhaseFadeOut:
		if c.cfg.FadeOut <= 0 {
			return 1
		}
		return common.Clamp(1-c.timer/c.cfg.FadeOut, 0, 1)
	case PhaseHold:
		return 1
	case PhaseFadeIn:
		if c.cfg.FadeIn <= 0 {
			return 0
		}
		return common.Clamp(c.timer/c.cfg.FadeIn, 0, 1)
	}
	return 0
}

// ExploredRooms returns every room entered this session, in first-visit order.
func (c *Controller) ExploredRooms() []string {
	return append([]string(nil), c.exploredOrder...)
}

// MarkExplored records ids as explored, e.g. after loading a save.
func (c *Controller) MarkExplored(ids ...string) {
	for _, id := range ids {
		if c.explored.Has(id) {
			continue
		}
		c.explored.Put(id)
		c.exploredOrder = append(c.exploredOrder, id)
	}
}

// Enter loads roomID immediately, without a fade. Any in-flight transition is
// dropped. Used for the initial room and for loading a save.
func (c *Controller) Enter(roomID string) error {
	c.state, c.phase, c.timer = Idle, PhaseNone, 0
	c.pending = pending{}
	return c.switchTo(roomID)
}

// Resume enters roomID, or fallback when roomID is not in the room table.
// It returns the id of the room actually entered. Used when loading a save
// whose room has since disappeared.
func (c *Controller) Resume(roomID, fallback string) (string, error) {
	err := c.Enter(roomID)
	if err == nil {
		return roomID, nil
	}
	if !errors.Is(err, room.ErrMissingRoom) || fallback == "" || fallback == roomID {
		return "", err
	}
	c.log.Warn("saved room missing, entering fallback",
		zap.String("room", roomID), zap.String("fallback", fallback))
	if err := c.Enter(fallback); err != nil {
		return "", err
	}
	return fallback, nil
}

// Tick advances an in-flight transition, or checks the player's position
// against the current room's edges.
func (c *Controller) Tick(dt float64, pos common.Vec2) {
	if c.state == Transitioning {
		c.advance(dt)
		return
	}
	c.checkEdges(pos)
}

func (c *Controller) checkEdges(pos common.Vec2) {
	r, ok := c.CurrentRoom()
	if !ok {
		return
	}

	near := c.nearEdges(r, pos)
	for dir := range c.suppressed {
		if !near[dir] {
			delete(c.suppressed, dir)
		}
	}
	if c.latched != "" && !near[c.latched] {
		c.latched = ""
	}

	for _, dir := range room.Directions {
		if !near[dir] || c.suppressed[dir] {
			continue
		}
		conn := r.Connections[dir]

		if !room.CanPass(conn, c.abilities) {
			if c.latched != dir {
				c.latched = dir
				feedback := room.Describe(conn, c.abilities)
				c.log.Debug("door locked",
					zap.String("room", r.ID),
					zap.String("direction", string(dir)),
					zap.String("feedback", feedback))
				c.bus.Publish(event.DoorLocked, LockedPayload{Direction: dir, Feedback: feedback, Requires: conn.Requires})
			}
			return
		}

		c.begin(r, dir, conn)
		return
	}
}

// nearEdges returns the connected directions whose edge pos is within the
// threshold of.
func (c *Controller) nearEdges(r room.Room, pos common.Vec2) map[room.Direction]bool {
	th := c.cfg.Threshold
	near := make(map[room.Direction]bool, 4)
	for _, dir := range room.Directions {
		if _, ok := r.Connections[dir]; !ok {
			continue
		}
		switch dir {
		case room.North:
			near[dir] = pos.Y < th
		case room.South:
			near[dir] = pos.Y > r.Height-th
		case room.West:
			near[dir] = pos.X < th
		case room.East:
			near[dir] = pos.X > r.Width-th
		}
	}
	return near
}

func (c *Controller) begin(from room.Room, dir room.Direction, conn room.Connection) {
	if _, err := c.graph.Room(conn.RoomID); err != nil {
		if c.latched != dir {
			c.latched = dir
			c.log.Error("transition aborted",
				zap.String("room", from.ID),
				zap.String("direction", string(dir)),
				zap.String("target", conn.RoomID),
				zap.Error(err))
		}
		return
	}

	c.log.Info("transition started",
		zap.String("room", from.ID),
		zap.String("direction", string(dir)),
		zap.String("target", conn.RoomID),
		zap.String("door", string(conn.DoorType)))

	c.state = Transitioning
	c.phase = PhaseFadeOut
	c.timer = c.cfg.FadeOut
	c.pending = pending{dir: dir, conn: conn}
	c.latched = ""
}

func (c *Controller) advance(dt float64) {
	if dt > 0 {
		c.timer -= dt
	}
	for c.state == Transitioning && c.timer <= 0 {
		switch c.phase {
		case PhaseFadeOut:
			if err := c.switchTo(c.pending.conn.RoomID); err != nil {
				c.log.Error("room switch failed", zap.String("target", c.pending.conn.RoomID), zap.Error(err))
			}
			c.phase = PhaseHold
			c.timer += c.cfg.Hold
		case PhaseHold:
			c.phase = PhaseFadeIn
			c.timer += c.cfg.FadeIn
		default:
			c.state = Idle
			c.phase = PhaseNone
			c.timer = 0
			c.pending = pending{}
		}
	}
}

// switchTo is the single point where the current room changes. The previous
// room's resources are released before the next room is built; if the build
// fails the partial room is released and the previous room is rebuilt.
func (c *Controller) switchTo(target string) error {
	next, err := c.graph.Room(target)
	if err != nil {
		c.log.Error("missing room", zap.String("room", target), zap.Error(err))
		return err
	}

	prev := c.current
	if prev != "" {
		c.bus.Publish(event.RoomExited, ExitedPayload{RoomID: prev})
	}
	c.res.Release()

	if err := c.host.BuildRoom(next, c.res); err != nil {
		c.res.Release()
		buildErr := fmt.Errorf("build room %q: %w", target, err)
		if prev == "" || prev == target {
			c.current = ""
			return buildErr
		}
		c.log.Warn("falling back to previous room", zap.String("room", prev), zap.Error(buildErr))
		c.current = ""
		if fallbackErr := c.switchTo(prev); fallbackErr != nil {
			return errors.Join(buildErr, fallbackErr)
		}
		return buildErr
	}

	c.current = next.ID
	c.host.PlacePlayer(next.SpawnPoint)
	c.MarkExplored(next.ID)

	// arriving inside an edge zone must not bounce the player straight back
	c.suppressed = c.nearEdges(next, next.SpawnPoint)
	for dir, near := range c.suppressed {
		if !near {
			delete(c.suppressed, dir)
		}
	}
	c.latched = ""

	c.log.Info("room entered", zap.String("room", next.ID), zap.String("previous", prev))
	c.bus.Publish(event.RoomEntered, EnteredPayload{
		RoomID:     next.ID,
		RoomName:   next.Name,
		SpawnPoint: next.SpawnPoint,
		Room:       next,
	})
	c.bus.Publish(event.RoomChanged, ChangedPayload{RoomID: next.ID, PreviousRoomID: prev})
	return nil
}
