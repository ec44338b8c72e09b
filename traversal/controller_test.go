package traversal

import (
	"errors"
	"strings"
	"testing"

	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/event"
	"github.com/milk9111/metroidvania/room"
)

type abilitySet map[string]bool

func (s abilitySet) Has(id string) bool { return s[id] }

type fakeHost struct {
	built    []string
	placed   []common.Vec2
	released []string
	failOn   string
}

func (h *fakeHost) BuildRoom(r room.Room, res *Resources) error {
	h.built = append(h.built, r.ID)
	res.Add(r.ID+"/geometry", func() { h.released = append(h.released, r.ID+"/geometry") })
	if r.ID == h.failOn {
		return errors.New("boom")
	}
	res.Add(r.ID+"/enemies", func() { h.released = append(h.released, r.ID+"/enemies") })
	return nil
}

func (h *fakeHost) PlacePlayer(spawn common.Vec2) {
	h.placed = append(h.placed, spawn)
}

func testGraph() *room.Graph {
	return room.NewGraph(map[string]room.Room{
		"start": {
			Name: "Start", Width: 1000, Height: 600, SpawnPoint: common.Vec2{X: 500, Y: 300},
			Connections: map[room.Direction]room.Connection{
				room.East:  {RoomID: "dash_room", DoorType: room.DoorAbility, Requires: "dash"},
				room.West:  {RoomID: "ghost", DoorType: room.DoorOpen},
				room.North: {RoomID: "edge_spawn", DoorType: room.DoorOpen},
			},
		},
		"dash_room": {
			Name: "Dash", Width: 800, Height: 600, SpawnPoint: common.Vec2{X: 400, Y: 300},
			Connections: map[room.Direction]room.Connection{
				room.West: {RoomID: "start", DoorType: room.DoorOpen},
			},
		},
		"edge_spawn": {
			Name: "Edge", Width: 800, Height: 600, SpawnPoint: common.Vec2{X: 400, Y: 580},
			Connections: map[room.Direction]room.Connection{
				room.South: {RoomID: "start", DoorType: room.DoorOpen},
			},
		},
	}, nil)
}

func instantConfig() Config {
	return Config{Threshold: 50}
}

func newTestController(t *testing.T, abilities room.AbilitySet, cfg Config) (*Controller, *fakeHost, *event.Bus) {
	t.Helper()
	host := &fakeHost{}
	bus := event.NewBus(nil)
	c := NewController(testGraph(), abilities, host, bus, cfg, nil)
	if err := c.Enter("start"); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	return c, host, bus
}

var eastEdge = common.Vec2{X: 990, Y: 300}

func TestLockedDoorNotifiesOnce(t *testing.T) {
	c, host, bus := newTestController(t, abilitySet{}, instantConfig())

	var locked []LockedPayload
	bus.Subscribe(event.DoorLocked, func(e event.Event) { locked = append(locked, e.Payload.(LockedPayload)) })

	for i := 0; i < 5; i++ {
		c.Tick(1.0/60, eastEdge)
	}

	if c.State() != Idle || c.CurrentRoomID() != "start" {
		t.Fatalf("expected to stay idle in start, got %v in %s", c.State(), c.CurrentRoomID())
	}
	if len(locked) != 1 {
		t.Fatalf("expected one door:locked, got %d", len(locked))
	}
	if locked[0].Direction != room.East || !strings.Contains(locked[0].Feedback, "dash") || locked[0].Requires != "dash" {
		t.Fatalf("unexpected payload %+v", locked[0])
	}

	// stepping away and back re-notifies
	c.Tick(1.0/60, common.Vec2{X: 500, Y: 300})
	c.Tick(1.0/60, eastEdge)
	if len(locked) != 2 {
		t.Fatalf("expected a second door:locked after re-approach, got %d", len(locked))
	}
	if len(host.built) != 1 {
		t.Fatalf("no switch expected, built=%v", host.built)
	}
}

func TestUnlockThenSingleTransition(t *testing.T) {
	abilities := abilitySet{}
	c, host, bus := newTestController(t, abilities, DefaultConfig())

	c.Tick(1.0/60, eastEdge)
	if c.State() != Idle {
		t.Fatal("door should be locked without dash")
	}

	abilities["dash"] = true

	var changed []ChangedPayload
	bus.Subscribe(event.RoomChanged, func(e event.Event) { changed = append(changed, e.Payload.(ChangedPayload)) })

	c.Tick(1.0/60, eastEdge)
	c.Tick(1.0/60, eastEdge)
	if c.State() != Transitioning {
		t.Fatalf("expected Transitioning, got %v", c.State())
	}
	if dir, conn, ok := c.Pending(); !ok || dir != room.East || conn.RoomID != "dash_room" {
		t.Fatalf("unexpected pending %v %+v %v", dir, conn, ok)
	}
	if c.CurrentRoomID() != "start" {
		t.Fatal("room must not change before fade-out completes")
	}

	for i := 0; i < 120 && c.State() == Transitioning; i++ {
		c.Tick(1.0/60, eastEdge)
	}
	if c.State() != Idle || c.CurrentRoomID() != "dash_room" {
		t.Fatalf("expected idle in dash_room, got %v in %s", c.State(), c.CurrentRoomID())
	}
	if len(changed) != 1 || changed[0].PreviousRoomID != "start" {
		t.Fatalf("expected exactly one room change, got %+v", changed)
	}
	if strings.Join(host.built, ",") != "start,dash_room" {
		t.Fatalf("unexpected builds %v", host.built)
	}
	if last := host.placed[len(host.placed)-1]; last != (common.Vec2{X: 400, Y: 300}) {
		t.Fatalf("player placed at %+v", last)
	}
}

func TestSwitchEventOrderAndRelease(t *testing.T) {
	c, host, bus := newTestController(t, abilitySet{"dash": true}, instantConfig())

	var topics []event.Topic
	for _, topic := range []event.Topic{event.RoomExited, event.RoomEntered, event.RoomChanged} {
		bus.Subscribe(topic, func(e event.Event) {
			topics = append(topics, e.Topic)
			if e.Topic == event.RoomEntered && len(host.released) != 2 {
				t.Errorf("previous room not released before enter: %v", host.released)
			}
		})
	}

	c.Tick(1.0/60, eastEdge)
	c.Tick(1.0/60, eastEdge)

	want := []event.Topic{event.RoomExited, event.RoomEntered, event.RoomChanged}
	if len(topics) != len(want) {
		t.Fatalf("topics=%v want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topics=%v want %v", topics, want)
		}
	}
	// released in reverse acquisition order
	if strings.Join(host.released, ",") != "start/enemies,start/geometry" {
		t.Fatalf("unexpected release order %v", host.released)
	}
	if c.Resources().Len() != 2 {
		t.Fatalf("expected the new room's resources to be held, got %d", c.Resources().Len())
	}
}

func TestMissingRoomAborts(t *testing.T) {
	c, host, _ := newTestController(t, abilitySet{}, instantConfig())

	for i := 0; i < 3; i++ {
		c.Tick(1.0/60, common.Vec2{X: 10, Y: 300})
	}
	if c.State() != Idle || c.CurrentRoomID() != "start" {
		t.Fatalf("expected to stay in start, got %v in %s", c.State(), c.CurrentRoomID())
	}
	if len(host.built) != 1 {
		t.Fatalf("unexpected builds %v", host.built)
	}

	if err := c.Enter("ghost"); !errors.Is(err, room.ErrMissingRoom) {
		t.Fatalf("expected ErrMissingRoom, got %v", err)
	}
	if c.CurrentRoomID() != "start" {
		t.Fatal("failed Enter must not change the current room")
	}
}

func TestResume(t *testing.T) {
	tests := []struct {
		name     string
		roomID   string
		fallback string
		want     string
		wantErr  bool
	}{
		{name: "saved_room", roomID: "dash_room", fallback: "start", want: "dash_room"},
		{name: "missing_room", roomID: "nope", fallback: "start", want: "start"},
		{name: "empty_room", roomID: "", fallback: "start", want: "start"},
		{name: "missing_fallback", roomID: "nope", fallback: "ghost", wantErr: true},
		{name: "no_fallback", roomID: "nope", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			host := &fakeHost{}
			c := NewController(testGraph(), abilitySet{}, host, event.NewBus(nil), instantConfig(), nil)
			c.MarkExplored("edge_spawn")

			got, err := c.Resume(tc.roomID, tc.fallback)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, entered %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resume: %v", err)
			}
			if got != tc.want || c.CurrentRoomID() != tc.want {
				t.Fatalf("entered %q (current %q), want %q", got, c.CurrentRoomID(), tc.want)
			}
			if len(host.built) != 1 {
				t.Fatalf("expected one build, got %v", host.built)
			}
			explored := strings.Join(c.ExploredRooms(), ",")
			if !strings.Contains(explored, "edge_spawn") {
				t.Fatalf("previously explored rooms lost: %s", explored)
			}
		})
	}
}

func TestBuildFailureFallsBack(t *testing.T) {
	c, host, _ := newTestController(t, abilitySet{"dash": true}, instantConfig())
	host.failOn = "dash_room"

	c.Tick(1.0/60, eastEdge)
	c.Tick(1.0/60, eastEdge)

	if c.State() != Idle || c.CurrentRoomID() != "start" {
		t.Fatalf("expected fallback to start, got %v in %s", c.State(), c.CurrentRoomID())
	}
	if strings.Join(host.built, ",") != "start,dash_room,start" {
		t.Fatalf("unexpected builds %v", host.built)
	}
	if !strings.Contains(strings.Join(host.released, ","), "dash_room/geometry") {
		t.Fatalf("partial room not released: %v", host.released)
	}
}

func TestArrivalInsideEdgeIsSuppressed(t *testing.T) {
	c, host, _ := newTestController(t, abilitySet{}, instantConfig())

	c.Tick(1.0/60, common.Vec2{X: 500, Y: 10})
	c.Tick(1.0/60, common.Vec2{X: 500, Y: 10})
	if c.CurrentRoomID() != "edge_spawn" {
		t.Fatalf("expected edge_spawn, got %s", c.CurrentRoomID())
	}

	spawn := common.Vec2{X: 400, Y: 580}
	for i := 0; i < 3; i++ {
		c.Tick(1.0/60, spawn)
	}
	if c.State() != Idle || c.CurrentRoomID() != "edge_spawn" {
		t.Fatal("spawning inside an edge zone must not trigger it")
	}

	// leave the zone, then come back
	c.Tick(1.0/60, common.Vec2{X: 400, Y: 300})
	c.Tick(1.0/60, spawn)
	if c.State() != Transitioning {
		t.Fatalf("expected transition after re-entering the edge, got %v", c.State())
	}
	if len(host.built) != 2 {
		t.Fatalf("unexpected builds %v", host.built)
	}
}

func TestAlphaAndExplored(t *testing.T) {
	cfg := Config{Threshold: 50, FadeOut: 0.5, Hold: 0.1, FadeIn: 0.5}
	c, _, _ := newTestController(t, abilitySet{"dash": true}, cfg)

	if c.Alpha() != 0 {
		t.Fatalf("idle alpha %v", c.Alpha())
	}
	c.Tick(0.25, eastEdge)
	c.Tick(0.25, eastEdge)
	if a := c.Alpha(); a < 0.49 || a > 0.51 {
		t.Fatalf("expected half faded, got %v", a)
	}
	c.Tick(0.3, eastEdge)
	if c.Phase() != PhaseHold || c.Alpha() != 1 {
		t.Fatalf("expected hold at full black, phase=%v alpha=%v", c.Phase(), c.Alpha())
	}
	c.Tick(0.6, eastEdge)
	c.Tick(0.6, eastEdge)
	if c.State() != Idle || c.Alpha() != 0 {
		t.Fatalf("expected idle and clear, state=%v alpha=%v", c.State(), c.Alpha())
	}

	if got := strings.Join(c.ExploredRooms(), ","); got != "start,dash_room" {
		t.Fatalf("unexpected explored rooms %s", got)
	}
	c.MarkExplored("dash_room", "edge_spawn")
	if got := strings.Join(c.ExploredRooms(), ","); got != "start,dash_room,edge_spawn" {
		t.Fatalf("unexpected explored rooms %s", got)
	}
}

func TestResourcesRelease(t *testing.T) {
	res := NewResources(nil)
	var order []int
	res.Add("a", func() { order = append(order, 1) })
	res.Add("panics", func() { panic("bad") })
	res.Add("b", func() { order = append(order, 2) })
	res.Add("nil", nil)

	if n := res.Release(); n != 3 {
		t.Fatalf("released %d, want 3", n)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("unexpected order %v", order)
	}
	if n := res.Release(); n != 0 || res.Len() != 0 {
		t.Fatalf("second release should be a no-op, got %d", n)
	}
}
