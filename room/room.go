// Package room holds the static room graph and the door gate evaluator.
// Room data is parsed once at boot and never mutated afterwards.
package room

import (
	"errors"
	"fmt"

	"github.com/milk9111/metroidvania/common"
)

// Direction is the side of a room a connection leaves through.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists every direction in proximity-check order.
var Directions = [...]Direction{North, South, East, West}

func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West:
		return true
	}
	return false
}

// Opposite returns the direction a traveller arrives from.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return d
}

// DoorType tags how a connection is gated.
type DoorType string

const (
	DoorOpen    DoorType = "open"
	DoorAbility DoorType = "ability"
	DoorLocked  DoorType = "locked"
	DoorBoss    DoorType = "boss"
)

// Connection is a directed edge to another room.
type Connection struct {
	RoomID   string   `json:"roomId"`
	DoorType DoorType `json:"doorType"`
	Requires string   `json:"requires,omitempty"`
}

// Collectible is a pickup placed in a room that grants an ability.
type Collectible struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Enemy is a spawn point for a room-scoped enemy.
type Enemy struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Room is one node of the world graph.
type Room struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Width           float64                  `json:"width"`
	Height          float64                  `json:"height"`
	SpawnPoint      common.Vec2              `json:"spawnPoint"`
	Connections     map[Direction]Connection `json:"connections"`
	Platforms       []common.Rect            `json:"platforms,omitempty"`
	Walls           []common.Rect            `json:"walls,omitempty"`
	Collectibles    []Collectible            `json:"collectibles,omitempty"`
	Enemies         []Enemy                  `json:"enemies,omitempty"`
	BackgroundColor string                   `json:"backgroundColor,omitempty"`
}

// Connection returns the connection leaving through dir.
func (r Room) Connection(dir Direction) (Connection, bool) {
	c, ok := r.Connections[dir]
	return c, ok
}

var (
	ErrMissingRoom        = errors.New("room: missing room")
	ErrDanglingConnection = errors.New("room: dangling connection")
	ErrInvalidConnection  = errors.New("room: invalid connection")
)

// ConnectionError describes one bad edge found during validation.
type ConnectionError struct {
	RoomID    string
	Direction Direction
	Target    string
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.RoomID, e.Direction, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
