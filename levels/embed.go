// Package levels embeds the static room table.
package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/milk9111/metroidvania/room"
)

//go:embed *.json
var LevelsFS embed.FS

// RoomsFile is the default room table.
const RoomsFile = "rooms.json"

// LoadRooms parses the embedded room table.
func LoadRooms() (map[string]room.Room, error) {
	return LoadRoomsFrom(LevelsFS, RoomsFile)
}

// LoadRoomsFrom parses a room table keyed by room id. A room whose id field
// is empty takes its key.
func LoadRoomsFrom(fsys fs.FS, name string) (map[string]room.Room, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}
	var rooms map[string]room.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("unmarshal rooms: %w", err)
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("rooms: %s has no rooms", name)
	}
	for id, r := range rooms {
		if r.ID == "" {
			r.ID = id
			rooms[id] = r
		}
		if r.ID != id {
			return nil, fmt.Errorf("rooms: key %q holds room %q", id, r.ID)
		}
		for dir := range r.Connections {
			if !dir.Valid() {
				return nil, fmt.Errorf("rooms: %s: unknown direction %q", id, dir)
			}
		}
	}
	return rooms, nil
}
