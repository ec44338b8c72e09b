// Command roomcheck validates a room table and reports which rooms are
// reachable from a start room with a given set of abilities.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milk9111/metroidvania/levels"
	"github.com/milk9111/metroidvania/logging"
	"github.com/milk9111/metroidvania/room"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

type abilitySet struct {
	set mapset.Set[string]
}

func newAbilitySet(list string) abilitySet {
	s := abilitySet{set: mapset.New[string]()}
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			s.set.Put(id)
		}
	}
	return s
}

func (a abilitySet) Has(id string) bool { return a.set.Has(id) }

func main() {
	file := flag.String("file", "", "room table JSON (embedded levels/rooms.json when empty)")
	start := flag.String("start", "room_01", "room to search from")
	abilities := flag.String("abilities", "", "comma-separated unlocked ability ids")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := logging.New(logging.Options{Debug: *verbose})
	defer func() { _ = log.Sync() }()

	if err := run(os.Stdout, log, *file, *start, newAbilitySet(*abilities)); err != nil {
		log.Error("roomcheck failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

// run prints validation problems and the reachable set. It fails when the
// table does not load or has dangling connections.
func run(out io.Writer, log *zap.Logger, file, start string, abilities room.AbilitySet) error {
	var (
		rooms map[string]room.Room
		err   error
	)
	if file == "" {
		rooms, err = levels.LoadRooms()
	} else {
		rooms, err = levels.LoadRoomsFrom(os.DirFS(filepath.Dir(file)), filepath.Base(file))
	}
	if err != nil {
		return err
	}

	g := room.NewGraph(rooms, log)
	dangling := g.ValidateConnections()
	for _, err := range dangling {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	for _, err := range g.ValidateDoors() {
		fmt.Fprintf(out, "warning: %v\n", err)
	}

	reach := g.Reachable(start, abilities)
	sort.Strings(reach)
	fmt.Fprintf(out, "%d/%d rooms reachable from %s\n", len(reach), g.Len(), start)
	for _, id := range reach {
		r, _ := g.Room(id)
		fmt.Fprintf(out, "  %s  %s\n", id, r.Name)
	}

	if len(dangling) > 0 {
		return fmt.Errorf("%d dangling connection(s)", len(dangling))
	}
	return nil
}
