// Package save persists progress as a single JSON record on disk.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/milk9111/metroidvania/common"
	"go.uber.org/zap"
)

// Version is written into every record. Loading a different version is
// allowed but logged.
const Version = "1.0.0"

var ErrNoSave = errors.New("save: no save data")

// Record is the on-disk save format.
type Record struct {
	Version         string      `json:"version"`
	Timestamp       string      `json:"timestamp"`
	PlayerHealth    int         `json:"playerHealth"`
	PlayerMaxHealth int         `json:"playerMaxHealth"`
	CurrentRoom     string      `json:"currentRoom"`
	PlayerPosition  common.Vec2 `json:"playerPosition"`
	Abilities       []string    `json:"abilities"`
	CollectedItems  []string    `json:"collectedItems"`
	ExploredRooms   []string    `json:"exploredRooms"`
	DefeatedEnemies []string    `json:"defeatedEnemies"`
	PlayTime        float64     `json:"playTime"`
}

// NewRecord returns a record for a fresh game.
func NewRecord() Record {
	return Record{
		Version:         Version,
		PlayerHealth:    100,
		PlayerMaxHealth: 100,
		CurrentRoom:     "room_01",
		PlayerPosition:  common.Vec2{X: 320, Y: 480},
		Abilities:       []string{},
		CollectedItems:  []string{},
		ExploredRooms:   []string{},
		DefeatedEnemies: []string{},
	}
}

// FileStore reads and writes one Record at Path.
type FileStore struct {
	Path string

	log *zap.Logger
	now func() time.Time
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{Path: path, log: log.Named("save"), now: time.Now}
}

// Save stamps version and timestamp onto rec and writes it atomically.
// Nil slices are written as empty arrays.
func (s *FileStore) Save(rec Record) (Record, error) {
	rec.Version = Version
	rec.Timestamp = s.now().UTC().Format(time.RFC3339)
	for _, p := range []*[]string{&rec.Abilities, &rec.CollectedItems, &rec.ExploredRooms, &rec.DefeatedEnemies} {
		if *p == nil {
			*p = []string{}
		}
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return rec, fmt.Errorf("encode save: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return rec, fmt.Errorf("create save dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return rec, fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return rec, fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return rec, fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return rec, fmt.Errorf("replace save: %w", err)
	}

	s.log.Info("game saved",
		zap.String("path", s.Path),
		zap.String("room", rec.CurrentRoom),
		zap.Int("abilities", len(rec.Abilities)))
	return rec, nil
}

// Load reads the record. A missing file returns ErrNoSave.
func (s *FileStore) Load() (Record, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNoSave
	}
	if err != nil {
		return Record{}, fmt.Errorf("read save: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("decode save %s: %w", s.Path, err)
	}
	if rec.Version != Version {
		s.log.Warn("save version mismatch", zap.String("found", rec.Version), zap.String("expected", Version))
	}

	s.log.Info("game loaded", zap.String("path", s.Path), zap.String("room", rec.CurrentRoom))
	return rec, nil
}

func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Delete removes the save file. Deleting a missing save is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}
