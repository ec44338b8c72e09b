package save

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/metroidvania/common"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "saves", "slot1.json"), nil)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	if s.Exists() {
		t.Fatal("fresh store should not exist")
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoSave) {
		t.Fatalf("expected ErrNoSave, got %v", err)
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("deleting a missing save: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	s := newTestStore(t)

	rec := NewRecord()
	rec.CurrentRoom = "room_03"
	rec.PlayerPosition = common.Vec2{X: 10, Y: 20}
	rec.Abilities = []string{"dash", "wallJump"}
	rec.CollectedItems = []string{"room_02_dash"}
	rec.ExploredRooms = nil
	rec.PlayTime = 42.5

	saved, err := s.Save(rec)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Timestamp != "2024-03-01T12:00:00Z" || saved.Version != Version {
		t.Fatalf("unexpected stamp %q %q", saved.Timestamp, saved.Version)
	}
	if !s.Exists() {
		t.Fatal("expected save file")
	}

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"exploredRooms": []`) {
		t.Fatalf("nil slices must be written as arrays:\n%s", raw)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentRoom != "room_03" || got.PlayerPosition != rec.PlayerPosition || got.PlayTime != 42.5 {
		t.Fatalf("unexpected record %+v", got)
	}
	if strings.Join(got.Abilities, ",") != "dash,wallJump" || strings.Join(got.CollectedItems, ",") != "room_02_dash" {
		t.Fatalf("unexpected progress %+v", got)
	}

	if err := s.Delete(); err != nil || s.Exists() {
		t.Fatalf("Delete: %v exists=%v", err, s.Exists())
	}
}

func TestLoadOtherVersionAndCorrupt(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"old_version", `{"version":"0.9.0","currentRoom":"room_02","abilities":["dash"]}`, false},
		{"corrupt", `{"version":`, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newTestStore(t)
			if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(s.Path, []byte(c.content), 0644); err != nil {
				t.Fatal(err)
			}
			rec, err := s.Load()
			if (err != nil) != c.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, c.wantErr)
			}
			if !c.wantErr && (rec.CurrentRoom != "room_02" || rec.Version != "0.9.0") {
				t.Fatalf("unexpected record %+v", rec)
			}
		})
	}
}

func TestNewRecordDefaults(t *testing.T) {
	r := NewRecord()
	if r.PlayerHealth != 100 || r.PlayerMaxHealth != 100 || r.CurrentRoom != "room_01" || r.PlayerPosition != (common.Vec2{X: 320, Y: 480}) {
		t.Fatalf("unexpected defaults %+v", r)
	}
}
