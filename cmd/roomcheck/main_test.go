package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestRunEmbeddedTable(t *testing.T) {
	tests := []struct {
		name      string
		abilities string
		want      string
	}{
		{"no_abilities", "", "5/8 rooms reachable from room_01"},
		{"everything", "dash,doubleJump,wallJump,glide,key_01", "8/8 rooms reachable from room_01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(&out, zap.NewNop(), "", "room_01", newAbilitySet(tc.abilities)); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Fatalf("expected %q in output:\n%s", tc.want, out.String())
			}
		})
	}
}

func TestRunReportsDanglingConnection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rooms.json")
	table := `{"a": {"id": "a", "width": 100, "height": 100, "connections": {"east": {"roomId": "missing", "doorType": "open"}}}}`
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(&out, zap.NewNop(), path, "a", newAbilitySet("")); err == nil {
		t.Fatalf("expected an error for the dangling connection")
	}
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("expected an error line, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "1/1 rooms reachable") {
		t.Fatalf("expected only the start room reachable, got:\n%s", out.String())
	}
}

func TestAbilitySetParsing(t *testing.T) {
	s := newAbilitySet(" dash, ,glide ")
	if !s.Has("dash") || !s.Has("glide") || s.Has("") {
		t.Fatalf("unexpected set contents")
	}
}
