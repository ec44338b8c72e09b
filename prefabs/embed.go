// Package prefabs holds the game's tuning data: player movement constants,
// ability definitions, enemy archetypes and enemy scripts. Files are embedded
// in the binary; a copy under DiskDir takes precedence so tuning can be
// edited and hot-reloaded without a rebuild.
package prefabs

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

//go:embed *.yaml
var PrefabsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// DiskDir is the directory checked for overrides before the embedded copy.
var DiskDir = "prefabs"

// Load returns a prefab file, preferring the on-disk copy.
func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

// LoadScript returns a script by bare name ("patroller.tengo") or by any
// path ending in scripts/<name>, preferring the on-disk copy.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

// ModTime reports the on-disk modification time of a prefab override.
func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskPath(cleanPrefabPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func cleanPrefabPath(p string) string {
	s := filepath.ToSlash(p)
	s = strings.TrimPrefix(s, "prefabs/")
	return s
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if i := strings.LastIndex(s, "scripts/"); i >= 0 {
		s = s[i+len("scripts/"):]
	}
	s = strings.TrimPrefix(s, "prefabs/")
	return path.Join("scripts", s)
}

func diskPath(clean string) string {
	return filepath.Join(DiskDir, filepath.FromSlash(clean))
}
