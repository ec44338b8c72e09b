package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/metroidvania/ability"
	"github.com/milk9111/metroidvania/movement"
	"github.com/milk9111/metroidvania/traversal"
	"gopkg.in/yaml.v3"
)

const (
	PlayerFile    = "player.yaml"
	AbilitiesFile = "abilities.yaml"
	EnemiesFile   = "enemies.yaml"
)

// LoadSpec decodes a YAML prefab into a fresh T.
func LoadSpec[T any](filename string) (T, error) {
	var spec T
	err := decodeInto(filename, &spec)
	return spec, err
}

// decodeInto decodes over out, so fields absent from the file keep the
// values out already holds.
func decodeInto(filename string, out any) error {
	data, err := Load(filename)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return nil
}

// PlayerSpec is the player's size, health and movement tuning.
type PlayerSpec struct {
	Name          string             `yaml:"name"`
	Width         float64            `yaml:"width"`
	Height        float64            `yaml:"height"`
	MaxHealth     int                `yaml:"max_health"`
	Invincibility float64            `yaml:"invincibility"`
	Color         *YAMLColor         `yaml:"color"`
	Movement      movement.Constants `yaml:"movement"`
	Traversal     traversal.Config   `yaml:"traversal"`
}

func DefaultPlayerSpec() PlayerSpec {
	return PlayerSpec{
		Name:          "player",
		Width:         24,
		Height:        40,
		MaxHealth:     100,
		Invincibility: 1.5,
		Movement:      movement.DefaultConstants(),
		Traversal:     traversal.DefaultConfig(),
	}
}

// LoadPlayerSpec reads player.yaml over the defaults and validates the
// movement constants.
func LoadPlayerSpec() (*PlayerSpec, error) {
	spec := DefaultPlayerSpec()
	if err := decodeInto(PlayerFile, &spec); err != nil {
		return nil, err
	}
	if err := spec.Movement.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", PlayerFile, err)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("prefabs: %s: player size must be positive", PlayerFile)
	}
	if spec.MaxHealth <= 0 {
		return nil, fmt.Errorf("prefabs: %s: max_health must be positive", PlayerFile)
	}
	return &spec, nil
}

type abilitiesSpec struct {
	Abilities []ability.Ability `yaml:"abilities"`
}

// LoadAbilityDefinitions reads abilities.yaml.
func LoadAbilityDefinitions() ([]ability.Ability, error) {
	spec, err := LoadSpec[abilitiesSpec](AbilitiesFile)
	if err != nil {
		return nil, err
	}
	if len(spec.Abilities) == 0 {
		return nil, fmt.Errorf("prefabs: %s: no abilities defined", AbilitiesFile)
	}
	return spec.Abilities, nil
}

// EnemySpec is one enemy archetype. Behaviour lives in Script.
type EnemySpec struct {
	Type        string     `yaml:"type"`
	Width       float64    `yaml:"width"`
	Height      float64    `yaml:"height"`
	Health      int        `yaml:"health"`
	Damage      int        `yaml:"damage"`
	PatrolSpeed float64    `yaml:"patrol_speed"`
	ChaseSpeed  float64    `yaml:"chase_speed"`
	ChaseRange  float64    `yaml:"chase_range"`
	PatrolRange float64    `yaml:"patrol_range"`
	Script      string     `yaml:"script"`
	Color       *YAMLColor `yaml:"color"`
}

type enemiesSpec struct {
	Enemies []EnemySpec `yaml:"enemies"`
}

// LoadEnemySpecs reads enemies.yaml keyed by archetype.
func LoadEnemySpecs() (map[string]EnemySpec, error) {
	spec, err := LoadSpec[enemiesSpec](EnemiesFile)
	if err != nil {
		return nil, err
	}
	out := make(map[string]EnemySpec, len(spec.Enemies))
	for _, e := range spec.Enemies {
		if e.Type == "" {
			return nil, fmt.Errorf("prefabs: %s: enemy without type", EnemiesFile)
		}
		if _, dup := out[e.Type]; dup {
			return nil, fmt.Errorf("prefabs: %s: duplicate enemy type %q", EnemiesFile, e.Type)
		}
		out[e.Type] = e
	}
	return out, nil
}

// YAMLColor decodes "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	col, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = col
	return nil
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa"; the leading # is optional.
func ParseHexColor(v string) (color.NRGBA, error) {
	s := strings.TrimPrefix(v, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", v)
	}

	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(s)/2; i++ {
		n, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %s: %w", v, err)
		}
		ch[i] = uint8(n)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
