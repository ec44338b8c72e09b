// Package ability holds the canonical ability definitions and the player's
// unlocked subset. The Registry is the single authority both the movement
// engine and the door gate evaluator read from; it is only written by pickup
// collection and save loading.
package ability

import (
	"fmt"

	"github.com/milk9111/metroidvania/event"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

// UnlockResult reports what Unlock did.
type UnlockResult int

const (
	Unlocked UnlockResult = iota
	AlreadyUnlocked
	// UnlockRejected accompanies every error.
	UnlockRejected
)

func (r UnlockResult) String() string {
	switch r {
	case AlreadyUnlocked:
		return "already_unlocked"
	case UnlockRejected:
		return "rejected"
	}
	return "unlocked"
}

// CollectResult reports what Collect did.
type CollectResult int

const (
	Collected CollectResult = iota
	AlreadyCollected
	// CollectRejected accompanies an unknown ability; nothing was recorded.
	CollectRejected
)

func (r CollectResult) String() string {
	switch r {
	case AlreadyCollected:
		return "already_collected"
	case CollectRejected:
		return "rejected"
	}
	return "collected"
}

// UnlockedPayload is published on event.AbilityUnlocked.
type UnlockedPayload struct {
	AbilityID string
	Ability   Ability
}

// CollectedPayload is published on event.AbilityCollected.
type CollectedPayload struct {
	CollectibleID string
	AbilityType   string
}

// State is the persisted portion of the registry.
type State struct {
	UnlockedAbilities []string `json:"unlockedAbilities"`
	CollectedItems    []string `json:"collectedItems"`
}

// Progress summarizes how many abilities are unlocked.
type Progress struct {
	Unlocked   int
	Total      int
	Percentage float64
}

// Registry tracks unlocked abilities and collected world pickups.
// Both sets only grow during a session; Import is the one replacing write.
type Registry struct {
	defs  map[string]Ability
	order []string

	unlocked      mapset.Set[string]
	unlockedOrder []string

	collected      mapset.Set[string]
	collectedOrder []string

	bus *event.Bus
	log *zap.Logger
}

// NewRegistry builds a registry over defs. It returns ErrInvalidDefinition if
// defs has empty or duplicate ids.
func NewRegistry(defs []Ability, bus *event.Bus, log *zap.Logger) (*Registry, error) {
	if err := validateDefinitions(defs); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{
		defs:      make(map[string]Ability, len(defs)),
		order:     make([]string, 0, len(defs)),
		unlocked:  mapset.New[string](),
		collected: mapset.New[string](),
		bus:       bus,
		log:       log.Named("ability"),
	}
	for _, d := range defs {
		r.defs[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// Definition returns the definition for id.
func (r *Registry) Definition(id string) (Ability, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Definitions returns every definition in declaration order.
func (r *Registry) Definitions() []Ability {
	out := make([]Ability, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// Has reports whether id is unlocked.
func (r *Registry) Has(id string) bool {
	if r == nil {
		return false
	}
	return r.unlocked.Has(id)
}

// Unlock adds id to the unlocked set. Unknown ids are logged and ignored.
func (r *Registry) Unlock(id string) (UnlockResult, error) {
	def, ok := r.defs[id]
	if !ok {
		r.log.Warn("unlock ignored", zap.String("ability", id), zap.Error(ErrUnknownAbility))
		return UnlockRejected, fmt.Errorf("unlock %q: %w", id, ErrUnknownAbility)
	}
	if r.unlocked.Has(id) {
		r.log.Debug("ability already unlocked", zap.String("ability", id))
		return AlreadyUnlocked, nil
	}

	r.unlocked.Put(id)
	r.unlockedOrder = append(r.unlockedOrder, id)
	r.log.Info("ability unlocked", zap.String("ability", id), zap.String("name", def.Name))

	r.bus.Publish(event.AbilityUnlocked, UnlockedPayload{AbilityID: id, Ability: def})
	r.bus.Publish(event.DoorUnlocked, UnlockedPayload{AbilityID: id, Ability: def})
	return Unlocked, nil
}

// Collect records a world pickup and grants its ability. A pickup can be
// collected at most once; an unknown ability leaves both sets untouched.
func (r *Registry) Collect(collectibleID, abilityID string) (CollectResult, error) {
	if r.collected.Has(collectibleID) {
		return AlreadyCollected, nil
	}
	if _, ok := r.defs[abilityID]; !ok {
		r.log.Warn("collect ignored",
			zap.String("collectible", collectibleID),
			zap.String("ability", abilityID),
			zap.Error(ErrUnknownAbility))
		return CollectRejected, fmt.Errorf("collect %q: %w", abilityID, ErrUnknownAbility)
	}

	r.collected.Put(collectibleID)
	r.collectedOrder = append(r.collectedOrder, collectibleID)

	r.bus.Publish(event.AbilityCollected, CollectedPayload{CollectibleID: collectibleID, AbilityType: abilityID})

	if _, err := r.Unlock(abilityID); err != nil {
		return Collected, err
	}
	return Collected, nil
}

// IsCollected reports whether the pickup was already taken.
func (r *Registry) IsCollected(collectibleID string) bool {
	if r == nil {
		return false
	}
	return r.collected.Has(collectibleID)
}

// UnlockAll unlocks every defined ability.
func (r *Registry) UnlockAll() {
	for _, id := range r.order {
		_, _ = r.Unlock(id)
	}
}

// Unlocked returns unlocked ids in acquisition order.
func (r *Registry) Unlocked() []string {
	return append([]string(nil), r.unlockedOrder...)
}

// CollectedItems returns collected pickup ids in collection order.
func (r *Registry) CollectedItems() []string {
	return append([]string(nil), r.collectedOrder...)
}

func (r *Registry) Progress() Progress {
	p := Progress{Unlocked: r.unlocked.Size(), Total: len(r.defs)}
	if p.Total > 0 {
		p.Percentage = float64(p.Unlocked) / float64(p.Total) * 100
	}
	return p
}

// Export snapshots the persisted sets.
func (r *Registry) Export() State {
	return State{
		UnlockedAbilities: r.Unlocked(),
		CollectedItems:    r.CollectedItems(),
	}
}

// Import replaces both sets with s. Unknown ability ids are logged and
// skipped. No unlock events are published.
func (r *Registry) Import(s State) {
	r.unlocked = mapset.New[string]()
	r.unlockedOrder = r.unlockedOrder[:0]
	for _, id := range s.UnlockedAbilities {
		if _, ok := r.defs[id]; !ok {
			r.log.Warn("import skipped ability", zap.String("ability", id), zap.Error(ErrUnknownAbility))
			continue
		}
		if r.unlocked.Has(id) {
			continue
		}
		r.unlocked.Put(id)
		r.unlockedOrder = append(r.unlockedOrder, id)
	}

	r.collected = mapset.New[string]()
	r.collectedOrder = r.collectedOrder[:0]
	for _, id := range s.CollectedItems {
		if r.collected.Has(id) {
			continue
		}
		r.collected.Put(id)
		r.collectedOrder = append(r.collectedOrder, id)
	}

	r.log.Info("abilities imported",
		zap.Int("abilities", len(r.unlockedOrder)),
		zap.Int("collected", len(r.collectedOrder)))
}
