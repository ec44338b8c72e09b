package entity

import (
	"fmt"

	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
)

// NewNotice shows text for seconds. A notice with the same text already on
// screen has its timer refreshed instead.
func NewNotice(w *ecs.World, text string, seconds float64) (ecs.Entity, error) {
	for _, e := range ecs.Query(w, component.NoticeComponent.Kind()) {
		n, _ := ecs.Get(w, e, component.NoticeComponent.Kind())
		ttl, ok := ecs.Get(w, e, component.TTLComponent.Kind())
		if !ok || n.Text != text {
			continue
		}
		ttl.Remaining = seconds
		return e, nil
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.NoticeComponent.Kind(), &component.Notice{Text: text}); err != nil {
		return 0, fmt.Errorf("notice: add notice: %w", err)
	}
	if err := ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Remaining: seconds}); err != nil {
		return 0, fmt.Errorf("notice: add ttl: %w", err)
	}
	return e, nil
}
