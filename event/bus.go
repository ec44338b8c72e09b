// Package event provides the publish/subscribe bus shared by the gameplay
// packages. A Bus is constructed once by the host and handed to every
// component that emits or observes notifications; there is no package-level
// instance.
//
// Delivery is synchronous: Publish invokes every handler registered for the
// topic, in registration order, before returning. Handlers run on the caller's
// goroutine inside the same tick.
package event

import (
	"sync"

	"go.uber.org/zap"
)

// Topic names a notification channel, e.g. "player:landed".
type Topic string

const (
	PlayerLanded       Topic = "player:landed"
	PlayerJumped       Topic = "player:jumped"
	PlayerDoubleJumped Topic = "player:doubleJumped"
	PlayerWallJumped   Topic = "player:wallJumped"
	PlayerDashed       Topic = "player:dashed"

	AbilityUnlocked  Topic = "ability:unlocked"
	AbilityCollected Topic = "ability:collected"

	RoomEntered Topic = "room:entered"
	RoomExited  Topic = "room:exited"
	RoomChanged Topic = "room:changed"

	DoorLocked   Topic = "door:locked"
	DoorUnlocked Topic = "door:unlocked"

	CombatDamaged  Topic = "combat:damaged"
	CombatDefeated Topic = "combat:defeated"
	EnemySpawned   Topic = "enemy:spawned"

	GameSaved  Topic = "game:saved"
	GameLoaded Topic = "game:loaded"
)

// Event is a single published notification.
type Event struct {
	Topic   Topic
	Payload any
}

// Handler receives events for the topics it subscribed to.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a fire-and-forget publish/subscribe hub.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Topic][]subscription
	nextID   uint64
	log      *zap.Logger
}

// NewBus creates an empty bus. A nil logger disables logging.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[Topic][]subscription),
		log:      log,
	}
}

// Subscribe registers h for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	if b == nil || h == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[topic] = append(b.handlers[topic], subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[topic]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		// copy so an in-flight Publish keeps iterating its own snapshot
		next := make([]subscription, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, topic)
		} else {
			b.handlers[topic] = next
		}
		return
	}
}

// Publish delivers payload to every handler subscribed to topic.
func (b *Bus) Publish(topic Topic, payload any) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := b.handlers[topic]
	b.mu.RUnlock()

	if ce := b.log.Check(zap.DebugLevel, "publish"); ce != nil {
		ce.Write(zap.String("topic", string(topic)), zap.Int("handlers", len(subs)))
	}

	evt := Event{Topic: topic, Payload: payload}
	for _, s := range subs {
		s.handler(evt)
	}
}

// HandlerCount returns the number of handlers registered for topic.
func (b *Bus) HandlerCount(topic Topic) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
