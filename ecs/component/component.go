// Package component declares the data attached to entities. Each component
// type gets one package-level handle whose kind keys its storage.
package component

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID keys a storage set. Zero is never issued.
type ComponentID uint32

// kinds names every issued id for logs and errors. Index 0 is unused.
var kinds = struct {
	sync.Mutex
	names []string
}{names: []string{""}}

// Name returns the type name id was issued for, or "" for an unknown id.
func Name(id ComponentID) string {
	kinds.Lock()
	defer kinds.Unlock()
	if int(id) >= len(kinds.names) {
		return ""
	}
	return kinds.names[id]
}

// ComponentKind identifies storage for values of type T.
type ComponentKind[T any] struct {
	id ComponentID
}

// NewComponentKind issues a fresh id. Two kinds of the same type never share
// storage.
func NewComponentKind[T any]() ComponentKind[T] {
	name := reflect.TypeOf((*T)(nil)).Elem().Name()
	if name == "" {
		name = reflect.TypeOf((*T)(nil)).Elem().String()
	}

	kinds.Lock()
	defer kinds.Unlock()
	kinds.names = append(kinds.names, name)
	return ComponentKind[T]{id: ComponentID(len(kinds.names) - 1)}
}

func (k ComponentKind[T]) ID() ComponentID { return k.id }

func (k ComponentKind[T]) Valid() bool { return k.id != 0 }

func (k ComponentKind[T]) String() string {
	if !k.Valid() {
		return "invalid"
	}
	return fmt.Sprintf("%s#%d", Name(k.id), k.id)
}

// ComponentHandle is the package-level value each component file declares.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] { return h.kind }
