package component

import "testing"

func TestComponentKindNames(t *testing.T) {
	tests := []struct {
		name string
		id   ComponentID
		want string
	}{
		{name: "room_scoped", id: RoomScopedComponent.Kind().ID(), want: "RoomScoped"},
		{name: "transform", id: TransformComponent.Kind().ID(), want: "Transform"},
		{name: "builtin", id: NewComponentKind[int]().ID(), want: "int"},
		{name: "zero", id: 0, want: ""},
		{name: "unissued", id: 1 << 30, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Name(tc.id); got != tc.want {
				t.Fatalf("Name(%d)=%q want %q", tc.id, got, tc.want)
			}
		})
	}
}

func TestComponentKindsAreDistinct(t *testing.T) {
	a, b := NewComponentKind[int](), NewComponentKind[int]()
	if a.ID() == b.ID() || !a.Valid() || !b.Valid() {
		t.Fatalf("expected two valid distinct kinds, got %v and %v", a, b)
	}
	var zero ComponentKind[int]
	if zero.Valid() || zero.String() != "invalid" {
		t.Fatalf("zero kind should be invalid, got %v", zero)
	}
}
