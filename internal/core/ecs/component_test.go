package ecs

import (
	"slices"
	"testing"
)

func TestStoreIteratesInIDOrder(t *testing.T) {
	s := NewStore[string]()
	for _, id := range []ID{7, 2, 11, 0, 5} {
		v := string(rune('a' + id))
		s.Set(id, &v)
	}
	s.Remove(11)

	if got, want := s.IDs(), []ID{0, 2, 5, 7}; !slices.Equal(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	var seen []ID
	s.Each(func(id ID, _ *string) { seen = append(seen, id) })
	if !slices.Equal(seen, []ID{0, 2, 5, 7}) {
		t.Fatalf("Each order = %v", seen)
	}

	s.Clear()
	if s.Len() != 0 || s.Has(2) {
		t.Fatalf("Clear left %d records", s.Len())
	}
}
