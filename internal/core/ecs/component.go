package ecs

import (
	"maps"
	"slices"
)

// Store keeps one record per ID. Records are held by pointer and mutated in
// place by the owner; copies handed to callers are the owner's concern.
// Iteration is in ascending ID order so saves and listings are stable.
type Store[T any] struct {
	data map[ID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[ID]*T, 16)}
}

func (s *Store[T]) Set(id ID, rec *T) { s.data[id] = rec }

func (s *Store[T]) Get(id ID) (*T, bool) {
	rec, ok := s.data[id]
	return rec, ok
}

func (s *Store[T]) Remove(id ID) { delete(s.data, id) }

func (s *Store[T]) Has(id ID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.data) }

// IDs returns every stored ID, ascending.
func (s *Store[T]) IDs() []ID {
	return slices.Sorted(maps.Keys(s.data))
}

// Each visits records in ascending ID order.
func (s *Store[T]) Each(fn func(ID, *T)) {
	for _, id := range s.IDs() {
		fn(id, s.data[id])
	}
}

func (s *Store[T]) Clear() { clear(s.data) }
