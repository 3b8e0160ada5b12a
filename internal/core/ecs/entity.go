package ecs

// ID identifies a worm for the lifetime of a save. IDs are handed out by a
// monotonic allocator and are never reused, even after removal.
type ID int64

// FirstID is the allocator's initial value.
const FirstID ID = 0

// Allocator hands out monotonically increasing IDs. Unlike a free-list pool
// it never recycles an index: lineage records refer to parents by ID long
// after those parents stopped being simulated.
type Allocator struct {
	next ID
}

func NewAllocator() *Allocator {
	return &Allocator{next: FirstID}
}

// Next returns a fresh ID and advances the high-water mark.
func (a *Allocator) Next() ID {
	id := a.next
	a.next++
	return id
}

// Observe raises the high-water mark past an ID restored from elsewhere.
func (a *Allocator) Observe(id ID) {
	if id+1 > a.next {
		a.next = id + 1
	}
}

// Peek returns the ID the next call to Next will return.
func (a *Allocator) Peek() ID { return a.next }

// Reset returns the allocator to its initial value.
func (a *Allocator) Reset() { a.next = FirstID }
