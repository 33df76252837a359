package sprite

import (
	"errors"
	"fmt"
)

// ErrPoolFull is returned when a pool has no free slots left.
var ErrPoolFull = errors.New("pool full")

// Ref names an item of a pool. It goes stale when the pool is reset.
type Ref struct {
	index      int
	generation uint32
}

// Pool is a fixed capacity arena. Items are handed out from a cursor and
// never released one by one: Reset releases all of them at once and makes
// every outstanding Ref stale.
type Pool[T any] struct {
	items      []T
	used       int
	generation uint32
}

func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{items: make([]T, capacity)}
}

// Add copies v into the next free slot.
func (p *Pool[T]) Add(v T) (*T, Ref, error) {
	if p.used == len(p.items) {
		return nil, Ref{}, fmt.Errorf("%d items: %w", len(p.items), ErrPoolFull)
	}
	ref := Ref{index: p.used, generation: p.generation}
	p.items[p.used] = v
	p.used++
	return &p.items[ref.index], ref, nil
}

// Get resolves a reference. It fails for references taken before the last
// Reset.
func (p *Pool[T]) Get(ref Ref) (*T, bool) {
	if ref.generation != p.generation || ref.index >= p.used {
		return nil, false
	}
	return &p.items[ref.index], true
}

// At returns item i, 0 <= i < Len.
func (p *Pool[T]) At(i int) *T {
	if i < 0 || i >= p.used {
		panic(fmt.Sprintf("pool index %d out of range [0, %d)", i, p.used))
	}
	return &p.items[i]
}

func (p *Pool[T]) Len() int { return p.used }
func (p *Pool[T]) Cap() int { return len(p.items) }

func (p *Pool[T]) Generation() uint32 {
	return p.generation
}

// Each calls fn for every item in allocation order.
func (p *Pool[T]) Each(fn func(*T)) {
	for i := 0; i < p.used; i++ {
		fn(&p.items[i])
	}
}

// Reset releases every item.
func (p *Pool[T]) Reset() {
	clear(p.items[:p.used])
	p.used = 0
	p.generation++
}
