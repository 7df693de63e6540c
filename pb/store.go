package pb

import "github.com/crillab/gopb/sat"

// Store owns every active PB constraint, keyed by the theory variable of
// its governing literal, per spec.md §4.B. Insertion and lookup are O(1);
// only the store may free constraint memory, which it does by dropping the
// constraint from creation when its owning scope is popped (spec.md §3
// "Lifecycle").
type Store struct {
	byVar   map[sat.Var]*Ineq
	created []*Ineq // creation trail, in insertion order
	marks   []int   // trail length saved at each scope boundary
}

// NewStore returns an empty constraint store.
func NewStore() *Store {
	return &Store{byVar: make(map[sat.Var]*Ineq)}
}

// Insert adds c to the store at the current scope, assigning it a stable
// arena handle (spec.md §9 "arena + stable-index handles").
func (s *Store) Insert(c *Ineq) {
	c.handle = int32(len(s.created))
	s.created = append(s.created, c)
	s.byVar[c.Lit.Var()] = c
}

// Lookup returns the constraint governed by v, if any.
func (s *Store) Lookup(v sat.Var) (*Ineq, bool) {
	c, ok := s.byVar[v]
	return c, ok
}

// ByHandle returns the constraint created at the given handle. It remains
// valid until the scope it was created in is popped.
func (s *Store) ByHandle(h int32) *Ineq {
	if int(h) >= len(s.created) {
		return nil
	}
	return s.created[h]
}

// PushScope opens a new scope on the creation trail.
func (s *Store) PushScope() {
	s.marks = append(s.marks, len(s.created))
}

// PopScope closes numScopes scopes, evicting and returning every
// constraint created since (in creation order), so the caller (the watch
// engine, spec.md §4.G) can also remove them from its own indexes.
func (s *Store) PopScope(numScopes int) []*Ineq {
	target := len(s.marks) - numScopes
	mark := s.marks[target]
	removed := append([]*Ineq(nil), s.created[mark:]...)
	for _, c := range removed {
		delete(s.byVar, c.Lit.Var())
	}
	s.created = s.created[:mark]
	s.marks = s.marks[:target]
	return removed
}
