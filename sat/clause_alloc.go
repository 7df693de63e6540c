package sat

// This file deals with an attempt at an efficient literal allocator for
// short-lived clause backing arrays, mirroring gophersat's solver/clause_alloc.go:
// lots of small clauses are created then (sometimes) destroyed, so a pool
// relaxes the GC's work instead of allocating a fresh []Lit per clause.

const nbLitsAlloc = 1 << 20

type litAllocator struct {
	lits    []Lit
	ptrFree int
}

var alloc litAllocator

// newLits returns a slice containing the given literals, taken from the
// preallocated pool if there is room, or freshly allocated otherwise.
func (a *litAllocator) newLits(lits ...Lit) []Lit {
	if a.ptrFree+len(lits) > len(a.lits) {
		a.lits = make([]Lit, nbLitsAlloc)
		copy(a.lits, lits)
		a.ptrFree = len(lits)
		return a.lits[:len(lits)]
	}
	copy(a.lits[a.ptrFree:], lits)
	a.ptrFree += len(lits)
	return a.lits[a.ptrFree-len(lits) : a.ptrFree]
}
