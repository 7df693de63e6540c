package pb

import "github.com/crillab/gopb/sat"

// WatchIndex maps a literal ℓ to the constraints that currently have ¬ℓ in
// their watched prefix, per spec.md §4.C. When ℓ is assigned true, exactly
// this list needs to be examined by on_assign, mirroring the two-watched-
// literal scheme sat.watcherList uses for plain clauses, but indexed by
// negation since a PB watch is "this literal is not yet falsified" rather
// than "this literal is a designated sentinel".
type WatchIndex struct {
	lists map[sat.Lit][]*Ineq
}

// NewWatchIndex returns an empty watch index.
func NewWatchIndex() *WatchIndex {
	return &WatchIndex{lists: make(map[sat.Lit][]*Ineq)}
}

// Add registers c as watching lit: c is notified when lit is falsified.
func (w *WatchIndex) Add(c *Ineq, lit sat.Lit) {
	key := lit.Negation()
	w.lists[key] = append(w.lists[key], c)
}

// Remove undoes a prior Add, via swap-with-last.
func (w *WatchIndex) Remove(c *Ineq, lit sat.Lit) {
	key := lit.Negation()
	lst := w.lists[key]
	for i, x := range lst {
		if x == c {
			lst[i] = lst[len(lst)-1]
			w.lists[key] = lst[:len(lst)-1]
			return
		}
	}
}

// Get returns the constraints watching ¬lit, i.e. those that must run
// on_assign when lit becomes true. The returned slice aliases internal
// storage and may be mutated by concurrent Remove calls during iteration;
// callers that remove while iterating must re-fetch via Get.
func (w *WatchIndex) Get(lit sat.Lit) []*Ineq {
	return w.lists[lit]
}

// growPrefix moves the term currently sitting at c.Args[c.WatchSz] into the
// watched prefix: registers it with w and folds it into WatchSum/MaxWatch.
// The caller is responsible for having already placed the term to promote
// at index c.WatchSz (spec.md §4.C "Add").
func (c *Ineq) growPrefix(w *WatchIndex) {
	t := c.Args[c.WatchSz]
	c.WatchSz++
	c.WatchSum = c.WatchSum.Add(t.Coeff)
	c.MaxWatch = c.MaxWatch.Max(t.Coeff)
	w.Add(c, t.Lit)
}

// shrinkPrefixAt removes the watched term at prefix position pos, swapping
// it with the last prefix slot, per spec.md §4.C "Remove". If the removed
// term held the unique maximum, MaxWatch is recomputed by linear scan.
func (c *Ineq) shrinkPrefixAt(w *WatchIndex, pos int) {
	t := c.Args[pos]
	w.Remove(c, t.Lit)
	last := c.WatchSz - 1
	c.Args[pos], c.Args[last] = c.Args[last], c.Args[pos]
	c.WatchSz--
	c.WatchSum = c.WatchSum.Sub(t.Coeff)
	if t.Coeff.Cmp(c.MaxWatch) == 0 {
		c.recomputeMaxWatch()
	}
}

// resetWatchedPrefix tears down the entire watched prefix, unregistering
// every watch. Used by enable() when reinstalling a prefix from scratch
// after the constraint's polarity was negated in place.
func (c *Ineq) resetWatchedPrefix(w *WatchIndex) {
	for i := 0; i < c.WatchSz; i++ {
		w.Remove(c, c.Args[i].Lit)
	}
	c.WatchSz = 0
	c.WatchSum = Zero()
	c.MaxWatch = Zero()
}
