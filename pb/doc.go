/*
Package pb implements a pseudo-Boolean theory plugin over a sat.Solver host:
normalization of PB atoms to canonical ≥ form (Canonicalize), a
watched-literal propagation engine (Store/watch index/Propagator), a
cutting-planes conflict analyzer producing asserting PB lemmas, and a
parametric sorting-network compiler that lazily turns heavily-propagating
cardinality constraints into CNF.

The plugin never runs concurrently with itself: it is driven entirely by
callbacks from a single sat.Solver, in lockstep with the search, the same
cooperative model gophersat's solver package uses internally for its own
watcher list.
*/
package pb
