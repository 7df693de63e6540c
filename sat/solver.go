package sat

import "fmt"

// undoEntry is one registered "value trail" callback, run when the scope it
// was registered at gets popped. It is how the pb package restores the
// compiled tri-state (spec.md §4.F "the compiled flag is restored via the
// trail-value mechanism") without the host knowing what a compiled flag is.
type undoEntry struct {
	depth int
	fn    func()
}

// Solver is the host SAT context: variable allocation, a trail of signed
// assignments annotated with the scope depth they were made at, a
// two-watched-literal CNF core, and a single registered Theory that gets a
// callback on every assignment. It plays the role spec.md §1 calls "a host
// SAT context" for the pb package's theory plugin.
type Solver struct {
	Verbose bool

	nbVars int
	model  []int8 // 0 unassigned, 1 true, -1 false
	level  []int  // scope depth the var was assigned at; meaningless if unassigned
	reason []Justification

	polarity []bool // last (or preferred) phase per var, for decision making

	trail      []Lit
	scopeMarks []int // trail length saved at each PushScope

	undo []undoEntry

	wl watcherList

	varQ   varQueue
	varInc float64

	theory Theory

	restarts int
	lbd      lbdStats

	nextRestartIdx uint
	nextRestartAt  int

	Stats Stats
}

// Stats are host-level statistics, surfaced the same way gophersat exposes
// Solver.Stats (solver/solver.go).
type Stats struct {
	NbAssigns   int
	NbDecisions int
	NbConflicts int
	NbRestarts  int
	NbClauses   int
}

// New returns an empty Solver with room for nbVars variables.
func New(nbVars int) *Solver {
	s := &Solver{
		nbVars:   nbVars,
		model:    make([]int8, nbVars),
		level:    make([]int, nbVars),
		reason:   make([]Justification, nbVars),
		polarity: make([]bool, nbVars),
		wl:       newWatcherList(nbVars),
	}
	activity := make([]float64, nbVars)
	s.varQ = newVarQueue(activity)
	s.varInc = 1.0
	return s
}

// NewVar allocates a fresh variable, growing every internal slice.
func (s *Solver) NewVar() Var {
	v := Var(s.nbVars)
	s.nbVars++
	s.model = append(s.model, 0)
	s.level = append(s.level, 0)
	s.reason = append(s.reason, Justification{})
	s.polarity = append(s.polarity, false)
	s.wl.grow(s.nbVars)
	s.varQ.activity = append(s.varQ.activity, 0)
	s.varQ.insert(int(v))
	return v
}

// NbVars returns the number of variables allocated so far.
func (s *Solver) NbVars() int { return s.nbVars }

// Value returns l's current assignment.
func (s *Solver) Value(l Lit) LitVal {
	switch l {
	case LitTrue:
		return True
	case LitFalse:
		return False
	}
	m := s.model[l.Var()]
	if m == 0 {
		return Unknown
	}
	if (m > 0) == l.IsPositive() {
		return True
	}
	return False
}

// Level returns the scope depth at which v was assigned, or the current
// depth if v is unassigned (matching the convention that an unassigned
// literal cannot yet be part of a level-bounded conflict).
func (s *Solver) Level(v Var) int {
	if s.model[v] == 0 {
		return s.CurrentLevel()
	}
	return s.level[v]
}

// CurrentLevel returns the current scope depth (0 at the base level).
func (s *Solver) CurrentLevel() int { return len(s.scopeMarks) }

// Reason returns the justification recorded for v's assignment.
func (s *Solver) Reason(v Var) Justification { return s.reason[v] }

// Trail returns the current assignment trail, most recent last.
func (s *Solver) Trail() []Lit { return s.trail }

// RegisterTheory attaches the theory that gets an Assign callback on every
// variable assignment.
func (s *Solver) RegisterTheory(t Theory) { s.theory = t }

// RegisterUndo schedules fn to run the next time the current scope is
// popped. Used by the pb package to restore per-constraint trail-valued
// flags (spec.md §9 "Scope mechanics").
func (s *Solver) RegisterUndo(fn func()) {
	s.undo = append(s.undo, undoEntry{depth: s.CurrentLevel(), fn: fn})
}

// Enqueue assigns l to true at the current scope depth with the given
// justification. It returns false if l's variable is already assigned to
// the opposite value (an immediate conflict), true otherwise (including
// when the variable was already assigned to the same value).
func (s *Solver) Enqueue(l Lit, just Justification) bool {
	if l.IsSentinel() {
		return l == LitTrue
	}
	v := l.Var()
	cur := s.model[v]
	if cur != 0 {
		return (cur > 0) == l.IsPositive()
	}
	if l.IsPositive() {
		s.model[v] = 1
	} else {
		s.model[v] = -1
	}
	s.level[v] = s.CurrentLevel()
	s.reason[v] = just
	s.trail = append(s.trail, l)
	s.Stats.NbAssigns++
	return true
}

// AddClause registers lits as a new clause and starts watching it. It does
// not check for tautologies or duplicate literals; callers (e.g. the pb
// sorting-network compiler) are expected to already be canonical.
func (s *Solver) AddClause(lits []Lit) *Clause {
	c := NewClause(lits)
	s.wl.watch(c)
	s.Stats.NbClauses++
	return c
}

// AddLearnedClause registers lits as a learned clause.
func (s *Solver) AddLearnedClause(lits []Lit) *Clause {
	c := NewLearnedClause(lits)
	s.wl.watch(c)
	s.Stats.NbClauses++
	return c
}

// RemoveClause unregisters c from every watch list, the counterpart to
// AddClause/AddLearnedClause a caller uses to retract clauses whose
// validity does not survive a scope pop, e.g. the pb package's compiled
// sorting-network auxiliary clauses (spec.md §4.F: "auxiliary clauses
// persist only until the next scope pop that unwinds beyond the
// compilation").
func (s *Solver) RemoveClause(c *Clause) {
	s.wl.unwatch(c)
	s.Stats.NbClauses--
}

// PushScope opens a new scope. Both the CNF core and the theory are
// notified.
func (s *Solver) PushScope() {
	s.scopeMarks = append(s.scopeMarks, len(s.trail))
	if s.theory != nil {
		s.theory.PushScope()
	}
}

// PopScope closes numScopes scopes, undoing every assignment and every
// registered undo callback made since, then notifies the theory.
func (s *Solver) PopScope(numScopes int) {
	if numScopes <= 0 || numScopes > len(s.scopeMarks) {
		panic(fmt.Sprintf("sat: cannot pop %d scopes, only %d open", numScopes, len(s.scopeMarks)))
	}
	target := len(s.scopeMarks) - numScopes
	mark := s.scopeMarks[target]

	for i := len(s.undo) - 1; i >= 0; i-- {
		if s.undo[i].depth > target {
			s.undo[i].fn()
		}
	}
	kept := s.undo[:0]
	for _, e := range s.undo {
		if e.depth <= target {
			kept = append(kept, e)
		}
	}
	s.undo = kept

	for i := len(s.trail) - 1; i >= mark; i-- {
		l := s.trail[i]
		v := l.Var()
		s.polarity[v] = l.IsPositive()
		s.model[v] = 0
		s.reason[v] = Justification{}
		if !s.varQ.contains(int(v)) {
			s.varQ.insert(int(v))
		}
	}
	s.trail = s.trail[:mark]
	s.scopeMarks = s.scopeMarks[:target]

	if s.theory != nil {
		s.theory.PopScope(numScopes)
	}
}

// Restart notifies the theory of a restart boundary; the sat core itself
// does not unwind any scope on restart here (assumption-driven restarts are
// out of scope, see spec.md §5, the plugin's own state is scope-bounded).
func (s *Solver) Restart() {
	s.restarts++
	s.Stats.NbRestarts++
	s.lbd.clear()
	if s.theory != nil {
		s.theory.Restart()
	}
}

// MaybeRestart triggers Restart once the Luby restart sequence says a
// restart is due, measured against a caller-supplied count of "work units"
// (conflicts, or, for a single-pass caller with no search loop, propagations)
// accumulated so far. It reports whether it fired. The schedule advances
// only on a hit, so calling this repeatedly with a non-decreasing count
// drives restarts at the standard Luby cadence.
func (s *Solver) MaybeRestart(count int) bool {
	if s.nextRestartAt == 0 {
		s.nextRestartIdx = 1
		s.nextRestartAt = int(luby(s.nextRestartIdx)) * lubyConstant
	}
	if count < s.nextRestartAt {
		return false
	}
	s.Restart()
	s.nextRestartIdx++
	s.nextRestartAt = int(luby(s.nextRestartIdx)) * lubyConstant
	return true
}

// Propagate runs unit propagation to a fixpoint: ordinary CNF propagation
// interleaved with the registered theory's Assign callback, in trail order,
// the way gophersat's solver/watcher.go unifyLiteral walks the trail. It
// returns the first conflict clause encountered, or nil if a fixpoint was
// reached with no conflict.
func (s *Solver) Propagate() *Clause {
	ptr := 0
	// Resume from wherever propagation last stopped: callers always drain
	// to a fixpoint before returning control, so ptr tracks a full replay
	// only within a single call, which is what the trail-walk in
	// unifyLiteral does too (it always starts at the position it appended
	// the just-unified literal at).
	for ptr < len(s.trail) {
		lit := s.trail[ptr]

		for _, w := range s.wl.wlistBin[lit] {
			val := s.Value(w.other)
			if val == Unknown {
				if !s.Enqueue(w.other, Justification{Kind: JustBinary, Other: lit.Negation()}) {
					return w.clause
				}
			} else if val == False {
				s.Stats.NbConflicts++
				return w.clause
			}
		}

		if conflict := s.propagateLong(lit); conflict != nil {
			s.Stats.NbConflicts++
			return conflict
		}

		if s.theory != nil {
			if conflict := s.theory.Assign(lit.Var(), lit.IsPositive()); conflict != nil {
				s.Stats.NbConflicts++
				return conflict
			}
		}

		ptr++
	}
	return nil
}

// propagateLong simplifies every long clause watching ¬lit.
func (s *Solver) propagateLong(lit Lit) *Clause {
	watchers := s.wl.wlist[lit]
	i := 0
	for i < len(watchers) {
		c := watchers[i]
		status, unit := s.simplifyClause(c, lit)
		switch status {
		case conflictStatus:
			return c
		case unitStatus:
			if !s.Enqueue(unit, Justification{Kind: JustClause, Clause: c}) {
				return c
			}
			i++
		case manyStatus:
			// simplifyClause moved the watch off lit onto a newly found
			// unassigned literal and re-pointed the watch lists; the
			// current list shrank in place, so re-read it without
			// advancing i.
			watchers = s.wl.wlist[lit]
		case satStatus:
			i++
		}
	}
	return nil
}

type simplifyStatus byte

const (
	satStatus simplifyStatus = iota
	unitStatus
	conflictStatus
	manyStatus
)

// simplifyClause mirrors gophersat's solver/watcher.go simplifyClause: it
// assumes c's first two literals are the watched pair, and rearranges them
// (updating the watch lists) if a literal beyond position 1 is found
// unassigned.
func (s *Solver) simplifyClause(c *Clause, watched Lit) (simplifyStatus, Lit) {
	if s.Value(c.Get(0)) == True || s.Value(c.Get(1)) == True {
		return satStatus, -1
	}
	for i := 2; i < c.Len(); i++ {
		newLit := c.Get(i)
		if s.Value(newLit) != False {
			// watched.Negation() is the literal (Get(0) or Get(1)) whose
			// falsification put c on this list; move the watch off it.
			idx := 0
			if c.Get(0) != watched.Negation() {
				idx = 1
			}
			c.swap(idx, i)
			old := &s.wl.wlist[watched]
			*old = removeClause(*old, c)
			n1 := &s.wl.wlist[newLit.Negation()]
			*n1 = append(*n1, c)
			return manyStatus, -1
		}
	}
	// No replacement found: the other watched literal is either the unit or
	// the conflict.
	v0, v1 := s.Value(c.Get(0)), s.Value(c.Get(1))
	if v0 == False && v1 == False {
		return conflictStatus, -1
	}
	if v0 == Unknown {
		return unitStatus, c.Get(0)
	}
	if v1 == Unknown {
		return unitStatus, c.Get(1)
	}
	return satStatus, -1
}

// Status is the outcome of a completed Solve search.
type Status byte

const (
	// Sat means Solve found a full assignment satisfying the CNF core and
	// every registered theory.
	Sat Status = iota
	// Unsat means Solve derived a conflict at the base level.
	Unsat
)

// varDecay is how much varInc grows on each conflict, the same constant
// gophersat's solver/solver.go uses for defaultVarDecay.
const varDecay = 0.8

// varBumpActivity increases v's activity by the current varInc, following
// gophersat's varBumpActivity, including its overflow rescale of every
// variable's activity once any single one crosses 1e100.
func (s *Solver) varBumpActivity(v Var) {
	s.varQ.activity[v] += s.varInc
	if s.varQ.activity[v] > 1e100 {
		for i := range s.varQ.activity {
			s.varQ.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.varQ.contains(int(v)) {
		s.varQ.decrease(int(v))
	}
}

// varDecayActivity grows varInc, the equivalent of decaying every other
// variable's activity relative to it without touching nbVars entries.
func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / varDecay
}

// pickDecision returns the next branching literal, chosen off the
// activity-ordered varQueue with phase saving, the way gophersat's
// solver/solver.go chooseLit does: v.SignedLit(!s.polarity[v]) repeats
// whichever phase v last held. It reports false once every variable already
// has a value.
func (s *Solver) pickDecision() (Lit, bool) {
	for !s.varQ.empty() {
		v := Var(s.varQ.removeMin())
		if s.model[v] == 0 {
			return v.SignedLit(!s.polarity[v]), true
		}
	}
	return 0, false
}

// lemmaLBD counts the distinct scope depths spanned by c's literals, the
// glue-level measure lbdStats.add expects, following gophersat's own
// computeLBD (solver/solver.go).
func (s *Solver) lemmaLBD(c *Clause) int {
	seen := make(map[int]bool, c.Len())
	for _, l := range c.Lits() {
		seen[s.Level(l.Var())] = true
	}
	return len(seen)
}

// backtrackTarget picks c's asserting literal (the one at the highest scope
// depth) and the depth to backjump to (the second-highest depth among the
// rest). gophersat's own backtrackData (solver/solver.go) gets away with
// just reading positions 0 and 1 because its learned clause always arrives
// sorted by decreasing level; pb.Analyze's fallback paths can return the
// raw, unsorted conflict clause, so this scans instead of assuming order.
// It reports false when every literal sits at the base level: the lemma is
// a genuine top-level contradiction, not something to backjump on.
func (s *Solver) backtrackTarget(c *Clause) (level int, assertLit Lit, ok bool) {
	lits := c.Lits()
	if len(lits) == 0 {
		return 0, 0, false
	}
	maxLevel, assertIdx := -1, 0
	for i, l := range lits {
		if lv := s.Level(l.Var()); lv > maxLevel {
			maxLevel = lv
			assertIdx = i
		}
	}
	if maxLevel <= 0 {
		return 0, 0, false
	}
	second := 0
	for i, l := range lits {
		if i == assertIdx {
			continue
		}
		if lv := s.Level(l.Var()); lv > second {
			second = lv
		}
	}
	if second >= maxLevel {
		second = maxLevel - 1
	}
	return second, lits[assertIdx], true
}

// Solve runs the decision/propagate/analyze/backjump loop spec.md §1
// assumes sits above the theory plugin as "an external search that assigns
// Boolean variables, backtracks". Restarts are checked at the same point
// gophersat's propagateAndSearch does: right after a clean propagation
// fixpoint, before the next decision is made, so a restart never discards
// an assignment a conflict just asserted. Two independent signals can
// trigger one: the Luby cadence (MaybeRestart, keyed off NbConflicts) and
// the LBD trend (lbdStats.mustRestart, fed by every learned lemma's glue
// level) — either fires a full unwind back to the base level.
func (s *Solver) Solve() Status {
	for {
		conflict := s.Propagate()

		if conflict == nil {
			restarted := s.MaybeRestart(s.Stats.NbConflicts)
			if !restarted && s.lbd.mustRestart() {
				s.Restart()
				restarted = true
			}
			if restarted {
				if s.CurrentLevel() > 0 {
					s.PopScope(s.CurrentLevel())
				}
				continue
			}

			lit, ok := s.pickDecision()
			if !ok {
				return Sat
			}
			s.Stats.NbDecisions++
			s.PushScope()
			if !s.Enqueue(lit, Decision) {
				return Unsat
			}
			continue
		}

		if s.CurrentLevel() == 0 {
			return Unsat
		}

		lemma := conflict
		if s.theory != nil {
			lemma = s.theory.Analyze(conflict)
		}

		btLevel, assertLit, ok := s.backtrackTarget(lemma)
		if !ok {
			return Unsat
		}

		for _, l := range lemma.Lits() {
			s.varBumpActivity(l.Var())
		}
		s.varDecayActivity()

		s.lbd.add(s.lemmaLBD(lemma))
		s.PopScope(s.CurrentLevel() - btLevel)

		learned := lemma
		if lemma.Len() > 1 {
			learned = s.AddLearnedClause(append([]Lit(nil), lemma.Lits()...))
		}
		if !s.Enqueue(assertLit, Justification{Kind: JustClause, Clause: learned}) {
			return Unsat
		}
	}
}
