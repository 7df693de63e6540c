package pb

import (
	"sort"

	"github.com/crillab/gopb/sat"
)

// analyzerScratch holds the lemma's term map (spec.md §4.E m_lemma) and the
// marked set (m_marked), reused across calls to avoid reallocating on every
// conflict. The side-literal list (m_ineq_literals) is allocated per
// analysis.
type analyzerScratch struct {
	marked map[sat.Var]bool
	terms  map[sat.Var]Term
}

// conflictAnalysis is the cutting-planes walk in progress: the running
// lemma Σ terms ≥ k (spec.md's m_lemma), the set of marked-but-unresolved
// variables at the conflict level, and the side literals (m_ineq_literals)
// accumulated from decisions, axioms and governing literals that can't be
// resolved away and must instead be negated into the final clause.
type conflictAnalysis struct {
	host  Host
	cfg   Config
	level int

	terms    map[sat.Var]Term
	k        Coeff
	marked   map[sat.Var]bool
	numMarks int
	sideLits []sat.Lit
}

// newConflictAnalysis starts a fresh walk at the given conflict level,
// reusing p's scratch buffers.
func (p *Plugin) newConflictAnalysis(level int) *conflictAnalysis {
	if p.scratch.marked == nil {
		p.scratch.marked = make(map[sat.Var]bool)
		p.scratch.terms = make(map[sat.Var]Term)
	}
	for v := range p.scratch.marked {
		delete(p.scratch.marked, v)
	}
	for v := range p.scratch.terms {
		delete(p.scratch.terms, v)
	}
	return &conflictAnalysis{
		host:   p.Host,
		cfg:    p.Cfg,
		level:  level,
		terms:  p.scratch.terms,
		marked: p.scratch.marked,
		k:      Zero(),
	}
}

// processAntecedent folds one antecedent literal l, carrying weight coeff,
// into the running lemma, per spec.md §4.E step 4 / theory_pb.cpp
// process_antecedent. l is always a literal that the conflicting state
// currently makes false (an "explanation" literal), except when it is one
// of an antecedent's own consequent occurrences resolving back against a
// marked variable, in which case it is already true and instead reduces k.
func (a *conflictAnalysis) processAntecedent(l sat.Lit, coeff Coeff) {
	v := l.Var()
	if a.host.Value(l) != sat.False {
		a.k = a.k.Sub(coeff)
		if a.cfg.LearnComplements && a.marked[v] {
			t := a.terms[v]
			t.Coeff = t.Coeff.Sub(coeff)
			if t.Coeff.Sign() <= 0 {
				delete(a.terms, v)
				delete(a.marked, v)
				a.numMarks--
			} else {
				a.terms[v] = t
			}
		}
		return
	}
	if a.host.Level(v) == 0 {
		return
	}
	if a.marked[v] {
		t := a.terms[v]
		t.Coeff = t.Coeff.Add(coeff)
		a.terms[v] = t
		return
	}
	if a.host.Level(v) == a.level {
		a.numMarks++
	}
	a.marked[v] = true
	a.terms[v] = Term{Lit: l, Coeff: coeff}
}

// seedFromClause seeds the lemma from a plain conflict clause, treating it
// as the coefficient-1 constraint Σℓi ≥ 1 that it is (used whenever the
// conflict did not originate from this plugin's own watched constraints).
func (a *conflictAnalysis) seedFromClause(lits []sat.Lit) {
	a.k = One()
	for _, l := range lits {
		a.processAntecedent(l, One())
	}
}

// processIneqSeed seeds the lemma directly from the Ineq behind a theory
// conflict, per spec.md §4.E step 1 (theory_pb.cpp process_ineq applied to
// the conflicting inequality itself, before any resolution has happened).
func (a *conflictAnalysis) processIneqSeed(c *Ineq) {
	a.k = a.k.Add(c.K)
	for _, t := range c.Args {
		a.processAntecedent(t.Lit, t.Coeff)
	}
	if a.host.Level(c.Lit.Var()) > 0 {
		a.sideLits = append(a.sideLits, c.Lit)
	}
}

// processIneqResolve folds antecedent inequality c into the running lemma
// to eliminate conseq (c's own occurrence of the variable just popped off
// the trail), by first scaling both sides to a common coefficient on that
// variable via their LCM (spec.md §4.E step 4, "own PB justification").
func (a *conflictAnalysis) processIneqResolve(c *Ineq, conseq sat.Lit, coeff1 Coeff) {
	var coeff2 Coeff
	for _, t := range c.Args {
		if t.Lit.Var() == conseq.Var() {
			coeff2 = t.Coeff
			break
		}
	}
	if coeff2.IsZero() {
		return
	}
	lc := LCM(coeff1, coeff2)
	g := lc.DivExact(coeff1)
	g2 := lc.DivExact(coeff2)
	if g.Cmp(One()) != 0 {
		a.k = a.k.Mul(g)
		for v, t := range a.terms {
			t.Coeff = t.Coeff.Mul(g)
			a.terms[v] = t
		}
	}
	a.k = a.k.Add(g2.Mul(c.K))
	for _, t := range c.Args {
		a.processAntecedent(t.Lit, g2.Mul(t.Coeff))
	}
	if a.host.Level(c.Lit.Var()) > 0 {
		a.sideLits = append(a.sideLits, c.Lit)
	}
}

// hoistMaximalValues removes every remaining term whose coefficient alone
// meets or exceeds k, since such a literal being true would satisfy the
// lemma outright: it is pulled out of the sum and its negation pushed onto
// the side-literal list instead (spec.md §4.E step 6, theory_pb.cpp
// hoist_maximal_values). This is the "remove and negate", not "clamp to k".
func (a *conflictAnalysis) hoistMaximalValues() {
	for v, t := range a.terms {
		if t.Coeff.Cmp(a.k) >= 0 {
			a.sideLits = append(a.sideLits, t.Lit.Negation())
			delete(a.terms, v)
		}
	}
}

// sortByLevelDesc orders lits by decreasing decision level, the convention
// gophersat's solver/sort.go clauseSorter applies to learned clauses, so a
// clause's first two literals are its watched pair immediately after the
// backjump the clause causes.
func sortByLevelDesc(host Host, lits []sat.Lit) {
	sort.Slice(lits, func(i, j int) bool {
		return host.Level(lits[i].Var()) > host.Level(lits[j].Var())
	})
}

// Analyze walks the trail backward from conflict, resolving out marked
// literals at the conflict level via cutting planes until none remain, per
// spec.md §4.E. It aborts to the raw conflict clause when the conflict is
// below any meaningful level or the conflict-frequency throttle says to
// skip the full pass, and otherwise normalizes the resulting lemma to
// TRUE/FALSE/nontrivial exactly as theory_pb.cpp's resolve_conflict does,
// re-internalizing a surviving weighted lemma as a new governed PB atom
// rather than discarding its coefficients.
func (p *Plugin) Analyze(conflict *sat.Clause) *sat.Clause {
	level := 0
	for _, l := range conflict.Lits() {
		if lv := p.Host.Level(l.Var()); lv > level {
			level = lv
		}
	}
	lastConflict := p.lastConflict
	p.lastConflict = nil

	if level == 0 {
		return conflict
	}
	if lastConflict != nil {
		if level < p.Host.Level(lastConflict.Lit.Var()) {
			return conflict
		}
		if p.Cfg.ConflictFrequency > 0 && lastConflict.NumPropagations%p.Cfg.ConflictFrequency != 0 {
			return conflict
		}
	}

	a := p.newConflictAnalysis(level)
	if lastConflict != nil {
		a.processIneqSeed(lastConflict)
	} else {
		a.seedFromClause(conflict.Lits())
	}

	trail := p.Host.Trail()
	for idx := len(trail) - 1; a.numMarks > 0 && idx >= 0; idx-- {
		lit := trail[idx]
		v := lit.Var()
		if !a.marked[v] {
			continue
		}
		conseq := a.terms[v]
		delete(a.marked, v)
		delete(a.terms, v)
		a.numMarks--

		just := p.Host.Reason(v)
		switch just.Kind {
		case sat.JustClause:
			for _, ol := range just.Clause.Lits() {
				if ol.Var() == v {
					continue
				}
				a.processAntecedent(ol, conseq.Coeff)
			}
		case sat.JustBinary:
			a.processAntecedent(just.Other, conseq.Coeff)
		case sat.JustTheory:
			if ante := p.ineqFromJustification(just); ante != nil {
				a.processIneqResolve(ante, conseq.Lit, conseq.Coeff)
			} else {
				a.sideLits = append(a.sideLits, lit)
			}
		case sat.JustAxiom:
			if p.Host.Level(v) > 0 {
				a.sideLits = append(a.sideLits, lit)
			}
		default: // sat.JustDecision
			a.sideLits = append(a.sideLits, lit)
		}
	}

	return p.finishAnalysis(a, conflict)
}

// finishAnalysis applies the hoist step and dispatches on whatever remains
// of the lemma: an empty or infeasible remainder normalizes to a plain
// clause over the negated side literals (spec.md §4.E step 5, "normalize
// to FALSE"); an unreachable positive remainder is a defensive no-op
// falling back to the original conflict (step 5, "normalize to TRUE" is
// only reachable when k has already collapsed to <= 0, which the trivial
// outcomes in Canonicalize would also catch); otherwise the remaining
// weighted terms are re-internalized as a new governed PB atom and the
// clause asserts its governing literal alongside the negated side literals
// (step 8).
func (p *Plugin) finishAnalysis(a *conflictAnalysis, fallback *sat.Clause) *sat.Clause {
	a.hoistMaximalValues()

	sum := Zero()
	for _, t := range a.terms {
		sum = sum.Add(t.Coeff)
	}

	if sum.Cmp(a.k) < 0 {
		lits := make([]sat.Lit, len(a.sideLits))
		for i, l := range a.sideLits {
			lits[i] = l.Negation()
		}
		sortByLevelDesc(p.Host, lits)
		return sat.NewLearnedClause(lits)
	}
	if a.k.Sign() <= 0 {
		return fallback
	}

	atomTerms := make([]RawTerm, 0, len(a.terms))
	for _, t := range a.terms {
		atomTerms = append(atomTerms, RawTerm{Coeff: t.Coeff, Lit: t.Lit})
	}
	govVar := p.Host.NewVar()
	govLit := govVar.Lit()
	p.internalizeCanon(Canonicalize(Atom{Cmp: GE, Terms: atomTerms, K: a.k}, govLit), govLit)

	lits := make([]sat.Lit, 0, len(a.sideLits)+1)
	for _, l := range a.sideLits {
		lits = append(lits, l.Negation())
	}
	lits = append(lits, govLit)
	sortByLevelDesc(p.Host, lits)
	return sat.NewLearnedClause(lits)
}
