package pb

import "github.com/crillab/gopb/sat"

// Plugin is the sat.Theory implementation: the glue spec.md §6 describes as
// "external interfaces" (InternalizeAtom, Assign, FinalCheck, PushScope,
// PopScope, Restart), wired to the store (component B), watch index
// (component C) and propagator (component D) it owns.
type Plugin struct {
	Host  Host
	Cfg   Config
	Stats Stats

	store   *Store
	watch   *WatchIndex
	pending []int32 // constraint handles scheduled for compilation

	scratch analyzerScratch

	// lastConflict is the Ineq behind the most recent conflict clause
	// buildConflictClause produced, if any. Analyze consults it to recover
	// the true weighted antecedent a generic *sat.Clause would otherwise
	// discard (spec.md §4.E step 1). Cleared at the top of every Assign so
	// a stale conflict from an earlier call is never mistaken for the
	// current one.
	lastConflict *Ineq
}

// NewPlugin returns a plugin ready to be registered on a host solver via
// sat.Solver.RegisterTheory.
func NewPlugin(host Host, cfg Config) *Plugin {
	return &Plugin{
		Host:  host,
		Cfg:   cfg,
		store: NewStore(),
		watch: NewWatchIndex(),
	}
}

// InternalizeAtom canonicalizes atom and either emits it directly as CNF
// clauses on the host, or registers a new watched Ineq under lit, per
// spec.md §4.A/§6.
func (p *Plugin) InternalizeAtom(atom Atom, lit sat.Lit) {
	p.internalizeCanon(Canonicalize(atom, lit), lit)
}

// internalizeCanon dispatches an already-canonicalized atom to the host or
// the store, per spec.md §4.A/§6. Shared by InternalizeAtom and, for the
// nontrivial-lemma case, by Analyze's re-internalization step (spec.md
// §4.E step 8: "re-internalize the lemma as a new PB atom").
func (p *Plugin) internalizeCanon(res CanonResult, lit sat.Lit) {
	switch res.Kind {
	case CanonTrue:
		p.Host.AddClause([]sat.Lit{lit})
	case CanonFalse:
		p.Host.AddClause([]sat.Lit{lit.Negation()})
	case CanonClauses:
		for _, cl := range res.Clauses {
			p.Host.AddClause(cl)
		}
	case CanonConstraint:
		if p.Cfg.EnableCompilation {
			res.Ineq.CompilationThreshold = p.Cfg.CompilationThreshold
		}
		p.store.Insert(res.Ineq)
		p.Stats.ConstraintsCreated++
	}
}

// Assign implements sat.Theory. It is called once per variable assignment
// on the trail, in trail order, per spec.md §4.D.
func (p *Plugin) Assign(v sat.Var, val bool) *sat.Clause {
	p.lastConflict = nil
	lit := v.Lit()
	if !val {
		lit = lit.Negation()
	}

	if c, ok := p.store.Lookup(v); ok {
		if val != c.Lit.IsPositive() {
			c.Negate()
		}
		if conflict := p.enable(c); conflict != nil {
			return conflict
		}
	}

	i := 0
	for {
		watchers := p.watch.Get(lit)
		if i >= len(watchers) {
			break
		}
		c := watchers[i]
		moved, conflict := p.onAssign(c, lit)
		if conflict != nil {
			return conflict
		}
		if !moved {
			i++
		}
		// moved == true means c was swapped out of this list in place
		// (watch.Remove does a swap-with-last), so index i now holds a
		// different constraint and must be re-examined without advancing.
	}
	return nil
}

// FinalCheck implements sat.Theory. Pseudo-Boolean propagation is complete
// under unit propagation alone (spec.md §9 supplemented feature 5): nothing
// deferred ever needs a final pass.
func (p *Plugin) FinalCheck() sat.FinalCheckStatus { return sat.Done }

// PushScope implements sat.Theory, delegating to the store.
func (p *Plugin) PushScope() { p.store.PushScope() }

// PopScope implements sat.Theory: constraints created since are evicted
// from the store and their watches torn down, per spec.md §4.G.
func (p *Plugin) PopScope(numScopes int) {
	removed := p.store.PopScope(numScopes)
	for _, c := range removed {
		c.resetWatchedPrefix(p.watch)
	}
}

// Restart implements sat.Theory. Restarts are the only point at which
// scheduled sorting-network compilations run (spec.md §4.F).
func (p *Plugin) Restart() {
	p.runScheduledCompilations()
}
