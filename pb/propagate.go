package pb

import "github.com/crillab/gopb/sat"

// enable installs c's watched prefix, called the moment c.Lit is assigned
// true (negating c in place first if it was assigned false), per
// spec.md §4.D "enable(c)".
func (p *Plugin) enable(c *Ineq) *sat.Clause {
	maxPossible := Zero()
	haveUnassigned := false
	minUnassigned := Zero()
	for _, t := range c.Args {
		v := p.Host.Value(t.Lit)
		if v != sat.False {
			maxPossible = maxPossible.Add(t.Coeff)
		}
		if v == sat.Unknown {
			if !haveUnassigned || t.Coeff.Cmp(minUnassigned) < 0 {
				minUnassigned = t.Coeff
				haveUnassigned = true
			}
		}
	}
	if maxPossible.Cmp(c.K) < 0 {
		return p.buildConflictClause(c)
	}

	c.resetWatchedPrefix(p.watch)
	writePos := 0
	for i := 0; i < len(c.Args); i++ {
		if p.Host.Value(c.Args[i].Lit) == sat.False {
			continue
		}
		if writePos != i {
			c.Args[writePos], c.Args[i] = c.Args[i], c.Args[writePos]
		}
		c.growPrefix(p.watch)
		writePos++
		if c.WatchSum.Cmp(c.K.Add(c.MaxWatch)) >= 0 {
			break
		}
	}

	if haveUnassigned && maxPossible.Sub(minUnassigned).Cmp(c.K) < 0 {
		return p.propagateAllUnassigned(c)
	}
	return nil
}

// onAssign handles c losing the watched literal ¬lit (lit having just been
// assigned true), per spec.md §4.D "on_assign(ℓ)". It returns moved=true
// whenever c was removed from lit's watch list (whether or not it was
// re-added under a different literal), so the caller knows not to advance
// its index into that list.
func (p *Plugin) onAssign(c *Ineq, lit sat.Lit) (moved bool, conflict *sat.Clause) {
	falsified := lit.Negation()
	pos := -1
	for i := 0; i < c.WatchSz; i++ {
		if c.Args[i].Lit == falsified {
			pos = i
			break
		}
	}
	if pos < 0 {
		// stale notification: already replaced by a previous call in this
		// same propagation round.
		return false, nil
	}
	c.shrinkPrefixAt(p.watch, pos)

	// Keep promoting not-false literals from the unwatched suffix while
	// add_more holds, i.e. until watch_sum reaches k+max_watch or the
	// suffix runs out (spec.md §4.D step 2). A single promotion is not
	// enough: the loop must run to exhaustion of either condition before
	// the feasibility and unit-propagation checks below are meaningful.
	for i := c.WatchSz; i < len(c.Args) && c.WatchSum.Cmp(c.K.Add(c.MaxWatch)) < 0; {
		if p.Host.Value(c.Args[i].Lit) == sat.False {
			i++
			continue
		}
		c.Args[c.WatchSz], c.Args[i] = c.Args[i], c.Args[c.WatchSz]
		c.growPrefix(p.watch)
		i++
	}

	// Whether zero, one or many literals were just promoted, the prefix
	// must now be rechecked for infeasibility and for a unit-propagation
	// zone, exactly as enable() does after installing a prefix.
	maxPossible := c.WatchSum
	if maxPossible.Cmp(c.K) < 0 {
		return true, p.buildConflictClause(c)
	}
	haveUnassigned := false
	minUnassigned := Zero()
	for _, t := range c.watchedPrefix() {
		if p.Host.Value(t.Lit) == sat.Unknown {
			if !haveUnassigned || t.Coeff.Cmp(minUnassigned) < 0 {
				minUnassigned = t.Coeff
				haveUnassigned = true
			}
		}
	}
	if haveUnassigned && maxPossible.Sub(minUnassigned).Cmp(c.K) < 0 {
		return true, p.propagateAllUnassigned(c)
	}
	return true, nil
}

// propagateAllUnassigned forces every unassigned literal in c's watched
// prefix to true, since c can no longer reach K without every one of them
// (spec.md §4.D "every unassigned literal ... is unit-implied").
func (p *Plugin) propagateAllUnassigned(c *Ineq) *sat.Clause {
	just := justificationFor(c)
	for _, t := range c.watchedPrefix() {
		if p.Host.Value(t.Lit) != sat.Unknown {
			continue
		}
		p.Stats.Propagations++
		c.NumPropagations++
		if !p.Host.Enqueue(t.Lit, just) {
			return p.buildConflictClause(c)
		}
	}
	if p.Cfg.EnableCompilation && !c.compilationDisabled() &&
		c.Compiled == Uncompiled && c.NumPropagations >= c.CompilationThreshold {
		if _, ok := eligibleForCompilation(c); ok {
			p.scheduleCompilation(c)
		} else {
			p.Stats.CompilationSkippedOverflow++
		}
	}
	return nil
}

// buildConflictClause returns the explanation clause for c being
// infeasible under the current assignment: ¬c.Lit together with the
// negation of every literal of c currently assigned false. This is the raw
// material analyze.go's cutting-planes walk resolves against, not itself a
// minimized (1UIP) clause.
func (p *Plugin) buildConflictClause(c *Ineq) *sat.Clause {
	lits := make([]sat.Lit, 0, len(c.Args)+1)
	lits = append(lits, c.Lit.Negation())
	for _, t := range c.Args {
		if p.Host.Value(t.Lit) == sat.False {
			lits = append(lits, t.Lit.Negation())
		}
	}
	p.Stats.Conflicts++
	p.lastConflict = c
	return sat.NewClause(lits)
}
