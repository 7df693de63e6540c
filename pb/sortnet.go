package pb

import "github.com/crillab/gopb/sat"

// vc is the (vars, clauses) cost pair spec.md §4.F's cost model tracks for
// a candidate branch of the sorting network, compared via vcCost's
// 5·vars+clauses heuristic (an aux variable costs roughly as much as five
// clauses to the search, the same rule of thumb gophersat's own
// cardinality encoder in solver/card.go uses to decide between a direct
// and a merge-based encoding).
type vc struct {
	vars, clauses int
}

func vcCost(v vc) int { return 5*v.vars + v.clauses }

func addVC(a, b vc) vc { return vc{vars: a.vars + b.vars, clauses: a.clauses + b.clauses} }

// sortNetBuilder accumulates the auxiliary variables and clauses of a
// comparator network as it is built, and memoizes the cost estimates
// sortSeq consults to choose, at every recursive split, between the direct
// and merge-based encodings (spec.md §4.F: "The model is authoritative ...
// alternative branches must never be entered"). The cost functions below
// mirror directSort/merge's own recursive shape exactly, rather than using
// an independent closed-form estimate, so the decision the model makes and
// the decision the real construction makes can never diverge.
type sortNetBuilder struct {
	host    Host
	vars    int
	clauses int
	built   []*sat.Clause

	directMemo map[int]vc
	bestMemo   map[int]vc
}

// comparatorCost is the fixed (vars, clauses) contribution of one call to
// comparator: two fresh variables and six defining clauses.
var comparatorCost = vc{vars: 2, clauses: 6}

// mergeStepCost estimates merge(x, y)'s cost for inputs of length nx, ny,
// by replaying the same even/odd split and interleave-loop structure merge
// itself uses, without allocating any literals.
func (b *sortNetBuilder) mergeStepCost(nx, ny int) vc {
	if nx == 0 || ny == 0 {
		return vc{}
	}
	if nx == 1 && ny == 1 {
		return comparatorCost
	}
	xe, xo := (nx+1)/2, nx/2
	ye, yo := (ny+1)/2, ny/2
	total := addVC(b.mergeStepCost(xe, ye), b.mergeStepCost(xo, yo))
	dLen, eLen := xe+ye, xo+yo
	for i := 1; i < dLen || i-1 < eLen; i++ {
		if i < dLen && i-1 < eLen {
			total = addVC(total, comparatorCost)
		}
	}
	return total
}

// directCost estimates directSort(n)'s cost, memoized, mirroring its own
// recursive shape: one comparator peeled off the front, merged against the
// direct sort of the rest.
func (b *sortNetBuilder) directCost(n int) vc {
	if n <= 1 {
		return vc{}
	}
	if v, ok := b.directMemo[n]; ok {
		return v
	}
	if b.directMemo == nil {
		b.directMemo = make(map[int]vc)
	}
	var result vc
	if n == 2 {
		result = comparatorCost
	} else {
		result = addVC(comparatorCost, addVC(b.directCost(n-2), b.mergeStepCost(2, n-2)))
	}
	b.directMemo[n] = result
	return result
}

// bestCost estimates sortSeq(n)'s cost, memoized: the smaller of directCost
// and the merge-based split at the same midpoint sortSeq itself uses.
func (b *sortNetBuilder) bestCost(n int) vc {
	if n <= 1 {
		return vc{}
	}
	if v, ok := b.bestMemo[n]; ok {
		return v
	}
	if b.bestMemo == nil {
		b.bestMemo = make(map[int]vc)
	}
	direct := b.directCost(n)
	mid := n / 2
	merged := addVC(addVC(b.bestCost(mid), b.bestCost(n-mid)), b.mergeStepCost(mid, n-mid))
	best := direct
	if vcCost(merged) < vcCost(direct) {
		best = merged
	}
	b.bestMemo[n] = best
	return best
}

func (b *sortNetBuilder) newVar() sat.Lit {
	v := b.host.NewVar()
	b.vars++
	return v.Lit()
}

func (b *sortNetBuilder) addClause(lits ...sat.Lit) {
	b.built = append(b.built, b.host.AddClause(lits))
	b.clauses++
}

// comparator returns (hi, lo) fresh literals such that hi ⟺ (a∨b) and
// lo ⟺ (a∧b): the two-input building block every merge and sort network
// is assembled from.
func (b *sortNetBuilder) comparator(a, bl sat.Lit) (hi, lo sat.Lit) {
	hi = b.newVar()
	lo = b.newVar()
	b.addClause(a.Negation(), hi)
	b.addClause(bl.Negation(), hi)
	b.addClause(hi.Negation(), a, bl)
	b.addClause(a.Negation(), bl.Negation(), lo)
	b.addClause(lo.Negation(), a)
	b.addClause(lo.Negation(), bl)
	return hi, lo
}

func evenOdd(seq []sat.Lit) (even, odd []sat.Lit) {
	for i, l := range seq {
		if i%2 == 0 {
			even = append(even, l)
		} else {
			odd = append(odd, l)
		}
	}
	return even, odd
}

// merge combines two descending-sorted literal sequences into one
// descending-sorted sequence of length len(x)+len(y), via Batcher's
// odd-even merge (spec.md §4.F "smerge"/"interleave").
func (b *sortNetBuilder) merge(x, y []sat.Lit) []sat.Lit {
	if len(x) == 0 {
		return append([]sat.Lit(nil), y...)
	}
	if len(y) == 0 {
		return append([]sat.Lit(nil), x...)
	}
	if len(x) == 1 && len(y) == 1 {
		hi, lo := b.comparator(x[0], y[0])
		return []sat.Lit{hi, lo}
	}
	xEven, xOdd := evenOdd(x)
	yEven, yOdd := evenOdd(y)
	d := b.merge(xEven, yEven)
	e := b.merge(xOdd, yOdd)

	out := make([]sat.Lit, 0, len(x)+len(y))
	out = append(out, d[0])
	for i := 1; i < len(d) || i-1 < len(e); i++ {
		switch {
		case i < len(d) && i-1 < len(e):
			hi, lo := b.comparator(d[i], e[i-1])
			out = append(out, hi, lo)
		case i < len(d):
			out = append(out, d[i])
		default:
			out = append(out, e[i-1])
		}
	}
	return out
}

// directSort is the "dsorting" direct encoding spec.md §4.F prefers below
// the merge network's break-even point: one comparator for n = 2, and for
// larger n a comparator over the first two literals merged with the direct
// sort of the rest.
func (b *sortNetBuilder) directSort(lits []sat.Lit) []sat.Lit {
	switch len(lits) {
	case 0, 1:
		return append([]sat.Lit(nil), lits...)
	case 2:
		hi, lo := b.comparator(lits[0], lits[1])
		return []sat.Lit{hi, lo}
	default:
		hi1, lo1 := b.comparator(lits[0], lits[1])
		return b.merge([]sat.Lit{hi1, lo1}, b.directSort(lits[2:]))
	}
}

// sortSeq recursively splits lits in half, sorts each half and merges the
// results (spec.md §4.F "card"), choosing at every recursion between the
// direct encoding and the merge-based split by comparing their predicted
// vc costs (bestCost), never by a fixed input-size cutoff: the model is
// authoritative, so whichever branch bestCost picked is the one actually
// built here.
func (b *sortNetBuilder) sortSeq(lits []sat.Lit) []sat.Lit {
	n := len(lits)
	if n <= 1 {
		return append([]sat.Lit(nil), lits...)
	}
	mid := n / 2
	merged := addVC(addVC(b.bestCost(mid), b.bestCost(n-mid)), b.mergeStepCost(mid, n-mid))
	if vcCost(b.directCost(n)) <= vcCost(merged) {
		return b.directSort(lits)
	}
	left := b.sortSeq(lits[:mid])
	right := b.sortSeq(lits[mid:])
	return b.merge(left, right)
}

// eligibleForCompilation reports whether c's coefficients are small enough
// to expand via unary duplication (spec.md §9 supplemented feature 2: a
// coefficient-sum overflow guard runs before scheduling). Coefficients ≥ 8
// or a total expanded width beyond maxExpandedWidth are rejected rather
// than risking a combinatorial blowup in the compiled network.
const maxCoeffForCompilation = 8
const maxExpandedWidth = 4096

func eligibleForCompilation(c *Ineq) (k int64, ok bool) {
	total := int64(0)
	for _, t := range c.Args {
		n, exact := t.Coeff.Int64()
		if !exact || n <= 0 || n >= maxCoeffForCompilation {
			return 0, false
		}
		total += n
		if total > maxExpandedWidth {
			return 0, false
		}
	}
	k, exact := c.K.Int64()
	if !exact || k <= 0 {
		return 0, false
	}
	return k, true
}

// Compile expands c into a plain list of Boolean literals (each term
// repeated coeff times) and asserts c.Lit ⟺ (at least K of them true) via
// a comparator network, per spec.md §4.F. It is only ever invoked from
// Restart, the one point at which compilation is allowed to run
// (sat.Solver.Solve triggers Restart on the Luby cadence of MaybeRestart or
// on the LBD trend).
//
// The auxiliary clauses this installs are only valid for as long as the
// scope active when compilation ran stays open: spec.md §4.F says they
// "persist only until the next scope pop that unwinds beyond the
// compilation", with the compiled flag "restored via the trail-value
// mechanism so that re-entering the same decision level recompiles". This
// registers exactly that undo, torn down through Host.RemoveClause rather
// than left to accumulate as dead clauses in the host's watch lists.
func (p *Plugin) compile(c *Ineq) {
	k, ok := eligibleForCompilation(c)
	if !ok {
		p.Stats.CompilationSkippedOverflow++
		c.Compiled = Uncompiled
		return
	}
	expanded := make([]sat.Lit, 0, maxExpandedWidth)
	for _, t := range c.Args {
		n, _ := t.Coeff.Int64()
		for i := int64(0); i < n; i++ {
			expanded = append(expanded, t.Lit)
		}
	}
	b := &sortNetBuilder{host: p.Host}
	sorted := b.sortSeq(expanded)
	out := sorted[k-1]

	fwd := p.Host.AddClause([]sat.Lit{c.Lit.Negation(), out})
	bwd := p.Host.AddClause([]sat.Lit{out.Negation(), c.Lit})
	aux := append(b.built, fwd, bwd)

	c.Compiled = Compiled
	p.Stats.Compilations++
	p.Stats.CompiledVars += b.vars
	p.Stats.CompiledClauses += b.clauses + 2

	p.Host.RegisterUndo(func() {
		for _, cl := range aux {
			p.Host.RemoveClause(cl)
		}
		p.Stats.CompiledClauses -= len(aux)
		c.Compiled = Uncompiled
	})
}

// scheduleCompilation marks c as due for compilation at the next restart
// boundary (spec.md §4.F), rather than compiling inline during
// propagation. The Scheduled tri-state is undone if the scope that
// requested it is popped before the restart fires.
func (p *Plugin) scheduleCompilation(c *Ineq) {
	c.Compiled = Scheduled
	p.pending = append(p.pending, c.handle)
	p.Host.RegisterUndo(func() {
		if c.Compiled == Scheduled {
			c.Compiled = Uncompiled
		}
	})
}

// runScheduledCompilations drains the pending queue, compiling every
// constraint still Scheduled (some may have been undone by an intervening
// scope pop).
func (p *Plugin) runScheduledCompilations() {
	pending := p.pending
	p.pending = p.pending[:0]
	for _, h := range pending {
		c := p.store.ByHandle(h)
		if c == nil || c.Compiled != Scheduled {
			continue
		}
		p.compile(c)
	}
}
