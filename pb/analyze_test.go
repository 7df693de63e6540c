package pb

import (
	"testing"

	"github.com/crillab/gopb/sat"
)

func TestAnalyzeResolvesOutCurrentLevelLiteral(t *testing.T) {
	host := sat.New(4)
	d, x, y, z := sat.Var(0).Lit(), sat.Var(1).Lit(), sat.Var(2).Lit(), sat.Var(3).Lit()

	host.PushScope()
	host.Enqueue(d, sat.Decision)
	host.AddClause([]sat.Lit{d.Negation(), x})
	if conflict := host.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %v", conflict)
	}

	host.PushScope()
	host.Enqueue(z, sat.Decision)
	host.AddClause([]sat.Lit{x.Negation(), y})
	if conflict := host.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %v", conflict)
	}

	if host.Value(x) != sat.True || host.Value(y) != sat.True {
		t.Fatalf("propagation setup failed: x=%v y=%v", host.Value(x), host.Value(y))
	}

	conflict := sat.NewClause([]sat.Lit{y.Negation(), z.Negation()})
	p := NewPlugin(host, DefaultConfig())
	learned := p.Analyze(conflict)

	got := make(map[sat.Lit]bool)
	for _, l := range learned.Lits() {
		got[l] = true
	}
	if len(got) != 2 || !got[x.Negation()] || !got[z.Negation()] {
		t.Fatalf("learned clause = %v, want {¬x,¬z}", learned.Lits())
	}
}

func TestAnalyzeAbortsAtBaseLevel(t *testing.T) {
	host := sat.New(2)
	a, b := sat.Var(0).Lit(), sat.Var(1).Lit()
	host.Enqueue(a, sat.Axiom)
	host.Enqueue(b.Negation(), sat.Axiom)

	conflict := sat.NewClause([]sat.Lit{a.Negation(), b})
	p := NewPlugin(host, DefaultConfig())
	learned := p.Analyze(conflict)
	if learned != conflict {
		t.Fatalf("a level-0 conflict must abort to the raw clause unchanged")
	}
}

func TestAnalyzeConflictFrequencyThrottlesFullPass(t *testing.T) {
	host, p := newTestPlugin(4)
	p.Cfg.ConflictFrequency = 2
	govLit, x, y := sat.Var(0).Lit(), sat.Var(1).Lit(), sat.Var(2).Lit()
	c := mkIneq([]sat.Lit{x, y}, []int64{3, 2}, 4)
	c.Lit = govLit
	p.store.Insert(c)

	// x is falsified before the constraint is enabled; enabling first would
	// force x true (5-2 < 4) and leave nothing to conflict on.
	host.PushScope()
	host.Enqueue(x.Negation(), sat.Decision)
	host.Propagate()
	host.Enqueue(govLit, sat.Decision)
	conflict := host.Propagate()
	if conflict == nil {
		t.Fatal("expected a conflict")
	}
	// NumPropagations is 0 at this point (no unit propagations happened
	// before the conflict fired), so 0 % 2 == 0 and the gate lets the pass
	// run; force it closed by bumping the counter to an odd multiple.
	c.NumPropagations = 1
	learned := p.Analyze(conflict)
	if learned != conflict {
		t.Fatalf("conflict frequency gate should have skipped the full pass and returned the raw clause")
	}
}

func TestAnalyzeReinternalizesWeightedLemma(t *testing.T) {
	_, p := newTestPlugin(6)
	a := p.newConflictAnalysis(1)
	x, y, w := sat.Var(3).Lit(), sat.Var(4).Lit(), sat.Var(5).Lit()
	a.terms[x.Var()] = Term{Lit: x, Coeff: NewCoeff(2)}
	a.terms[y.Var()] = Term{Lit: y, Coeff: One()}
	a.terms[w.Var()] = Term{Lit: w, Coeff: One()}
	a.k = NewCoeff(3)

	fallback := sat.NewClause([]sat.Lit{x})
	learned := p.finishAnalysis(a, fallback)
	if len(learned.Lits()) != 1 {
		t.Fatalf("expected a single governing literal, got %v", learned.Lits())
	}
	govLit := learned.Lits()[0]

	c, ok := p.store.Lookup(govLit.Var())
	if !ok {
		t.Fatal("weighted lemma should have been re-internalized into the store, not flattened to a disjunction")
	}
	if c.K.Cmp(NewCoeff(3)) != 0 {
		t.Fatalf("re-internalized k = %s, want 3", c.K)
	}
	if len(c.Args) != 3 {
		t.Fatalf("re-internalized lemma has %d terms, want 3 (2x+y+w>=3 strictly stronger than a disjunction)", len(c.Args))
	}
}

func TestAnalyzeHoistsMaximalCoefficientToSideLiteral(t *testing.T) {
	_, p := newTestPlugin(4)
	a := p.newConflictAnalysis(1)
	x, y, z := sat.Var(1).Lit(), sat.Var(2).Lit(), sat.Var(3).Lit()
	a.terms[x.Var()] = Term{Lit: x, Coeff: NewCoeff(5)}
	a.terms[y.Var()] = Term{Lit: y, Coeff: One()}
	a.terms[z.Var()] = Term{Lit: z, Coeff: One()}
	a.k = NewCoeff(3)

	fallback := sat.NewClause([]sat.Lit{x})
	learned := p.finishAnalysis(a, fallback)

	// x's coefficient (5) dominates k (3), so it is hoisted out of the sum
	// (Σterms>=k <=> x OR Σothers>=k) and the remaining y+z>=3 is
	// unsatisfiable on its own (max sum 2 < 3), normalizing to FALSE: the
	// whole lemma collapses to the disjunct that survives, x.
	got := make(map[sat.Lit]bool)
	for _, l := range learned.Lits() {
		got[l] = true
	}
	if len(got) != 1 || !got[x] {
		t.Fatalf("learned clause = %v, want {x} (x hoisted out of an otherwise-infeasible remainder)", learned.Lits())
	}
}

func TestProcessAntecedentMarksOnlyAboveBaseLevel(t *testing.T) {
	host, p := newTestPlugin(2)
	a, b := sat.Var(0).Lit(), sat.Var(1).Lit()
	host.Enqueue(a, sat.Axiom)

	ca := p.newConflictAnalysis(1)
	ca.processAntecedent(a.Negation(), One())
	if ca.numMarks != 0 || len(ca.terms) != 0 {
		t.Fatalf("a level-0 literal must not be marked or added as a term")
	}

	host.PushScope()
	host.Enqueue(b, sat.Decision)
	ca.processAntecedent(b.Negation(), One())
	if ca.numMarks != 1 || !ca.marked[b.Var()] {
		t.Fatalf("a level-1 literal at the conflict level must be marked")
	}
}
