package pb

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crillab/gopb/sat"
)

// coeffCmpOpt lets cmp.Diff see into Coeff's unexported big.Int by comparing
// values with Coeff.Cmp instead of reflecting over the struct.
var coeffCmpOpt = cmp.Comparer(func(a, b Coeff) bool { return a.Cmp(b) == 0 })

func lit(v int) sat.Lit { return sat.Var(v).Lit() }

func TestCanonicalizeAtLeastOneBecomesDisjunction(t *testing.T) {
	atom := AtLeastK([]sat.Lit{lit(0), lit(1), lit(2)}, 1)
	res := Canonicalize(atom, lit(10))
	if res.Kind != CanonClauses {
		t.Fatalf("expected CanonClauses, got %v", res.Kind)
	}
	if len(res.Clauses) != len(atom.Terms)+1 {
		t.Fatalf("expected %d clauses, got %d", len(atom.Terms)+1, len(res.Clauses))
	}
}

// TestCanonicalizeAtMostOneBecomesWatchedIneq checks that an all-coefficient-1
// at-most-one atom (k = n-1) goes through the general Ineq path rather than a
// one-directional CNF shortcut: only Ineq's watched propagation and Negate
// give both lit=true and lit=false their correct, fully biconditional
// meaning (see DESIGN.md's note on the fabricated pb_at_most_one shortcut
// this replaced).
func TestCanonicalizeAtMostOneBecomesWatchedIneq(t *testing.T) {
	atom := AtMostK([]sat.Lit{lit(0), lit(1), lit(2)}, 1)
	res := Canonicalize(atom, lit(10))
	if res.Kind != CanonConstraint {
		t.Fatalf("expected CanonConstraint for at-most-one shape, got %v", res.Kind)
	}
	if got := len(res.Ineq.Args); got != 3 {
		t.Fatalf("expected 3 args, got %d", got)
	}
	wantK := NewCoeff(2) // ≤1-of-3 becomes ≥2 of the negated literals
	if res.Ineq.K.Cmp(wantK) != 0 {
		t.Errorf("expected K=%v, got %v", wantK, res.Ineq.K)
	}
	for _, a := range res.Ineq.Args {
		if a.Coeff.Cmp(One()) != 0 {
			t.Errorf("expected unit coefficients, got %v", a.Coeff)
		}
	}
}

func TestCanonicalizeWeightedConstraint(t *testing.T) {
	atom := Atom{
		Cmp: GE,
		Terms: []RawTerm{
			{Coeff: NewCoeff(3), Lit: lit(0)},
			{Coeff: NewCoeff(2), Lit: lit(1)},
			{Coeff: NewCoeff(2), Lit: lit(2)},
		},
		K: NewCoeff(4),
	}
	res := Canonicalize(atom, lit(10))
	if res.Kind != CanonConstraint {
		t.Fatalf("expected CanonConstraint, got %v", res.Kind)
	}
	if got := res.Ineq.K; got.Cmp(NewCoeff(4)) != 0 {
		t.Fatalf("k = %s, want 4", got)
	}
	if err := res.Ineq.WellFormed(); err != nil {
		t.Fatalf("not well formed: %v", err)
	}

	want := []Term{
		{Lit: lit(0), Coeff: NewCoeff(3)},
		{Lit: lit(1), Coeff: NewCoeff(2)},
		{Lit: lit(2), Coeff: NewCoeff(2)},
	}
	if diff := cmp.Diff(want, res.Ineq.Args, coeffCmpOpt); diff != "" {
		t.Fatalf("canonicalized terms mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalizeSignedLessEqual(t *testing.T) {
	// -2·a + 3·b <= 1  should become a legal GE constraint after
	// rewriting; check it doesn't panic and produces a well-formed result
	// or a trivial outcome.
	atom := Atom{
		Cmp: LE,
		Terms: []RawTerm{
			{Coeff: NewCoeff(-2), Lit: lit(0)},
			{Coeff: NewCoeff(3), Lit: lit(1)},
		},
		K: NewCoeff(1),
	}
	res := Canonicalize(atom, lit(10))
	switch res.Kind {
	case CanonConstraint:
		if err := res.Ineq.WellFormed(); err != nil {
			t.Fatalf("not well formed: %v", err)
		}
	case CanonTrue, CanonFalse, CanonClauses:
		// also acceptable outcomes depending on how small the residual is
	}
}

func TestCanonicalizeTrivialTrue(t *testing.T) {
	atom := AtLeastK([]sat.Lit{lit(0)}, 0)
	res := Canonicalize(atom, lit(10))
	if res.Kind != CanonTrue {
		t.Fatalf("expected CanonTrue for k<=0, got %v", res.Kind)
	}
}

func TestCanonicalizeTrivialFalse(t *testing.T) {
	atom := AtLeastK([]sat.Lit{lit(0), lit(1)}, 5)
	res := Canonicalize(atom, lit(10))
	if res.Kind != CanonFalse {
		t.Fatalf("expected CanonFalse for unreachable k, got %v", res.Kind)
	}
}

func TestCanonicalizeDuplicateVariableCancels(t *testing.T) {
	atom := Atom{
		Cmp: GE,
		Terms: []RawTerm{
			{Coeff: NewCoeff(2), Lit: lit(0)},
			{Coeff: NewCoeff(2), Lit: lit(0).Negation()},
			{Coeff: NewCoeff(1), Lit: lit(1)},
		},
		K: NewCoeff(2),
	}
	res := Canonicalize(atom, lit(10))
	if res.Kind == CanonConstraint {
		for _, t2 := range res.Ineq.Args {
			if t2.Lit.Var() == lit(0).Var() {
				t.Fatalf("variable 0 should have fully cancelled")
			}
		}
	}
}
