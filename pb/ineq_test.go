package pb

import (
	"testing"

	"github.com/crillab/gopb/sat"
)

func mkIneq(lits []sat.Lit, coeffs []int64, k int64) *Ineq {
	args := make([]Term, len(lits))
	for i := range lits {
		args[i] = Term{Lit: lits[i], Coeff: NewCoeff(coeffs[i])}
	}
	return &Ineq{Lit: lit(100), Args: args, K: NewCoeff(k)}
}

func TestNegateIsInvolutive(t *testing.T) {
	c := mkIneq([]sat.Lit{lit(0), lit(1), lit(2)}, []int64{3, 2, 1}, 4)
	origK := c.K
	origArgs := append([]Term(nil), c.Args...)

	c.Negate()
	c.Negate()

	if c.K.Cmp(origK) != 0 {
		t.Fatalf("K not restored: got %s want %s", c.K, origK)
	}
	for i, t2 := range c.Args {
		if t2.Lit != origArgs[i].Lit || t2.Coeff.Cmp(origArgs[i].Coeff) != 0 {
			t.Fatalf("arg %d not restored: got (%v,%s) want (%v,%s)",
				i, t2.Lit, t2.Coeff, origArgs[i].Lit, origArgs[i].Coeff)
		}
	}
}

func TestNegateFormula(t *testing.T) {
	// 3a + 2b >= 4  negates to  3¬a + 2¬b >= (3+2)-4+1 = 2
	c := mkIneq([]sat.Lit{lit(0), lit(1)}, []int64{3, 2}, 4)
	c.Negate()
	if c.K.Cmp(NewCoeff(2)) != 0 {
		t.Fatalf("k = %s, want 2", c.K)
	}
	if c.Args[0].Lit != lit(0).Negation() {
		t.Fatalf("literal 0 not negated")
	}
}

func TestWellFormedRejectsExcessiveCoefficient(t *testing.T) {
	c := mkIneq([]sat.Lit{lit(0)}, []int64{5}, 2)
	if err := c.WellFormed(); err == nil {
		t.Fatalf("expected error for coefficient exceeding k")
	}
}

func TestWellFormedAcceptsSaturatedConstraint(t *testing.T) {
	c := mkIneq([]sat.Lit{lit(0), lit(1)}, []int64{2, 2}, 2)
	if err := c.WellFormed(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
