package pb

import "github.com/crillab/gopb/sat"

// Comparator is the relational operator a raw PB atom was written with,
// before canonicalization rewrites everything to ≥ (spec.md §4.A step 1).
type Comparator byte

const (
	GE Comparator = iota // ≥ / at-least-k
	LE                   // ≤ / at-most-k
)

func (c Comparator) String() string {
	if c == LE {
		return "<="
	}
	return ">="
}

// RawTerm is one (coefficient, literal) pair as it appears before
// normalization: the coefficient may be negative (spec.md §4.A step 2) and
// the literal may be a sentinel (spec.md §4.A step 3). Coeff is
// arbitrary-precision (spec.md §3, §9: "do not assume 64-bit fit ... until
// after canonicalization narrows"), the same width Ineq's Term carries once
// canonicalization is done.
type RawTerm struct {
	Coeff Coeff
	Lit   sat.Lit
}

// Neg returns t with its coefficient negated, the rewrite an "x = k"
// OPB line applies to get its "at-most" half (t.Coeff·ℓ >= ... becomes
// -t.Coeff·ℓ >= ...).
func (t RawTerm) Neg() RawTerm { return RawTerm{Coeff: t.Coeff.Neg(), Lit: t.Lit} }

// Atom is an uninternalized PB atom: comparator, terms and threshold,
// exactly the four recognized kinds from spec.md §6
// ({at-most-k, at-least-k, PB-≤, PB-≥}, at-most/at-least-k being the
// unweighted special case of PB-≤/PB-≥ with every coefficient equal to 1).
// K is arbitrary-precision for the same reason RawTerm.Coeff is.
type Atom struct {
	Cmp   Comparator
	Terms []RawTerm
	K     Coeff
}

// AtLeastK returns the unweighted "at least k of these literals" atom. k is
// accepted as a plain int64 here as a constructor convenience for
// programmatic callers (tests, cardinality shortcuts); untrusted textual
// input goes through ParseCoeff instead.
func AtLeastK(lits []sat.Lit, k int64) Atom {
	terms := make([]RawTerm, len(lits))
	for i, l := range lits {
		terms[i] = RawTerm{Coeff: One(), Lit: l}
	}
	return Atom{Cmp: GE, Terms: terms, K: NewCoeff(k)}
}

// AtMostK returns the unweighted "at most k of these literals" atom.
func AtMostK(lits []sat.Lit, k int64) Atom {
	terms := make([]RawTerm, len(lits))
	for i, l := range lits {
		terms[i] = RawTerm{Coeff: One(), Lit: l}
	}
	return Atom{Cmp: LE, Terms: terms, K: NewCoeff(k)}
}
