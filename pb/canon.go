package pb

import "github.com/crillab/gopb/sat"

// CanonKind tags the three outcomes spec.md §4.A can produce, plus the
// cardinality shortcut that bypasses Ineq construction entirely.
type CanonKind byte

const (
	// CanonTrue means the atom is trivially satisfied (k <= 0).
	CanonTrue CanonKind = iota
	// CanonFalse means the atom is trivially unsatisfiable (Σcoeff < k).
	CanonFalse
	// CanonConstraint means a normalized Ineq was produced.
	CanonConstraint
	// CanonClauses means the atom was small enough to emit as CNF
	// directly instead of instantiating a watched constraint.
	CanonClauses
)

// CanonResult is what Canonicalize returns.
type CanonResult struct {
	Kind    CanonKind
	Ineq    *Ineq
	Clauses [][]sat.Lit
}

// Canonicalize rewrites an arbitrary (comparator, terms, k) atom to the
// canonical ≥ form described in spec.md §4.A: sign normalization, sentinel
// folding, duplicate-variable combination, and saturation, followed by the
// k=1 disjunction shortcut. Every other constraint, including an
// all-coefficient-1 at-most-one shape, becomes a watched Ineq: unlike the
// k=1 shortcut, which biconditionally defines lit both ways from a single
// clause set, an at-most-one shortcut can only emit the forward direction
// (lit → pairwise ¬ℓi∨¬ℓj) without a second cardinality gadget for the
// reverse implication, which would defeat the point of skipping Ineq in the
// first place. lit is the atom's governing theory literal.
func Canonicalize(atom Atom, lit sat.Lit) CanonResult {
	terms := make([]RawTerm, len(atom.Terms))
	copy(terms, atom.Terms)
	k := atom.K

	// Step 1: ≤ / at-most-k becomes ≥ by negating literals and flipping k.
	if atom.Cmp == LE {
		sum := Zero()
		for i := range terms {
			sum = sum.Add(terms[i].Coeff)
			terms[i].Lit = terms[i].Lit.Negation()
		}
		k = sum.Sub(k)
	}

	// Step 2: normalize signs. -c·ℓ becomes c·¬ℓ; k increases by c, since
	// -c·ℓ = c·¬ℓ - c (verified against gophersat's solver/pb.go GtEq,
	// which is the tested ground truth for this exact rewrite: spec.md's
	// prose says "k is decremented by c" but the arithmetic - and the
	// reference implementation - both increment; see DESIGN.md).
	for i := range terms {
		if terms[i].Coeff.Sign() < 0 {
			c := terms[i].Coeff.Neg()
			terms[i].Coeff = c
			terms[i].Lit = terms[i].Lit.Negation()
			k = k.Add(c)
		}
	}

	// Step 3: replace TRUE/FALSE literals by their contribution.
	folded := terms[:0]
	for _, t := range terms {
		switch t.Lit {
		case sat.LitTrue:
			k = k.Sub(t.Coeff)
		case sat.LitFalse:
			// contributes 0, drop silently
		default:
			folded = append(folded, t)
		}
	}
	terms = folded

	// Step 4: combine duplicates by variable.
	terms = combineDuplicates(terms, &k)

	// Step 6a: trivial outcomes.
	if k.Sign() <= 0 {
		return CanonResult{Kind: CanonTrue}
	}
	sum := Zero()
	for _, t := range terms {
		sum = sum.Add(t.Coeff)
	}
	if sum.Cmp(k) < 0 {
		return CanonResult{Kind: CanonFalse}
	}

	// Step 5: saturate coefficients exceeding k.
	for i := range terms {
		if terms[i].Coeff.Cmp(k) > 0 {
			terms[i].Coeff = k
		}
	}

	if k.Cmp(One()) == 0 {
		return CanonResult{Kind: CanonClauses, Clauses: disjunctionCNF(lit, terms)}
	}

	ineq := &Ineq{Lit: lit, Args: make([]Term, len(terms)), K: k}
	for i, t := range terms {
		ineq.Args[i] = Term{Lit: t.Lit, Coeff: t.Coeff}
	}
	return CanonResult{Kind: CanonConstraint, Ineq: ineq}
}

// combineDuplicates merges c·ℓ + d·¬ℓ terms sharing a variable, per
// spec.md §4.A step 4, adjusting k for whatever constant falls out.
func combineDuplicates(terms []RawTerm, k *Coeff) []RawTerm {
	idxOf := make(map[sat.Var]int, len(terms))
	merged := terms[:0]
	for _, t := range terms {
		v := t.Lit.Var()
		i, ok := idxOf[v]
		if !ok {
			merged = append(merged, t)
			idxOf[v] = len(merged) - 1
			continue
		}
		existing := &merged[i]
		if existing.Lit == t.Lit {
			existing.Coeff = existing.Coeff.Add(t.Coeff)
			continue
		}
		// opposite polarity: c·ℓ + d·¬ℓ = min(c,d) + |c-d|·(sign of the
		// larger), the min(c,d) being a constant moved into k.
		c, d := existing.Coeff, t.Coeff
		switch c.Cmp(d) {
		case 0:
			*k = k.Sub(c)
			merged[i] = merged[len(merged)-1]
			idxOf[merged[i].Lit.Var()] = i
			merged = merged[:len(merged)-1]
			delete(idxOf, v)
		case 1:
			existing.Coeff = c.Sub(d)
			*k = k.Sub(d)
		default:
			existing.Lit = t.Lit
			existing.Coeff = d.Sub(c)
			*k = k.Sub(c)
		}
	}
	return merged
}

// disjunctionCNF emits lit ↔ ⋁ℓi as plain clauses, per spec.md §4.A
// "Cardinality shortcut".
func disjunctionCNF(lit sat.Lit, terms []RawTerm) [][]sat.Lit {
	big := make([]sat.Lit, 0, len(terms)+1)
	big = append(big, lit.Negation())
	clauses := make([][]sat.Lit, 0, len(terms)+1)
	for _, t := range terms {
		big = append(big, t.Lit)
		clauses = append(clauses, []sat.Lit{t.Lit.Negation(), lit})
	}
	clauses = append(clauses, big)
	return clauses
}
