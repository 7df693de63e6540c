package pb

import (
	"fmt"
	"strings"

	"github.com/crillab/gopb/sat"
)

// CompileState is the tri-state described in spec.md §3: uncompiled,
// scheduled for compilation at the next restart, or compiled to CNF.
type CompileState byte

const (
	Uncompiled CompileState = iota
	Scheduled
	Compiled
)

func (s CompileState) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Compiled:
		return "compiled"
	default:
		return "uncompiled"
	}
}

// Term is one (literal, coefficient) pair of a constraint.
type Term struct {
	Lit    sat.Lit
	Coeff  Coeff
}

// Ineq is a canonical pseudo-Boolean constraint Σ coeff(i)·lit(i) ≥ K,
// the central entity described in spec.md §3.
type Ineq struct {
	Lit  sat.Lit // governing theory literal; active when assigned true
	Args []Term  // watched prefix is Args[0:WatchSz]
	K    Coeff

	WatchSz   int
	WatchSum  Coeff
	MaxWatch  Coeff

	NumPropagations       int
	CompilationThreshold  int // 0 means "disabled" (spec.md §3: "or ∞")
	Compiled              CompileState

	// handle is this constraint's stable index in the store's arena
	// (spec.md §9 "Cyclic references"). Set by Store.Insert.
	handle int32
}

// compilationDisabled reports whether F is turned off for this constraint.
func (c *Ineq) compilationDisabled() bool { return c.CompilationThreshold <= 0 }

// Handle returns c's stable arena index, valid for the lifetime of the
// scope it was created in.
func (c *Ineq) Handle() int32 { return c.handle }

// watchedPrefix returns the currently-installed watched terms.
func (c *Ineq) watchedPrefix() []Term { return c.Args[:c.WatchSz] }

// recomputeMaxWatch recomputes MaxWatch by a linear scan of the watched
// prefix, used after removing what used to be the unique maximum
// (spec.md §4.C "Remove": "recompute max_watch by linear scan").
func (c *Ineq) recomputeMaxWatch() {
	max := Zero()
	for _, t := range c.watchedPrefix() {
		max = max.Max(t.Coeff)
	}
	c.MaxWatch = max
}

// Negate rewrites c in place into its logical negation:
// Σ cᵢ·ℓᵢ ≥ K  ⇔  Σ cᵢ·¬ℓᵢ ≥ (Σcᵢ) − K + 1
// per spec.md §4.D "Negation". It mutates Args' literals and K in place
// (spec.md §9 "Watched-literal reuse on negation") rather than allocating a
// new backing array, both for efficiency and because spec.md §8's P4
// ("Negation is involutive ... restores coefficients and k bit-for-bit")
// requires the round trip to be exact.
func (c *Ineq) Negate() {
	sum := Zero()
	for i := range c.Args {
		sum = sum.Add(c.Args[i].Coeff)
		c.Args[i].Lit = c.Args[i].Lit.Negation()
	}
	c.K = sum.Sub(c.K).Add(One())
	c.WatchSz = 0
	c.WatchSum = Zero()
	c.MaxWatch = Zero()
}

// weightSum returns Σ coeff(i) over every term (not just the watched
// prefix).
func (c *Ineq) weightSum() Coeff {
	sum := Zero()
	for _, t := range c.Args {
		sum = sum.Add(t.Coeff)
	}
	return sum
}

// String renders c using external (1-based, signed) literals, mirroring
// gophersat's Clause.CNF/PBString rendering.
func (c *Ineq) String() string {
	var sb strings.Builder
	for i, t := range c.Args {
		if i > 0 {
			sb.WriteString(" + ")
		}
		fmt.Fprintf(&sb, "%s*%d", t.Coeff.String(), t.Lit.Int())
	}
	fmt.Fprintf(&sb, " >= %s", c.K.String())
	return sb.String()
}

// WellFormed checks the invariants from spec.md §3 that need no assignment:
// k and every coefficient positive, no coefficient above k, no sentinel or
// repeated variable, Σcoeff ≥ k, and, while a prefix is installed,
// WatchSum ≥ k with MaxWatch equal to the prefix maximum. It does not check
// the assignment-dependent I5 or the ordering rule of I3. It is a contract
// assertion meant for debug builds and tests (spec.md §7: "must never fire
// in release on valid inputs"), not called on the hot path.
func (c *Ineq) WellFormed() error {
	if c.K.Sign() <= 0 {
		return fmt.Errorf("pb: k must be positive, got %s", c.K)
	}
	seen := make(map[sat.Var]bool, len(c.Args))
	sum := Zero()
	for _, t := range c.Args {
		if t.Coeff.Sign() <= 0 {
			return fmt.Errorf("pb: non-positive coefficient %s on lit %d", t.Coeff, t.Lit.Int())
		}
		if t.Coeff.Cmp(c.K) > 0 {
			return fmt.Errorf("pb: coefficient %s exceeds k=%s on lit %d", t.Coeff, c.K, t.Lit.Int())
		}
		if t.Lit.IsSentinel() {
			return fmt.Errorf("pb: sentinel literal left in canonical form")
		}
		v := t.Lit.Var()
		if seen[v] {
			return fmt.Errorf("pb: variable %d appears twice", v)
		}
		seen[v] = true
		sum = sum.Add(t.Coeff)
	}
	if sum.Cmp(c.K) < 0 {
		return fmt.Errorf("pb: sum of coefficients %s < k=%s (should have been detected FALSE)", sum, c.K)
	}
	if c.WatchSz > 0 {
		if c.WatchSum.Cmp(c.K) < 0 {
			return fmt.Errorf("pb: watch_sum %s < k=%s while prefix installed (I4)", c.WatchSum, c.K)
		}
		max := Zero()
		for _, t := range c.watchedPrefix() {
			max = max.Max(t.Coeff)
		}
		if max.Cmp(c.MaxWatch) != 0 {
			return fmt.Errorf("pb: max_watch %s does not match watched prefix max %s (P2)", c.MaxWatch, max)
		}
	}
	return nil
}
