package pb

import "math/big"

// ParseCoeff parses s as a base-10 arbitrary-precision integer, for use at
// input boundaries (the OPB parser) that must not narrow coefficients or
// thresholds to a machine word before canonicalization has a chance to
// shrink them (spec.md §3, §9: "do not assume 64-bit fit ... until after
// canonicalization narrows").
func ParseCoeff(s string) (Coeff, bool) {
	var c Coeff
	_, ok := c.v.SetString(s, 10)
	return c, ok
}

// Coeff is an arbitrary-precision non-negative integer coefficient or
// threshold, per spec.md §3 ("an arbitrary-precision non-negative integer")
// and §9 ("Large integers ... use a rational/big-int type throughout").
// No third-party bignum library appears anywhere in the retrieval pack (the
// only precedent, Consensys/gnark, itself builds on math/big for field
// elements), so this is the one domain concern this module implements on
// the standard library by design; see DESIGN.md.
type Coeff struct {
	v big.Int
}

// NewCoeff returns a Coeff wrapping the given small int64 value. Negative
// values are accepted here only as an implementation convenience for
// canonicalization's sign-flip step (§4.A.2); a fully normalized Ineq never
// stores a negative Coeff.
func NewCoeff(n int64) Coeff {
	var c Coeff
	c.v.SetInt64(n)
	return c
}

// Zero is the additive identity.
func Zero() Coeff { return Coeff{} }

// One is a convenience constant equal to NewCoeff(1).
func One() Coeff { return NewCoeff(1) }

// Sign returns -1, 0 or 1 as c is negative, zero or positive.
func (c Coeff) Sign() int { return c.v.Sign() }

// IsZero is true iff c == 0.
func (c Coeff) IsZero() bool { return c.v.Sign() == 0 }

// Cmp compares c to other, returning -1, 0 or 1.
func (c Coeff) Cmp(other Coeff) int { return c.v.Cmp(&other.v) }

// Add returns c + other.
func (c Coeff) Add(other Coeff) Coeff {
	var r Coeff
	r.v.Add(&c.v, &other.v)
	return r
}

// Sub returns c - other.
func (c Coeff) Sub(other Coeff) Coeff {
	var r Coeff
	r.v.Sub(&c.v, &other.v)
	return r
}

// Neg returns -c.
func (c Coeff) Neg() Coeff {
	var r Coeff
	r.v.Neg(&c.v)
	return r
}

// Abs returns |c|.
func (c Coeff) Abs() Coeff {
	var r Coeff
	r.v.Abs(&c.v)
	return r
}

// Mul returns c * other.
func (c Coeff) Mul(other Coeff) Coeff {
	var r Coeff
	r.v.Mul(&c.v, &other.v)
	return r
}

// Min returns whichever of c, other is smaller.
func (c Coeff) Min(other Coeff) Coeff {
	if c.Cmp(other) <= 0 {
		return c
	}
	return other
}

// Max returns whichever of c, other is larger.
func (c Coeff) Max(other Coeff) Coeff {
	if c.Cmp(other) >= 0 {
		return c
	}
	return other
}

// LCM returns the least common multiple of a and b. Both must be
// strictly positive; used by the conflict analyzer (spec.md §4.E step 4,
// "own PB justification") to align coefficients before resolving.
func LCM(a, b Coeff) Coeff {
	var gcd, lcm big.Int
	gcd.GCD(nil, nil, &a.v, &b.v)
	lcm.Div(&a.v, &gcd)
	lcm.Mul(&lcm, &b.v)
	return Coeff{v: lcm}
}

// Int64 returns c as an int64, and whether the conversion was exact. Only
// the sorting-network compiler (spec.md §4.F) narrows coefficients this way,
// and only after checking eligibility (all coefficients < 8).
func (c Coeff) Int64() (int64, bool) {
	if !c.v.IsInt64() {
		return 0, false
	}
	return c.v.Int64(), true
}

// DivExact returns c / other, which must divide evenly (used only to apply
// an LCM-derived scale factor during cutting-planes resolution, spec.md
// §4.E step 4).
func (c Coeff) DivExact(other Coeff) Coeff {
	var r Coeff
	r.v.Div(&c.v, &other.v)
	return r
}

// String renders the coefficient in base 10.
func (c Coeff) String() string { return c.v.String() }
