package sat

import "fmt"

// A Clause is an ordinary CNF clause: a disjunction of literals, optionally
// flagged as learned (for activity-based deletion, as in gophersat).
type Clause struct {
	lits     []Lit
	learned  bool
	locked   bool
	lbdValue uint32
	activity float32
}

// NewClause returns a clause over the given literals. It takes ownership of
// lits.
func NewClause(lits []Lit) *Clause {
	return &Clause{lits: lits}
}

// NewLearnedClause returns a new clause marked as learned. Conflict
// analysis produces many short-lived learned clauses, so its backing slice
// comes from the shared literal pool (clause_alloc.go) rather than a fresh
// allocation, exactly as gophersat's solver/learn.go does for NewLearnedClause.
func NewLearnedClause(lits []Lit) *Clause {
	return &Clause{lits: alloc.newLits(lits...), learned: true}
}

// Len returns the number of literals in the clause.
func (c *Clause) Len() int { return len(c.lits) }

// Get returns the ith literal.
func (c *Clause) Get(i int) Lit { return c.lits[i] }

// Set overwrites the ith literal.
func (c *Clause) Set(i int, l Lit) { c.lits[i] = l }

// Lits returns the clause's literals. The caller must not mutate the slice.
func (c *Clause) Lits() []Lit { return c.lits }

func (c *Clause) swap(i, j int) { c.lits[i], c.lits[j] = c.lits[j], c.lits[i] }

// Learned is true iff c was produced by conflict analysis rather than being
// part of the original problem.
func (c *Clause) Learned() bool { return c.learned }

func (c *Clause) lock()          { c.locked = true }
func (c *Clause) unlock()        { c.locked = false }
func (c *Clause) isLocked() bool { return c.locked }

func (c *Clause) lbd() int        { return int(c.lbdValue) }
func (c *Clause) setLbd(v int)    { c.lbdValue = uint32(v) }
func (c *Clause) incLbd()         { c.lbdValue++ }

// String renders the clause using external (1-based, signed) literals.
func (c *Clause) String() string {
	res := "["
	for i, l := range c.lits {
		if i > 0 {
			res += ", "
		}
		res += fmt.Sprintf("%d", l.Int())
	}
	return res + "]"
}

// JustKind tags the variant a Justification carries, mirroring the "own PB
// justification / clause / binary-clause / axiom / other theory" cases
// theory_pb.cpp's conflict analysis dispatches on.
type JustKind byte

const (
	// JustDecision marks a literal chosen by the search, not implied.
	JustDecision JustKind = iota
	// JustClause means the literal was propagated by an ordinary clause.
	JustClause
	// JustBinary means the literal was propagated by a binary clause,
	// represented directly by its other literal to avoid a clause alloc.
	JustBinary
	// JustAxiom means the literal is a theory axiom with no CNF antecedent.
	JustAxiom
	// JustTheory means a registered Theory produced the literal; Handle
	// identifies, in a theory-defined way, which constraint forced it.
	JustTheory
)

// Justification explains why a literal was propagated. It is a tagged
// union rather than an interface so the hot propagation path never
// allocates one per assignment.
type Justification struct {
	Kind    JustKind
	Clause  *Clause // valid when Kind == JustClause
	Other   Lit     // valid when Kind == JustBinary
	Handle  int32   // valid when Kind == JustTheory: an opaque constraint handle
	TheoryID int32  // which registered theory owns Handle
}

// Decision is the justification used for literals chosen by the search.
var Decision = Justification{Kind: JustDecision}

// Axiom is the justification for a literal asserted with no antecedent.
var Axiom = Justification{Kind: JustAxiom}
