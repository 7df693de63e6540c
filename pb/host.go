package pb

import "github.com/crillab/gopb/sat"

// Host is the subset of *sat.Solver the theory plugin needs. It exists so
// propagate.go and analyze.go depend on behavior, not on sat.Solver's
// concrete type, matching spec.md's insistence that the theory never reach
// into the host's own CNF watch lists.
type Host interface {
	NewVar() sat.Var
	Value(l sat.Lit) sat.LitVal
	Level(v sat.Var) int
	CurrentLevel() int
	Trail() []sat.Lit
	Reason(v sat.Var) sat.Justification
	Enqueue(l sat.Lit, just sat.Justification) bool
	AddClause(lits []sat.Lit) *sat.Clause
	AddLearnedClause(lits []sat.Lit) *sat.Clause
	RemoveClause(c *sat.Clause)
	RegisterUndo(fn func())
}
