package pb

import "github.com/crillab/gopb/sat"

// pbTheoryID tags every sat.Justification this package produces, so
// analyze.go can recognize its own reasons on the reverse-trail walk
// (spec.md §4.E step 4, "own PB justification") and dispatch differently
// than for a plain clause reason.
const pbTheoryID = 1

// justificationFor builds the sat.Justification recorded when c forces a
// literal, encoding c's stable handle so the reason can be recovered later
// even after c has been negated or its watches rearranged.
func justificationFor(c *Ineq) sat.Justification {
	return sat.Justification{Kind: sat.JustTheory, Handle: c.handle, TheoryID: pbTheoryID}
}

// ineqFromJustification recovers the constraint behind a theory
// justification, or nil if j was not produced by this package.
func (p *Plugin) ineqFromJustification(j sat.Justification) *Ineq {
	if j.Kind != sat.JustTheory || j.TheoryID != pbTheoryID {
		return nil
	}
	return p.store.ByHandle(j.Handle)
}
