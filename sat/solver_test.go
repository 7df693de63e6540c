package sat

import "testing"

func TestEnqueueConflict(t *testing.T) {
	s := New(2)
	l1 := Var(0).Lit()
	if !s.Enqueue(l1, Decision) {
		t.Fatalf("first enqueue of a free var should succeed")
	}
	if s.Enqueue(l1.Negation(), Decision) {
		t.Errorf("enqueuing the negation of an already-true literal should fail")
	}
	if s.Value(l1) != True {
		t.Errorf("expected l1 true, got %v", s.Value(l1))
	}
}

func TestPropagateBinary(t *testing.T) {
	s := New(2)
	a, b := Var(0).Lit(), Var(1).Lit()
	s.AddClause([]Lit{a.Negation(), b}) // a -> b
	s.PushScope()
	s.Enqueue(a, Decision)
	if conflict := s.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %v", conflict)
	}
	if s.Value(b) != True {
		t.Errorf("expected b to be propagated true, got %v", s.Value(b))
	}
}

func TestPropagateLongClauseConflict(t *testing.T) {
	s := New(3)
	a, b, c := Var(0).Lit(), Var(1).Lit(), Var(2).Lit()
	s.AddClause([]Lit{a, b, c})
	s.PushScope()
	s.Enqueue(a.Negation(), Decision)
	s.Enqueue(b.Negation(), Decision)
	if conflict := s.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict before c is forced: %v", conflict)
	}
	if s.Value(c) != True {
		t.Errorf("expected c to be unit-propagated true, got %v", s.Value(c))
	}
}

func TestPopScopeUndoesAssignments(t *testing.T) {
	s := New(1)
	a := Var(0).Lit()
	s.PushScope()
	s.Enqueue(a, Decision)
	undoCalled := false
	s.RegisterUndo(func() { undoCalled = true })
	s.PopScope(1)
	if s.Value(a) != Unknown {
		t.Errorf("expected a to be unassigned after pop, got %v", s.Value(a))
	}
	if !undoCalled {
		t.Errorf("expected registered undo callback to run on pop")
	}
}

type recordingTheory struct {
	assigned []Var
}

func (r *recordingTheory) Assign(v Var, val bool) *Clause {
	r.assigned = append(r.assigned, v)
	return nil
}
func (r *recordingTheory) FinalCheck() FinalCheckStatus { return Done }
func (r *recordingTheory) PushScope()                   {}
func (r *recordingTheory) PopScope(int)                 {}
func (r *recordingTheory) Restart()                     {}
func (r *recordingTheory) Analyze(conflict *Clause) *Clause { return conflict }

func TestTheoryGetsAssignCallback(t *testing.T) {
	s := New(1)
	th := &recordingTheory{}
	s.RegisterTheory(th)
	s.PushScope()
	s.Enqueue(Var(0).Lit(), Decision)
	s.Propagate()
	if len(th.assigned) != 1 || th.assigned[0] != Var(0) {
		t.Errorf("expected theory to observe assignment of var 0, got %v", th.assigned)
	}
}

func TestSolveSatMakesDecisions(t *testing.T) {
	s := New(2)
	a, b := Var(0).Lit(), Var(1).Lit()
	s.AddClause([]Lit{a, b})
	if got := s.Solve(); got != Sat {
		t.Fatalf("expected Sat, got %v", got)
	}
	if s.Stats.NbDecisions == 0 {
		t.Errorf("expected at least one decision off the activity queue, got 0")
	}
	if s.Value(a) != True && s.Value(b) != True {
		t.Errorf("neither disjunct is true in the returned model")
	}
}

func TestSolveUnsatBackjumpsAndLearns(t *testing.T) {
	s := New(3)
	x, y, z := Var(0).Lit(), Var(1).Lit(), Var(2).Lit()
	s.AddClause([]Lit{x, y})
	s.AddClause([]Lit{x, y.Negation()})
	s.AddClause([]Lit{x.Negation(), z})
	s.AddClause([]Lit{x.Negation(), z.Negation()})
	if got := s.Solve(); got != Unsat {
		t.Fatalf("expected Unsat, got %v", got)
	}
	if s.Stats.NbConflicts == 0 {
		t.Errorf("expected at least one conflict to have been analyzed")
	}
	if s.Stats.NbClauses <= 4 {
		t.Errorf("expected at least one lemma to have been learned and added, NbClauses=%d", s.Stats.NbClauses)
	}
}

func TestPickDecisionSkipsAssignedVars(t *testing.T) {
	s := New(2)
	s.PushScope()
	s.Enqueue(Var(0).Lit(), Decision)
	lit, ok := s.pickDecision()
	if !ok {
		t.Fatalf("expected a free variable to remain")
	}
	if lit.Var() != Var(1) {
		t.Errorf("expected the only free var (1) to be picked, got %v", lit.Var())
	}
}
