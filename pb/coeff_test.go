package pb

import "testing"

func TestCoeffArithmetic(t *testing.T) {
	a := NewCoeff(6)
	b := NewCoeff(4)
	if got := a.Add(b); got.Cmp(NewCoeff(10)) != 0 {
		t.Fatalf("6+4 = %s, want 10", got)
	}
	if got := a.Sub(b); got.Cmp(NewCoeff(2)) != 0 {
		t.Fatalf("6-4 = %s, want 2", got)
	}
	if got := a.Mul(b); got.Cmp(NewCoeff(24)) != 0 {
		t.Fatalf("6*4 = %s, want 24", got)
	}
	if got := LCM(a, b); got.Cmp(NewCoeff(12)) != 0 {
		t.Fatalf("lcm(6,4) = %s, want 12", got)
	}
	if got := a.Min(b); got.Cmp(b) != 0 {
		t.Fatalf("min(6,4) = %s, want 4", got)
	}
	if got := a.Max(b); got.Cmp(a) != 0 {
		t.Fatalf("max(6,4) = %s, want 6", got)
	}
}

func TestCoeffDivExact(t *testing.T) {
	twelve := NewCoeff(12)
	four := NewCoeff(4)
	if got := twelve.DivExact(four); got.Cmp(NewCoeff(3)) != 0 {
		t.Fatalf("12/4 = %s, want 3", got)
	}
}

func TestCoeffInt64Narrowing(t *testing.T) {
	small := NewCoeff(7)
	n, ok := small.Int64()
	if !ok || n != 7 {
		t.Fatalf("Int64() = (%d,%v), want (7,true)", n, ok)
	}
}
