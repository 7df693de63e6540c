package pb

import (
	"testing"

	"github.com/crillab/gopb/sat"
)

func TestGrowAndShrinkPrefix(t *testing.T) {
	w := NewWatchIndex()
	c := mkIneq([]sat.Lit{lit(0), lit(1)}, []int64{2, 3}, 4)

	c.growPrefix(w)
	c.growPrefix(w)
	if c.WatchSz != 2 {
		t.Fatalf("WatchSz = %d, want 2", c.WatchSz)
	}
	if c.WatchSum.Cmp(NewCoeff(5)) != 0 {
		t.Fatalf("WatchSum = %s, want 5", c.WatchSum)
	}
	if c.MaxWatch.Cmp(NewCoeff(3)) != 0 {
		t.Fatalf("MaxWatch = %s, want 3", c.MaxWatch)
	}

	got := w.Get(lit(0).Negation())
	if len(got) != 1 || got[0] != c {
		t.Fatalf("watch index should list c under ¬lit0's negation lookup")
	}

	c.shrinkPrefixAt(w, 1) // remove the coeff-3 term
	if c.WatchSz != 1 {
		t.Fatalf("WatchSz = %d, want 1", c.WatchSz)
	}
	if c.MaxWatch.Cmp(NewCoeff(2)) != 0 {
		t.Fatalf("MaxWatch after removal = %s, want 2 (recomputed)", c.MaxWatch)
	}
}

func TestResetWatchedPrefixUnregistersAll(t *testing.T) {
	w := NewWatchIndex()
	c := mkIneq([]sat.Lit{lit(0), lit(1)}, []int64{1, 1}, 2)
	c.growPrefix(w)
	c.growPrefix(w)

	c.resetWatchedPrefix(w)
	if c.WatchSz != 0 || !c.WatchSum.IsZero() {
		t.Fatalf("prefix not fully reset: WatchSz=%d WatchSum=%s", c.WatchSz, c.WatchSum)
	}
	if len(w.Get(lit(0).Negation())) != 0 {
		t.Fatal("watch entries should have been removed")
	}
}
