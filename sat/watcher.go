package sat

// binWatch records a binary clause watched by the negation of one of its
// two literals, remembering the other literal directly to avoid a clause
// dereference on the hot path, as in gophersat's solver/watcher.go.
type binWatch struct {
	other  Lit
	clause *Clause
}

// watcherList is a per-literal index of the clauses whose falsification
// must be checked when that literal becomes true.
type watcherList struct {
	wlistBin [][]binWatch
	wlist    [][]*Clause
	clauses  []*Clause
}

func newWatcherList(nbVars int) watcherList {
	return watcherList{
		wlistBin: make([][]binWatch, nbVars*2),
		wlist:    make([][]*Clause, nbVars*2),
	}
}

func (wl *watcherList) grow(nbVars int) {
	for len(wl.wlistBin) < nbVars*2 {
		wl.wlistBin = append(wl.wlistBin, nil)
		wl.wlist = append(wl.wlist, nil)
	}
}

func (wl *watcherList) watch(c *Clause) {
	wl.clauses = append(wl.clauses, c)
	if c.Len() == 2 {
		l0, l1 := c.Get(0), c.Get(1)
		n0, n1 := l0.Negation(), l1.Negation()
		wl.wlistBin[n0] = append(wl.wlistBin[n0], binWatch{clause: c, other: l1})
		wl.wlistBin[n1] = append(wl.wlistBin[n1], binWatch{clause: c, other: l0})
		return
	}
	for i := 0; i < 2; i++ {
		neg := c.Get(i).Negation()
		wl.wlist[neg] = append(wl.wlist[neg], c)
	}
}

func removeClause(lst []*Clause, c *Clause) []*Clause {
	i := 0
	for lst[i] != c {
		i++
	}
	last := len(lst) - 1
	lst[i] = lst[last]
	return lst[:last]
}

func removeBinWatch(lst []binWatch, c *Clause) []binWatch {
	i := 0
	for lst[i].clause != c {
		i++
	}
	last := len(lst) - 1
	lst[i] = lst[last]
	return lst[:last]
}

// unwatch removes c from every watch list it was registered on, the inverse
// of watch. Binary clauses live in wlistBin under both watched literals'
// negations; longer clauses live in wlist under whichever two literals are
// currently their watched pair.
func (wl *watcherList) unwatch(c *Clause) {
	if c.Len() < 2 {
		return
	}
	if c.Len() == 2 {
		l0, l1 := c.Get(0), c.Get(1)
		n0, n1 := l0.Negation(), l1.Negation()
		wl.wlistBin[n0] = removeBinWatch(wl.wlistBin[n0], c)
		wl.wlistBin[n1] = removeBinWatch(wl.wlistBin[n1], c)
		return
	}
	for i := 0; i < 2; i++ {
		neg := c.Get(i).Negation()
		wl.wlist[neg] = removeClause(wl.wlist[neg], c)
	}
}
