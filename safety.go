package deadsched

// work/finish scan. needOf picks the vector each process must be able to cover; the scan
// restarts from the first process after every success, so the order is deterministic.
func safeOrder(work Tvec, procs []*Process, needOf func(*Process) Tvec) ([]*Process, bool) {
	work = work.Clone()
	finish := make([]bool, len(procs))
	order := make([]*Process, 0, len(procs))

	for found := true; found; {
		found = false
		for i, p := range procs {
			if finish[i] || !needOf(p).leq(work) {
				continue
			}
			work.add(p.Allocated)
			finish[i] = true
			order = append(order, p)
			found = true
			break
		}
	}
	return order, len(order) == len(procs)
}

func currentNeed(p *Process) Tvec {
	return p.Need
}

// IsSafe reports whether every live process can run to completion in some order.
func IsSafe(l *Ledger) bool {
	_, ok := SafeSequence(l)
	return ok
}

// SafeSequence returns the completion order found by the safety scan. When the state is
// unsafe the returned prefix holds the processes that could still finish.
func SafeSequence(l *Ledger) ([]Tpid, bool) {
	order, ok := safeOrder(l.available, l.live(), currentNeed)
	return pidsOf(order), ok
}
