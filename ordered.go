package deadsched

// non-preemptive scheduler that picks the ready process that orders first under less, ties
// broken by queue position
type OrderedSched struct {
	*baseSched
	less func(a, b *Process) bool
}

func shorterBurst(a, b *Process) bool {
	return a.BurstTime < b.BurstTime
}

func higherPriority(a, b *Process) bool {
	return a.Priority < b.Priority
}

// shortest job first
func NewSJF(procs []*Process) *OrderedSched {
	return &OrderedSched{baseSched: newBaseSched(procs), less: shorterBurst}
}

// lowest Priority value first
func NewPriority(procs []*Process) *OrderedSched {
	return &OrderedSched{baseSched: newBaseSched(procs), less: higherPriority}
}

func (sd *OrderedSched) Step() {
	sd.stepNonPreemptive(func() *Process {
		return sd.q.popMin(sd.less)
	})
}
