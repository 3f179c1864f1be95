package deadsched

// first come first served: the head of the ready queue runs to completion
type FCFSSched struct {
	*baseSched
}

func NewFCFS(procs []*Process) *FCFSSched {
	return &FCFSSched{baseSched: newBaseSched(procs)}
}

func (sd *FCFSSched) Step() {
	sd.stepNonPreemptive(sd.q.deq)
}
