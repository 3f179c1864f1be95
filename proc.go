package deadsched

import (
	"strconv"
)

const DEFAULT_BURST_TIME = Ttick(10)

// ------------------------------------------------------------------------------------------------
// PROCESS
// ------------------------------------------------------------------------------------------------

// a process as seen by both the ledger (resource vectors) and the schedulers (timing fields)
type Process struct {
	Pid       Tpid `json:"pid"`
	Max       Tvec `json:"max"`
	Allocated Tvec `json:"allocated"`
	Need      Tvec `json:"need"`
	Priority  int  `json:"priority"`

	ArrivalTime    Ttick `json:"arrival"`
	BurstTime      Ttick `json:"burst"`
	RemainingTime  Ttick `json:"remaining"`
	ExecutionTime  Ttick `json:"executed"`
	WaitingTime    Ttick `json:"waiting"`
	StartTime      Ttick `json:"start"`
	CompletionTime Ttick `json:"completion"`

	Finished   bool `json:"finished"`
	Terminated bool `json:"terminated"`
}

// NewProcess builds a process holding allocated out of max. A nil allocated means nothing is
// held yet, a nil need defaults to max - allocated.
func NewProcess(pid Tpid, max, allocated, need Tvec) *Process {
	if allocated == nil {
		allocated = NewVec(len(max))
	}
	if need == nil {
		need = max.Clone()
		need.sub(allocated)
	}
	return &Process{
		Pid:       pid,
		Max:       max.Clone(),
		Allocated: allocated.Clone(),
		Need:      need.Clone(),
		Priority:  1,
		StartTime: -1,
	}
}

func (p *Process) String() string {
	str := p.Pid.String() + ": max " + p.Max.String() +
		", alloc " + p.Allocated.String() +
		", need " + p.Need.String() +
		", prio " + strconv.Itoa(p.Priority)
	if p.Terminated {
		str += ", terminated"
	}
	if p.Finished {
		str += ", done at " + strconv.Itoa(int(p.CompletionTime))
	}
	return str
}

// deep copy
func (p *Process) Copy() *Process {
	c := *p
	c.Max = p.Max.Clone()
	c.Allocated = p.Allocated.Clone()
	c.Need = p.Need.Clone()
	return &c
}

// total units held across all resource types
func (p *Process) held() int {
	return p.Allocated.Total()
}

func (p *Process) Turnaround() Ttick {
	return p.CompletionTime - p.ArrivalTime
}

func (p *Process) Response() Ttick {
	return p.StartTime - p.ArrivalTime
}

func (p *Process) runTillOutOrDone(toRun Ttick) (Ttick, bool) {
	if p.RemainingTime <= toRun {
		used := p.RemainingTime
		p.ExecutionTime += used
		p.RemainingTime = 0
		return used, true
	}
	p.RemainingTime -= toRun
	p.ExecutionTime += toRun
	return toRun, false
}

func pidsOf(procs []*Process) []Tpid {
	pids := make([]Tpid, len(procs))
	for i, p := range procs {
		pids[i] = p.Pid
	}
	return pids
}
