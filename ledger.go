package deadsched

import (
	"fmt"
)

// Ledger is the ground truth of resource ownership: the available vector plus every
// process's max, allocated and need vectors. It takes ownership of the processes handed to
// it; a process must never belong to two ledgers. A Ledger is not safe for concurrent use.
type Ledger struct {
	available Tvec
	procs     []*Process
}

func NewLedger(available Tvec, procs ...*Process) (*Ledger, error) {
	if available.hasNegative() {
		return nil, fmt.Errorf("%w: negative available vector %v", ErrInvalidScenario, available)
	}
	l := &Ledger{
		available: available.Clone(),
		procs:     make([]*Process, 0, len(procs)),
	}
	if l.available == nil {
		l.available = Tvec{}
	}
	for _, p := range procs {
		if err := l.AddProcess(p); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Ledger) AddProcess(p *Process) error {
	if p == nil {
		return fmt.Errorf("%w: nil process", ErrInvalidScenario)
	}
	n := len(l.available)
	if len(p.Max) != n || len(p.Allocated) != n || len(p.Need) != n {
		return fmt.Errorf("%w: process %d vectors must have %d entries", ErrInvalidScenario, p.Pid, n)
	}
	if p.Max.hasNegative() || p.Allocated.hasNegative() || p.Need.hasNegative() {
		return fmt.Errorf("%w: process %d has a negative vector entry", ErrInvalidScenario, p.Pid)
	}
	if !p.Allocated.leq(p.Max) {
		return fmt.Errorf("%w: process %d allocation %v exceeds max %v", ErrInvalidScenario, p.Pid, p.Allocated, p.Max)
	}
	if l.find(p.Pid) != nil {
		return fmt.Errorf("%w: duplicate pid %d", ErrInvalidScenario, p.Pid)
	}
	l.procs = append(l.procs, p)
	return nil
}

func (l *Ledger) String() string {
	str := "available " + l.available.String() + "\n"
	for _, p := range l.procs {
		str += "  " + p.String() + "\n"
	}
	return str
}

func (l *Ledger) NumResources() int {
	return len(l.available)
}

func (l *Ledger) NumProcs() int {
	return len(l.procs)
}

func (l *Ledger) Available() Tvec {
	return l.available.Clone()
}

// available plus everything held; conserved across every mutation
func (l *Ledger) Total() Tvec {
	total := l.available.Clone()
	for _, p := range l.procs {
		total.add(p.Allocated)
	}
	return total
}

func (l *Ledger) Pids() []Tpid {
	return pidsOf(l.procs)
}

// Proc returns a copy of the process with the given pid.
func (l *Ledger) Proc(pid Tpid) (*Process, bool) {
	p := l.find(pid)
	if p == nil {
		return nil, false
	}
	return p.Copy(), true
}

func (l *Ledger) CopyProcs() []*Process {
	out := make([]*Process, len(l.procs))
	for i, p := range l.procs {
		out[i] = p.Copy()
	}
	return out
}

func (l *Ledger) Clone() *Ledger {
	return &Ledger{
		available: l.available.Clone(),
		procs:     l.CopyProcs(),
	}
}

func (l *Ledger) find(pid Tpid) *Process {
	for _, p := range l.procs {
		if p.Pid == pid {
			return p
		}
	}
	return nil
}

// processes that still take part in safety, detection and scheduling
func (l *Ledger) live() []*Process {
	out := make([]*Process, 0, len(l.procs))
	for _, p := range l.procs {
		if !p.Terminated {
			out = append(out, p)
		}
	}
	return out
}

func (l *Ledger) checkVec(v Tvec) error {
	if len(v) != len(l.available) {
		return fmt.Errorf("vector %v must have %d entries", v, len(l.available))
	}
	if v.hasNegative() {
		return fmt.Errorf("vector %v has a negative entry", v)
	}
	return nil
}

// Request grants req to pid only if it stays within the process's need, what is available,
// and leaves the system in a safe state. On any failure the ledger is left untouched.
func (l *Ledger) Request(pid Tpid, req Tvec) error {
	p := l.find(pid)
	if p == nil {
		return fmt.Errorf("%w: %d", ErrUnknownProcess, pid)
	}
	if p.Terminated {
		return fmt.Errorf("%w: process %d is terminated", ErrInvalidRequest, pid)
	}
	if err := l.checkVec(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !req.leq(p.Need) {
		return fmt.Errorf("%w: process %d asked for %v beyond its need %v", ErrInvalidRequest, pid, req, p.Need)
	}
	if !req.leq(l.available) {
		return fmt.Errorf("%w: process %d asked for %v but only %v is available", ErrInvalidRequest, pid, req, l.available)
	}
	held := p.Allocated.Clone()
	held.add(req)
	if !held.leq(p.Max) {
		return fmt.Errorf("%w: process %d would hold %v beyond its max %v", ErrInvalidRequest, pid, held, p.Max)
	}

	l.grant(p, req)
	if IsSafe(l) {
		return nil
	}
	l.preempt(p, req)
	return fmt.Errorf("%w: granting %v to process %d", ErrUnsafeRequest, req, pid)
}

// Release hands rel back from pid; there is no safety check on release.
func (l *Ledger) Release(pid Tpid, rel Tvec) error {
	p := l.find(pid)
	if p == nil {
		return fmt.Errorf("%w: %d", ErrUnknownProcess, pid)
	}
	if err := l.checkVec(rel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRelease, err)
	}
	if !rel.leq(p.Allocated) {
		return fmt.Errorf("%w: process %d releasing %v but holds %v", ErrInvalidRelease, pid, rel, p.Allocated)
	}
	l.preempt(p, rel)
	return nil
}

// moves amount from available to p
func (l *Ledger) grant(p *Process, amount Tvec) {
	l.available.sub(amount)
	p.Allocated.add(amount)
	p.Need.sub(amount)
}

// moves amount from p back to available; p still needs it
func (l *Ledger) preempt(p *Process, amount Tvec) {
	l.available.add(amount)
	p.Allocated.sub(amount)
	p.Need.add(amount)
}

// releases everything p holds and takes it out of the live set
func (l *Ledger) terminate(p *Process) {
	l.available.add(p.Allocated)
	p.Allocated = NewVec(len(l.available))
	p.Need = p.Max.Clone()
	p.Terminated = true
}

// a finished process gives back everything and needs nothing more
func (l *Ledger) retire(p *Process) {
	l.available.add(p.Allocated)
	p.Allocated = NewVec(len(l.available))
	p.Need = NewVec(len(l.available))
}
