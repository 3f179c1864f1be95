package deadsched

// ready queue
type Queue struct {
	q []*Process
}

func newQueue() *Queue {
	q := &Queue{q: make([]*Process, 0)}
	return q
}

func (q *Queue) String() string {
	str := ""
	for _, p := range q.q {
		str += p.Pid.String() + " "
	}
	return str
}

func (q *Queue) enq(p *Process) {
	q.q = append(q.q, p)
}

func (q *Queue) deq() *Process {
	if len(q.q) == 0 {
		return nil
	}
	procSelected := q.q[0]
	q.q = q.q[1:]
	return procSelected
}

// removes and returns the first process for which no other compares less
func (q *Queue) popMin(less func(a, b *Process) bool) *Process {
	if len(q.q) == 0 {
		return nil
	}
	best := 0
	for i, p := range q.q {
		if less(p, q.q[best]) {
			best = i
		}
	}
	return q.removeAt(best)
}

func (q *Queue) remove(p *Process) bool {
	for i, qp := range q.q {
		if qp == p {
			q.removeAt(i)
			return true
		}
	}
	return false
}

func (q *Queue) removeAt(i int) *Process {
	p := q.q[i]
	q.q = append(q.q[:i:i], q.q[i+1:]...)
	return p
}

func (q *Queue) qlen() int {
	return len(q.q)
}

func (q *Queue) getQ() []*Process {
	return q.q
}

func (q *Queue) pids() []Tpid {
	return pidsOf(q.q)
}
