package deadsched

import (
	"fmt"

	"github.com/markphelps/optional"
)

const DEFAULT_TIME_QUANTUM = Ttick(2)

// round robin: each process gets up to quantum units per turn before going to the back of
// the queue
type RRSched struct {
	*baseSched
	quantum Ttick
	used    Ttick // units the running process has had this turn
}

func NewRoundRobin(procs []*Process, quantum Ttick) (*RRSched, error) {
	if quantum <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantum, quantum)
	}
	return &RRSched{
		baseSched: newBaseSched(procs),
		quantum:   quantum,
	}, nil
}

func (sd *RRSched) Quantum() Ttick {
	return sd.quantum
}

func (sd *RRSched) Step() {
	if sd.running == nil {
		sd.running = sd.q.deq()
		sd.used = 0
	}
	if sd.running == nil {
		sd.updateWaitingTimes()
		sd.record(nil)
		sd.advance()
		return
	}

	done := sd.runOne()
	sd.used++
	sd.updateWaitingTimes()
	sd.record(func(t *Tick) {
		t.Quantum = optional.NewInt(int(sd.used))
	})

	p := sd.running
	if done {
		sd.complete(p)
		sd.advance()
		return
	}
	if sd.used >= sd.quantum {
		// arrivals during this turn queue up ahead of the preempted process
		sd.running = nil
		sd.advance()
		sd.q.enq(p)
		return
	}
	sd.advance()
}
