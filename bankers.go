package deadsched

import (
	"log/slog"

	"deadsched/internal/logging"
)

// banker's-gated scheduler: a process only gets the CPU once its whole remaining need can be
// granted without leaving the other ready processes unsafe. It works on its own ledger, so
// pass it a clone.
type BankersSched struct {
	*baseSched
	ledger *Ledger
	log    *slog.Logger
}

func NewBankers(l *Ledger) *BankersSched {
	return &BankersSched{
		baseSched: newBaseSched(l.live()),
		ledger:    l,
		log:       logging.Discard(),
	}
}

func (sd *BankersSched) Ledger() *Ledger {
	return sd.ledger
}

func (sd *BankersSched) Step() {
	if sd.running == nil {
		sd.running = sd.pickSafe()
	}
	done := false
	if sd.running != nil {
		done = sd.runOne()
	}
	sd.updateWaitingTimes()
	sd.record(func(t *Tick) {
		t.Available = sd.ledger.Available()
	})
	if done {
		p := sd.running
		sd.ledger.retire(p)
		sd.complete(p)
	}
	sd.advance()
}

// first ready process, in queue order, whose admission keeps the rest of the ready set safe:
// once its whole need is granted, every other ready process must still be able to finish
// from what is left. The chosen process has its need granted and leaves the queue.
func (sd *BankersSched) pickSafe() *Process {
	ready := sd.q.getQ()
	for i, p := range ready {
		if !p.Need.leq(sd.ledger.available) {
			continue
		}
		others := make([]*Process, 0, len(ready)-1)
		others = append(others, ready[:i]...)
		others = append(others, ready[i+1:]...)

		need := p.Need.Clone()
		sd.ledger.grant(p, need)
		if _, ok := safeOrder(sd.ledger.available, others, currentNeed); ok {
			sd.q.removeAt(i)
			sd.log.Debug("admitted", "pid", int(p.Pid), "granted", need.String(), "available", sd.ledger.available.String(), "time", int(sd.now))
			return p
		}
		sd.ledger.preempt(p, need)
	}
	return nil
}
