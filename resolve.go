package deadsched

import (
	"fmt"
	"sort"
	"strings"
)

type Strategy int

const (
	StrategyTermination Strategy = iota
	StrategyPreemption
	StrategyMinCostPreemption
	StrategyPriorityPreemption
	StrategySafeSequence
)

var strategyNames = []string{
	StrategyTermination:        "termination",
	StrategyPreemption:         "preemption",
	StrategyMinCostPreemption:  "min-cost-preemption",
	StrategyPriorityPreemption: "priority-preemption",
	StrategySafeSequence:       "safe-sequence",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "strategy(" + fmt.Sprint(int(s)) + ")"
	}
	return strategyNames[s]
}

func Strategies() []Strategy {
	return []Strategy{StrategyTermination, StrategyPreemption, StrategyMinCostPreemption, StrategyPriorityPreemption, StrategySafeSequence}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "termination", "terminate", "process-termination":
		return StrategyTermination, nil
	case "preemption", "preempt", "resource-preemption":
		return StrategyPreemption, nil
	case "min-cost-preemption", "min-cost", "mincost":
		return StrategyMinCostPreemption, nil
	case "priority-preemption", "priority":
		return StrategyPriorityPreemption, nil
	case "safe-sequence", "banker", "bankers":
		return StrategySafeSequence, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Resolution describes what a strategy did to the ledger.
type Resolution struct {
	Strategy Strategy `json:"strategy"`
	// terminated or preempted processes, in the order they were acted on
	Affected []*Process `json:"-"`
	// units taken from each affected process
	Preempted    map[Tpid]Tvec `json:"preempted,omitempty"`
	SafeSequence []Tpid        `json:"safe_sequence,omitempty"`
	Success      bool          `json:"success"`
}

func (r *Resolution) AffectedPids() []Tpid {
	return pidsOf(r.Affected)
}

func (r *Resolution) String() string {
	str := r.Strategy.String() + ": "
	if r.Success {
		str += "resolved"
	} else {
		str += "unresolved"
	}
	if len(r.Affected) > 0 {
		str += ", affected " + fmt.Sprint(r.AffectedPids())
	}
	if len(r.SafeSequence) > 0 {
		str += ", safe sequence " + fmt.Sprint(r.SafeSequence)
	}
	return str
}

func (r *Resolution) took(p *Process, amount Tvec) {
	if prev, ok := r.Preempted[p.Pid]; ok {
		prev.add(amount)
		return
	}
	r.Preempted[p.Pid] = amount.Clone()
	r.Affected = append(r.Affected, p)
}

// Resolve applies strategy to l until no deadlock remains. When l holds no deadlock right
// now, whatever deadlocked says, nothing is touched and the Resolution reports success. An
// empty deadlocked set is computed with Detect first. Termination and preemption strategies that run out of victims
// while a cycle persists return ErrResolutionExhausted together with the partial Resolution.
func Resolve(l *Ledger, strategy Strategy, deadlocked []*Process) (*Resolution, error) {
	if strategy < 0 || int(strategy) >= len(strategyNames) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, strategy)
	}
	res := &Resolution{Strategy: strategy, Preempted: make(map[Tpid]Tvec)}

	if strategy == StrategySafeSequence {
		resolveBySafeSequence(l, res)
		return res, nil
	}

	current := Detect(l)
	if len(current) == 0 {
		res.Success = true
		return res, nil
	}
	if len(deadlocked) == 0 {
		deadlocked = current
	}
	victims := l.own(deadlocked)
	if len(victims) == 0 {
		res.Success = true
		return res, nil
	}

	switch strategy {
	case StrategyTermination:
		resolveByTermination(l, res, victims)
	case StrategyPreemption:
		resolveByPreemption(l, res, victims)
	case StrategyMinCostPreemption:
		resolveByMinCost(l, res, victims)
	case StrategyPriorityPreemption:
		resolveByPriority(l, res, victims)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, strategy)
	}
	if !res.Success {
		return res, fmt.Errorf("%w: %v acted on %v", ErrResolutionExhausted, strategy, res.AffectedPids())
	}
	return res, nil
}

// maps processes (possibly copies) onto the ledger's own live processes
func (l *Ledger) own(procs []*Process) []*Process {
	out := make([]*Process, 0, len(procs))
	for _, p := range procs {
		if q := l.find(p.Pid); q != nil && !q.Terminated {
			out = append(out, q)
		}
	}
	return out
}

func resolveByTermination(l *Ledger, res *Resolution, victims []*Process) {
	sort.SliceStable(victims, func(i, j int) bool {
		return victims[i].held() > victims[j].held()
	})
	for _, p := range victims {
		res.took(p, p.Allocated)
		l.terminate(p)
		if len(Detect(l)) == 0 {
			res.Success = true
			return
		}
	}
}

// strips every victim of everything it holds, then checks once. Unlike min-cost preemption
// there is no re-detection between victims, so processes beyond the one that breaks the
// cycle can lose their allocation too.
func resolveByPreemption(l *Ledger, res *Resolution, victims []*Process) {
	for _, p := range victims {
		if p.Allocated.IsZero() {
			continue
		}
		taken := p.Allocated.Clone()
		l.preempt(p, taken)
		res.took(p, taken)
	}
	res.Success = len(Detect(l)) == 0
}

func resolveByMinCost(l *Ledger, res *Resolution, victims []*Process) {
	remaining := append([]*Process(nil), victims...)
	for len(remaining) > 0 {
		cheapest := 0
		for i, p := range remaining {
			if p.held() < remaining[cheapest].held() {
				cheapest = i
			}
		}
		p := remaining[cheapest]
		remaining = append(remaining[:cheapest], remaining[cheapest+1:]...)

		if !p.Allocated.IsZero() {
			taken := p.Allocated.Clone()
			l.preempt(p, taken)
			res.took(p, taken)
		}
		if len(Detect(l)) == 0 {
			res.Success = true
			return
		}
	}
}

// takes at most one unit of each held resource per victim per pass, lowest priority value
// first, until the cycle clears or nothing is left to take
func resolveByPriority(l *Ledger, res *Resolution, victims []*Process) {
	sort.SliceStable(victims, func(i, j int) bool {
		return victims[i].Priority < victims[j].Priority
	})
	for {
		progressed := false
		for _, p := range victims {
			take := NewVec(len(p.Allocated))
			for i, a := range p.Allocated {
				take[i] = min(a, 1)
			}
			if take.IsZero() {
				continue
			}
			l.preempt(p, take)
			res.took(p, take)
			progressed = true
			if len(Detect(l)) == 0 {
				res.Success = true
				return
			}
		}
		if !progressed {
			return
		}
	}
}

// rebuilds the allocation from scratch: everything goes back to available and every live
// process is expected to claim its full max in a safe order
func resolveBySafeSequence(l *Ledger, res *Resolution) {
	l.available = l.Total()
	live := l.live()
	for _, p := range live {
		p.Allocated = NewVec(len(l.available))
		p.Need = p.Max.Clone()
	}
	order, ok := safeOrder(l.available, live, func(p *Process) Tvec { return p.Max })
	res.Affected = live
	res.SafeSequence = pidsOf(order)
	res.Success = ok
}
