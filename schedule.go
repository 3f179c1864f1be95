package deadsched

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"deadsched/internal/idgen"
)

const DEFAULT_MAX_STEPS = 1000

type Algorithm int

const (
	AlgFCFS Algorithm = iota
	AlgRoundRobin
	AlgBankers
	AlgSJF
	AlgPriority
)

var algorithmNames = []string{
	AlgFCFS:       "fcfs",
	AlgRoundRobin: "round-robin",
	AlgBankers:    "bankers",
	AlgSJF:        "sjf",
	AlgPriority:   "priority",
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return "algorithm(" + fmt.Sprint(int(a)) + ")"
	}
	return algorithmNames[a]
}

func Algorithms() []Algorithm {
	return []Algorithm{AlgFCFS, AlgRoundRobin, AlgBankers, AlgSJF, AlgPriority}
}

func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fcfs", "fifo":
		return AlgFCFS, nil
	case "rr", "round-robin", "roundrobin":
		return AlgRoundRobin, nil
	case "bankers", "banker", "bankers-gated":
		return AlgBankers, nil
	case "sjf", "shortest-job-first":
		return AlgSJF, nil
	case "priority":
		return AlgPriority, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

type Status int

const (
	StatusComplete Status = iota
	StatusDiverged        // step budget ran out first
)

func (s Status) String() string {
	if s == StatusComplete {
		return "complete"
	}
	return "diverged"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type SchedParams struct {
	TimeQuantum Ttick
	MaxSteps    int
	BurstTimes  map[Tpid]Ttick
	Priorities  map[Tpid]int
	// available vector for the banker's-gated variant
	Ledger *Ledger
	Logger *slog.Logger
}

// Schedule is the outcome of one BuildSchedule call.
type Schedule struct {
	ID        string     `json:"id"`
	Algorithm Algorithm  `json:"algorithm"`
	Status    Status     `json:"status"`
	History   []Tick     `json:"history"`
	Procs     []*Process `json:"processes"`
	Stats     Stats      `json:"stats"`
}

func (s *Schedule) String() string {
	str := fmt.Sprintf("schedule %s (%v, %v)\n", s.ID, s.Algorithm, s.Status)
	for _, seg := range s.Segments() {
		str += "    " + seg.String() + "\n"
	}
	str += s.Stats.String()
	return str
}

// pids of finished processes in the order they completed
func (s *Schedule) CompletionOrder() []Tpid {
	done := make([]*Process, 0, len(s.Procs))
	for _, p := range s.Procs {
		if p.Finished {
			done = append(done, p)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].CompletionTime < done[j].CompletionTime
	})
	return pidsOf(done)
}

// Segment is a maximal run of consecutive ticks given to one process, [Start, End] inclusive.
type Segment struct {
	Pid   Tpid  `json:"pid"`
	Start Ttick `json:"start"`
	End   Ttick `json:"end"`
}

func (seg Segment) String() string {
	return fmt.Sprintf("%v %d-%d", seg.Pid, seg.Start, seg.End)
}

// Segments collapses the history into Gantt chart bars. Idle ticks split segments.
func (s *Schedule) Segments() []Segment {
	var segs []Segment
	for _, t := range s.History {
		pid, ok := t.RunningPid()
		if !ok {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].Pid == pid && segs[n-1].End == t.Time-1 {
			segs[n-1].End = t.Time
			continue
		}
		segs = append(segs, Segment{Pid: pid, Start: t.Time, End: t.Time})
	}
	return segs
}

// PrepareProcesses deep-copies the live processes and fills in their scheduling fields.
func PrepareProcesses(procs []*Process, params SchedParams) []*Process {
	out := make([]*Process, 0, len(procs))
	for _, p := range procs {
		if p.Terminated {
			continue
		}
		c := p.Copy()
		if burst, ok := params.BurstTimes[c.Pid]; ok && burst > 0 {
			c.BurstTime = burst
		} else if c.BurstTime <= 0 {
			c.BurstTime = DEFAULT_BURST_TIME
		}
		if prio, ok := params.Priorities[c.Pid]; ok {
			c.Priority = prio
		}
		c.RemainingTime = c.BurstTime
		c.WaitingTime = 0
		c.ExecutionTime = 0
		c.StartTime = -1
		c.CompletionTime = 0
		c.Finished = false
		out = append(out, c)
	}
	return out
}

func newScheduler(procs []*Process, alg Algorithm, params SchedParams) (Scheduler, error) {
	switch alg {
	case AlgFCFS:
		return NewFCFS(procs), nil
	case AlgRoundRobin:
		return NewRoundRobin(procs, params.TimeQuantum)
	case AlgBankers:
		if params.Ledger == nil {
			return nil, fmt.Errorf("%w: banker's scheduling needs a ledger", ErrInvalidScenario)
		}
		l, err := NewLedger(params.Ledger.Available(), procs...)
		if err != nil {
			return nil, err
		}
		sd := NewBankers(l)
		if params.Logger != nil {
			sd.log = params.Logger
		}
		return sd, nil
	case AlgSJF:
		return NewSJF(procs), nil
	case AlgPriority:
		return NewPriority(procs), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, alg)
}

// BuildSchedule runs alg over deep copies of procs and returns the full history. The
// originals are never touched. Running out of steps is reported through Status, not as an
// error.
func BuildSchedule(procs []*Process, alg Algorithm, params SchedParams) (*Schedule, error) {
	prepared := PrepareProcesses(procs, params)
	sd, err := newScheduler(prepared, alg, params)
	if err != nil {
		return nil, err
	}

	maxSteps := params.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DEFAULT_MAX_STEPS
	}
	status := StatusDiverged
	if Run(sd, maxSteps) {
		status = StatusComplete
	}

	return &Schedule{
		ID:        idgen.New(),
		Algorithm: alg,
		Status:    status,
		History:   sd.History(),
		Procs:     sd.Procs(),
		Stats:     computeStats(sd.Procs(), sd.History()),
	}, nil
}
