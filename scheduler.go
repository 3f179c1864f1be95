package deadsched

import (
	"fmt"
	"sort"

	"github.com/markphelps/optional"
)

// Scheduler advances a simulated CPU one time unit per Step, appending exactly one history
// record per call.
type Scheduler interface {
	Step()
	IsComplete() bool
	History() []Tick
	Procs() []*Process
	Now() Ttick
}

// Tick is one history record. Running is absent on idle ticks.
type Tick struct {
	Time      Ttick        `json:"time"`
	Running   optional.Int `json:"running"`
	Ready     []Tpid       `json:"ready"`
	Completed []Tpid       `json:"completed"`
	Quantum   optional.Int `json:"quantum"`
	Available Tvec         `json:"available,omitempty"`
}

func (t Tick) RunningPid() (Tpid, bool) {
	if !t.Running.Present() {
		return 0, false
	}
	return Tpid(t.Running.OrElse(0)), true
}

func (t Tick) String() string {
	str := fmt.Sprintf("t=%d ", t.Time)
	if pid, ok := t.RunningPid(); ok {
		str += "run " + pid.String()
	} else {
		str += "idle"
	}
	str += fmt.Sprintf(" ready %v done %v", t.Ready, t.Completed)
	if t.Quantum.Present() {
		str += fmt.Sprintf(" q=%d", t.Quantum.OrElse(0))
	}
	if t.Available != nil {
		str += " avail " + t.Available.String()
	}
	return str
}

// Run steps sd until it completes or maxSteps steps have been taken, and reports whether it
// completed.
func Run(sd Scheduler, maxSteps int) bool {
	for steps := 0; !sd.IsComplete() && steps < maxSteps; steps++ {
		sd.Step()
	}
	return sd.IsComplete()
}

// state shared by every scheduler variant
type baseSched struct {
	procs     []*Process
	pending   []*Process // not yet arrived, by arrival time
	q         *Queue
	running   *Process
	completed []*Process
	history   []Tick
	now       Ttick
}

func newBaseSched(procs []*Process) *baseSched {
	sd := &baseSched{
		procs: procs,
		q:     newQueue(),
	}
	for _, p := range procs {
		if p.BurstTime <= 0 {
			p.BurstTime = DEFAULT_BURST_TIME
		}
		p.RemainingTime = p.BurstTime
		p.ExecutionTime = 0
		p.WaitingTime = 0
		p.StartTime = -1
		p.CompletionTime = 0
		p.Finished = false
	}
	sd.pending = append([]*Process(nil), procs...)
	sort.SliceStable(sd.pending, func(i, j int) bool {
		return sd.pending[i].ArrivalTime < sd.pending[j].ArrivalTime
	})
	sd.admit()
	return sd
}

func (sd *baseSched) String() string {
	str := fmt.Sprintf("{t=%d, ", sd.now)
	if sd.running != nil {
		str += "running " + sd.running.Pid.String() + ", "
	}
	str += "q: " + sd.q.String() + "}"
	return str
}

// moves every process that has arrived by now into the ready queue
func (sd *baseSched) admit() {
	i := 0
	for i < len(sd.pending) && sd.pending[i].ArrivalTime <= sd.now {
		sd.q.enq(sd.pending[i])
		i++
	}
	sd.pending = sd.pending[i:]
}

func (sd *baseSched) IsComplete() bool {
	return len(sd.completed) == len(sd.procs)
}

func (sd *baseSched) History() []Tick {
	return sd.history
}

func (sd *baseSched) Procs() []*Process {
	return sd.procs
}

func (sd *baseSched) Now() Ttick {
	return sd.now
}

// runs the current process for one unit; true if it finished
func (sd *baseSched) runOne() bool {
	p := sd.running
	if p.StartTime < 0 {
		p.StartTime = sd.now
	}
	_, done := p.runTillOutOrDone(1)
	return done
}

func (sd *baseSched) updateWaitingTimes() {
	for _, p := range sd.q.getQ() {
		p.WaitingTime += 1
	}
}

func (sd *baseSched) record(extra func(t *Tick)) {
	t := Tick{
		Time:      sd.now,
		Ready:     sd.q.pids(),
		Completed: pidsOf(sd.completed),
	}
	if sd.running != nil {
		t.Running = optional.NewInt(int(sd.running.Pid))
	}
	if extra != nil {
		extra(&t)
	}
	sd.history = append(sd.history, t)
}

func (sd *baseSched) complete(p *Process) {
	p.Finished = true
	p.CompletionTime = sd.now + 1
	sd.completed = append(sd.completed, p)
	if sd.running == p {
		sd.running = nil
	}
}

func (sd *baseSched) advance() {
	sd.now += 1
	sd.admit()
}

// the non-preemptive step shared by FCFS, SJF and Priority: pick decides who runs next
// whenever the CPU is free
func (sd *baseSched) stepNonPreemptive(pick func() *Process) {
	if sd.running == nil {
		sd.running = pick()
	}
	done := false
	if sd.running != nil {
		done = sd.runOne()
	}
	sd.updateWaitingTimes()
	sd.record(nil)
	if done {
		sd.complete(sd.running)
	}
	sd.advance()
}
