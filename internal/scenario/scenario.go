// Package scenario reads, writes and generates the YAML scenario documents that bootstrap a
// ledger.
package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"deadsched"
)

type Proc struct {
	Pid       int   `yaml:"pid"`
	Max       []int `yaml:"max,flow"`
	Allocated []int `yaml:"allocated,flow,omitempty"`
	// defaults to max - allocated
	Need     []int `yaml:"need,flow,omitempty"`
	Priority int   `yaml:"priority,omitempty"`
	Burst    int   `yaml:"burst,omitempty"`
	Arrival  int   `yaml:"arrival,omitempty"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Available   []int  `yaml:"available,flow"`
	Processes   []Proc `yaml:"processes"`
}

func Decode(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", deadsched.ErrInvalidScenario, err)
	}
	return &sc, nil
}

func Encode(sc *Scenario) ([]byte, error) {
	return yaml.Marshal(sc)
}

// Build validates the scenario and hands its processes to a fresh ledger.
func (sc *Scenario) Build() (*deadsched.Ledger, error) {
	procs := make([]*deadsched.Process, len(sc.Processes))
	for i, sp := range sc.Processes {
		if sp.Max == nil {
			return nil, fmt.Errorf("%w: process %d has no max vector", deadsched.ErrInvalidScenario, sp.Pid)
		}
		p := deadsched.NewProcess(deadsched.Tpid(sp.Pid), deadsched.Tvec(sp.Max), deadsched.Tvec(sp.Allocated), deadsched.Tvec(sp.Need))
		if sp.Priority != 0 {
			p.Priority = sp.Priority
		}
		p.BurstTime = deadsched.Ttick(sp.Burst)
		p.ArrivalTime = deadsched.Ttick(sp.Arrival)
		procs[i] = p
	}
	l, err := deadsched.NewLedger(deadsched.Tvec(sc.Available), procs...)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	return l, nil
}

// FromLedger captures the current state of l, terminated processes excluded.
func FromLedger(name string, l *deadsched.Ledger) *Scenario {
	sc := &Scenario{
		Name:      name,
		Available: l.Available(),
	}
	for _, p := range l.CopyProcs() {
		if p.Terminated {
			continue
		}
		sc.Processes = append(sc.Processes, Proc{
			Pid:       int(p.Pid),
			Max:       p.Max,
			Allocated: p.Allocated,
			Need:      p.Need,
			Priority:  p.Priority,
			Burst:     int(p.BurstTime),
			Arrival:   int(p.ArrivalTime),
		})
	}
	return sc
}
