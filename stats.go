package deadsched

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// aggregate figures over the finished processes of a schedule
type Stats struct {
	Finished        int     `json:"finished"`
	AvgWaiting      float64 `json:"avg_waiting"`
	StdDevWaiting   float64 `json:"stddev_waiting"`
	AvgTurnaround   float64 `json:"avg_turnaround"`
	AvgResponse     float64 `json:"avg_response"`
	TotalTime       Ttick   `json:"total_time"`
	IdleTicks       int     `json:"idle_ticks"`
	Utilization     float64 `json:"utilization"`
	Throughput      float64 `json:"throughput"`
	ContextSwitches int     `json:"context_switches"`
}

func (st Stats) String() string {
	str := fmt.Sprintf("finished %d in %d ticks (%d idle)\n", st.Finished, st.TotalTime, st.IdleTicks)
	str += fmt.Sprintf("waiting avg %.2f stddev %.2f, turnaround avg %.2f, response avg %.2f\n",
		st.AvgWaiting, st.StdDevWaiting, st.AvgTurnaround, st.AvgResponse)
	str += fmt.Sprintf("utilization %.2f, throughput %.3f, context switches %d\n",
		st.Utilization, st.Throughput, st.ContextSwitches)
	return str
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// sample standard deviation; 0 when there is nothing to spread
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

func computeStats(procs []*Process, history []Tick) Stats {
	var waiting, turnaround, response []Ttick
	for _, p := range procs {
		if !p.Finished {
			continue
		}
		waiting = append(waiting, p.WaitingTime)
		turnaround = append(turnaround, p.Turnaround())
		response = append(response, p.Response())
	}

	st := Stats{
		Finished:      len(waiting),
		AvgWaiting:    mean(toFloats(waiting)),
		StdDevWaiting: stdDev(toFloats(waiting)),
		AvgTurnaround: mean(toFloats(turnaround)),
		AvgResponse:   avg(response),
		TotalTime:     Ttick(len(history)),
	}

	var last Tpid
	ran := false
	for _, t := range history {
		pid, ok := t.RunningPid()
		if !ok {
			st.IdleTicks++
			continue
		}
		if ran && pid != last {
			st.ContextSwitches++
		}
		last, ran = pid, true
	}
	if st.TotalTime > 0 {
		st.Utilization = float64(int(st.TotalTime)-st.IdleTicks) / float64(st.TotalTime)
		st.Throughput = float64(st.Finished) / float64(st.TotalTime)
	}
	return st
}
