package scenario

import (
	"math"
	"math/rand"
	"strconv"
)

// constants characterizing generated workloads
const (
	N_PRIORITIES = 5

	MAX_UNITS = 5 // instances per resource type

	MIN_BURST     = 1
	AVG_BURST     = 6
	STD_DEV_BURST = 3
	MAX_BURST     = 20

	MAX_ARRIVAL = 10
)

func sampleNormal(r *rand.Rand, mu, sigma float64) float64 {
	return r.NormFloat64()*sigma + mu
}

// Generate produces a random scenario that is always structurally valid: allocations never
// exceed max, and available plus allocations add up to the per-resource totals. Whether it
// deadlocks is up to chance.
func Generate(r *rand.Rand, nProcs, nRes int) *Scenario {
	total := make([]int, nRes)
	free := make([]int, nRes)
	for i := range total {
		total[i] = 1 + r.Intn(MAX_UNITS)
		free[i] = total[i]
	}

	sc := &Scenario{
		Name:        "generated-" + strconv.Itoa(nProcs) + "x" + strconv.Itoa(nRes),
		Description: "random workload",
		Processes:   make([]Proc, nProcs),
	}
	for j := 0; j < nProcs; j++ {
		max := make([]int, nRes)
		alloc := make([]int, nRes)
		for i := 0; i < nRes; i++ {
			max[i] = r.Intn(total[i] + 1)
			if hold := min(max[i], free[i]); hold > 0 {
				alloc[i] = r.Intn(hold + 1)
				free[i] -= alloc[i]
			}
		}
		burst := int(math.Max(math.Min(math.Round(sampleNormal(r, AVG_BURST, STD_DEV_BURST)), MAX_BURST), MIN_BURST))
		sc.Processes[j] = Proc{
			Pid:       j + 1,
			Max:       max,
			Allocated: alloc,
			Priority:  1 + r.Intn(N_PRIORITIES),
			Burst:     burst,
			Arrival:   r.Intn(MAX_ARRIVAL + 1),
		}
	}
	sc.Available = free
	return sc
}
