package scenario

import (
	"fmt"
	"strconv"
)

const NUM_BUILTIN = 9

func proc(pid int, max, allocated, need []int) Proc {
	return Proc{Pid: pid, Max: max, Allocated: allocated, Need: need}
}

// canned deadlock scenarios; every one of them starts with nothing available
var builtins = map[int]Scenario{
	1: {
		Description: "classic circular wait, 3 processes",
		Available:   []int{0, 0, 0},
		Processes: []Proc{
			proc(1, []int{1, 0, 0}, []int{1, 0, 0}, []int{0, 1, 0}),
			proc(2, []int{0, 1, 0}, []int{0, 1, 0}, []int{0, 0, 1}),
			proc(3, []int{0, 0, 1}, []int{0, 0, 1}, []int{1, 0, 0}),
		},
	},
	2: {
		Description: "mutual wait, 2 processes",
		Available:   []int{0, 0},
		Processes: []Proc{
			proc(1, []int{1, 1}, []int{1, 0}, []int{0, 1}),
			proc(2, []int{1, 1}, []int{0, 1}, []int{1, 0}),
		},
	},
	3: {
		Description: "4-way circular wait",
		Available:   []int{0, 0, 0, 0},
		Processes: []Proc{
			proc(1, []int{1, 0, 0, 0}, []int{1, 0, 0, 0}, []int{0, 1, 0, 0}),
			proc(2, []int{0, 1, 0, 0}, []int{0, 1, 0, 0}, []int{0, 0, 1, 0}),
			proc(3, []int{0, 0, 1, 0}, []int{0, 0, 1, 0}, []int{0, 0, 0, 1}),
			proc(4, []int{0, 0, 0, 1}, []int{0, 0, 0, 1}, []int{1, 0, 0, 0}),
		},
	},
	4: {
		Description: "partial deadlock, 3 deadlocked and 1 free",
		Available:   []int{0, 0, 0},
		Processes: []Proc{
			proc(1, []int{1, 0, 0}, []int{1, 0, 0}, []int{0, 1, 0}),
			proc(2, []int{0, 1, 0}, []int{0, 1, 0}, []int{0, 0, 1}),
			proc(3, []int{0, 0, 1}, []int{0, 0, 1}, []int{1, 0, 0}),
			proc(4, []int{0, 0, 0}, []int{0, 0, 0}, []int{0, 0, 1}),
		},
	},
	5: {
		Description: "multi-resource circular wait",
		Available:   []int{0, 0, 0, 0},
		Processes: []Proc{
			proc(1, []int{1, 1, 0, 0}, []int{1, 0, 0, 0}, []int{0, 1, 0, 0}),
			proc(2, []int{0, 1, 1, 0}, []int{0, 1, 0, 0}, []int{0, 0, 1, 0}),
			proc(3, []int{0, 0, 1, 1}, []int{0, 0, 1, 0}, []int{0, 0, 0, 1}),
			proc(4, []int{1, 0, 0, 1}, []int{0, 0, 0, 1}, []int{1, 0, 0, 0}),
		},
	},
	6: {
		Description: "everyone waits on a resource nobody holds",
		Available:   []int{0, 0},
		Processes: []Proc{
			proc(1, []int{0, 1}, []int{0, 0}, []int{0, 1}),
			proc(2, []int{0, 1}, []int{0, 0}, []int{0, 1}),
			proc(3, []int{1, 0}, []int{1, 0}, []int{0, 1}),
			proc(4, []int{1, 0}, []int{1, 0}, []int{0, 1}),
		},
	},
	7: {
		Description: "two interlocking cycles over 5 resources",
		Available:   []int{0, 0, 0, 0, 0},
		Processes: []Proc{
			proc(1, []int{1, 0, 0, 0, 0}, []int{1, 0, 0, 0, 0}, []int{0, 1, 0, 0, 0}),
			proc(2, []int{0, 1, 0, 0, 0}, []int{0, 1, 0, 0, 0}, []int{0, 0, 1, 1, 0}),
			proc(3, []int{0, 0, 1, 0, 0}, []int{0, 0, 1, 0, 0}, []int{1, 0, 0, 0, 1}),
			proc(4, []int{0, 0, 0, 1, 0}, []int{0, 0, 0, 1, 0}, []int{0, 0, 0, 0, 1}),
			proc(5, []int{0, 0, 0, 0, 1}, []int{0, 0, 0, 0, 1}, []int{0, 1, 0, 0, 0}),
		},
	},
	8: {
		Description: "mixed single and multi-instance resources",
		Available:   []int{0, 0, 0},
		Processes: []Proc{
			proc(1, []int{1, 2, 0}, []int{1, 0, 0}, []int{0, 2, 1}),
			proc(2, []int{0, 2, 1}, []int{0, 2, 0}, []int{1, 0, 1}),
			proc(3, []int{1, 0, 2}, []int{0, 0, 2}, []int{1, 1, 0}),
		},
	},
	9: {
		Description: "6-process ring",
		Available:   []int{0, 0, 0, 0, 0, 0},
		Processes: []Proc{
			proc(1, []int{1, 0, 0, 0, 0, 0}, []int{1, 0, 0, 0, 0, 0}, []int{0, 1, 0, 0, 0, 0}),
			proc(2, []int{0, 1, 0, 0, 0, 0}, []int{0, 1, 0, 0, 0, 0}, []int{0, 0, 1, 0, 0, 0}),
			proc(3, []int{0, 0, 1, 0, 0, 0}, []int{0, 0, 1, 0, 0, 0}, []int{0, 0, 0, 1, 0, 0}),
			proc(4, []int{0, 0, 0, 1, 0, 0}, []int{0, 0, 0, 1, 0, 0}, []int{0, 0, 0, 0, 1, 0}),
			proc(5, []int{0, 0, 0, 0, 1, 0}, []int{0, 0, 0, 0, 1, 0}, []int{0, 0, 0, 0, 0, 1}),
			proc(6, []int{0, 0, 0, 0, 0, 1}, []int{0, 0, 0, 0, 0, 1}, []int{1, 0, 0, 0, 0, 0}),
		},
	},
}

// Builtin returns a fresh copy of canned scenario id (1 to NUM_BUILTIN).
func Builtin(id int) (*Scenario, error) {
	b, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("no builtin scenario %d, want 1-%d", id, NUM_BUILTIN)
	}
	sc := &Scenario{
		Name:        "builtin-" + strconv.Itoa(id),
		Description: b.Description,
		Available:   append([]int(nil), b.Available...),
		Processes:   make([]Proc, len(b.Processes)),
	}
	for i, p := range b.Processes {
		sc.Processes[i] = Proc{
			Pid:       p.Pid,
			Max:       append([]int(nil), p.Max...),
			Allocated: append([]int(nil), p.Allocated...),
			Need:      append([]int(nil), p.Need...),
		}
	}
	return sc, nil
}
