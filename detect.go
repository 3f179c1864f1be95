package deadsched

import (
	"strconv"

	"deadsched/internal/waitgraph"
)

type EdgeKind int

const (
	EdgeAllocation EdgeKind = iota // resource -> process holding it
	EdgeRequest                    // process -> resource it is waiting on
)

func (k EdgeKind) String() string {
	if k == EdgeAllocation {
		return "allocation"
	}
	return "request"
}

func (k EdgeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Graph is a read-only view of a resource-allocation graph, for renderers.
type Graph struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

func resourceLabel(i int) string {
	return "R" + strconv.Itoa(i)
}

// resource-allocation graph over the live processes of a ledger. Resource nodes come first,
// then process nodes in ledger order.
type rag struct {
	g     *waitgraph.Graph
	nres  int
	procs []*Process
}

func buildRAG(l *Ledger) *rag {
	g := waitgraph.New()
	nres := len(l.available)
	for i := 0; i < nres; i++ {
		g.AddNode(resourceLabel(i))
	}
	live := l.live()
	for _, p := range live {
		g.AddNode(p.Pid.String())
	}

	for j, p := range live {
		pn := nres + j
		for i, a := range p.Allocated {
			if a > 0 {
				g.AddEdge(i, pn)
			}
		}
	}
	for j, p := range live {
		pn := nres + j
		for i, need := range p.Need {
			if need > 0 && l.available[i] < need {
				g.AddEdge(pn, i)
			}
		}
	}
	return &rag{g: g, nres: nres, procs: live}
}

func (r *rag) proc(node int) *Process {
	if node < r.nres {
		return nil
	}
	return r.procs[node-r.nres]
}

// Detect returns every live process lying on a cycle of the resource-allocation graph, in
// ledger order. An empty result means no deadlock.
func Detect(l *Ledger) []*Process {
	r := buildRAG(l)
	var out []*Process
	for _, v := range r.g.Cyclic() {
		if p := r.proc(v); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// FindCycle returns the labels of one cycle, or nil when there is none.
func FindCycle(l *Ledger) []string {
	r := buildRAG(l)
	cycle := r.g.FindCycle()
	if cycle == nil {
		return nil
	}
	labels := make([]string, len(cycle))
	for i, v := range cycle {
		labels[i] = r.g.Label(v)
	}
	return labels
}

func BuildGraph(l *Ledger) *Graph {
	r := buildRAG(l)
	view := &Graph{Nodes: make([]string, r.g.Len())}
	for i := range view.Nodes {
		view.Nodes[i] = r.g.Label(i)
	}
	for _, e := range r.g.Edges() {
		kind := EdgeRequest
		if e[0] < r.nres {
			kind = EdgeAllocation
		}
		view.Edges = append(view.Edges, Edge{From: r.g.Label(e[0]), To: r.g.Label(e[1]), Kind: kind})
	}
	return view
}
