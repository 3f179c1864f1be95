// Package waitgraph labels the nodes of a gonum directed graph so callers can build a wait-for
// or resource-allocation graph by name. A Graph is built fresh for every detection call.
package waitgraph

import (
	"gonum.org/v1/gonum/graph/simple"
)

type Graph struct {
	labels []string
	index  map[string]int
	// successors in insertion order; g holds the same edges minus self loops
	succ   [][]int
	loops  map[int]bool
	g      *simple.DirectedGraph
	nedges int
}

func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		loops: make(map[int]bool),
		g:     simple.NewDirectedGraph(),
	}
}

// AddNode returns the index of the node with the given label, adding it if needed.
func (g *Graph) AddNode(label string) int {
	if i, ok := g.index[label]; ok {
		return i
	}
	i := len(g.labels)
	g.labels = append(g.labels, label)
	g.succ = append(g.succ, nil)
	g.index[label] = i
	g.g.AddNode(simple.Node(i))
	return i
}

// AddEdge adds from -> to once; repeats are ignored. simple.DirectedGraph refuses self
// edges, so those are kept aside.
func (g *Graph) AddEdge(from, to int) {
	if from == to {
		if g.loops[from] {
			return
		}
		g.loops[from] = true
	} else {
		if g.g.HasEdgeFromTo(int64(from), int64(to)) {
			return
		}
		g.g.SetEdge(g.g.NewEdge(simple.Node(from), simple.Node(to)))
	}
	g.succ[from] = append(g.succ[from], to)
	g.nedges++
}

func (g *Graph) Len() int {
	return len(g.labels)
}

func (g *Graph) NumEdges() int {
	return g.nedges
}

func (g *Graph) Label(i int) string {
	return g.labels[i]
}

func (g *Graph) Lookup(label string) (int, bool) {
	i, ok := g.index[label]
	return i, ok
}

func (g *Graph) Successors(i int) []int {
	return g.succ[i]
}

// edges in insertion order, grouped by source node
func (g *Graph) Edges() [][2]int {
	out := make([][2]int, 0, g.nedges)
	for v, ws := range g.succ {
		for _, w := range ws {
			out = append(out, [2]int{v, w})
		}
	}
	return out
}
