package waitgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Components returns the strongly connected components of g.
func (g *Graph) Components() [][]int {
	sccs := topo.TarjanSCC(g.g)
	out := make([][]int, len(sccs))
	for i, comp := range sccs {
		out[i] = make([]int, len(comp))
		for j, n := range comp {
			out[i][j] = int(n.ID())
		}
	}
	return out
}

// Cyclic returns, in ascending index order, every node that lies on at least one cycle.
func (g *Graph) Cyclic() []int {
	var out []int
	for _, comp := range g.Components() {
		if len(comp) > 1 || g.loops[comp[0]] {
			out = append(out, comp...)
		}
	}
	sort.Ints(out)
	return out
}

// byID walks successors in ascending index order so breadth-first search is repeatable
type byID struct {
	*simple.DirectedGraph
}

func (g byID) From(id int64) graph.Nodes {
	nodes := graph.NodesOf(g.DirectedGraph.From(id))
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return iterator.NewOrderedNodes(nodes)
}

// FindCycle returns a shortest cycle through the lowest-indexed cyclic node, starting at that
// node (the closing node is not repeated), or nil when g is acyclic.
func (g *Graph) FindCycle() []int {
	cyclic := g.Cyclic()
	if len(cyclic) == 0 {
		return nil
	}
	start := cyclic[0]
	if g.loops[start] {
		return []int{start}
	}

	parent := map[int]int{}
	closer := -1
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			from, to := int(e.From().ID()), int(e.To().ID())
			if closer >= 0 {
				return false
			}
			if to == start {
				closer = from
				return false
			}
			if _, seen := parent[to]; !seen {
				parent[to] = from
			}
			return true
		},
	}
	bf.Walk(byID{g.g}, simple.Node(start), func(graph.Node, int) bool { return closer >= 0 })
	if closer < 0 {
		return nil
	}

	var cycle []int
	for v := closer; v != start; v = parent[v] {
		cycle = append(cycle, v)
	}
	cycle = append(cycle, start)
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}
	return cycle
}
