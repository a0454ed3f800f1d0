// Package dag orders gadgets so that every gadget follows the gadgets it
// requires, and reports the offending path when requires form a cycle.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle. Cycle lists the
	// nodes along one cycle with the first node repeated at the end.
	CycleError struct {
		Cycle []string
	}

	// Graph is a directed graph for topological sorting. An edge from A to B
	// means A must come before B.
	Graph struct {
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		index map[string]int
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		index:     make(map[string]int),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must come before
// "to". Both nodes are implicitly added. Repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	for _, n := range g.adjacency[from] {
		if n == to {
			return
		}
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// TopologicalSort returns an order using Kahn's algorithm. Among nodes that
// are ready at the same time, the one added first wins, so a graph without
// edges sorts to its insertion order. Returns CycleError if the graph
// contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make([]int, len(g.nodes))
	for _, neighbors := range g.adjacency {
		for _, n := range neighbors {
			inDegree[g.index[n]]++
		}
	}

	done := make([]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))
	for len(result) < len(g.nodes) {
		next := -1
		for i := range g.nodes {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &CycleError{Cycle: g.findCycle(done)}
		}

		done[next] = true
		result = append(result, g.nodes[next])
		for _, n := range g.adjacency[g.nodes[next]] {
			inDegree[g.index[n]]--
		}
	}
	return result, nil
}

// findCycle walks the unsorted remainder of the graph depth-first from the
// earliest remaining node and returns the first cycle it closes.
func (g *Graph) findCycle(done []bool) []string {
	const (
		unvisited = iota
		onStack
		finished
	)
	state := make([]int, len(g.nodes))
	var stack []string

	var visit func(i int) []string
	visit = func(i int) []string {
		state[i] = onStack
		stack = append(stack, g.nodes[i])
		for _, n := range g.adjacency[g.nodes[i]] {
			j := g.index[n]
			if done[j] {
				continue
			}
			switch state[j] {
			case onStack:
				for k, name := range stack {
					if name == n {
						cycle := append([]string{}, stack[k:]...)
						return append(cycle, n)
					}
				}
			case unvisited:
				if c := visit(j); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = finished
		return nil
	}

	for i := range g.nodes {
		if !done[i] && state[i] == unvisited {
			if c := visit(i); c != nil {
				return c
			}
		}
	}
	return nil
}
