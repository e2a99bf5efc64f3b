package markov

import (
	"errors"
	"fmt"
)

// InvariantError reports a node whose visit count disagrees with its edges.
// It always indicates a defect in ingestion or splitting.
type InvariantError struct {
	Node    int
	Visits  int
	EdgeSum int
	Target  int // offending edge target, -1 when the counts are at fault
}

func (e *InvariantError) Error() string {
	if e.Target >= 0 && e.EdgeSum == e.Visits {
		return fmt.Sprintf("node %d: edge target %d does not name a node", e.Node, e.Target)
	}
	return fmt.Sprintf("node %d: %d visits but edges sum to %d", e.Node, e.Visits, e.EdgeSum)
}

// Validate checks every node of the graph: the visit count must equal the sum
// of the edge counts and every edge must point at an existing node. All
// violations are joined into the returned error.
//
// It walks the whole graph, so it is meant for tests and debug runs.
func (g *Graph) Validate() error {
	var errs []error
	for id := range g.nodes {
		node := &g.nodes[id]
		if sum := node.edgeSum(); sum != node.Visits {
			errs = append(errs, &InvariantError{Node: id, Visits: node.Visits, EdgeSum: sum, Target: -1})
		}
		for i := range node.Edges {
			if t := node.Edges[i].Target; t < 0 || t >= len(g.nodes) {
				errs = append(errs, &InvariantError{Node: id, Visits: node.Visits, EdgeSum: node.Visits, Target: t})
			}
		}
	}
	return errors.Join(errs...)
}
