package markov

// GraphStats holds aggregated statistics for a graph.
type GraphStats struct {
	Nodes          int   // The number of nodes, root included.
	Edges          int   // The number of edges with a nonzero count.
	Ingested       int64 // The number of symbols ingested so far.
	Splits         int64 // The number of splits performed.
	Normalizations int64 // The number of times all counts were halved.
	RootVisits     int   // The visit count of the root.
	TotalVisits    int64 // The sum of all node visit counts.
	MaxVisits      int   // The largest visit count of any node.
}

// Stats returns a snapshot of statistics for the graph.
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{
		Nodes:          len(g.nodes),
		Ingested:       g.ingested,
		Splits:         g.splits,
		Normalizations: g.normalizations,
		RootVisits:     g.nodes[Root].Visits,
	}
	for id := range g.nodes {
		node := &g.nodes[id]
		stats.TotalVisits += int64(node.Visits)
		if node.Visits > stats.MaxVisits {
			stats.MaxVisits = node.Visits
		}
		for i := range node.Edges {
			if node.Edges[i].Count > 0 {
				stats.Edges++
			}
		}
	}
	return stats
}
