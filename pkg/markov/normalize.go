package markov

import "log/slog"

// Normalize halves every edge count in the graph, rounding up, and recomputes
// each node's visit count from its edges. Rounding up keeps every observed
// transition observable, so no node reachable by sampling is left without
// visits.
//
// Ingest calls it automatically once a node grows past the configured
// NormalizeThreshold.
func (g *Graph) Normalize() {
	var before, after int64
	for id := range g.nodes {
		node := &g.nodes[id]
		before += int64(node.Visits)
		node.Visits = 0
		for i := range node.Edges {
			count := &node.Edges[i].Count
			*count = (*count + 1) / 2
			node.Visits += *count
		}
		after += int64(node.Visits)
	}
	g.normalizations++

	g.logger.Info("Graph counts normalized",
		slog.Int("nodes", len(g.nodes)),
		slog.Int64("visits_before", before),
		slog.Int64("visits_after", after),
		slog.Int64("normalizations", g.normalizations),
	)
}
