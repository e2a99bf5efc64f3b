package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Root is the id of the node every graph starts with.
const Root = 0

var (
	// ErrInvalidSymbol is returned when a symbol lies outside the alphabet.
	ErrInvalidSymbol = errors.New("symbol outside alphabet")
	// ErrInvalidCursor is returned when a cursor does not name a node.
	ErrInvalidCursor = errors.New("cursor does not name a node")
)

// Edge is a single out-edge of a node: the node reached by a symbol and how
// many times that transition has been taken.
type Edge struct {
	Target int
	Count  int
}

// Node is a context in the graph. Visits always equals the sum of the edge
// counts, except while the node is being split.
type Node struct {
	Visits int
	Edges  [Alphabet]Edge
}

// edgeSum returns the sum of all edge counts of n.
func (n *Node) edgeSum() int {
	var sum int
	for i := range n.Edges {
		sum += n.Edges[i].Count
	}
	return sum
}

// Graph is an append-only store of context nodes. Node ids are indices into
// the store and stay valid for the lifetime of the graph.
//
// A Graph is not safe for concurrent use. Ingestion and sampling must be
// serialized by the caller.
type Graph struct {
	config         Config
	nodes          []Node
	cursor         int
	ingested       int64
	splits         int64
	normalizations int64
	logger         *slog.Logger
}

// NewGraph creates a graph holding only the root node. The root starts with
// zero visits and every edge pointing back at itself.
func NewGraph(config Config) (*Graph, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Graph{
		config: config,
		nodes:  []Node{{}},
		cursor: Root,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the Graph. By default, all logs are discarded.
func (g *Graph) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Config returns the configuration the graph was built with.
func (g *Graph) Config() Config {
	return g.config
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	if id < 0 || id >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Cursor returns the ingestion cursor used by Feed and Train.
func (g *Graph) Cursor() int {
	return g.cursor
}

// ResetCursor moves the ingestion cursor back to the root.
func (g *Graph) ResetCursor() {
	g.cursor = Root
}

// Feed ingests a symbol at the graph's own cursor and advances it.
func (g *Graph) Feed(s Symbol) error {
	next, err := g.Ingest(s, g.cursor)
	if err != nil {
		return err
	}
	g.cursor = next
	return nil
}

// Ingest records the transition s taken from the node at cursor and returns
// the node the transition leads to. If the transition is well observed and its
// target still holds enough unrelated visits, the target is split first and
// the transition is redirected to the new node.
func (g *Graph) Ingest(s Symbol, cursor int) (int, error) {
	if !s.Valid() {
		return cursor, fmt.Errorf("%w: %d", ErrInvalidSymbol, s)
	}
	if cursor < 0 || cursor >= len(g.nodes) {
		return cursor, fmt.Errorf("%w: %d", ErrInvalidCursor, cursor)
	}

	g.nodes[cursor].Visits++
	g.nodes[cursor].Edges[s].Count++
	g.ingested++

	next, err := g.advance(s, cursor)
	if err != nil {
		return cursor, err
	}

	if g.config.NormalizeThreshold > 0 && int64(g.nodes[cursor].Visits) > g.config.NormalizeThreshold {
		g.Normalize()
	}
	return next, nil
}

// advance picks the next cursor after the counts for s have been recorded.
func (g *Graph) advance(s Symbol, cursor int) (int, error) {
	if g.config.ReturnToRoot && s == SeparatorSymbol {
		return Root, nil
	}

	edge := g.nodes[cursor].Edges[s]
	targetVisits := g.nodes[edge.Target].Visits

	// The +1 matters when the edge loops back to cursor: targetVisits then
	// already includes the traversal just recorded. A target holding fewer
	// visits than the edge count gives a negative remainder and no split.
	if edge.Count <= g.config.MinVisits || targetVisits+1-edge.Count <= g.config.MinRemaining {
		return edge.Target, nil
	}

	id, err := g.split(edge.Target, edge.Count-1)
	if err != nil {
		return cursor, err
	}
	g.nodes[cursor].Edges[s].Target = id

	g.logger.Debug("Node split",
		slog.Int("source", cursor),
		slog.String("symbol", s.String()),
		slog.Int("target", edge.Target),
		slog.Int("new_node", id),
		slog.Int("moved_visits", edge.Count-1),
	)
	return id, nil
}

// split divides desired visits off the node with the given id into a new node
// appended to the graph, and returns the new node's id.
func (g *Graph) split(id, desired int) (int, error) {
	node := &g.nodes[id]
	if sum := node.edgeSum(); sum != node.Visits {
		return 0, &InvariantError{Node: id, Visits: node.Visits, EdgeSum: sum, Target: -1}
	}
	fresh, err := node.split(desired)
	if err != nil {
		return 0, fmt.Errorf("splitting node %d: %w", id, err)
	}
	g.nodes = append(g.nodes, fresh)
	g.splits++
	return len(g.nodes) - 1, nil
}
