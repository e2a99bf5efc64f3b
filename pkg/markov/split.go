package markov

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrSplitRange is returned when a split is asked to move no visits, or all
// of them.
var ErrSplitRange = errors.New("split size out of range")

// split moves exactly desired visits from n into a new node and returns it.
// Every edge count is divided proportionally with floor division. The units
// lost to truncation are handed to the new node in ascending symbol order
// until it holds exactly desired visits, the rest go back to n. The new node
// keeps n's edge targets.
func (n *Node) split(desired int) (Node, error) {
	if desired <= 0 || desired >= n.Visits {
		return Node{}, fmt.Errorf("%w: %d of %d visits", ErrSplitRange, desired, n.Visits)
	}

	total := n.Visits
	fresh := Node{Visits: desired, Edges: n.Edges}
	var residue [Alphabet]int
	assigned := 0

	for i := range n.Edges {
		old := n.Edges[i].Count
		share := mulDiv(old, desired, total)
		kept := mulDiv(old, total-desired, total)
		rounding := old - kept - share
		if rounding < 0 || rounding > 1 {
			panic(fmt.Sprintf("markov: split rounding error %d on symbol %d (count %d, moving %d of %d)",
				rounding, i, old, desired, total))
		}
		residue[i] = rounding
		fresh.Edges[i].Count = share
		n.Edges[i].Count = kept
		assigned += share
	}

	i := 0
	for ; assigned < desired; i++ {
		if i == Alphabet {
			panic(fmt.Sprintf("markov: split left %d visits unassigned", desired-assigned))
		}
		fresh.Edges[i].Count += residue[i]
		assigned += residue[i]
	}
	for ; i < Alphabet; i++ {
		n.Edges[i].Count += residue[i]
	}

	n.Visits -= desired
	return fresh, nil
}

// mulDiv returns floor(a*b/c) without overflowing the intermediate product.
// It requires 0 <= a <= c and 0 <= b <= c.
func mulDiv(a, b, c int) int {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	return int(q)
}
