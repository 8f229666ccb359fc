// Package network builds the undirected contact graph agents exchange
// messages over. Edge probabilities depend only on the endpoints' cohort
// labels.
package network

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Harshitk-cp/echosim/internal/domain"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat/distuv"
)

// Edge is an undirected edge with From < To.
type Edge struct {
	From domain.AgentID `json:"from"`
	To   domain.AgentID `json:"to"`
}

// Graph is a read-only view over the built network. Edges are fixed once
// Build returns.
type Graph struct {
	g *simple.UndirectedGraph
}

// Build adds every agent as a node and draws one Bernoulli trial per
// unordered pair: pIntra when both agents share a group, pInter otherwise.
// The pair loop is O(n²).
func Build(agents []*domain.Agent, pIntra, pInter float64, rng *rand.Rand) (*Graph, error) {
	if err := checkProbability("p_intra", pIntra); err != nil {
		return nil, err
	}
	if err := checkProbability("p_inter", pInter); err != nil {
		return nil, err
	}

	g := simple.NewUndirectedGraph()
	for _, a := range agents {
		if g.Node(int64(a.ID())) != nil {
			return nil, fmt.Errorf("duplicate agent id %d", a.ID())
		}
		g.AddNode(simple.Node(a.ID()))
	}

	intra := distuv.Bernoulli{P: pIntra, Src: rng}
	inter := distuv.Bernoulli{P: pInter, Src: rng}

	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			a, b := agents[i], agents[j]
			trial := inter
			if a.Group() == b.Group() {
				trial = intra
			}
			if trial.Rand() == 1 {
				g.SetEdge(g.NewEdge(simple.Node(a.ID()), simple.Node(b.ID())))
			}
		}
	}

	return &Graph{g: g}, nil
}

func checkProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %s must be within [0, 1], got %v", domain.ErrInvalidParams, name, p)
	}
	return nil
}

// Nodes returns every agent ID in the graph in ascending order, including
// isolated ones.
func (n *Graph) Nodes() []domain.AgentID {
	return sortedIDs(n.g.Nodes())
}

func (n *Graph) NodeCount() int {
	return n.g.Nodes().Len()
}

// Neighbors returns the IDs adjacent to id in ascending order. Unknown IDs
// have no neighbours.
func (n *Graph) Neighbors(id domain.AgentID) []domain.AgentID {
	if n.g.Node(int64(id)) == nil {
		return nil
	}
	return sortedIDs(n.g.From(int64(id)))
}

func (n *Graph) Degree(id domain.AgentID) int {
	if n.g.Node(int64(id)) == nil {
		return 0
	}
	return n.g.From(int64(id)).Len()
}

func (n *Graph) HasEdge(a, b domain.AgentID) bool {
	return n.g.HasEdgeBetween(int64(a), int64(b))
}

// Edges returns every edge once, ordered by (From, To).
func (n *Graph) Edges() []Edge {
	var edges []Edge
	it := n.g.Edges()
	for it.Next() {
		e := it.Edge()
		from, to := domain.AgentID(e.From().ID()), domain.AgentID(e.To().ID())
		if from > to {
			from, to = to, from
		}
		edges = append(edges, Edge{From: from, To: to})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

func (n *Graph) EdgeCount() int {
	return n.g.Edges().Len()
}

func sortedIDs(it graph.Nodes) []domain.AgentID {
	ids := make([]domain.AgentID, 0, it.Len())
	for it.Next() {
		ids = append(ids, domain.AgentID(it.Node().ID()))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
