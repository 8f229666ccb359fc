package domain

import (
	"fmt"
	"math"
	"sort"
)

// AgentID identifies an agent within a single simulation run.
type AgentID int

// Agent holds a belief in [0,1], a cohort label fixed at creation, its
// network neighbours and, for the chamber model, trust toward other agents.
type Agent struct {
	id            AgentID
	belief        float64
	initialBelief float64
	group         Group
	connections   map[AgentID]struct{}
	trust         map[AgentID]float64
}

// NewAgent creates an agent. The group is derived from initialBelief once
// and never recomputed.
func NewAgent(id AgentID, initialBelief float64) (*Agent, error) {
	if math.IsNaN(initialBelief) || initialBelief < 0 || initialBelief > 1 {
		return nil, fmt.Errorf("%w: agent %d has initial belief %v", ErrInvalidBelief, id, initialBelief)
	}
	return &Agent{
		id:            id,
		belief:        initialBelief,
		initialBelief: initialBelief,
		group:         GroupFor(initialBelief),
		connections:   make(map[AgentID]struct{}),
		trust:         make(map[AgentID]float64),
	}, nil
}

func (a *Agent) ID() AgentID { return a.id }

func (a *Agent) Belief() float64 { return a.belief }

func (a *Agent) InitialBelief() float64 { return a.initialBelief }

func (a *Agent) Group() Group { return a.group }

// UpdateBelief stores b clamped into [0,1].
func (a *Agent) UpdateBelief(b float64) {
	a.belief = ClampBelief(b)
}

// AddConnection records an undirected neighbour. Adding an existing
// neighbour is a no-op.
func (a *Agent) AddConnection(other AgentID) error {
	if other == a.id {
		return fmt.Errorf("%w: agent %d", ErrSelfConnection, a.id)
	}
	a.connections[other] = struct{}{}
	return nil
}

func (a *Agent) HasConnection(other AgentID) bool {
	_, ok := a.connections[other]
	return ok
}

func (a *Agent) Degree() int { return len(a.connections) }

// Connections returns the neighbour IDs in ascending order.
func (a *Agent) Connections() []AgentID {
	ids := make([]AgentID, 0, len(a.connections))
	for id := range a.connections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetTrustScores replaces the trust map with a copy of scores.
func (a *Agent) SetTrustScores(scores map[AgentID]float64) {
	trust := make(map[AgentID]float64, len(scores))
	for id, v := range scores {
		trust[id] = v
	}
	a.trust = trust
}

// TrustScore returns the stored trust toward other, or defaultTrust when
// none is recorded.
func (a *Agent) TrustScore(other AgentID, defaultTrust float64) float64 {
	if v, ok := a.trust[other]; ok {
		return v
	}
	return defaultTrust
}

// TrustScores returns a copy of the trust map.
func (a *Agent) TrustScores() map[AgentID]float64 {
	out := make(map[AgentID]float64, len(a.trust))
	for id, v := range a.trust {
		out[id] = v
	}
	return out
}

// AverageTrust is the mean trust this agent gives to others. The second
// return value is false when no trust scores are set.
func (a *Agent) AverageTrust() (float64, bool) {
	if len(a.trust) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range a.trust {
		sum += v
	}
	return sum / float64(len(a.trust)), true
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent(id=%d, group=%s, belief=%.2f, connections=%d)", a.id, a.group, a.belief, len(a.connections))
}

// ClampBelief bounds b to [0,1]. NaN maps to 0.
func ClampBelief(b float64) float64 {
	switch {
	case math.IsNaN(b), b < 0:
		return 0
	case b > 1:
		return 1
	default:
		return b
	}
}
