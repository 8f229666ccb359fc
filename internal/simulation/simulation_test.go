package simulation

import (
	"testing"

	"github.com/Harshitk-cp/echosim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seeded(p domain.Params, seed uint64) domain.Params {
	p.Seed = &seed
	return p
}

func newTestSim(t *testing.T, p domain.Params) *Simulation {
	t.Helper()
	s, err := New(p, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return s
}

func beliefs(s *Simulation) []float64 {
	out := make([]float64, 0, len(s.State().Agents))
	for _, a := range s.State().Agents {
		out = append(out, a.Belief())
	}
	return out
}

func TestNew_UnknownModelType(t *testing.T) {
	p := domain.DefaultParams()
	p.ModelType = "filter_bubble"

	s, err := New(p)
	assert.ErrorIs(t, err, domain.ErrUnknownModelType)
	assert.Contains(t, err.Error(), "filter_bubble")
	assert.Nil(t, s)
}

func TestNew_InvalidParams(t *testing.T) {
	p := domain.DefaultParams()
	p.ConnectionProbabilityInter = 1.5

	s, err := New(p)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	assert.Nil(t, s)
}

func TestNew_IntraOnlyNetwork(t *testing.T) {
	p := domain.DefaultParams()
	p.NumAgents = 10
	p.ModelType = domain.ModelBubble
	p.InitialBeliefDistribution = domain.DistributionBimodal
	p.ConnectionProbabilityIntra = 1.0
	p.ConnectionProbabilityInter = 0.0

	s := newTestSim(t, seeded(p, 7))
	st := s.State()

	require.Len(t, st.Agents, 10)
	for _, e := range st.Network.Edges() {
		a, _ := s.Agent(e.From)
		b, _ := s.Agent(e.To)
		assert.Equal(t, a.Group(), b.Group(), "edge %v crosses groups", e)
	}

	m := s.Summarize()
	assert.Equal(t, 10, m.GroupA.Count+m.GroupB.Count)

	// Each group is a complete subgraph.
	want := m.GroupA.Count*(m.GroupA.Count-1)/2 + m.GroupB.Count*(m.GroupB.Count-1)/2
	assert.Equal(t, want, st.Network.EdgeCount())
}

func TestNew_BimodalBeliefsInBands(t *testing.T) {
	p := domain.DefaultParams()
	p.NumAgents = 200
	p.InitialBeliefDistribution = domain.DistributionBimodal

	s := newTestSim(t, seeded(p, 11))
	for _, a := range s.State().Agents {
		b := a.Belief()
		assert.True(t, (b >= 0 && b <= 0.2) || (b >= 0.8 && b <= 1.0), "belief %v outside bimodal bands", b)
	}
}

func TestNew_ConnectionsMatchNetwork(t *testing.T) {
	p := domain.DefaultParams()
	p.NumAgents = 40
	s := newTestSim(t, seeded(p, 3))

	st := s.State()
	for _, a := range st.Agents {
		assert.Equal(t, st.Network.Neighbors(a.ID()), nonNil(a.Connections()), "agent %d", a.ID())
	}
}

func nonNil(ids []domain.AgentID) []domain.AgentID {
	if len(ids) == 0 {
		return []domain.AgentID{}
	}
	return ids
}

func TestNew_UnknownDistributionWarns(t *testing.T) {
	p := domain.DefaultParams()
	p.InitialBeliefDistribution = "gaussian"

	s := newTestSim(t, seeded(p, 1))
	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0], "gaussian")
	for _, b := range beliefs(s) {
		assert.GreaterOrEqual(t, b, 0.0)
		assert.LessOrEqual(t, b, 1.0)
	}
}

func TestNew_BubbleHasNoTrust(t *testing.T) {
	p := domain.DefaultParams()
	p.InitialTrustSetup = "nonsense"
	s := newTestSim(t, seeded(p, 1))

	assert.Empty(t, s.Warnings(), "trust setup is ignored outside the chamber model")
	for _, a := range s.State().Agents {
		assert.Empty(t, a.TrustScores())
	}
}

func TestNew_ChamberUniformHighTrust(t *testing.T) {
	p := domain.DefaultParams()
	p.ModelType = domain.ModelChamber
	p.NumAgents = 12
	p.InitialTrustSetup = domain.TrustUniformHigh
	p.InitialHighTrust = 0.85

	s := newTestSim(t, seeded(p, 5))
	for _, a := range s.State().Agents {
		scores := a.TrustScores()
		assert.Len(t, scores, 11)
		_, self := scores[a.ID()]
		assert.False(t, self)
		for _, v := range scores {
			assert.Equal(t, 0.85, v)
		}
	}
}

func TestNew_ChamberUnknownTrustSetupFallsBack(t *testing.T) {
	p := domain.DefaultParams()
	p.ModelType = domain.ModelChamber
	p.NumAgents = 6
	p.InitialTrustSetup = "cliquish"

	s := newTestSim(t, seeded(p, 5))
	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0], "cliquish")
	for _, a := range s.State().Agents {
		for _, v := range a.TrustScores() {
			assert.Equal(t, domain.DefaultHighTrust, v)
		}
	}
}

func TestNew_ChamberBeliefBasedTrust(t *testing.T) {
	p := domain.DefaultParams()
	p.ModelType = domain.ModelChamber
	p.NumAgents = 30
	p.InitialBeliefDistribution = domain.DistributionRandom
	p.InitialTrustSetup = domain.TrustBeliefBased
	p.DefaultOutsiderTrust = 0.05

	s := newTestSim(t, seeded(p, 21))
	agents := s.State().Agents
	for _, a := range agents {
		for _, other := range agents {
			if other.ID() == a.ID() {
				continue
			}
			d := a.InitialBelief() - other.InitialBelief()
			if d < 0 {
				d = -d
			}
			want := p.DefaultOutsiderTrust
			if d < domain.BeliefSimilarityThreshold {
				want = p.InitialHighTrust
			}
			assert.Equal(t, want, a.TrustScore(other.ID(), -1), "trust %d -> %d", a.ID(), other.ID())
		}
	}
}

func TestAdvance_TimeStepIncrementsByOne(t *testing.T) {
	s := newTestSim(t, seeded(domain.DefaultParams(), 2))
	assert.Equal(t, 0, s.TimeStep())

	for i := 1; i <= 5; i++ {
		res, err := s.Advance()
		require.NoError(t, err)
		assert.Equal(t, i, res.TimeStep)
		assert.Equal(t, i, s.TimeStep())
		assert.Equal(t, i, s.State().TimeStep)
	}
}

func TestAdvance_InvariantsHold(t *testing.T) {
	for _, model := range []domain.ModelType{domain.ModelBubble, domain.ModelChamber} {
		t.Run(string(model), func(t *testing.T) {
			p := domain.DefaultParams()
			p.ModelType = model
			p.NumAgents = 60
			p.BeliefUpdateStepSize = 0.5
			p.InteractionChance = 1
			p.ConnectionProbabilityInter = 0.3

			s := newTestSim(t, seeded(p, 99))
			groups := map[domain.AgentID]domain.Group{}
			for _, a := range s.State().Agents {
				groups[a.ID()] = a.Group()
			}

			for i := 0; i < 100; i++ {
				_, err := s.Advance()
				require.NoError(t, err)
				for _, a := range s.State().Agents {
					require.GreaterOrEqual(t, a.Belief(), 0.0)
					require.LessOrEqual(t, a.Belief(), 1.0)
					require.Equal(t, groups[a.ID()], a.Group())
				}
			}
		})
	}
}

func TestAdvance_NoEdgesNoMessages(t *testing.T) {
	p := domain.DefaultParams()
	p.NumAgents = 20
	p.ConnectionProbabilityIntra = 0
	p.ConnectionProbabilityInter = 0
	p.InteractionChance = 1

	s := newTestSim(t, seeded(p, 4))
	before := beliefs(s)

	res, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, 20, res.Attempts)
	assert.Zero(t, res.Delivered)
	assert.Equal(t, before, beliefs(s))
	assert.Equal(t, 1, s.TimeStep())
}

func TestAdvance_ZeroInteractionChance(t *testing.T) {
	p := domain.DefaultParams()
	p.InteractionChance = 0
	p.ConnectionProbabilityInter = 1
	p.ConnectionProbabilityIntra = 1

	s := newTestSim(t, seeded(p, 4))
	before := beliefs(s)

	res, err := s.Advance()
	require.NoError(t, err)
	assert.Zero(t, res.Attempts)
	assert.Equal(t, before, beliefs(s))
}

func TestAdvance_ChamberIgnoresDistrustedSenders(t *testing.T) {
	p := domain.DefaultParams()
	p.ModelType = domain.ModelChamber
	p.NumAgents = 25
	p.ConnectionProbabilityIntra = 1
	p.ConnectionProbabilityInter = 1
	p.InteractionChance = 1
	p.InitialTrustSetup = domain.TrustUniformHigh
	p.InitialHighTrust = 0.2
	p.TrustThreshold = 0.5

	s := newTestSim(t, seeded(p, 8))
	before := beliefs(s)

	for i := 0; i < 10; i++ {
		res, err := s.Advance()
		require.NoError(t, err)
		assert.Equal(t, 25, res.Delivered)
		assert.Zero(t, res.Accepted)
	}
	assert.Equal(t, before, beliefs(s))
}

func TestAdvance_BubbleAcceptsEveryDelivery(t *testing.T) {
	p := domain.DefaultParams()
	p.NumAgents = 25
	p.ConnectionProbabilityIntra = 1
	p.ConnectionProbabilityInter = 1
	p.InteractionChance = 1

	s := newTestSim(t, seeded(p, 8))
	res, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, 25, res.Delivered)
	assert.Equal(t, res.Delivered, res.Accepted)
}

func TestAdvance_SameSeedSameTrajectory(t *testing.T) {
	p := seeded(domain.DefaultParams(), 1234)
	p.ModelType = domain.ModelChamber

	a := newTestSim(t, p)
	b := newTestSim(t, p)
	for i := 0; i < 25; i++ {
		_, err := a.Advance()
		require.NoError(t, err)
		_, err = b.Advance()
		require.NoError(t, err)
	}

	assert.Equal(t, a.State().Network.Edges(), b.State().Network.Edges())
	assert.Equal(t, beliefs(a), beliefs(b))
	assert.Equal(t, a.Summarize(), b.Summarize())
}

func TestNew_UnseededReportsSeed(t *testing.T) {
	s := newTestSim(t, domain.DefaultParams())
	replay := newTestSim(t, seeded(domain.DefaultParams(), s.Seed()))

	assert.Equal(t, s.State().Network.Edges(), replay.State().Network.Edges())
	assert.Equal(t, beliefs(s), beliefs(replay))
}

func TestStateAndSummarize_Idempotent(t *testing.T) {
	s := newTestSim(t, seeded(domain.DefaultParams(), 17))
	_, err := s.Advance()
	require.NoError(t, err)

	m1, m2 := s.Summarize(), s.Summarize()
	assert.Equal(t, m1, m2)

	st1, st2 := s.State(), s.State()
	assert.Equal(t, st1.TimeStep, st2.TimeStep)
	assert.Equal(t, st1.ModelType, st2.ModelType)
	assert.Same(t, st1.Network, st2.Network)
	assert.Equal(t, st1.Agents, st2.Agents)
}

func TestAgentLookup(t *testing.T) {
	p := domain.DefaultParams()
	p.NumAgents = 3
	s := newTestSim(t, seeded(p, 1))

	a, ok := s.Agent(2)
	require.True(t, ok)
	assert.Equal(t, domain.AgentID(2), a.ID())

	_, ok = s.Agent(3)
	assert.False(t, ok)
	_, ok = s.Agent(-1)
	assert.False(t, ok)
}
