// Package simulation runs belief propagation over an agent network under
// either the epistemic-bubble or the echo-chamber model.
//
// A Simulation is not safe for concurrent use. Advance mutates agent
// beliefs in place, and State hands out live references to the same
// agents, so callers that read from another goroutine must serialise with
// Advance themselves. Separate Simulation values share nothing.
package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/Harshitk-cp/echosim/internal/domain"
	"github.com/Harshitk-cp/echosim/internal/network"
	"github.com/Harshitk-cp/echosim/internal/policy"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"
)

// pcgStream is the fixed second word of the PCG state; the seed alone
// selects the run.
const pcgStream = 0x9e3779b97f4a7c15

type Option func(*Simulation)

// WithRand supplies the random source. The seed in params is then only
// reported, not used, and an unseeded run reports 0.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets the logger used for setup warnings and step traces.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// Simulation owns one run: its agents, the network, the message policy
// bound at setup, and the step counter.
type Simulation struct {
	params    domain.Params
	agents    []*domain.Agent
	neighbors [][]domain.AgentID
	graph     *network.Graph
	policy    policy.Policy
	timeStep  int
	seed      uint64
	rng       *rand.Rand
	warnings  []string
	logger    *zap.Logger
}

// StepResult counts what happened during one Advance.
type StepResult struct {
	TimeStep int `json:"time_step"`
	// Attempts is the number of agents whose interaction trial succeeded.
	Attempts int `json:"attempts"`
	// Delivered excludes attempts by agents without neighbours.
	Delivered int `json:"delivered"`
	// Accepted is the number of deliveries that updated a belief.
	Accepted int `json:"accepted"`
}

// State is a view of a run for rendering. Agents and Network are live.
type State struct {
	Agents    []*domain.Agent
	Network   *network.Graph
	TimeStep  int
	ModelType domain.ModelType
	Seed      uint64
}

// New validates params and builds a run. Nothing is built if validation
// fails. Unknown distribution or trust-setup names are replaced by their
// defaults and reported through Warnings.
func New(params domain.Params, opts ...Option) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		params: params,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if params.Seed != nil {
		s.seed = *params.Seed
	} else if s.rng == nil {
		s.seed = rand.Uint64()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(s.seed, pcgStream))
	}

	if err := s.setup(); err != nil {
		return nil, err
	}

	s.logger.Info("simulation initialized",
		zap.String("model_type", string(params.ModelType)),
		zap.Int("agents", len(s.agents)),
		zap.Int("edges", s.graph.EdgeCount()),
		zap.Uint64("seed", s.seed))

	return s, nil
}

func (s *Simulation) setup() error {
	dist, warn := domain.ResolveDistribution(s.params.InitialBeliefDistribution)
	s.warn(warn)

	s.agents = make([]*domain.Agent, s.params.NumAgents)
	for i := range s.agents {
		a, err := domain.NewAgent(domain.AgentID(i), s.initialBelief(dist))
		if err != nil {
			return err
		}
		s.agents[i] = a
	}

	g, err := network.Build(s.agents, s.params.ConnectionProbabilityIntra, s.params.ConnectionProbabilityInter, s.rng)
	if err != nil {
		return err
	}
	s.graph = g

	s.neighbors = make([][]domain.AgentID, len(s.agents))
	for i, a := range s.agents {
		for _, other := range g.Neighbors(a.ID()) {
			if err := a.AddConnection(other); err != nil {
				return err
			}
		}
		s.neighbors[i] = a.Connections()
	}

	if s.params.ModelType == domain.ModelChamber {
		setup, warn := domain.ResolveTrustSetup(s.params.InitialTrustSetup)
		s.warn(warn)
		for _, a := range s.agents {
			a.SetTrustScores(s.initialTrust(a, setup))
		}
	}

	p, err := policy.New(s.params.ModelType, policy.OptionsFrom(s.params))
	if err != nil {
		return err
	}
	s.policy = p
	return nil
}

func (s *Simulation) warn(msg string) {
	if msg == "" {
		return
	}
	s.warnings = append(s.warnings, msg)
	s.logger.Warn("simulation setup fallback", zap.String("warning", msg))
}

func (s *Simulation) initialBelief(dist domain.BeliefDistribution) float64 {
	u := distuv.Uniform{Min: 0, Max: 1, Src: s.rng}
	if dist == domain.DistributionBimodal {
		if s.rng.IntN(2) == 0 {
			u.Min, u.Max = 0, 0.2
		} else {
			u.Min, u.Max = 0.8, 1.0
		}
	}
	return u.Rand()
}

// initialTrust builds a's trust map from initial beliefs only.
func (s *Simulation) initialTrust(a *domain.Agent, setup domain.TrustSetup) map[domain.AgentID]float64 {
	trust := make(map[domain.AgentID]float64, len(s.agents)-1)
	for _, other := range s.agents {
		if other.ID() == a.ID() {
			continue
		}
		v := s.params.InitialHighTrust
		if setup == domain.TrustBeliefBased {
			d := a.InitialBelief() - other.InitialBelief()
			if d < 0 {
				d = -d
			}
			if d >= domain.BeliefSimilarityThreshold {
				v = s.params.DefaultOutsiderTrust
			}
		}
		trust[other.ID()] = v
	}
	return trust
}

// Advance runs one step. Agents act in a fresh random order; each one
// interacts with probability interaction_chance by sending its current
// belief to one random neighbour. Updates apply immediately, so later
// senders in the same step see earlier changes.
//
// A delivery error aborts the rest of the step and leaves the step counter
// unchanged. Beliefs already updated in that step stay updated.
func (s *Simulation) Advance() (StepResult, error) {
	var res StepResult

	order := make([]int, len(s.agents))
	for i := range order {
		order[i] = i
	}
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	interact := distuv.Bernoulli{P: s.params.InteractionChance, Src: s.rng}
	for _, i := range order {
		if interact.Rand() != 1 {
			continue
		}
		res.Attempts++

		neighbors := s.neighbors[i]
		if len(neighbors) == 0 {
			continue
		}
		sender := s.agents[i]
		recipient := s.agents[neighbors[s.rng.IntN(len(neighbors))]]

		accepted, err := s.policy.Deliver(recipient, sender.Belief(), sender)
		if err != nil {
			return res, fmt.Errorf("step %d: deliver %d -> %d: %w", s.timeStep+1, sender.ID(), recipient.ID(), err)
		}
		res.Delivered++
		if accepted {
			res.Accepted++
		}
	}

	s.timeStep++
	res.TimeStep = s.timeStep

	s.logger.Debug("simulation step",
		zap.Int("time_step", res.TimeStep),
		zap.Int("attempts", res.Attempts),
		zap.Int("delivered", res.Delivered),
		zap.Int("accepted", res.Accepted))

	return res, nil
}

// Summarize computes belief statistics for the current population.
func (s *Simulation) Summarize() domain.Metrics {
	return Summarize(s.agents, s.timeStep)
}

// State returns live references to the run. See the package doc for the
// concurrency hazard.
func (s *Simulation) State() State {
	return State{
		Agents:    s.agents,
		Network:   s.graph,
		TimeStep:  s.timeStep,
		ModelType: s.params.ModelType,
		Seed:      s.seed,
	}
}

// Agent returns the agent with id.
func (s *Simulation) Agent(id domain.AgentID) (*domain.Agent, bool) {
	if id < 0 || int(id) >= len(s.agents) {
		return nil, false
	}
	return s.agents[id], true
}

func (s *Simulation) Params() domain.Params { return s.params }

func (s *Simulation) TimeStep() int { return s.timeStep }

func (s *Simulation) Seed() uint64 { return s.seed }

func (s *Simulation) ModelType() domain.ModelType { return s.policy.Model() }

// Warnings lists the setup fallbacks applied to params.
func (s *Simulation) Warnings() []string {
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}
