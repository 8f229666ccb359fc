// Package session wraps a simulation in a handle that is safe to share
// between HTTP handlers and a background runner. Each handle owns exactly
// one run; Reset swaps in a freshly built one.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Harshitk-cp/echosim/internal/domain"
	"github.com/Harshitk-cp/echosim/internal/network"
	"github.com/Harshitk-cp/echosim/internal/simulation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MinStepDelay bounds how fast the runner may tick.
	MinStepDelay = 10 * time.Millisecond
	// DefaultStepDelay matches the dashboard default of 0.1s.
	DefaultStepDelay = 100 * time.Millisecond
	// DefaultMaxHistory caps the retained metrics points.
	DefaultMaxHistory = 10000
)

var (
	ErrClosed       = errors.New("session closed")
	ErrInvalidSteps = errors.New("steps must be at least 1")
)

// Session is one caller-owned simulation run plus its metrics history and
// run state.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	sim        *simulation.Simulation
	params     domain.Params
	history    []domain.Metrics
	maxHistory int
	lastAccess time.Time
	logger     *zap.Logger
	closed     bool

	runner *runner
}

// New builds the simulation for params and records its initial metrics.
func New(params domain.Params, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	logger = logger.With(zap.String("session_id", id.String()))

	sim, err := simulation.New(params, simulation.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		sim:        sim,
		params:     params,
		maxHistory: DefaultMaxHistory,
		lastAccess: now,
		logger:     logger,
	}
	s.history = []domain.Metrics{sim.Summarize()}
	return s, nil
}

// SetMaxHistory changes the history cap. Values below 1 are ignored.
func (s *Session) SetMaxHistory(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxHistory = n
	s.trimHistory()
}

// Step advances up to n steps and returns the result of each completed
// one. It stops at the first failing step and returns its error.
func (s *Session) Step(n int) ([]simulation.StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked(n)
}

func (s *Session) stepLocked(n int) ([]simulation.StepResult, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSteps, n)
	}
	s.lastAccess = time.Now()

	results := make([]simulation.StepResult, 0, n)
	for i := 0; i < n; i++ {
		res, err := s.sim.Advance()
		if err != nil {
			return results, fmt.Errorf("advance: %w", err)
		}
		results = append(results, res)
		s.record(s.sim.Summarize())
	}
	return results, nil
}

func (s *Session) record(m domain.Metrics) {
	if len(s.history) > 0 && s.history[len(s.history)-1].TimeStep == m.TimeStep {
		return
	}
	s.history = append(s.history, m)
	s.trimHistory()
}

func (s *Session) trimHistory() {
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// Reset discards the current run and builds a new one from the same
// params. An unseeded run gets a new seed. The runner is paused.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	r := s.runner
	s.runner = nil

	sim, err := simulation.New(s.params, simulation.WithLogger(s.logger))
	if err == nil {
		s.sim = sim
		s.history = []domain.Metrics{sim.Summarize()}
		s.lastAccess = time.Now()
	}
	s.mu.Unlock()

	s.stopRunner(r)
	if err != nil {
		return err
	}
	s.logger.Info("session reset", zap.Uint64("seed", sim.Seed()))
	return nil
}

// Metrics recomputes the summary of the current run.
func (s *Session) Metrics() domain.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	return s.sim.Summarize()
}

// History returns a copy of the recorded metrics, oldest first.
func (s *Session) History() []domain.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	out := make([]domain.Metrics, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Params() domain.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Warnings()
}

// Seed reports the seed of the current run. An unseeded session gets a
// fresh one on every Reset.
func (s *Session) Seed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Seed()
}

func (s *Session) TimeStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.TimeStep()
}

// LastAccess reports when the session was last stepped or read.
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// AgentView is a detached copy of one agent for rendering.
type AgentView struct {
	ID           domain.AgentID   `json:"id"`
	Group        domain.Group     `json:"group"`
	Symbol       string           `json:"symbol"`
	Belief       float64          `json:"belief"`
	Connections  []domain.AgentID `json:"connections"`
	AverageTrust *float64         `json:"average_trust,omitempty"`
}

// Snapshot is a detached copy of a run. Unlike simulation.State it is not
// affected by later steps.
type Snapshot struct {
	TimeStep  int              `json:"time_step"`
	ModelType domain.ModelType `json:"model_type"`
	Seed      uint64           `json:"seed"`
	Agents    []AgentView      `json:"agents"`
	Edges     []network.Edge   `json:"edges"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()

	st := s.sim.State()
	snap := Snapshot{
		TimeStep:  st.TimeStep,
		ModelType: st.ModelType,
		Seed:      st.Seed,
		Agents:    make([]AgentView, len(st.Agents)),
		Edges:     st.Network.Edges(),
	}
	for i, a := range st.Agents {
		v := AgentView{
			ID:          a.ID(),
			Group:       a.Group(),
			Symbol:      a.Group().Symbol(),
			Belief:      a.Belief(),
			Connections: a.Connections(),
		}
		if st.ModelType == domain.ModelChamber {
			if avg, ok := a.AverageTrust(); ok {
				v.AverageTrust = &avg
			}
		}
		snap.Agents[i] = v
	}
	if snap.Edges == nil {
		snap.Edges = []network.Edge{}
	}
	return snap
}

// Close stops the runner and rejects further steps.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	r := s.runner
	s.runner = nil
	s.mu.Unlock()

	s.stopRunner(r)
}
