package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/echosim/internal/domain"
	"github.com/Harshitk-cp/echosim/internal/session"
	"github.com/Harshitk-cp/echosim/internal/simulation"
	"github.com/Harshitk-cp/echosim/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("simulation not found")
	ErrSessionLimit    = errors.New("too many simulations")
	ErrTooManyAgents   = errors.New("num_agents exceeds server limit")
	ErrInvalidSteps    = errors.New("steps out of range")
)

// SessionStore holds live sessions.
type SessionStore interface {
	Create(ctx context.Context, s *session.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) (*session.Session, error)
	List(ctx context.Context) ([]*session.Session, error)
	Count(ctx context.Context) (int, error)
	DeleteIdle(ctx context.Context, cutoff time.Time) ([]*session.Session, error)
}

// Limits bounds what a single server will run.
type Limits struct {
	MaxSessions     int
	MaxAgents       int
	MaxStepsPerCall int
	MaxHistory      int
}

func DefaultLimits() Limits {
	return Limits{
		MaxSessions:     100,
		MaxAgents:       1000,
		MaxStepsPerCall: 1000,
		MaxHistory:      session.DefaultMaxHistory,
	}
}

type SimulationService struct {
	store  SessionStore
	limits Limits
	logger *zap.Logger
}

func NewSimulationService(s SessionStore, limits Limits, logger *zap.Logger) *SimulationService {
	return &SimulationService{store: s, limits: limits, logger: logger}
}

// Create builds and registers a new run. A positive stepDelay also starts
// its runner.
func (s *SimulationService) Create(ctx context.Context, params domain.Params, stepDelay time.Duration) (*session.Session, error) {
	if s.limits.MaxAgents > 0 && params.NumAgents > s.limits.MaxAgents {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyAgents, params.NumAgents, s.limits.MaxAgents)
	}
	if s.limits.MaxSessions > 0 {
		n, err := s.store.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n >= s.limits.MaxSessions {
			return nil, ErrSessionLimit
		}
	}

	sess, err := session.New(params, s.logger)
	if err != nil {
		return nil, err
	}
	if s.limits.MaxHistory > 0 {
		sess.SetMaxHistory(s.limits.MaxHistory)
	}

	if err := s.store.Create(ctx, sess); err != nil {
		sess.Close()
		return nil, err
	}

	s.logger.Info("simulation created",
		zap.String("session_id", sess.ID.String()),
		zap.String("model_type", string(params.ModelType)),
		zap.Int("agents", params.NumAgents),
		zap.Strings("warnings", sess.Warnings()))

	if stepDelay > 0 {
		if err := sess.Start(stepDelay); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (s *SimulationService) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *SimulationService) List(ctx context.Context) ([]*session.Session, error) {
	return s.store.List(ctx)
}

// Delete stops and discards a run.
func (s *SimulationService) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	sess.Close()
	s.logger.Info("simulation deleted", zap.String("session_id", id.String()))
	return nil
}

func (s *SimulationService) Step(ctx context.Context, id uuid.UUID, steps int) ([]simulation.StepResult, error) {
	if steps < 1 || (s.limits.MaxStepsPerCall > 0 && steps > s.limits.MaxStepsPerCall) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSteps, steps)
	}
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	results, err := sess.Step(steps)
	if err != nil {
		s.logger.Error("simulation step failed",
			zap.String("session_id", id.String()),
			zap.Int("completed", len(results)),
			zap.Error(err))
	}
	return results, err
}

func (s *SimulationService) Reset(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SimulationService) Start(ctx context.Context, id uuid.UUID, stepDelay time.Duration) (*session.Session, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stepDelay <= 0 {
		stepDelay = session.DefaultStepDelay
	}
	if err := sess.Start(stepDelay); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SimulationService) Pause(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Pause()
	return sess, nil
}

func (s *SimulationService) Metrics(ctx context.Context, id uuid.UUID) (domain.Metrics, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Metrics{}, err
	}
	return sess.Metrics(), nil
}

func (s *SimulationService) History(ctx context.Context, id uuid.UUID) ([]domain.Metrics, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

func (s *SimulationService) State(ctx context.Context, id uuid.UUID) (session.Snapshot, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// CloseAll stops every runner. Used on shutdown.
func (s *SimulationService) CloseAll(ctx context.Context) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list simulations for shutdown", zap.Error(err))
		return
	}
	for _, sess := range sessions {
		sess.Close()
	}
}
