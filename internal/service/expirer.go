package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultExpirerInterval = 1 * time.Minute
	defaultSessionTTL      = 30 * time.Minute
)

// ExpirerService discards simulations nobody has touched within the TTL.
// Running simulations are never expired.
type ExpirerService struct {
	store  SessionStore
	logger *zap.Logger

	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewExpirerService(s SessionStore, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		store:    s,
		logger:   logger,
		ttl:      defaultSessionTTL,
		interval: defaultExpirerInterval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (s *ExpirerService) SetInterval(d time.Duration) {
	s.interval = d
}

func (s *ExpirerService) SetTTL(d time.Duration) {
	s.ttl = d
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session expirer started",
			zap.Duration("interval", s.interval),
			zap.Duration("ttl", s.ttl))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("session expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (s *ExpirerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// run removes idle sessions and returns how many it closed.
func (s *ExpirerService) run(ctx context.Context) int {
	cutoff := s.now().Add(-s.ttl)
	expired, err := s.store.DeleteIdle(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to delete idle simulations", zap.Error(err))
		return 0
	}

	for _, sess := range expired {
		sess.Close()
		s.logger.Info("expired idle simulation",
			zap.String("session_id", sess.ID.String()),
			zap.Time("last_access", sess.LastAccess()))
	}
	if len(expired) > 0 {
		s.logger.Info("deleted idle simulations", zap.Int("count", len(expired)))
	}
	return len(expired)
}
