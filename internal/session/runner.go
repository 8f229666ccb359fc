package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type runner struct {
	delay  time.Duration
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Start advances the run one step every delay in a background goroutine
// until Pause, Reset, Close, or a step error. Delays below MinStepDelay are
// raised to it. Starting a running session is a no-op.
func (s *Session) Start(delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.runner != nil {
		return nil
	}
	if delay < MinStepDelay {
		delay = MinStepDelay
	}

	r := &runner{delay: delay, stopCh: make(chan struct{})}
	s.runner = r
	r.wg.Add(1)
	go s.run(r)

	s.logger.Info("session runner started", zap.Duration("step_delay", delay))
	return nil
}

func (s *Session) run(r *runner) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.delay)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			// Detached by Pause or Reset while waiting for the lock.
			if s.runner != r {
				s.mu.Unlock()
				return
			}
			_, err := s.stepLocked(1)
			if err != nil {
				s.runner = nil
				s.mu.Unlock()
				s.logger.Error("session runner stopped", zap.Error(err))
				return
			}
			s.mu.Unlock()
		case <-r.stopCh:
			return
		}
	}
}

// Pause stops the runner and waits for an in-flight step to finish.
func (s *Session) Pause() {
	s.mu.Lock()
	r := s.runner
	s.runner = nil
	s.mu.Unlock()

	s.stopRunner(r)
}

// stopRunner waits for a runner already detached from s to exit.
func (s *Session) stopRunner(r *runner) {
	if r == nil {
		return
	}
	close(r.stopCh)
	r.wg.Wait()
	s.logger.Info("session runner paused")
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner != nil
}

// StepDelay returns the runner's interval, or zero when paused.
func (s *Session) StepDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runner == nil {
		return 0
	}
	return s.runner.delay
}
