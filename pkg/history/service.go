package history

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service hosts the capture loop with a Start/Stop lifecycle. It is the
// in-process replacement for running the capture script under a service
// manager.
type Service struct {
	capture *Capture
	logger  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService wraps a capture loop.
func NewService(capture *Capture, logger *zap.Logger) *Service {
	return &Service{
		capture: capture,
		logger:  logger,
	}
}

// Start launches the capture loop in the background. Calling Start on a
// running service is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	runID := uuid.New().String()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.logger.Info("starting query history capture",
		zap.String("run_id", runID),
		zap.Duration("interval", s.capture.interval),
		zap.Int("top_queries", s.capture.top),
		zap.String("log_path", s.capture.logPath))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.capture.Run(runCtx)
		s.logger.Info("query history capture stopped", zap.String("run_id", runID))
	}()
}

// Stop cancels the capture loop and blocks until it has exited.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}
