package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupulse/edupulse-api/pkg/jobs"
)

// Task kinds handled by the refresh queue.
const (
	refreshPredictions = "refresh_predictions"
	refreshIntegrity   = "refresh_integrity"
)

// RefreshService keeps the default analytics window warm by re-running both
// pipelines in the background at a fixed interval. Interactive requests then
// land on a fresh cache entry instead of paying the pipeline cost.
type RefreshService struct {
	predict   func(ctx context.Context, req PredictionRequest) error
	analyze   func(ctx context.Context, req IntegrityRequest) error
	queue     *jobs.Queue
	logger    *zap.Logger
	interval  time.Duration
	window    int
	ticker    *time.Ticker
	stopped   chan struct{}
	cancelled context.CancelFunc
}

// NewRefreshService wires the refresh worker around the two pipeline services.
func NewRefreshService(predictions *PredictionService, integrity *IntegrityService, interval time.Duration, windowDays int, logger *zap.Logger) *RefreshService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	svc := &RefreshService{
		predict: func(ctx context.Context, req PredictionRequest) error {
			_, _, err := predictions.Predict(ctx, req)
			return err
		},
		analyze: func(ctx context.Context, req IntegrityRequest) error {
			_, _, err := integrity.Analyze(ctx, req)
			return err
		},
		logger:   logger,
		interval: interval,
		window:   windowDays,
		stopped:  make(chan struct{}),
	}
	svc.queue = jobs.NewQueue("analytics-refresh", svc.handle, jobs.Config{
		Workers: 1,
		Logger:  logger,
	})
	return svc
}

// Start launches the queue and the submission ticker. It is a no-op when the
// interval is zero or negative.
func (s *RefreshService) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancelled = cancel
	s.queue.Start(ctx)
	s.ticker = time.NewTicker(s.interval)

	go func() {
		defer close(s.stopped)
		s.submitAll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.ticker.C:
				s.submitAll()
			}
		}
	}()
}

// Stop halts the ticker and drains the queue.
func (s *RefreshService) Stop() {
	if s.cancelled == nil {
		return
	}
	s.cancelled()
	s.ticker.Stop()
	<-s.stopped
	s.queue.Stop()
}

func (s *RefreshService) submitAll() {
	for _, kind := range []string{refreshPredictions, refreshIntegrity} {
		task := jobs.Task{ID: uuid.NewString(), Kind: kind}
		if err := s.queue.Submit(task); err != nil {
			s.logger.Warn("refresh submit failed", zap.String("kind", kind), zap.Error(err))
		}
	}
}

func (s *RefreshService) handle(ctx context.Context, task jobs.Task) error {
	switch task.Kind {
	case refreshPredictions:
		return s.predict(ctx, PredictionRequest{Days: s.window})
	case refreshIntegrity:
		return s.analyze(ctx, IntegrityRequest{Days: s.window})
	default:
		s.logger.Warn("unknown refresh task", zap.String("kind", task.Kind))
		return nil
	}
}
