package app

import (
	"context"
	"time"

	"github.com/rabogan/esl-lesson-system/internal/repository"
	"go.uber.org/zap"
)

// Sweeper periodically deletes unbooked slots that ended more than
// retention ago. It only ever touches booked = false rows, so it can run
// alongside booking traffic without coordination.
type Sweeper struct {
	slotRepo  *repository.SlotRepository
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
}

func NewSweeper(slotRepo *repository.SlotRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		slotRepo:  slotRepo,
		interval:  interval,
		retention: 24 * time.Hour,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting expired slot sweeper", zap.Duration("interval", s.interval))

	go s.run(ctx)
}

// Stop ends the sweep loop.
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping expired slot sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// First sweep right away, then on the ticker.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)

	deleted, err := s.slotRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to sweep expired slots", zap.Error(err))
		return
	}

	if deleted > 0 {
		s.logger.Info("Swept expired slots",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
