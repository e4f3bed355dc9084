package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/courtside/field-booking/internal/repository"
	"github.com/courtside/field-booking/internal/service"
	"github.com/courtside/field-booking/pkg/logger"
)

// StaleBookingWorkerConfig contains configuration for the stale booking
// worker
type StaleBookingWorkerConfig struct {
	// SweepInterval is the interval between sweeps
	SweepInterval time.Duration
	// GraceWindow is how long a booking may stay pending before it is
	// cancelled
	GraceWindow time.Duration
}

// DefaultStaleBookingWorkerConfig returns default configuration
func DefaultStaleBookingWorkerConfig() *StaleBookingWorkerConfig {
	return &StaleBookingWorkerConfig{
		SweepInterval: 1 * time.Minute,
		GraceWindow:   2 * time.Minute,
	}
}

// StaleBookingWorker periodically cancels bookings that stayed pending past
// the grace window, freeing their slots
type StaleBookingWorker struct {
	bookingRepo    repository.BookingRepository
	eventPublisher service.EventPublisher
	clock          service.Clock
	config         *StaleBookingWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	// Stats
	totalRuns      int64
	totalCancelled int64
	totalErrors    int64
	lastSweepTime  time.Time
	lastSweepCount int
}

// NewStaleBookingWorker creates a new stale booking worker
func NewStaleBookingWorker(
	bookingRepo repository.BookingRepository,
	eventPublisher service.EventPublisher,
	clock service.Clock,
	config *StaleBookingWorkerConfig,
) *StaleBookingWorker {
	if config == nil {
		config = DefaultStaleBookingWorkerConfig()
	}
	if eventPublisher == nil {
		eventPublisher = service.NewNoOpEventPublisher()
	}
	if clock == nil {
		clock = service.NewClock()
	}

	return &StaleBookingWorker{
		bookingRepo:    bookingRepo,
		eventPublisher: eventPublisher,
		clock:          clock,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the stale booking worker
func (w *StaleBookingWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("stale booking worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting stale booking worker")

	w.wg.Add(1)
	go w.sweepLoop(ctx)

	return nil
}

// Stop stops the stale booking worker and waits for the sweep loop to drain
func (w *StaleBookingWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping stale booking worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Stale booking worker stopped")
}

// sweepLoop runs sweeps on the configured interval
func (w *StaleBookingWorker) sweepLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep cancels every booking pending since before the grace window. Errors
// are logged and absorbed so one bad tick never stops the loop.
func (w *StaleBookingWorker) Sweep(ctx context.Context) {
	now := w.clock.Now()
	cutoff := now.Add(-w.config.GraceWindow)

	cancelled, err := w.bookingRepo.CancelStalePending(ctx, cutoff, now)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to sweep stale bookings: %v", err))
		w.mu.Lock()
		w.totalRuns++
		w.totalErrors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.totalRuns++
	w.lastSweepTime = now
	w.lastSweepCount = len(cancelled)
	w.totalCancelled += int64(len(cancelled))
	w.mu.Unlock()

	if len(cancelled) == 0 {
		return
	}

	w.log.Info(fmt.Sprintf("Cancelled %d stale pending bookings", len(cancelled)))

	for _, booking := range cancelled {
		if err := w.eventPublisher.PublishBookingExpired(ctx, booking); err != nil {
			w.log.Warn(fmt.Sprintf("Failed to publish booking expired event for %s: %v", booking.ID, err))
		}
	}
}

// GetStats returns worker statistics
func (w *StaleBookingWorker) GetStats() *StaleBookingWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &StaleBookingWorkerStats{
		IsRunning:      w.running,
		TotalRuns:      w.totalRuns,
		TotalCancelled: w.totalCancelled,
		TotalErrors:    w.totalErrors,
		LastSweepTime:  w.lastSweepTime,
		LastSweepCount: w.lastSweepCount,
	}
}

// StaleBookingWorkerStats contains worker statistics
type StaleBookingWorkerStats struct {
	IsRunning      bool      `json:"is_running"`
	TotalRuns      int64     `json:"total_runs"`
	TotalCancelled int64     `json:"total_cancelled"`
	TotalErrors    int64     `json:"total_errors"`
	LastSweepTime  time.Time `json:"last_sweep_time"`
	LastSweepCount int       `json:"last_sweep_count"`
}
