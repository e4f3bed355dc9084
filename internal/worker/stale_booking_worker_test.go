package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/repository"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type expiredRecorder struct {
	mu      sync.Mutex
	expired []string
}

func (r *expiredRecorder) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	return nil
}

func (r *expiredRecorder) PublishBookingCancelled(ctx context.Context, b *domain.Booking) error {
	return nil
}

func (r *expiredRecorder) PublishBookingCompleted(ctx context.Context, b *domain.Booking) error {
	return nil
}

func (r *expiredRecorder) PublishBookingExpired(ctx context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired = append(r.expired, b.ID)
	return nil
}

func (r *expiredRecorder) Close() error { return nil }

func (r *expiredRecorder) Expired() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.expired))
	copy(out, r.expired)
	return out
}

func addBooking(t *testing.T, repo *repository.MemoryBookingRepository, status domain.BookingStatus, createdAt time.Time) *domain.Booking {
	t.Helper()
	booking := &domain.Booking{
		ID:          uuid.New().String(),
		UserID:      "user-1",
		FieldID:     "field-1",
		BookingDate: domain.DateOnly(createdAt.AddDate(0, 0, 7)),
		Status:      status,
		TotalPrice:  decimal.NewFromInt(100000),
		TimeSlotIDs: []string{uuid.New().String()},
		IsActive:    true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	return booking
}

func TestStaleBookingWorkerSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	clock := &fixedClock{now: now}
	repo := repository.NewMemoryBookingRepository()
	recorder := &expiredRecorder{}

	stale := addBooking(t, repo, domain.BookingStatusPending, now.Add(-3*time.Minute))
	fresh := addBooking(t, repo, domain.BookingStatusPending, now.Add(-30*time.Second))
	completed := addBooking(t, repo, domain.BookingStatusCompleted, now.Add(-time.Hour))

	w := NewStaleBookingWorker(repo, recorder, clock, &StaleBookingWorkerConfig{
		SweepInterval: time.Minute,
		GraceWindow:   2 * time.Minute,
	})

	w.Sweep(ctx)

	t.Run("stale pending booking is cancelled and its slots freed", func(t *testing.T) {
		got, err := repo.GetByID(ctx, stale.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, got.Status)

		booked, err := repo.FindBookedSlotIDs(ctx, stale.FieldID, stale.BookingDate, stale.TimeSlotIDs)
		require.NoError(t, err)
		assert.Empty(t, booked)

		assert.Equal(t, []string{stale.ID}, recorder.Expired())
	})

	t.Run("fresh and settled bookings are untouched", func(t *testing.T) {
		got, err := repo.GetByID(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, got.Status)

		got, err = repo.GetByID(ctx, completed.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, got.Status)
	})

	t.Run("stats reflect the sweep", func(t *testing.T) {
		stats := w.GetStats()
		assert.Equal(t, int64(1), stats.TotalRuns)
		assert.Equal(t, int64(1), stats.TotalCancelled)
		assert.Equal(t, int64(0), stats.TotalErrors)
		assert.Equal(t, 1, stats.LastSweepCount)
		assert.Equal(t, now, stats.LastSweepTime)
	})

	t.Run("fresh booking expires once it outlives the grace window", func(t *testing.T) {
		clock.Advance(2 * time.Minute)
		w.Sweep(ctx)

		got, err := repo.GetByID(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, got.Status)

		stats := w.GetStats()
		assert.Equal(t, int64(2), stats.TotalCancelled)
		assert.ElementsMatch(t, []string{stale.ID, fresh.ID}, recorder.Expired())
	})
}

func TestStaleBookingWorkerLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{now: time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)}
	repo := repository.NewMemoryBookingRepository()

	w := NewStaleBookingWorker(repo, nil, clock, &StaleBookingWorkerConfig{
		SweepInterval: 10 * time.Millisecond,
		GraceWindow:   2 * time.Minute,
	})

	require.NoError(t, w.Start(ctx))
	assert.Error(t, w.Start(ctx))
	assert.True(t, w.GetStats().IsRunning)

	w.Stop()
	assert.False(t, w.GetStats().IsRunning)

	// Stopping again is a no-op
	w.Stop()
}
