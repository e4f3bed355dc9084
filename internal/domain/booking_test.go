package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCancel(t *testing.T) {
	now := time.Now()

	t.Run("pending booking cancels", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}
		require.NoError(t, b.Cancel(now))
		assert.Equal(t, BookingStatusCancelled, b.Status)
		assert.Equal(t, now, b.UpdatedAt)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		b := &Booking{Status: BookingStatusCancelled}
		assert.ErrorIs(t, b.Cancel(now), ErrBookingAlreadyCancelled)
	})
}

func TestBookingComplete(t *testing.T) {
	now := time.Now()

	t.Run("pending booking completes", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}
		require.NoError(t, b.Complete("pay-1", now))
		assert.Equal(t, BookingStatusCompleted, b.Status)
		require.NotNil(t, b.PaymentID)
		assert.Equal(t, "pay-1", *b.PaymentID)
	})

	t.Run("cancelled booking does not complete", func(t *testing.T) {
		b := &Booking{Status: BookingStatusCancelled}
		assert.ErrorIs(t, b.Complete("pay-1", now), ErrBookingAlreadyCancelled)
		assert.Nil(t, b.PaymentID)
	})

	t.Run("completed booking does not complete again", func(t *testing.T) {
		b := &Booking{Status: BookingStatusCompleted}
		assert.ErrorIs(t, b.Complete("pay-2", now), ErrBookingAlreadyCompleted)
	})
}

func TestDayOfWeekOf(t *testing.T) {
	// 2026-03-02 is a Monday
	assert.Equal(t, Monday, DayOfWeekOf(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
	// 2026-03-01 is a Sunday
	assert.Equal(t, Sunday, DayOfWeekOf(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	// 2026-03-07 is a Saturday
	assert.Equal(t, Saturday, DayOfWeekOf(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)))
}

func TestDayOfWeekValidate(t *testing.T) {
	for d := 0; d <= 6; d++ {
		assert.NoError(t, DayOfWeek(d).Validate())
	}
	assert.ErrorIs(t, DayOfWeek(-1).Validate(), ErrInvalidDayOfWeek)
	assert.ErrorIs(t, DayOfWeek(7).Validate(), ErrInvalidDayOfWeek)
}

func TestSameDate(t *testing.T) {
	a := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)
	c := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, c))
}
