package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/dto"
)

// 2026-03-02 is a Monday
const mondayDate = "2026-03-02"

// newBookingFixture prices Monday 09:00-10:00 at 50000 per half hour on
// field-1 and returns the fixture plus the two slot ids, earliest first
func newBookingFixture(t *testing.T, now time.Time) (*fixture, []string) {
	t.Helper()
	f := newFixture(now)
	f.addField("field-1", true)

	_, err := f.pricingService().CreateRange(context.Background(),
		createReq("field-1", int(domain.Monday), "09:00", "10:00", 50000))
	require.NoError(t, err)

	return f, []string{
		slotID(t, f, "09:00", "09:30"),
		slotID(t, f, "09:30", "10:00"),
	}
}

func slotID(t *testing.T, f *fixture, start, end string) string {
	t.Helper()
	s, err := domain.ParseTimeOfDay(start)
	require.NoError(t, err)
	e, err := domain.ParseTimeOfDay(end)
	require.NoError(t, err)
	slot, err := f.slotRepo.GetByInterval(context.Background(), s, e)
	require.NoError(t, err)
	return slot.ID
}

func TestBookingServiceCreateBooking(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	t.Run("prices and reserves selected slots", func(t *testing.T) {
		f, slots := newBookingFixture(t, now)
		svc := f.bookingService()

		resp, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: slots,
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.BookingStatusPending), resp.Status)
		assert.Equal(t, mondayDate, resp.BookingDate)
		assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(100000)))
		assert.ElementsMatch(t, slots, resp.TimeSlotIDs)

		assert.Equal(t, []domain.BookingEventType{domain.BookingEventCreated}, f.publisher.Events())
	})

	t.Run("overlapping booking names the contested slots", func(t *testing.T) {
		f, slots := newBookingFixture(t, now)
		svc := f.bookingService()

		_, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: slots[:1],
		})
		require.NoError(t, err)

		_, err = svc.CreateBooking(ctx, "user-2", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: slots,
		})
		require.ErrorIs(t, err, domain.ErrSlotsConflict)
		assert.Contains(t, err.Error(), slots[0])
		assert.NotContains(t, err.Error(), slots[1])

		// The free slot stays free for a non-overlapping booking
		resp, err := svc.CreateBooking(ctx, "user-2", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: slots[1:],
		})
		require.NoError(t, err)
		assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(50000)))
	})

	t.Run("same slots on another date do not conflict", func(t *testing.T) {
		f, slots := newBookingFixture(t, now)
		svc := f.bookingService()

		_, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: slots,
		})
		require.NoError(t, err)

		// 2026-03-09 is the following Monday
		_, err = svc.CreateBooking(ctx, "user-2", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: "2026-03-09",
			TimeSlotIDs: slots,
		})
		require.NoError(t, err)
	})

	t.Run("unknown slot ids are named", func(t *testing.T) {
		f, slots := newBookingFixture(t, now)
		svc := f.bookingService()

		_, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: []string{slots[0], "slot-missing"},
		})
		require.ErrorIs(t, err, domain.ErrTimeSlotNotFound)
		assert.Contains(t, err.Error(), "slot-missing")
	})

	t.Run("unpriced day is rejected", func(t *testing.T) {
		f, slots := newBookingFixture(t, now)
		svc := f.bookingService()

		// 2026-03-03 is a Tuesday with no pricing configured
		_, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: "2026-03-03",
			TimeSlotIDs: slots,
		})
		assert.ErrorIs(t, err, domain.ErrPricingNotFound)
	})

	t.Run("past slot on the booking day is rejected", func(t *testing.T) {
		sameDay := time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)
		f, slots := newBookingFixture(t, sameDay)
		svc := f.bookingService()

		_, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: slots,
		})
		require.ErrorIs(t, err, domain.ErrPastTimeSlot)
		assert.Contains(t, err.Error(), "09:00-09:30")

		// A slot starting exactly now is still bookable
		resp, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID:     "field-1",
			BookingDate: mondayDate,
			TimeSlotIDs: slots[1:],
		})
		require.NoError(t, err)
		assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(50000)))
	})

	t.Run("request validation", func(t *testing.T) {
		f, slots := newBookingFixture(t, now)
		f.addField("field-closed", false)
		svc := f.bookingService()

		_, err := svc.CreateBooking(ctx, "", &dto.CreateBookingRequest{
			FieldID: "field-1", BookingDate: mondayDate, TimeSlotIDs: slots,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidUserID)

		_, err = svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID: "field-1", BookingDate: mondayDate,
		})
		assert.ErrorIs(t, err, domain.ErrNoTimeSlots)

		_, err = svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID: "field-1", BookingDate: "03/02/2026", TimeSlotIDs: slots,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)

		_, err = svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
			FieldID: "field-closed", BookingDate: mondayDate, TimeSlotIDs: slots,
		})
		assert.ErrorIs(t, err, domain.ErrFieldInactive)
	})
}

func TestBookingServiceCancelBooking(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	f, slots := newBookingFixture(t, now)
	svc := f.bookingService()

	created, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
		FieldID:     "field-1",
		BookingDate: mondayDate,
		TimeSlotIDs: slots,
	})
	require.NoError(t, err)

	t.Run("another user cannot cancel it", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, created.ID, "user-2")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("owner cancels and slots free up", func(t *testing.T) {
		resp, err := svc.CancelBooking(ctx, created.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, string(domain.BookingStatusCancelled), resp.Status)

		avail, err := svc.GetAvailability(ctx, "field-1", mondayDate)
		require.NoError(t, err)
		require.Len(t, avail.Slots, 2)
		for _, slot := range avail.Slots {
			assert.True(t, slot.Available)
		}
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, created.ID, "user-1")
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyCancelled)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, "booking-x", "user-1")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}

func TestBookingServiceGetAndList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	f, slots := newBookingFixture(t, now)
	svc := f.bookingService()

	first, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
		FieldID:     "field-1",
		BookingDate: mondayDate,
		TimeSlotIDs: slots[:1],
	})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	second, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
		FieldID:     "field-1",
		BookingDate: mondayDate,
		TimeSlotIDs: slots[1:],
	})
	require.NoError(t, err)

	t.Run("get enforces ownership", func(t *testing.T) {
		got, err := svc.GetBooking(ctx, first.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		_, err = svc.GetBooking(ctx, first.ID, "user-2")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("list returns newest first", func(t *testing.T) {
		list, err := svc.ListUserBookings(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)

		other, err := svc.ListUserBookings(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestBookingServiceGetAvailability(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	f, slots := newBookingFixture(t, now)
	svc := f.bookingService()

	_, err := svc.CreateBooking(ctx, "user-1", &dto.CreateBookingRequest{
		FieldID:     "field-1",
		BookingDate: mondayDate,
		TimeSlotIDs: slots[:1],
	})
	require.NoError(t, err)

	t.Run("held slot shows unavailable", func(t *testing.T) {
		avail, err := svc.GetAvailability(ctx, "field-1", mondayDate)
		require.NoError(t, err)
		assert.Equal(t, "field-1", avail.FieldID)
		require.Len(t, avail.Slots, 2)

		assert.Equal(t, "09:00", avail.Slots[0].StartTime)
		assert.False(t, avail.Slots[0].Available)
		assert.Equal(t, "09:30", avail.Slots[1].StartTime)
		assert.True(t, avail.Slots[1].Available)
		assert.True(t, avail.Slots[0].Price.Equal(decimal.NewFromInt(50000)))
	})

	t.Run("other dates are unaffected", func(t *testing.T) {
		avail, err := svc.GetAvailability(ctx, "field-1", "2026-03-09")
		require.NoError(t, err)
		require.Len(t, avail.Slots, 2)
		for _, slot := range avail.Slots {
			assert.True(t, slot.Available)
		}
	})

	t.Run("unpriced day yields no slots", func(t *testing.T) {
		avail, err := svc.GetAvailability(ctx, "field-1", "2026-03-03")
		require.NoError(t, err)
		assert.Empty(t, avail.Slots)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := svc.GetAvailability(ctx, "field-x", mondayDate)
		assert.ErrorIs(t, err, domain.ErrFieldNotFound)
	})
}
