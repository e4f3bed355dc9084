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

func createReq(fieldID string, day int, start, end string, price int64) *dto.CreatePricingRangeRequest {
	return &dto.CreatePricingRangeRequest{
		FieldID:   fieldID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Price:     decimal.NewFromInt(price),
	}
}

func TestPricingServiceCreateRange(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	t.Run("expands range into 30-minute rows", func(t *testing.T) {
		f := newFixture(now)
		f.addField("field-1", true)
		svc := f.pricingService()

		resp, err := svc.CreateRange(ctx, createReq("field-1", int(domain.Monday), "17:00", "20:00", 60000))
		require.NoError(t, err)
		assert.Equal(t, 6, resp.SlotCount)
		assert.Len(t, resp.PricingIDs, 6)

		rows, err := svc.GetPricingsByField(ctx, "field-1", nil)
		require.NoError(t, err)
		require.Len(t, rows, 6)
		for _, row := range rows {
			assert.True(t, row.Price.Equal(decimal.NewFromInt(60000)))
			assert.Equal(t, "17:00", row.RangeStart)
			assert.Equal(t, "20:00", row.RangeEnd)
			assert.Equal(t, int(domain.Monday), row.DayOfWeek)
		}
		assert.Equal(t, "17:00", rows[0].StartTime)
		assert.Equal(t, "20:00", rows[5].EndTime)
	})

	t.Run("overlap fails whole and names every conflict", func(t *testing.T) {
		f := newFixture(now)
		f.addField("field-1", true)
		svc := f.pricingService()

		_, err := svc.CreateRange(ctx, createReq("field-1", int(domain.Monday), "17:00", "20:00", 60000))
		require.NoError(t, err)

		_, err = svc.CreateRange(ctx, createReq("field-1", int(domain.Monday), "19:00", "21:00", 80000))
		require.ErrorIs(t, err, domain.ErrPricingConflict)
		assert.Contains(t, err.Error(), "19:00-19:30")
		assert.Contains(t, err.Error(), "19:30-20:00")
		assert.NotContains(t, err.Error(), "20:00-20:30")

		// No partial writes survive the failure
		rows, err := svc.GetPricingsByField(ctx, "field-1", nil)
		require.NoError(t, err)
		assert.Len(t, rows, 6)
	})

	t.Run("same range on another day succeeds", func(t *testing.T) {
		f := newFixture(now)
		f.addField("field-1", true)
		svc := f.pricingService()

		_, err := svc.CreateRange(ctx, createReq("field-1", int(domain.Monday), "09:00", "10:00", 50000))
		require.NoError(t, err)
		_, err = svc.CreateRange(ctx, createReq("field-1", int(domain.Tuesday), "09:00", "10:00", 55000))
		require.NoError(t, err)

		day := domain.Tuesday
		rows, err := svc.GetPricingsByField(ctx, "field-1", &day)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("validation failures", func(t *testing.T) {
		f := newFixture(now)
		f.addField("field-1", true)
		f.addField("field-closed", false)
		svc := f.pricingService()

		tests := []struct {
			name    string
			req     *dto.CreatePricingRangeRequest
			wantErr error
		}{
			{"unknown field", createReq("field-x", 1, "09:00", "10:00", 50000), domain.ErrFieldNotFound},
			{"inactive field", createReq("field-closed", 1, "09:00", "10:00", 50000), domain.ErrFieldInactive},
			{"bad day", createReq("field-1", 7, "09:00", "10:00", 50000), domain.ErrInvalidDayOfWeek},
			{"unaligned start", createReq("field-1", 1, "09:15", "10:15", 50000), domain.ErrInvalidRange},
			{"reversed range", createReq("field-1", 1, "10:00", "09:00", 50000), domain.ErrInvalidRange},
			{"unparseable time", createReq("field-1", 1, "9am", "10:00", 50000), domain.ErrInvalidTimeOfDay},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateRange(ctx, tt.req)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}

		t.Run("non-positive price", func(t *testing.T) {
			req := createReq("field-1", 1, "09:00", "10:00", 0)
			_, err := svc.CreateRange(ctx, req)
			assert.ErrorIs(t, err, domain.ErrInvalidPrice)
		})
	})
}

func TestPricingServiceUpdateRange(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	f := newFixture(now)
	f.addField("field-1", true)
	svc := f.pricingService()

	_, err := svc.CreateRange(ctx, createReq("field-1", int(domain.Monday), "09:00", "10:00", 50000))
	require.NoError(t, err)

	// Overlapping update rewrites the two existing rows and adds one
	resp, err := svc.UpdateRange(ctx, &dto.UpdatePricingRangeRequest{
		FieldID:   "field-1",
		DayOfWeek: int(domain.Monday),
		StartTime: "09:00",
		EndTime:   "10:30",
		Price:     decimal.NewFromInt(75000),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Updated)
	assert.Equal(t, 1, resp.Inserted)

	rows, err := svc.GetPricingsByField(ctx, "field-1", nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.True(t, row.Price.Equal(decimal.NewFromInt(75000)))
		assert.Equal(t, "09:00", row.RangeStart)
		assert.Equal(t, "10:30", row.RangeEnd)
	}
}

func TestPricingServiceDeleteRange(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	f := newFixture(now)
	f.addField("field-1", true)
	svc := f.pricingService()

	_, err := svc.CreateRange(ctx, createReq("field-1", int(domain.Monday), "09:00", "10:00", 50000))
	require.NoError(t, err)

	del := &dto.DeletePricingRangeRequest{
		FieldID:   "field-1",
		DayOfWeek: int(domain.Monday),
		StartTime: "09:00",
		EndTime:   "10:00",
	}
	require.NoError(t, svc.DeleteRange(ctx, del))

	rows, err := svc.GetPricingsByField(ctx, "field-1", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Deleting an already empty range is a no-op, not an error
	require.NoError(t, svc.DeleteRange(ctx, del))

	// Retired units keep their unique key, so re-pricing goes through the
	// upsert path and reactivates them
	_, err = svc.CreateRange(ctx, createReq("field-1", int(domain.Monday), "09:00", "10:00", 65000))
	require.ErrorIs(t, err, domain.ErrPricingConflict)

	upd, err := svc.UpdateRange(ctx, &dto.UpdatePricingRangeRequest{
		FieldID:   "field-1",
		DayOfWeek: int(domain.Monday),
		StartTime: "09:00",
		EndTime:   "10:00",
		Price:     decimal.NewFromInt(65000),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, upd.Updated)
	rows, err = svc.GetPricingsByField(ctx, "field-1", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
