package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/gateway"
)

const (
	walletAccessKey = "access-key"
	walletSecretKey = "secret-key"
)

// addBooking stores a booking directly, skipping the booking service
func addBooking(t *testing.T, f *fixture, userID string, status domain.BookingStatus, total decimal.Decimal) *domain.Booking {
	t.Helper()
	now := f.clock.Now()
	booking := &domain.Booking{
		ID:          uuid.New().String(),
		UserID:      userID,
		FieldID:     "field-1",
		BookingDate: domain.DateOnly(now.AddDate(0, 0, 7)),
		Status:      status,
		TotalPrice:  total,
		TimeSlotIDs: []string{uuid.New().String(), uuid.New().String()},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.bookingRepo.Create(context.Background(), booking))
	return booking
}

func paymentFixture(t *testing.T) (*fixture, *gateway.MockGateway, PaymentService) {
	t.Helper()
	f := newFixture(time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))
	mock := gateway.NewMockGateway()
	svc := NewPaymentService(f.bookingRepo, f.paymentRepo, mock, f.publisher, f.clock, &PaymentServiceConfig{
		AccessKey: walletAccessKey,
		SecretKey: walletSecretKey,
	})
	return f, mock, svc
}

// signedCallback builds a success callback for the booking, signed with the
// service's credentials
func signedCallback(bookingID string, amount int64) *gateway.CallbackPayload {
	p := &gateway.CallbackPayload{
		PartnerCode:  "PARTNER",
		OrderID:      bookingID,
		RequestID:    uuid.New().String(),
		Amount:       amount,
		OrderInfo:    "Field booking payment",
		OrderType:    "momo_wallet",
		TransID:      "trans-" + bookingID,
		ResultCode:   0,
		Message:      "Success",
		PayType:      "qr",
		ResponseTime: 1700000000000,
		ExtraData:    gateway.EncodeExtraData(),
	}
	p.Signature = gateway.BuildCallbackSignature(walletAccessKey, walletSecretKey, p)
	return p
}

func TestPaymentServiceCreatePaymentRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("sends truncated amount for pending booking", func(t *testing.T) {
		f, mock, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.RequireFromString("100000.75"))

		resp, err := svc.CreatePaymentRequest(ctx, booking.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, booking.ID, resp.BookingID)
		assert.Equal(t, int64(100000), resp.Amount)
		assert.NotEmpty(t, resp.RequestID)
		assert.NotEmpty(t, resp.PayURL)
		assert.Equal(t, 0, resp.ResultCode)

		requests := mock.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, booking.ID, requests[0].OrderID)
		assert.Equal(t, resp.RequestID, requests[0].RequestID)
		assert.Equal(t, int64(100000), requests[0].Amount)
	})

	t.Run("guards", func(t *testing.T) {
		f, mock, svc := paymentFixture(t)
		pending := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))
		cancelled := addBooking(t, f, "user-1", domain.BookingStatusCancelled, decimal.NewFromInt(100000))
		free := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.Zero)

		_, err := svc.CreatePaymentRequest(ctx, "booking-x", "user-1")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)

		_, err = svc.CreatePaymentRequest(ctx, pending.ID, "user-2")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)

		_, err = svc.CreatePaymentRequest(ctx, cancelled.ID, "user-1")
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyCancelled)

		_, err = svc.CreatePaymentRequest(ctx, free.ID, "user-1")
		assert.ErrorIs(t, err, domain.ErrZeroPaymentAmount)

		assert.Empty(t, mock.Requests())
	})

	t.Run("gateway failure propagates", func(t *testing.T) {
		f, mock, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))
		mock.FailWith = errors.New("gateway unreachable")

		_, err := svc.CreatePaymentRequest(ctx, booking.ID, "user-1")
		assert.Error(t, err)
	})
}

func TestPaymentServiceConfirmCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("settles booking and records one payment", func(t *testing.T) {
		f, _, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))

		require.NoError(t, svc.ConfirmCallback(ctx, signedCallback(booking.ID, 100000)))

		stored, err := f.bookingRepo.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, stored.Status)
		require.NotNil(t, stored.PaymentID)

		payment, err := svc.GetPaymentByBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, *stored.PaymentID, payment.ID)
		assert.Equal(t, "trans-"+booking.ID, payment.TransactionCode)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100000)))

		assert.Equal(t, []domain.BookingEventType{domain.BookingEventCompleted}, f.publisher.Events())
	})

	t.Run("tampered signature mutates nothing", func(t *testing.T) {
		f, _, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))

		payload := signedCallback(booking.ID, 100000)
		payload.Amount = 1

		err := svc.ConfirmCallback(ctx, payload)
		require.ErrorIs(t, err, domain.ErrInvalidSignature)

		stored, err := f.bookingRepo.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, stored.Status)
		_, err = svc.GetPaymentByBooking(ctx, booking.ID)
		assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("replayed callback does not settle twice", func(t *testing.T) {
		f, _, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))

		payload := signedCallback(booking.ID, 100000)
		require.NoError(t, svc.ConfirmCallback(ctx, payload))

		err := svc.ConfirmCallback(ctx, payload)
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyCompleted)
		assert.Equal(t, []domain.BookingEventType{domain.BookingEventCompleted}, f.publisher.Events())
	})

	t.Run("callback racing a cancellation is rejected", func(t *testing.T) {
		f, _, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))
		require.NoError(t, f.bookingRepo.Cancel(ctx, booking.ID, f.clock.Now()))

		err := svc.ConfirmCallback(ctx, signedCallback(booking.ID, 100000))
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyCancelled)
	})

	t.Run("unknown order id", func(t *testing.T) {
		_, _, svc := paymentFixture(t)
		err := svc.ConfirmCallback(ctx, signedCallback("booking-x", 100000))
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("failed gateway result is rejected", func(t *testing.T) {
		f, _, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))

		payload := signedCallback(booking.ID, 100000)
		payload.ResultCode = 1006
		payload.Signature = gateway.BuildCallbackSignature(walletAccessKey, walletSecretKey, payload)

		err := svc.ConfirmCallback(ctx, payload)
		require.ErrorIs(t, err, domain.ErrInvalidCallback)

		stored, err := f.bookingRepo.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, stored.Status)
	})

	t.Run("amount mismatch still settles", func(t *testing.T) {
		f, _, svc := paymentFixture(t)
		booking := addBooking(t, f, "user-1", domain.BookingStatusPending, decimal.NewFromInt(100000))

		require.NoError(t, svc.ConfirmCallback(ctx, signedCallback(booking.ID, 99999)))

		stored, err := f.bookingRepo.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, stored.Status)

		payment, err := svc.GetPaymentByBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(99999)))
	})
}
