package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/dto"
	"github.com/courtside/field-booking/internal/gateway"
	"github.com/courtside/field-booking/internal/repository"
	"github.com/courtside/field-booking/pkg/logger"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// PaymentService defines the interface for payment reconciliation
type PaymentService interface {
	// CreatePaymentRequest obtains a wallet payment link for a pending
	// booking
	CreatePaymentRequest(ctx context.Context, bookingID, userID string) (*dto.PaymentLinkResponse, error)

	// ConfirmCallback verifies a wallet IPN callback and settles its
	// booking
	ConfirmCallback(ctx context.Context, payload *gateway.CallbackPayload) error

	// GetPaymentByBooking retrieves the payment that settled a booking
	GetPaymentByBooking(ctx context.Context, bookingID string) (*dto.PaymentResponse, error)
}

// PaymentServiceConfig contains the wallet credentials the service signs and
// verifies with
type PaymentServiceConfig struct {
	AccessKey string
	SecretKey string
}

// paymentService implements PaymentService
type paymentService struct {
	bookingRepo    repository.BookingRepository
	paymentRepo    repository.PaymentRepository
	walletGateway  gateway.WalletGateway
	eventPublisher EventPublisher
	clock          Clock
	accessKey      string
	secretKey      string
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	walletGateway gateway.WalletGateway,
	eventPublisher EventPublisher,
	clock Clock,
	cfg *PaymentServiceConfig,
) PaymentService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	if clock == nil {
		clock = NewClock()
	}
	svc := &paymentService{
		bookingRepo:    bookingRepo,
		paymentRepo:    paymentRepo,
		walletGateway:  walletGateway,
		eventPublisher: eventPublisher,
		clock:          clock,
	}
	if cfg != nil {
		svc.accessKey = cfg.AccessKey
		svc.secretKey = cfg.SecretKey
	}
	return svc
}

// CreatePaymentRequest builds and sends a signed payment-creation request for
// a pending booking
func (s *paymentService) CreatePaymentRequest(ctx context.Context, bookingID, userID string) (*dto.PaymentLinkResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.create_request")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "booking not found")
		return nil, err
	}
	if userID != "" && booking.UserID != userID {
		span.SetStatus(codes.Error, "booking not found")
		return nil, domain.ErrBookingNotFound
	}
	if !booking.IsPending() {
		span.SetStatus(codes.Error, "booking not pending")
		return nil, bookingStateError(booking.Status)
	}
	if !booking.TotalPrice.IsPositive() {
		span.SetStatus(codes.Error, "zero payment amount")
		return nil, fmt.Errorf("%w: booking %s", domain.ErrZeroPaymentAmount, booking.ID)
	}

	// The wallet protocol carries whole currency units only
	amount := booking.TotalPrice.IntPart()
	requestID := uuid.New().String()

	resp, err := s.walletGateway.CreatePayment(ctx, booking.ID, requestID, amount)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("wallet.result_code", resp.ResultCode))
	return &dto.PaymentLinkResponse{
		BookingID:  booking.ID,
		RequestID:  requestID,
		Amount:     amount,
		PayURL:     resp.PayURL,
		Deeplink:   resp.Deeplink,
		QRCodeURL:  resp.QRCodeURL,
		ResultCode: resp.ResultCode,
		Message:    resp.Message,
	}, nil
}

// ConfirmCallback verifies the callback signature, then settles the booking
// and records its payment in one transaction. Replays and races with
// cancellation surface as state errors without mutation.
func (s *paymentService) ConfirmCallback(ctx context.Context, payload *gateway.CallbackPayload) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.confirm_callback")
	defer span.End()
	span.SetAttributes(attribute.String("wallet.order_id", payload.OrderID))

	if !gateway.VerifyCallbackSignature(s.accessKey, s.secretKey, payload) {
		logger.Get().Warn("rejected wallet callback with invalid signature",
			zap.String("order_id", payload.OrderID),
			zap.String("request_id", payload.RequestID),
			zap.String("trans_id", payload.TransID),
		)
		span.SetStatus(codes.Error, "invalid signature")
		return domain.ErrInvalidSignature
	}

	booking, err := s.bookingRepo.GetByID(ctx, payload.OrderID)
	if err != nil {
		span.SetStatus(codes.Error, "booking not found")
		return err
	}
	if !booking.IsPending() {
		span.SetStatus(codes.Error, "booking not pending")
		return bookingStateError(booking.Status)
	}

	if payload.ResultCode != 0 {
		span.SetStatus(codes.Error, "payment failed at gateway")
		return fmt.Errorf("%w: gateway result code %d", domain.ErrInvalidCallback, payload.ResultCode)
	}

	if payload.Amount != booking.TotalPrice.IntPart() {
		logger.Get().Warn("wallet callback amount differs from booking total",
			zap.String("booking_id", booking.ID),
			zap.Int64("callback_amount", payload.Amount),
			zap.String("total_price", booking.TotalPrice.String()),
		)
	}

	now := s.clock.Now()
	payment := &domain.Payment{
		ID:              uuid.New().String(),
		BookingID:       booking.ID,
		Amount:          decimal.NewFromInt(payload.Amount),
		Method:          domain.PaymentMethodWallet,
		Status:          domain.PaymentStatusSucceeded,
		TransactionCode: payload.TransID,
		PaidAt:          now,
		CreatedAt:       now,
	}

	if err := s.paymentRepo.SettleBooking(ctx, payment); err != nil {
		if domain.IsStateError(err) {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.RecordError(err)
		}
		return err
	}

	booking.Status = domain.BookingStatusCompleted
	booking.PaymentID = &payment.ID
	booking.UpdatedAt = now

	if err := s.eventPublisher.PublishBookingCompleted(ctx, booking); err != nil {
		logger.Get().Warn("failed to publish booking completed event",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}

	span.SetAttributes(attribute.String("payment.id", payment.ID))
	return nil
}

// GetPaymentByBooking retrieves the payment that settled a booking
func (s *paymentService) GetPaymentByBooking(ctx context.Context, bookingID string) (*dto.PaymentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.get_by_booking")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", bookingID))

	payment, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "payment not found")
		return nil, err
	}
	return dto.PaymentFromDomain(payment), nil
}

// bookingStateError maps a non-pending status to its state error
func bookingStateError(status domain.BookingStatus) error {
	switch status {
	case domain.BookingStatusCancelled:
		return domain.ErrBookingAlreadyCancelled
	case domain.BookingStatusCompleted:
		return domain.ErrBookingAlreadyCompleted
	default:
		return domain.ErrBookingNotPending
	}
}

var _ PaymentService = (*paymentService)(nil)
