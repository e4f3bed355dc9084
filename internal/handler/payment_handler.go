package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/gateway"
	"github.com/courtside/field-booking/internal/service"
	"github.com/courtside/field-booking/pkg/middleware"
	"github.com/courtside/field-booking/pkg/response"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// Wallet-protocol result codes returned to the gateway on its callback
const (
	callbackResultSuccess          = 0
	callbackResultOrderNotFound    = 45
	callbackResultOrderProcessed   = 49
	callbackResultInvalidSignature = 97
	callbackResultInternalError    = 99
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest handles POST /bookings/:id/payment
func (h *PaymentHandler) CreatePaymentRequest(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.create_request")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking.id", bookingID))

	result, err := h.paymentService.CreatePaymentRequest(ctx, bookingID, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// GetPayment handles GET /bookings/:id/payment
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	if _, ok := middleware.GetUserID(c); !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking.id", bookingID))

	result, err := h.paymentService.GetPaymentByBooking(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// WalletCallback handles POST /payments/wallet/callback. The gateway expects
// its own envelope rather than the API one, so responses here carry a
// result code instead of the standard success flag.
func (h *PaymentHandler) WalletCallback(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.wallet_callback")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var payload gateway.CallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		span.SetStatus(codes.Error, "invalid payload")
		h.callbackResponse(c, http.StatusBadRequest, callbackResultInternalError, "invalid payload", &payload)
		return
	}

	span.SetAttributes(
		attribute.String("wallet.order_id", payload.OrderID),
		attribute.String("wallet.trans_id", payload.TransID),
	)

	err := h.paymentService.ConfirmCallback(ctx, &payload)
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
		h.callbackResponse(c, http.StatusOK, callbackResultSuccess, "success", &payload)
	case errors.Is(err, domain.ErrInvalidSignature):
		span.SetStatus(codes.Error, "invalid signature")
		h.callbackResponse(c, http.StatusBadRequest, callbackResultInvalidSignature, "invalid signature", &payload)
	case errors.Is(err, domain.ErrBookingNotFound):
		span.SetStatus(codes.Error, "order not found")
		h.callbackResponse(c, http.StatusNotFound, callbackResultOrderNotFound, "order not found", &payload)
	case domain.IsStateError(err):
		// A replay or a race the sweeper won. Benign from the gateway's
		// point of view, so answer 200 with a non-zero result code.
		span.SetStatus(codes.Error, err.Error())
		h.callbackResponse(c, http.StatusOK, callbackResultOrderProcessed, err.Error(), &payload)
	case domain.IsValidationError(err):
		span.SetStatus(codes.Error, err.Error())
		h.callbackResponse(c, http.StatusBadRequest, callbackResultInternalError, err.Error(), &payload)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.callbackResponse(c, http.StatusInternalServerError, callbackResultInternalError, "internal error", &payload)
	}
}

func (h *PaymentHandler) callbackResponse(c *gin.Context, status, resultCode int, message string, payload *gateway.CallbackPayload) {
	c.JSON(status, gin.H{
		"partnerCode":  payload.PartnerCode,
		"orderId":      payload.OrderID,
		"requestId":    payload.RequestID,
		"resultCode":   resultCode,
		"message":      message,
		"responseTime": time.Now().UnixMilli(),
	})
}
