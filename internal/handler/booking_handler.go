package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/courtside/field-booking/internal/dto"
	"github.com/courtside/field-booking/internal/service"
	"github.com/courtside/field-booking/pkg/middleware"
	"github.com/courtside/field-booking/pkg/response"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("field.id", req.FieldID),
		attribute.Int("booking.slot_count", len(req.TimeSlotIDs)),
	)

	result, err := h.bookingService.CreateBooking(ctx, userID, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking.id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// Cancel handles POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
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

	result, err := h.bookingService.CancelBooking(ctx, bookingID, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// Get handles GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
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

	result, err := h.bookingService.GetBooking(ctx, bookingID, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// List handles GET /bookings
func (h *BookingHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	span.SetAttributes(attribute.String("user.id", userID))

	result, err := h.bookingService.ListUserBookings(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// Availability handles GET /fields/:id/availability
func (h *BookingHandler) Availability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	fieldID := c.Param("id")
	date := c.Query("date")
	span.SetAttributes(
		attribute.String("field.id", fieldID),
		attribute.String("booking.date", date),
	)

	if date == "" {
		span.SetStatus(codes.Error, "missing date")
		response.BadRequest(c, "date query parameter is required")
		return
	}

	result, err := h.bookingService.GetAvailability(ctx, fieldID, date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}
