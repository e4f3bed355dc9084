package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/dto"
	"github.com/courtside/field-booking/internal/service"
	"github.com/courtside/field-booking/pkg/response"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// PricingHandler handles pricing range HTTP requests
type PricingHandler struct {
	pricingService service.PricingService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// CreateRange handles POST /pricings/range
func (h *PricingHandler) CreateRange(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pricing.create_range")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreatePricingRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("field.id", req.FieldID),
		attribute.Int("pricing.day_of_week", req.DayOfWeek),
	)

	result, err := h.pricingService.CreateRange(ctx, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// UpdateRange handles PUT /pricings/range
func (h *PricingHandler) UpdateRange(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pricing.update_range")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.UpdatePricingRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("field.id", req.FieldID),
		attribute.Int("pricing.day_of_week", req.DayOfWeek),
	)

	result, err := h.pricingService.UpdateRange(ctx, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// DeleteRange handles DELETE /pricings/range
func (h *PricingHandler) DeleteRange(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pricing.delete_range")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.DeletePricingRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("field.id", req.FieldID),
		attribute.Int("pricing.day_of_week", req.DayOfWeek),
	)

	if err := h.pricingService.DeleteRange(ctx, &req); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, gin.H{"deleted": true})
}

// GetByField handles GET /fields/:id/pricings
func (h *PricingHandler) GetByField(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pricing.get_by_field")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	fieldID := c.Param("id")
	span.SetAttributes(attribute.String("field.id", fieldID))

	var day *domain.DayOfWeek
	if raw := c.Query("day_of_week"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			span.SetStatus(codes.Error, "invalid day_of_week")
			response.BadRequest(c, "day_of_week must be an integer between 0 and 6")
			return
		}
		d := domain.DayOfWeek(value)
		if err := d.Validate(); err != nil {
			span.SetStatus(codes.Error, "invalid day_of_week")
			writeError(c, err)
			return
		}
		day = &d
	}

	result, err := h.pricingService.GetPricingsByField(ctx, fieldID, day)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}
