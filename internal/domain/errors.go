package domain

import "errors"

// Not found errors
var (
	ErrFieldNotFound    = errors.New("field not found")
	ErrTimeSlotNotFound = errors.New("time slot not found")
	ErrPricingNotFound  = errors.New("no pricing found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrPaymentNotFound  = errors.New("payment not found")
)

// Validation errors
var (
	ErrInvalidFieldID    = errors.New("invalid field id")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidTimeOfDay  = errors.New("invalid time of day")
	ErrInvalidDayOfWeek  = errors.New("day of week must be between 0 and 6")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidRange      = errors.New("invalid pricing range")
	ErrNoTimeSlots       = errors.New("at least one time slot is required")
	ErrPastTimeSlot      = errors.New("cannot book past time slots for today")
	ErrFieldInactive     = errors.New("field is not active")
	ErrInvalidCallback   = errors.New("invalid callback payload")
	ErrInvalidSignature  = errors.New("invalid wallet signature")
	ErrZeroPaymentAmount = errors.New("booking has no payable amount")
)

// Conflict errors
var (
	ErrSlotsConflict   = errors.New("time slots already booked")
	ErrPricingConflict = errors.New("pricing already exists for range")
)

// State transition errors
var (
	ErrBookingNotPending       = errors.New("booking is not pending")
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")
	ErrBookingAlreadyCompleted = errors.New("booking already completed")
	ErrPaymentAlreadyRecorded  = errors.New("payment already recorded for booking")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFieldNotFound) ||
		errors.Is(err, ErrTimeSlotNotFound) ||
		errors.Is(err, ErrPricingNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidFieldID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidTimeOfDay) ||
		errors.Is(err, ErrInvalidDayOfWeek) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrNoTimeSlots) ||
		errors.Is(err, ErrPastTimeSlot) ||
		errors.Is(err, ErrFieldInactive) ||
		errors.Is(err, ErrInvalidCallback) ||
		errors.Is(err, ErrZeroPaymentAmount)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSlotsConflict) ||
		errors.Is(err, ErrPricingConflict)
}

// IsStateError checks if the error is an invalid state transition error
func IsStateError(err error) bool {
	return errors.Is(err, ErrBookingNotPending) ||
		errors.Is(err, ErrBookingAlreadyCancelled) ||
		errors.Is(err, ErrBookingAlreadyCompleted) ||
		errors.Is(err, ErrPaymentAlreadyRecorded)
}

// IsAuthenticityError checks if the error is a signature verification failure
func IsAuthenticityError(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}
