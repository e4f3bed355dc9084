package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the standard JSON envelope for all API responses
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorInfo carries a machine-readable code and a human-readable message
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success builds a success envelope
func Success(data interface{}) Response {
	return Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Error builds an error envelope
func Error(code, message string) Response {
	return Response{
		Success:   false,
		Error:     &ErrorInfo{Code: code, Message: message},
		Timestamp: time.Now(),
	}
}

// OK writes a 200 response with data
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Success(data))
}

// Created writes a 201 response with data
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Success(data))
}

// BadRequest writes a 400 response
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Error("BAD_REQUEST", message))
}

// Unauthorized writes a 401 response
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Error("UNAUTHORIZED", message))
}

// NotFound writes a 404 response
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Error("NOT_FOUND", message))
}

// Conflict writes a 409 response
func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Error("CONFLICT", message))
}

// UnprocessableEntity writes a 422 response
func UnprocessableEntity(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, Error("UNPROCESSABLE_ENTITY", message))
}

// InternalError writes a 500 response without leaking internals
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Error("INTERNAL_ERROR", "an internal error occurred"))
}
