package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdbook/booking-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes the error envelope with the status the error maps to.
// Validation errors attach their per-field messages so forms can render them
// inline. The error is also pushed onto the context for the logging
// middleware.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	if e, ok := err.(interface{ StatusCode() int }); ok {
		status = e.StatusCode()
	}

	body := gin.H{"status": "error", "message": err.Error()}
	if fields := errors.FieldsOf(err); fields != nil {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(status, body)
}
