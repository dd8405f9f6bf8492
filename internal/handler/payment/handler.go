package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdbook/booking-api/internal/handler"
	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/service/booking"
)

// Handler exposes the checkout endpoints. Payment reconciliation belongs to
// the booking wizard, so everything here delegates to the booking service.
type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("/quote", h.Quote)
		payments.POST("/create-order", h.CreateOrder)
		payments.POST("/verify", h.VerifyPayment)
		payments.POST("/failure", h.PaymentFailure)
	}
}

func (h *Handler) Quote(c *gin.Context) {
	region := model.PatientRegion(c.Query("region"))
	visit := model.VisitType(c.Query("visit_type"))
	if region == "" || visit == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "region and visit_type are required"})
		return
	}

	quote, err := h.service.Quote(region, visit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": quote})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": order})
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req model.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	bc, err := h.service.VerifyPayment(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}

func (h *Handler) PaymentFailure(c *gin.Context) {
	var req model.PaymentFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	bc, err := h.service.RecordFailure(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}
