package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opdbook/booking-api/internal/handler"
	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/service/booking"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.StartBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/slot", h.SelectSlot)
		bookings.POST("/:id/details", h.SubmitDetails)
		bookings.PUT("/:id/case-form", h.UpsertCaseForm)
		bookings.POST("/:id/case-form/skip", h.SkipCaseForm)
		bookings.POST("/:id/back", h.Back)
		bookings.POST("/:id/confirm", h.Confirm)
	}
}

func (h *Handler) StartBooking(c *gin.Context) {
	var req model.StartBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	bc, err := h.service.Start(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": bc})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	bc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}

func (h *Handler) SelectSlot(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	bc, err := h.service.SelectSlot(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}

func (h *Handler) SubmitDetails(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.SubmitDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	bc, err := h.service.SubmitDetails(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}

func (h *Handler) UpsertCaseForm(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var form model.CaseForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	bc, err := h.service.UpsertCaseForm(c.Request.Context(), id, &form)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}

func (h *Handler) SkipCaseForm(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.SkipCaseFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	bc, err := h.service.SkipCaseForm(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}

func (h *Handler) Back(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	bc, err := h.service.Back(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bc})
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	bc, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": bc})
}

func (h *Handler) bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return uuid.Nil, false
	}
	return id, true
}
