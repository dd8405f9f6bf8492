package slot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdbook/booking-api/internal/handler"
	"github.com/opdbook/booking-api/internal/service/slot"
)

type Handler struct {
	service *slot.Service
}

func NewHandler(service *slot.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.GET("/slots/:date", h.Slots)
		appointments.GET("/calendar/:month", h.Calendar)
	}
}

func (h *Handler) Slots(c *gin.Context) {
	slots, err := h.service.Slots(c.Request.Context(), c.Param("date"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": slots})
}

func (h *Handler) Calendar(c *gin.Context) {
	grid, err := h.service.Calendar(c.Param("month"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": grid})
}
