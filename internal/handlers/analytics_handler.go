package handlers

import (
	"context"
	"net/http"

	"form-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Service *service.AnalyticsService
}

func NewAnalyticsHandler(s *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s}
}

// GetSummary returns status counts, completion rate, average score and the
// score distribution for one form.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	formID := c.Param("id")
	summary, err := h.Service.Summary(context.Background(), formID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute analytics",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}
