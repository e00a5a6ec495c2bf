package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarkCruse/k3y-open-sessions/internal/availability"
	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	"github.com/MarkCruse/k3y-open-sessions/pkg/response"
)

// ReferenceHandler lists the fixed choices offered by the dashboard.
type ReferenceHandler struct{}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// TimeZones godoc
// @Summary Supported time zones
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-zones [get]
func (h *ReferenceHandler) TimeZones(c *gin.Context) {
	response.JSON(c, http.StatusOK, availability.TimeZones())
}

// Areas godoc
// @Summary K3Y areas
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /areas [get]
func (h *ReferenceHandler) Areas(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.Areas())
}
