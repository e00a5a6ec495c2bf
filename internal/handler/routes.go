package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MarkCruse/k3y-open-sessions/internal/middleware"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	OpenSlots *OpenSlotHandler
	Settings  *SettingsHandler
	Reference *ReferenceHandler
	Metrics   *MetricsHandler
}

// Register mounts the probes at the root and the API under prefix.
func Register(r gin.IRouter, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	api.GET("/time-zones", h.Reference.TimeZones)
	api.GET("/areas", h.Reference.Areas)

	api.GET("/open-slots", h.OpenSlots.List)
	api.GET("/open-slots/export", h.OpenSlots.Export)

	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", h.Settings.Update)

	api.GET("/metrics/summary", h.Metrics.Summary)
}
