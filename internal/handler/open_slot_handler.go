package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MarkCruse/k3y-open-sessions/internal/middleware"
	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	"github.com/MarkCruse/k3y-open-sessions/internal/service"
	"github.com/MarkCruse/k3y-open-sessions/pkg/response"
)

type openSlotService interface {
	GetOpenSlots(ctx context.Context, q service.OpenSlotQuery) (*service.OpenSlotResult, error)
}

type settingsResolver interface {
	Resolve(ctx context.Context, overrides models.Settings) (models.Settings, error)
}

type slotExporter interface {
	Render(result *service.OpenSlotResult, format service.ExportFormat) (*service.RenderedExport, error)
}

// OpenSlotHandler serves open-slot listings and their downloads.
type OpenSlotHandler struct {
	slots    openSlotService
	settings settingsResolver
	exports  slotExporter
}

// NewOpenSlotHandler constructs the handler.
func NewOpenSlotHandler(slots openSlotService, settings settingsResolver, exports slotExporter) *OpenSlotHandler {
	return &OpenSlotHandler{slots: slots, settings: settings, exports: exports}
}

type openSlotsPayload struct {
	Area       string              `json:"area"`
	TimeZone   string              `json:"timeZone"`
	LocalStart string              `json:"localStart"`
	LocalEnd   string              `json:"localEnd"`
	UpdatedAt  *string             `json:"updatedAt"`
	Message    string              `json:"message,omitempty"`
	Source     string              `json:"source"`
	Columns    []string            `json:"columns"`
	Slots      []map[string]string `json:"slots"`
}

// List godoc
// @Summary Open K3Y operating slots
// @Tags Open Slots
// @Produce json
// @Param area query string false "K3Y area, e.g. K3Y/4"
// @Param timeZone query string false "Time zone abbreviation"
// @Param start query string false "Local window start (HH:MM or hh:mm AM/PM)"
// @Param end query string false "Local window end"
// @Success 200 {object} response.Envelope
// @Router /open-slots [get]
func (h *OpenSlotHandler) List(c *gin.Context) {
	result, err := h.lookup(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.CacheHit)
	meta := middleware.Meta(c)
	meta["count"] = len(result.Slots)
	response.JSON(c, http.StatusOK, newOpenSlotsPayload(result), meta)
}

// Export godoc
// @Summary Download open slots as CSV or PDF
// @Tags Open Slots
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param dates query string false "Comma separated dates to include"
// @Success 200 {file} file
// @Router /open-slots/export [get]
func (h *OpenSlotHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.lookup(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if dates := c.Query("dates"); dates != "" {
		result.Slots = service.FilterByDates(result.Slots, strings.Split(dates, ","))
	}
	rendered, err := h.exports.Render(result, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, rendered.Filename, rendered.ContentType, rendered.Payload)
}

func (h *OpenSlotHandler) lookup(c *gin.Context) (*service.OpenSlotResult, error) {
	ctx := c.Request.Context()
	settings, err := h.settings.Resolve(ctx, models.Settings{
		TimeZone:      c.Query("timeZone"),
		Area:          c.Query("area"),
		LocalDayStart: c.Query("start"),
		LocalDayEnd:   c.Query("end"),
	})
	if err != nil {
		return nil, err
	}
	return h.slots.GetOpenSlots(ctx, service.OpenSlotQuery{
		Area:       settings.Area,
		TimeZone:   settings.TimeZone,
		LocalStart: settings.LocalDayStart,
		LocalEnd:   settings.LocalDayEnd,
	})
}

func newOpenSlotsPayload(result *service.OpenSlotResult) openSlotsPayload {
	slots := make([]map[string]string, 0, len(result.Slots))
	for _, slot := range result.Slots {
		slots = append(slots, slot.Record())
	}
	return openSlotsPayload{
		Area:       result.Area,
		TimeZone:   result.TimeZone,
		LocalStart: result.LocalStart,
		LocalEnd:   result.LocalEnd,
		UpdatedAt:  result.UpdatedAt,
		Message:    result.Message,
		Source:     result.Source,
		Columns:    result.Columns(),
		Slots:      slots,
	}
}
