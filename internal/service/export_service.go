package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
	"github.com/MarkCruse/k3y-open-sessions/pkg/export"
)

// ExportFormat names a rendered output format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

const exportFilePrefix = "k3y-open-slots-"

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(pattern string, ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type tableWriter interface {
	Write(w io.Writer, data export.Dataset) error
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ResultTTL time.Duration
}

// RenderedExport is one rendered document ready to be written or served.
type RenderedExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders open-slot results as CSV, PDF or a console table.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	table   tableWriter
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService. storage may be nil when
// exports are never saved.
func NewExportService(storage fileStorage, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		table:   export.NewTableExporter(),
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportFormatCSV, "":
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format '%s'. Must be csv or pdf", raw))
	}
}

// Dataset converts a result into the tabular shape shared by every renderer.
func (s *ExportService) Dataset(result *OpenSlotResult) export.Dataset {
	rows := make([]map[string]string, 0, len(result.Slots))
	for _, slot := range result.Slots {
		rows = append(rows, slot.Record())
	}
	return export.Dataset{
		Title:   "K3Y open slots " + result.Area,
		Headers: result.Columns(),
		Rows:    rows,
	}
}

// Render produces the document bytes for format.
func (s *ExportService) Render(result *OpenSlotResult, format ExportFormat) (*RenderedExport, error) {
	dataset := s.Dataset(result)

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format '%s'. Must be csv or pdf", format))
	}
	if err != nil {
		return nil, err
	}
	return &RenderedExport{
		Filename:    s.filename(result, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

// Save renders the result and writes it to storage, returning the stored path.
func (s *ExportService) Save(result *OpenSlotResult, format ExportFormat) (string, error) {
	if s.storage == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "export storage not configured")
	}
	rendered, err := s.Render(result, format)
	if err != nil {
		return "", err
	}
	path, err := s.storage.Save(rendered.Filename, rendered.Payload)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save export")
	}
	s.logger.Info("export saved", zap.String("path", path), zap.String("format", string(format)), zap.Int("rows", len(result.Slots)))
	return path, nil
}

// WriteTable prints the result as a tab-separated table grouped by date.
func (s *ExportService) WriteTable(w io.Writer, result *OpenSlotResult) error {
	return s.table.Write(w, s.Dataset(result))
}

// Prune removes saved exports older than the configured TTL.
func (s *ExportService) Prune() ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	removed, err := s.storage.CleanupOlderThan(exportFilePrefix+"*", s.cfg.ResultTTL)
	if err != nil {
		return removed, err
	}
	if len(removed) > 0 {
		s.logger.Info("old exports pruned", zap.Int("count", len(removed)))
	}
	return removed, nil
}

// FilterByDates keeps only slots whose date is in dates. An empty selection
// keeps everything.
func FilterByDates(slots []models.OpenSlot, dates []string) []models.OpenSlot {
	wanted := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if d = strings.TrimSpace(d); d != "" {
			wanted[d] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return slots
	}
	filtered := make([]models.OpenSlot, 0, len(slots))
	for _, slot := range slots {
		if _, ok := wanted[slot.Date]; ok {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

func (s *ExportService) filename(result *OpenSlotResult, format ExportFormat) string {
	area := strings.ReplaceAll(result.Area, "/", "-")
	return fmt.Sprintf("%s%s-%s.%s", exportFilePrefix, area, s.now().UTC().Format("20060102T150405"), format)
}
