package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
	"github.com/MarkCruse/k3y-open-sessions/pkg/export"
	"github.com/MarkCruse/k3y-open-sessions/pkg/storage"
)

func sampleResult() *OpenSlotResult {
	return &OpenSlotResult{
		Area:     "K3Y/4",
		TimeZone: "EST",
		Slots: []models.OpenSlot{
			{Date: "01/05/25", UTCRange: "14:00 - 15:00 UTC", LocalRange: "09:00 AM - 10:00 AM", TimeZone: "EST"},
			{Date: "01/05/25", UTCRange: "15:00 - 16:00 UTC", LocalRange: "10:00 AM - 11:00 AM", TimeZone: "EST"},
			{Date: "01/06/25", UTCRange: "12:00 - 13:00 UTC", LocalRange: "07:00 AM - 08:00 AM", TimeZone: "EST"},
		},
	}
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(store, ExportConfig{ResultTTL: time.Hour}, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	svc.now = func() time.Time { return time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestExportServiceRenderCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	rendered, err := svc.Render(sampleResult(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", rendered.ContentType)
	assert.Equal(t, "k3y-open-slots-K3Y-4-20250105T120000.csv", rendered.Filename)

	lines := strings.Split(strings.TrimSpace(string(rendered.Payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Open Slot (UTC),Open Slot (EST)", lines[0])
	assert.Equal(t, "01/05/25,14:00 - 15:00 UTC,09:00 AM - 10:00 AM", lines[1])
}

func TestExportServiceRenderPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	rendered, err := svc.Render(sampleResult(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", rendered.ContentType)
	assert.True(t, bytes.HasPrefix(rendered.Payload, []byte("%PDF")))
}

func TestExportServiceRenderUnsupportedFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.Render(sampleResult(), ExportFormat("xlsx"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceSaveWritesFile(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	path, err := svc.Save(sampleResult(), ExportFormatCSV)
	require.NoError(t, err)

	info, err := os.Stat(store.Path(path))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportServicePruneRemovesOldExports(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	path, err := svc.Save(sampleResult(), ExportFormatCSV)
	require.NoError(t, err)
	_, err = store.Save("settings.json", []byte("{}"))
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(path), old, old))
	require.NoError(t, os.Chtimes(store.Path("settings.json"), old, old))

	removed, err := svc.Prune()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Base(path)}, removed)
	_, err = os.Stat(store.Path("settings.json"))
	assert.NoError(t, err)
}

func TestExportServiceWriteTableGroupsByDate(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	var buf bytes.Buffer

	require.NoError(t, svc.WriteTable(&buf, sampleResult()))
	assert.Equal(t, strings.Join([]string{
		"Date\t Open Slot (UTC)\t Open Slot (EST)",
		"01/05/25\t 14:00 - 15:00 UTC\t 09:00 AM - 10:00 AM",
		"01/05/25\t 15:00 - 16:00 UTC\t 10:00 AM - 11:00 AM",
		"",
		"01/06/25\t 12:00 - 13:00 UTC\t 07:00 AM - 08:00 AM",
		"",
	}, "\n"), buf.String())
}

func TestFilterByDates(t *testing.T) {
	slots := sampleResult().Slots

	assert.Equal(t, slots, FilterByDates(slots, nil))
	assert.Equal(t, slots, FilterByDates(slots, []string{" ", ""}))

	filtered := FilterByDates(slots, []string{"01/06/25"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "12:00 - 13:00 UTC", filtered[0].UTCRange)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, f)

	f, err = ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, f)

	_, err = ParseExportFormat("docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
