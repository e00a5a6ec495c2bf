package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	"github.com/MarkCruse/k3y-open-sessions/internal/repository"
	"github.com/MarkCruse/k3y-open-sessions/internal/service"
	"github.com/MarkCruse/k3y-open-sessions/pkg/config"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
	"github.com/MarkCruse/k3y-open-sessions/pkg/storage"
)

type stubSource struct {
	schedule *models.Schedule
	err      error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Fetch(context.Context) (*models.Schedule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.schedule, nil
}

func newTestApp(t *testing.T, source service.ScheduleSource) (*app, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	logr := zap.NewNop()
	metrics := service.NewMetricsService()
	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1"}
	return &app{
		cfg:      cfg,
		logger:   logr,
		metrics:  metrics,
		settings: service.NewSettingsService(repository.NewSettingsRepository(store, "settings.json", logr), validator.New(), logr),
		slots:    service.NewOpenSlotService(source, nil, metrics, logr, service.OpenSlotServiceConfig{}),
		exports:  service.NewExportService(store, service.ExportConfig{}, logr, nil, nil),
	}, dir
}

func bookedSchedule() *models.Schedule {
	updated := "Jan 4, 2025"
	return &models.Schedule{
		UpdatedAt: &updated,
		Records: []models.BookingRecord{
			{Date: "01/05/25", Start: "12:00", End: "14:00", Area: "K3Y/4"},
			{Date: "01/06/25", Start: "13:00", End: "15:00", Area: "K3Y/4"},
		},
	}
}

func TestRunQueryPrintsGroupedTable(t *testing.T) {
	a, _ := newTestApp(t, stubSource{schedule: bookedSchedule()})
	var out bytes.Buffer

	err := runQuery(context.Background(), a, queryOptions{start: "07:00", end: "10:00"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "\nSKCC OP Schedule last update: Jan 4, 2025 \n\nOpen Slots for area K3Y/4\n"+
		"\nDate\t Open Slot (UTC)\t Open Slot (EST)\n"+
		"01/05/25\t 14:00 - 15:00 UTC\t 09:00 AM - 10:00 AM\n"+
		"\n"+
		"01/06/25\t 12:00 - 13:00 UTC\t 07:00 AM - 08:00 AM\n"+
		"\n", out.String())
}

func TestRunQueryReportsNoSlots(t *testing.T) {
	a, _ := newTestApp(t, stubSource{schedule: &models.Schedule{}})
	var out bytes.Buffer

	require.NoError(t, runQuery(context.Background(), a, queryOptions{}, &out))
	assert.Contains(t, out.String(), noSlotsMessage)
	assert.NotContains(t, out.String(), "last update")
}

func TestRunQueryShowsUnavailableSchedule(t *testing.T) {
	a, _ := newTestApp(t, stubSource{err: appErrors.Wrapf(assert.AnError, appErrors.ErrScheduleFetch, "fetch schedule")})
	var out bytes.Buffer

	require.NoError(t, runQuery(context.Background(), a, queryOptions{}, &out))
	assert.Contains(t, out.String(), "currently unavailable")
	assert.Contains(t, out.String(), noSlotsMessage)
}

func TestRunQueryRejectsInvalidZone(t *testing.T) {
	a, _ := newTestApp(t, stubSource{schedule: bookedSchedule()})
	var out bytes.Buffer

	err := runQuery(context.Background(), a, queryOptions{timeZone: "XYZ"}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTimeZone)
	assert.Contains(t, err.Error(), "EST, CST, MST, PST, AKST, HAST, SST, CHST")
	assert.Empty(t, out.String())
}

func TestRunQuerySavesSettingsAndExports(t *testing.T) {
	a, dir := newTestApp(t, stubSource{schedule: bookedSchedule()})
	var out bytes.Buffer

	opts := queryOptions{area: "k3y/4", timeZone: "cst", start: "06:00", end: "09:00", exports: []string{"csv", "pdf"}, save: true}
	require.NoError(t, runQuery(context.Background(), a, opts, &out))

	raw, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	var saved map[string]string
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, "CST", saved["TIME_ZONE_ABBR"])
	assert.Equal(t, "06:00", saved["LOCAL_DAY_START"])

	csvFiles, _ := filepath.Glob(filepath.Join(dir, "k3y-open-slots-K3Y-4-*.csv"))
	pdfFiles, _ := filepath.Glob(filepath.Join(dir, "k3y-open-slots-K3Y-4-*.pdf"))
	assert.Len(t, csvFiles, 1)
	assert.Len(t, pdfFiles, 1)
	assert.Contains(t, out.String(), "Saved k3y-open-slots-K3Y-4-")
}

func TestRunQueryRejectsUnknownExportFormat(t *testing.T) {
	a, dir := newTestApp(t, stubSource{schedule: bookedSchedule()})

	err := runQuery(context.Background(), a, queryOptions{exports: []string{"xlsx"}, save: true}, &bytes.Buffer{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, statErr := os.Stat(filepath.Join(dir, "settings.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRouterServesOpenSlots(t *testing.T) {
	a, _ := newTestApp(t, stubSource{schedule: bookedSchedule()})
	r := newRouter(a)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/open-slots?start=07:00&end=10:00", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Area  string              `json:"area"`
			Slots []map[string]string `json:"slots"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "K3Y/4", envelope.Data.Area)
	assert.Len(t, envelope.Data.Slots, 2)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/open-slots?area=K3Y/11", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, uint64(2), a.metrics.Snapshot().RequestsTotal)
}
