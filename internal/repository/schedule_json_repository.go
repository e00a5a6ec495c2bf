package repository

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

// SourceJSON names the hosted schedule cache document.
const SourceJSON = "json"

type jsonBookingRecord struct {
	SessionDate *string `json:"session_date"`
	UTCStart    *string `json:"utc_start"`
	UTCEnd      *string `json:"utc_end"`
	K3YArea     *string `json:"k3y_area"`
}

type jsonScheduleDocument struct {
	Records      *[]jsonBookingRecord `json:"records"`
	GeneratedUTC *string              `json:"generated_utc"`
}

// ScheduleJSONRepository reads the hosted schedule cache document.
type ScheduleJSONRepository struct {
	url     string
	fetcher *httpFetcher
	logger  *zap.Logger
}

// NewScheduleJSONRepository constructs the JSON schedule source.
func NewScheduleJSONRepository(url string, timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) *ScheduleJSONRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleJSONRepository{
		url:     url,
		fetcher: newHTTPFetcher(timeout, limiter, logger),
		logger:  logger,
	}
}

// Name identifies the source in logs and metrics.
func (r *ScheduleJSONRepository) Name() string {
	return SourceJSON
}

// Fetch downloads and decodes the schedule document.
func (r *ScheduleJSONRepository) Fetch(ctx context.Context) (*models.Schedule, error) {
	r.logger.Info("fetching schedule", zap.String("source", SourceJSON), zap.String("url", r.url))
	body, err := r.fetcher.get(ctx, r.url, "application/json")
	if err != nil {
		return nil, err
	}
	schedule, err := DecodeScheduleJSON(body)
	if err != nil {
		return nil, err
	}
	r.logger.Info("schedule decoded", zap.String("source", SourceJSON), zap.Int("records", len(schedule.Records)))
	return schedule, nil
}

// DecodeScheduleJSON accepts either a top-level list of records or an object
// with a "records" list and an optional "generated_utc" marker.
func DecodeScheduleJSON(body []byte) (*models.Schedule, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, appErrors.Clone(appErrors.ErrScheduleFormat, "schedule document is empty")
	}

	var (
		records   []jsonBookingRecord
		updatedAt *string
	)
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFormat, "decode schedule list")
		}
	case '{':
		var doc jsonScheduleDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFormat, "decode schedule document")
		}
		if doc.Records == nil {
			return nil, appErrors.Clone(appErrors.ErrScheduleFormat, "schedule document has no records list")
		}
		records = *doc.Records
		updatedAt = doc.GeneratedUTC
	default:
		return nil, appErrors.Clone(appErrors.ErrScheduleFormat, "schedule document must be a list or an object with records")
	}

	out := make([]models.BookingRecord, 0, len(records))
	for i, rec := range records {
		booking, err := rec.toModel()
		if err != nil {
			return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFormat, "record %d", i)
		}
		out = append(out, booking)
	}
	return &models.Schedule{Records: out, UpdatedAt: updatedAt, Source: SourceJSON}, nil
}

func (r jsonBookingRecord) toModel() (models.BookingRecord, error) {
	fields := []struct {
		key   string
		value *string
	}{
		{"session_date", r.SessionDate},
		{"utc_start", r.UTCStart},
		{"utc_end", r.UTCEnd},
		{"k3y_area", r.K3YArea},
	}
	for _, f := range fields {
		if f.value == nil {
			return models.BookingRecord{}, fmt.Errorf("missing %q", f.key)
		}
	}
	return models.BookingRecord{
		Date:  *r.SessionDate,
		Start: *r.UTCStart,
		End:   *r.UTCEnd,
		Area:  *r.K3YArea,
	}, nil
}
