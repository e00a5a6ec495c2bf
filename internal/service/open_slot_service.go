package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/MarkCruse/k3y-open-sessions/internal/availability"
	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

// ScheduleSource fetches the current booking schedule from upstream.
type ScheduleSource interface {
	Name() string
	Fetch(ctx context.Context) (*models.Schedule, error)
}

// OpenSlotQuery selects an area, a zone and a local window. A window whose
// start is after its end wraps past midnight.
type OpenSlotQuery struct {
	Area       string
	TimeZone   string
	LocalStart string
	LocalEnd   string
}

// OpenSlotResult is the outcome of one open-slot computation.
type OpenSlotResult struct {
	Area       string            `json:"area"`
	TimeZone   string            `json:"timeZone"`
	LocalStart string            `json:"localStart"`
	LocalEnd   string            `json:"localEnd"`
	UTCStart   string            `json:"utcStart"`
	UTCEnd     string            `json:"utcEnd"`
	Slots      []models.OpenSlot `json:"slots"`
	UpdatedAt  *string           `json:"updatedAt"`
	// Message explains an empty result caused by an unavailable schedule.
	Message    string    `json:"message,omitempty"`
	Source     string    `json:"source"`
	ComputedAt time.Time `json:"computedAt"`
	CacheHit   bool      `json:"-"`
}

// Columns returns the output column labels for the result's zone.
func (r *OpenSlotResult) Columns() []string {
	return models.OpenSlotColumns(r.TimeZone)
}

// OpenSlotServiceConfig tunes result memoisation.
type OpenSlotServiceConfig struct {
	CacheTTL time.Duration
}

// OpenSlotService fetches the schedule and computes open slots for a query.
type OpenSlotService struct {
	source  ScheduleSource
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     OpenSlotServiceConfig
	group   singleflight.Group
	now     func() time.Time
}

// NewOpenSlotService constructs the orchestrator. cache and metrics may be nil.
func NewOpenSlotService(source ScheduleSource, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg OpenSlotServiceConfig) *OpenSlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenSlotService{
		source:  source,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// GetOpenSlots validates the query, fetches the schedule and returns the
// open slots. An unreachable or malformed schedule yields an empty result
// with Message set; only invalid query values are returned as errors.
func (s *OpenSlotService) GetOpenSlots(ctx context.Context, q OpenSlotQuery) (*OpenSlotResult, error) {
	area, ok := models.NormalizeArea(q.Area)
	if !ok {
		return nil, invalidArea(q.Area)
	}
	tz, err := availability.LookupTimeZone(q.TimeZone)
	if err != nil {
		return nil, err
	}
	localStart, localEnd := strings.TrimSpace(q.LocalStart), strings.TrimSpace(q.LocalEnd)
	utcStart, err := toUTC(localStart, tz.Abbr, "start")
	if err != nil {
		return nil, err
	}
	utcEnd, err := toUTC(localEnd, tz.Abbr, "end")
	if err != nil {
		return nil, err
	}

	base := OpenSlotResult{
		Area:       area,
		TimeZone:   tz.Abbr,
		LocalStart: localStart,
		LocalEnd:   localEnd,
		UTCStart:   utcStart,
		UTCEnd:     utcEnd,
	}
	key := openSlotCacheKey(base)

	var cached OpenSlotResult
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		cached.LocalStart, cached.LocalEnd = localStart, localEnd
		cached.CacheHit = true
		return &cached, nil
	}

	// The shared fetch outlives any one caller; the source's own timeout
	// bounds it.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.compute(context.WithoutCancel(ctx), base, key)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		base.Source = s.source.Name()
		base.ComputedAt = s.now().UTC()
		base.Slots = []models.OpenSlot{}
		base.Message = unavailableMessage(ctx.Err())
		return &base, nil
	}
	if res.Err != nil {
		return nil, res.Err
	}
	result := *res.Val.(*OpenSlotResult)
	result.LocalStart, result.LocalEnd = localStart, localEnd
	return &result, nil
}

func (s *OpenSlotService) compute(ctx context.Context, result OpenSlotResult, key string) (*OpenSlotResult, error) {
	result.Source = s.source.Name()
	result.ComputedAt = s.now().UTC()
	result.Slots = []models.OpenSlot{}

	start := time.Now()
	schedule, err := s.source.Fetch(ctx)
	if err != nil {
		s.metrics.ObserveFetch(result.Source, fetchOutcome(err), time.Since(start))
		s.logger.Warn("schedule unavailable", zap.String("source", result.Source), zap.Error(err))
		result.Message = unavailableMessage(err)
		return &result, nil
	}
	result.UpdatedAt = schedule.UpdatedAt

	ranges := []availability.TimeRange{{Start: result.UTCStart, End: result.UTCEnd}}
	slots, err := availability.FindGaps(schedule.Records, ranges, result.TimeZone, result.Area)
	if err != nil {
		if errors.Is(err, appErrors.ErrScheduleFormat) {
			s.metrics.ObserveFetch(result.Source, FetchOutcomeFormatError, time.Since(start))
			s.logger.Warn("schedule rejected", zap.String("source", result.Source), zap.Error(err))
			result.Message = unavailableMessage(err)
			return &result, nil
		}
		return nil, err
	}
	s.metrics.ObserveFetch(result.Source, FetchOutcomeOK, time.Since(start))

	if slots != nil {
		result.Slots = slots
	}
	s.metrics.ObserveOpenSlots(result.Area, len(result.Slots))
	s.logger.Debug("open slots computed",
		zap.String("area", result.Area),
		zap.String("tz", result.TimeZone),
		zap.Int("slots", len(result.Slots)),
		zap.Int("bookings", len(schedule.Records)),
	)

	// Best effort; CacheService.Set logs failures.
	_ = s.cache.Set(ctx, key, &result, s.cfg.CacheTTL)
	return &result, nil
}

// InvalidateCache drops every memoised open-slot result.
func (s *OpenSlotService) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "slots:*")
}

func toUTC(local, abbr, field string) (string, error) {
	utc, err := availability.ToUTC(local, abbr)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidTimeZone) {
			return "", err
		}
		return "", appErrors.Wrap(err, appErrors.ErrInvalidClockTime.Code, appErrors.ErrInvalidClockTime.Status,
			fmt.Sprintf("invalid %s time '%s'. Use HH:MM or hh:mm AM/PM", field, local))
	}
	return utc, nil
}

func openSlotCacheKey(r OpenSlotResult) string {
	return fmt.Sprintf("slots:%s:%s:%s:%s", r.Area, r.TimeZone, r.UTCStart, r.UTCEnd)
}

func fetchOutcome(err error) string {
	if errors.Is(err, appErrors.ErrScheduleFormat) {
		return FetchOutcomeFormatError
	}
	return FetchOutcomeFetchError
}

func unavailableMessage(err error) string {
	if errors.Is(err, appErrors.ErrScheduleFormat) {
		return "The K3Y schedule could not be read: " + err.Error()
	}
	return "The K3Y schedule is currently unavailable: " + err.Error()
}
