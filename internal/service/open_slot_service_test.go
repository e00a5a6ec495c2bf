package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

type stubSource struct {
	schedule *models.Schedule
	err      error
	calls    int32
	release  chan struct{}
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) (*models.Schedule, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.schedule, nil
}

type stubCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = nil
	return nil
}

func sampleSchedule() *models.Schedule {
	updated := "Jan 4, 2025 18:00 UTC"
	return &models.Schedule{
		Records: []models.BookingRecord{
			{Date: "01/05/25", Start: "12:00", End: "14:00", Area: "K3Y/4"},
			{Date: "01/05/25", Start: "14:00", End: "15:00", Area: "K3Y/1"},
		},
		UpdatedAt: &updated,
	}
}

func morningQuery() OpenSlotQuery {
	return OpenSlotQuery{Area: "k3y/4", TimeZone: "est", LocalStart: "07:00 AM", LocalEnd: "10:00 AM"}
}

func TestOpenSlotServiceComputesSlots(t *testing.T) {
	source := &stubSource{schedule: sampleSchedule()}
	metrics := NewMetricsService()
	svc := NewOpenSlotService(source, nil, metrics, zap.NewNop(), OpenSlotServiceConfig{})

	result, err := svc.GetOpenSlots(context.Background(), morningQuery())
	require.NoError(t, err)

	assert.Equal(t, "K3Y/4", result.Area)
	assert.Equal(t, "EST", result.TimeZone)
	assert.Equal(t, "12:00", result.UTCStart)
	assert.Equal(t, "15:00", result.UTCEnd)
	assert.Equal(t, "stub", result.Source)
	require.NotNil(t, result.UpdatedAt)
	assert.Equal(t, "Jan 4, 2025 18:00 UTC", *result.UpdatedAt)
	assert.Empty(t, result.Message)
	assert.False(t, result.CacheHit)
	assert.Equal(t, []models.OpenSlot{{
		Date:       "01/05/25",
		UTCRange:   "14:00 - 15:00 UTC",
		LocalRange: "09:00 AM - 10:00 AM",
		TimeZone:   "EST",
	}}, result.Slots)
	assert.Equal(t, []string{"Date", "Open Slot (UTC)", "Open Slot (EST)"}, result.Columns())

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.ScheduleFetches)
	assert.Equal(t, uint64(0), snap.ScheduleFetchFailures)
}

func TestOpenSlotServiceCachesResults(t *testing.T) {
	source := &stubSource{schedule: sampleSchedule()}
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewOpenSlotService(source, cache, nil, zap.NewNop(), OpenSlotServiceConfig{})
	ctx := context.Background()

	first, err := svc.GetOpenSlots(ctx, morningQuery())
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	q := morningQuery()
	q.LocalStart, q.LocalEnd = "07:00", "10:00"
	second, err := svc.GetOpenSlots(ctx, q)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Slots, second.Slots)
	assert.Equal(t, "07:00", second.LocalStart)
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))

	require.NoError(t, svc.InvalidateCache(ctx))
	third, err := svc.GetOpenSlots(ctx, morningQuery())
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Equal(t, int32(2), atomic.LoadInt32(&source.calls))
}

func TestOpenSlotServiceFetchFailureIsNotCached(t *testing.T) {
	source := &stubSource{err: appErrors.Wrapf(assert.AnError, appErrors.ErrScheduleFetch, "fetch schedule")}
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	metrics := NewMetricsService()
	svc := NewOpenSlotService(source, cache, metrics, zap.NewNop(), OpenSlotServiceConfig{})

	result, err := svc.GetOpenSlots(context.Background(), morningQuery())
	require.NoError(t, err)
	assert.NotNil(t, result.Slots)
	assert.Empty(t, result.Slots)
	assert.Contains(t, result.Message, "unavailable")
	assert.Nil(t, result.UpdatedAt)

	_, err = svc.GetOpenSlots(context.Background(), morningQuery())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&source.calls))
	assert.Equal(t, uint64(2), metrics.Snapshot().ScheduleFetchFailures)
}

func TestOpenSlotServiceMalformedScheduleYieldsMessage(t *testing.T) {
	source := &stubSource{schedule: &models.Schedule{Records: []models.BookingRecord{
		{Date: "01/05/25", Start: "noon", End: "14:00", Area: "K3Y/4"},
	}}}
	svc := NewOpenSlotService(source, nil, nil, zap.NewNop(), OpenSlotServiceConfig{})

	result, err := svc.GetOpenSlots(context.Background(), morningQuery())
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Contains(t, result.Message, "could not be read")
}

func TestOpenSlotServiceRejectsInvalidQueries(t *testing.T) {
	cases := []struct {
		name  string
		query OpenSlotQuery
		want  *appErrors.Error
	}{
		{"area", OpenSlotQuery{Area: "K3Y/10", TimeZone: "EST", LocalStart: "07:00", LocalEnd: "10:00"}, appErrors.ErrInvalidArea},
		{"zone", OpenSlotQuery{Area: "K3Y/4", TimeZone: "XYZ", LocalStart: "07:00", LocalEnd: "10:00"}, appErrors.ErrInvalidTimeZone},
		{"start", OpenSlotQuery{Area: "K3Y/4", TimeZone: "EST", LocalStart: "25:00", LocalEnd: "10:00"}, appErrors.ErrInvalidClockTime},
		{"end", OpenSlotQuery{Area: "K3Y/4", TimeZone: "EST", LocalStart: "07:00", LocalEnd: "later"}, appErrors.ErrInvalidClockTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := &stubSource{schedule: sampleSchedule()}
			svc := NewOpenSlotService(source, nil, nil, zap.NewNop(), OpenSlotServiceConfig{})

			_, err := svc.GetOpenSlots(context.Background(), tc.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, int32(0), atomic.LoadInt32(&source.calls))
		})
	}
}

func TestOpenSlotServiceCoalescesConcurrentRequests(t *testing.T) {
	source := &stubSource{schedule: sampleSchedule(), release: make(chan struct{})}
	svc := NewOpenSlotService(source, nil, nil, zap.NewNop(), OpenSlotServiceConfig{})

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*OpenSlotResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.GetOpenSlots(context.Background(), morningQuery())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))
	for _, res := range results {
		require.NotNil(t, res)
		assert.Len(t, res.Slots, 1)
	}
}

func TestOpenSlotServiceSharedFetchSurvivesCallerCancel(t *testing.T) {
	source := &stubSource{schedule: sampleSchedule(), release: make(chan struct{})}
	svc := NewOpenSlotService(source, nil, nil, zap.NewNop(), OpenSlotServiceConfig{})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan *OpenSlotResult, 1)
	go func() {
		res, err := svc.GetOpenSlots(leaderCtx, morningQuery())
		assert.NoError(t, err)
		leaderDone <- res
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&source.calls) == 1 }, time.Second, 5*time.Millisecond)

	followerDone := make(chan *OpenSlotResult, 1)
	go func() {
		res, err := svc.GetOpenSlots(context.Background(), morningQuery())
		assert.NoError(t, err)
		followerDone <- res
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	leader := <-leaderDone
	require.NotNil(t, leader)
	assert.Empty(t, leader.Slots)
	assert.Contains(t, leader.Message, "context canceled")

	close(source.release)
	follower := <-followerDone
	require.NotNil(t, follower)
	assert.Empty(t, follower.Message)
	assert.Len(t, follower.Slots, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))
}
