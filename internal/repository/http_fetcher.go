package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

const maxScheduleBytes = 8 << 20

// NewFetchLimiter paces outbound schedule requests to one per interval.
// A non-positive interval disables pacing.
func NewFetchLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// httpFetcher performs bounded GET requests against an upstream schedule.
type httpFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func newHTTPFetcher(timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) *httpFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if limiter == nil {
		limiter = NewFetchLimiter(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger,
	}
}

func (f *httpFetcher) get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFetch, "wait for fetch slot")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFetch, "build request for %s", url)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "k3y-open-slots")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFetch, "fetch %s", url)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.Wrapf(fmt.Errorf("unexpected status %d", resp.StatusCode), appErrors.ErrScheduleFetch, "fetch %s", url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScheduleBytes))
	if err != nil {
		return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFetch, "read %s", url)
	}

	f.logger.Debug("schedule fetched",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("latency", time.Since(start)),
	)
	return body, nil
}
