package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/availability"
	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	"github.com/MarkCruse/k3y-open-sessions/internal/repository"
	"github.com/MarkCruse/k3y-open-sessions/internal/service"
	"github.com/MarkCruse/k3y-open-sessions/pkg/config"
)

type comparison struct {
	Area         string
	JSONCount    int
	HTMLCount    int
	OnlyJSON     []string
	OnlyHTML     []string
	JSONUpdated  string
	HTMLUpdated  string
	DurationJSON time.Duration
	DurationHTML time.Duration
	Error        error
}

func main() {
	defaults, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var (
		jsonURL string
		htmlURL string
		area    string
		timeout time.Duration
	)

	flag.StringVar(&jsonURL, "json-url", defaults.Schedule.JSONURL, "JSON schedule URL")
	flag.StringVar(&htmlURL, "html-url", defaults.Schedule.HTMLURL, "HTML schedule URL")
	flag.StringVar(&area, "area", "", "restrict the comparison to one K3Y area")
	flag.DurationVar(&timeout, "timeout", 20*time.Second, "HTTP client timeout")
	flag.Parse()

	if area != "" {
		normalized, ok := models.NormalizeArea(area)
		if !ok {
			log.Fatalf("invalid area %q: must be one of %s", area, strings.Join(models.Areas(), ", "))
		}
		area = normalized
	}

	limiter := repository.NewFetchLimiter(0)
	jsonSource := repository.NewScheduleJSONRepository(jsonURL, timeout, limiter, zap.NewNop())
	htmlSource := repository.NewScheduleHTMLRepository(htmlURL, timeout, limiter, zap.NewNop())

	comp := compareSources(context.Background(), jsonSource, htmlSource, area)
	printReport(os.Stdout, comp)

	if comp.Error != nil || len(comp.OnlyJSON) > 0 || len(comp.OnlyHTML) > 0 {
		os.Exit(1)
	}
}

func compareSources(ctx context.Context, jsonSource, htmlSource service.ScheduleSource, area string) comparison {
	comp := comparison{Area: area}

	jsonSchedule, jsonDur, jsonErr := fetch(ctx, jsonSource)
	htmlSchedule, htmlDur, htmlErr := fetch(ctx, htmlSource)
	comp.DurationJSON = jsonDur
	comp.DurationHTML = htmlDur

	if jsonErr != nil {
		comp.Error = fmt.Errorf("json source failed: %w", jsonErr)
		return comp
	}
	if htmlErr != nil {
		comp.Error = fmt.Errorf("html source failed: %w", htmlErr)
		return comp
	}

	comp.JSONUpdated = marker(jsonSchedule.UpdatedAt)
	comp.HTMLUpdated = marker(htmlSchedule.UpdatedAt)

	jsonKeys := recordKeys(jsonSchedule.Records, area)
	htmlKeys := recordKeys(htmlSchedule.Records, area)
	comp.JSONCount = len(jsonKeys)
	comp.HTMLCount = len(htmlKeys)
	comp.OnlyJSON = difference(jsonKeys, htmlKeys)
	comp.OnlyHTML = difference(htmlKeys, jsonKeys)
	return comp
}

func fetch(ctx context.Context, source service.ScheduleSource) (*models.Schedule, time.Duration, error) {
	start := time.Now()
	schedule, err := source.Fetch(ctx)
	return schedule, time.Since(start), err
}

// recordKeys normalizes each booking so that formatting differences between
// sources (date style, zero padding, area case) do not count as divergence.
func recordKeys(records []models.BookingRecord, area string) map[string]struct{} {
	keys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if area != "" && !availability.MatchesArea(r.Area, area) {
			continue
		}
		key := fmt.Sprintf("%s %s-%s %s",
			availability.CanonicalDate(r.Date),
			availability.CanonicalUTCClock(r.Start),
			availability.CanonicalUTCClock(r.End),
			strings.ToUpper(strings.TrimSpace(r.Area)),
		)
		keys[key] = struct{}{}
	}
	return keys
}

func difference(a, b map[string]struct{}) []string {
	var out []string
	for key := range a {
		if _, ok := b[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func marker(updated *string) string {
	if updated == nil {
		return "-"
	}
	return *updated
}

func printReport(w io.Writer, comp comparison) {
	scope := comp.Area
	if scope == "" {
		scope = "all areas"
	}
	fmt.Fprintln(w, "Schedule Source Compare Report")
	fmt.Fprintln(w, "==============================")
	fmt.Fprintf(w, "Scope: %s\n", scope)
	fmt.Fprintf(w, "  JSON: %d records, updated %s (%s)\n", comp.JSONCount, comp.JSONUpdated, comp.DurationJSON)
	fmt.Fprintf(w, "  HTML: %d records, updated %s (%s)\n", comp.HTMLCount, comp.HTMLUpdated, comp.DurationHTML)
	if comp.Error != nil {
		fmt.Fprintf(w, "[ERROR] %v\n", comp.Error)
		return
	}
	for _, key := range comp.OnlyJSON {
		fmt.Fprintf(w, "[ONLY JSON] %s\n", key)
	}
	for _, key := range comp.OnlyHTML {
		fmt.Fprintf(w, "[ONLY HTML] %s\n", key)
	}
	fmt.Fprintf(w, "Only in JSON: %d, Only in HTML: %d\n", len(comp.OnlyJSON), len(comp.OnlyHTML))
}
