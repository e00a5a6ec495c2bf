package repository

import (
	"bytes"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

// SourceHTML names the legacy slot list web page.
const SourceHTML = "html"

const updateMarker = "(Update:"

// ScheduleHTMLRepository scrapes the published slot list page. It is kept as
// a fallback for when the hosted JSON cache is stale or unavailable.
type ScheduleHTMLRepository struct {
	url     string
	fetcher *httpFetcher
	logger  *zap.Logger
}

// NewScheduleHTMLRepository constructs the HTML schedule source.
func NewScheduleHTMLRepository(url string, timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) *ScheduleHTMLRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleHTMLRepository{
		url:     url,
		fetcher: newHTTPFetcher(timeout, limiter, logger),
		logger:  logger,
	}
}

// Name identifies the source in logs and metrics.
func (r *ScheduleHTMLRepository) Name() string {
	return SourceHTML
}

// Fetch downloads and parses the slot list page.
func (r *ScheduleHTMLRepository) Fetch(ctx context.Context) (*models.Schedule, error) {
	r.logger.Info("fetching schedule", zap.String("source", SourceHTML), zap.String("url", r.url))
	body, err := r.fetcher.get(ctx, r.url, "text/html")
	if err != nil {
		return nil, err
	}
	schedule, err := ParseScheduleHTML(body)
	if err != nil {
		return nil, err
	}
	r.logger.Info("schedule parsed", zap.String("source", SourceHTML), zap.Int("records", len(schedule.Records)))
	return schedule, nil
}

// ParseScheduleHTML reads the first table of the page, skipping its header
// row. Rows with fewer than four cells are ignored. The "(Update: ...)" note
// in an <em> element, when present, becomes the freshness marker.
func ParseScheduleHTML(body []byte) (*models.Schedule, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFormat, "parse schedule page")
	}

	schedule := &models.Schedule{Records: []models.BookingRecord{}, Source: SourceHTML}

	for _, em := range findAll(doc, atom.Em) {
		text := nodeText(em)
		if !strings.Contains(text, updateMarker) {
			continue
		}
		marker := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, updateMarker, ""), ")", ""))
		schedule.UpdatedAt = &marker
		break
	}

	tables := findAll(doc, atom.Table)
	if len(tables) == 0 {
		return schedule, nil
	}
	rows := findAll(tables[0], atom.Tr)
	if len(rows) > 0 {
		rows = rows[1:]
	}
	for _, row := range rows {
		cells := findAll(row, atom.Td)
		if len(cells) < 4 {
			continue
		}
		schedule.Records = append(schedule.Records, models.BookingRecord{
			Date:  nodeText(cells[0]),
			Start: nodeText(cells[1]),
			End:   nodeText(cells[2]),
			Area:  nodeText(cells[3]),
		})
	}
	return schedule, nil
}

// findAll returns the descendants of n with the given tag in document order.
func findAll(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
