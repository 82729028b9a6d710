package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

const (
	maxConcurrentPolls = 4
	snippetLimit       = 300
)

// RSSPoller reads the newest entry of every subscribed feed.
type RSSPoller struct {
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
	seq    atomic.Uint64
}

var _ ports.FeedSource = (*RSSPoller)(nil)

// NewRSSPoller fetches feeds with the given HTTP client.
func NewRSSPoller(client *http.Client, logger *slog.Logger) *RSSPoller {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSPoller{client: client, logger: logger, now: time.Now}
}

// newParser returns a parser for one fetch; gofeed parsers are not safe
// for concurrent use.
func (p *RSSPoller) newParser() *gofeed.Parser {
	parser := gofeed.NewParser()
	parser.Client = p.client
	parser.UserAgent = "InsightStream/1.0"
	return parser
}

// Poll fetches subscriptions concurrently and keeps subscription order.
// A failing feed is logged and skipped; only a total failure is an error.
func (p *RSSPoller) Poll(ctx context.Context, subscriptions []domain.SubscriptionConfig) ([]domain.Item, error) {
	if len(subscriptions) == 0 {
		return nil, nil
	}

	now := p.now()
	slots := make([]*domain.Item, len(subscriptions))
	errs := make([]error, len(subscriptions))

	var g errgroup.Group
	g.SetLimit(maxConcurrentPolls)
	for i, sub := range subscriptions {
		g.Go(func() error {
			item, err := p.pollOne(ctx, sub, i, now)
			if err != nil {
				errs[i] = fmt.Errorf("feed %s: %w", sub.Name, err)
				p.warn("poll subscription failed", "subscription", sub.ID, "error", err)
				return nil
			}
			slots[i] = &item
			return nil
		})
	}
	_ = g.Wait()

	items := make([]domain.Item, 0, len(subscriptions))
	for _, slot := range slots {
		if slot != nil {
			items = append(items, *slot)
		}
	}
	if len(items) == 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (p *RSSPoller) pollOne(ctx context.Context, sub domain.SubscriptionConfig, index int, now time.Time) (domain.Item, error) {
	parsed, err := p.newParser().ParseURLWithContext(sub.URL, ctx)
	if err != nil {
		return domain.Item{}, err
	}

	entry := newestEntry(parsed.Items)
	if entry == nil {
		return domain.Item{}, fmt.Errorf("feed has no entries")
	}

	desc := entry.Description
	if desc == "" {
		desc = entry.Content
	}
	link := entry.Link
	if link == "" {
		link = domain.NoLinkURL
	}

	return domain.Item{
		ID:          newItemID(sub, now, p.seq.Add(1)),
		Title:       strings.TrimSpace(htmlText(entry.Title)),
		Snippet:     truncate(htmlText(desc), snippetLimit),
		Source:      sub.Name,
		URL:         link,
		PublishedAt: now,
		Category:    templates[index%len(templates)].category,
	}, nil
}

func newestEntry(entries []*gofeed.Item) *gofeed.Item {
	var (
		best     *gofeed.Item
		bestTime time.Time
	)
	for _, e := range entries {
		if e == nil {
			continue
		}
		var ts time.Time
		if e.PublishedParsed != nil {
			ts = *e.PublishedParsed
		} else if e.UpdatedParsed != nil {
			ts = *e.UpdatedParsed
		}
		if best == nil || ts.After(bestTime) {
			best, bestTime = e, ts
		}
	}
	return best
}

// htmlText flattens markup to whitespace-normalized text.
func htmlText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func (p *RSSPoller) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
