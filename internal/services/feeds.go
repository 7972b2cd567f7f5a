package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/extractors"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
	"time"
)

const maxFeedSize = 5 << 20

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type feedStateStore interface {
	Load(ctx context.Context, url string) (models.FeedState, error)
	Save(ctx context.Context, state models.FeedState) error
}

// FeedPoller downloads configured RSS/Atom feeds and ingests them when they
// carry items newer than the last poll.
type FeedPoller struct {
	urls       []string
	states     feedStateStore
	intake     ingester
	httpClient HTTPClient
	now        func() time.Time
}

func NewFeedPoller(urls []string, states feedStateStore, intake ingester) *FeedPoller {
	return &FeedPoller{
		urls:       urls,
		states:     states,
		intake:     intake,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (p *FeedPoller) SetHTTPClient(client HTTPClient) {
	p.httpClient = client
}

func (p *FeedPoller) Poll(ctx context.Context) error {
	for _, url := range p.urls {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.pollFeed(ctx, url); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeFeed).Errorf("failed to poll feed %s: %v", url, err)
		}
	}
	return nil
}

func (p *FeedPoller) pollFeed(ctx context.Context, url string) error {

	state, err := p.states.Load(ctx, url)
	if err != nil {
		return err
	}

	content, err := p.download(ctx, url)
	if err != nil {
		return err
	}

	feed, err := gofeed.NewParser().ParseString(content)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	newest := newestItemTime(feed)
	state.LastPollAt = p.now()

	if !newest.IsZero() && !newest.After(state.LastItemAt) {
		log.Debugf("feed %s has no new items", url)
		return p.states.Save(ctx, state)
	}

	report, err := p.intake.Ingest(ctx, extractors.SourceRSS, content, state.LastPollAt)
	if err != nil {
		return err
	}

	if newest.After(state.LastItemAt) {
		state.LastItemAt = newest
	}
	state.Items += report.Inserted
	return p.states.Save(ctx, state)
}

func (p *FeedPoller) download(ctx context.Context, url string) (string, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func newestItemTime(feed *gofeed.Feed) time.Time {
	var newest time.Time
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		for _, t := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
			if t != nil && t.After(newest) {
				newest = *t
			}
		}
	}
	return newest
}
