// Package crawl implements the crawler worker: pop a URL, validate it,
// reserve a doc id, fetch it, append it to the archive, update
// metadata, and enqueue an indexing job.
package crawl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Digvijay-x1/search-engine/internal/analysis"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
	"github.com/Digvijay-x1/search-engine/internal/queue"
)

// Fetcher retrieves contents from a URL. The default implementation
// wraps *http.Client; tests substitute a stub.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*http.Response, error)
}

// HTTPFetcher is the production Fetcher: redirects followed, explicit
// User-Agent, TLS peer+host verification left at Go's secure default
// (no InsecureSkipVerify), bounded per-request timeout.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds a Fetcher with the configured timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch issues a GET request with the configured User-Agent.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	return f.Client.Do(req)
}

// Config holds the worker-loop tunables.
type Config struct {
	QueuePollInterval time.Duration
	CrawlDelay        time.Duration
	EnqueueRetries    int
	FollowLinks       bool
}

// JobQueue is the subset of *queue.Queue the crawler needs.
type JobQueue interface {
	PopCrawlURL(ctx context.Context) (string, error)
	PushCrawlURL(ctx context.Context, url string) error
	PushIndexJob(ctx context.Context, docID int64) error
}

// MetaStore is the subset of *metadata.Store the crawler needs.
type MetaStore interface {
	Reserve(ctx context.Context, url string) (int64, error)
	MarkCrawled(ctx context.Context, docID int64, file string, offset int64, length int32) error
	MarkNotQueued(ctx context.Context, docID int64) error
}

// ArchiveWriter is the subset of *archive.Writer the crawler needs.
type ArchiveWriter interface {
	WriteRecord(url string, payload []byte) (offset, length int64, err error)
	Basename() string
}

// Crawler runs the worker loop: pop -> validate -> reserve -> fetch ->
// write -> mark_crawled -> enqueue-index -> politeness sleep.
type Crawler struct {
	cfg     Config
	queue   JobQueue
	meta    MetaStore
	writer  ArchiveWriter
	fetcher Fetcher
	limiter *HostLimiter
	log     *zap.Logger
}

// New constructs a Crawler.
func New(cfg Config, q JobQueue, meta MetaStore, writer ArchiveWriter, fetcher Fetcher, limiter *HostLimiter, log *zap.Logger) *Crawler {
	return &Crawler{
		cfg:     cfg,
		queue:   q,
		meta:    meta,
		writer:  writer,
		fetcher: fetcher,
		limiter: limiter,
		log:     log,
	}
}

// Run loops until ctx is canceled, processing one URL per iteration.
func (c *Crawler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rawURL, err := c.queue.PopCrawlURL(ctx)
		if errors.Is(err, queue.ErrEmpty) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.QueuePollInterval):
			}
			continue
		}
		if err != nil {
			c.log.Error("pop crawl url failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.QueuePollInterval):
			}
			continue
		}

		c.processOne(ctx, rawURL)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.CrawlDelay):
		}
	}
}

// processOne runs one URL through the full pipeline. It never returns
// an error: every failure mode is logged and the worker advances to
// the next URL, so a single bad document never stalls the loop.
func (c *Crawler) processOne(ctx context.Context, rawURL string) {
	if !ValidURL(rawURL) {
		c.log.Info("discarding invalid url", zap.String("url", rawURL))
		return
	}

	normalized, err := Normalize(rawURL)
	if err != nil {
		c.log.Info("discarding unparseable url", zap.String("url", rawURL), zap.Error(err))
		return
	}

	docID, err := c.meta.Reserve(ctx, normalized)
	if errors.Is(err, metadata.ErrDuplicate) {
		c.log.Debug("duplicate url, skipping", zap.String("url", normalized))
		return
	}
	if err != nil {
		c.log.Error("reserve failed", zap.String("url", normalized), zap.Error(err))
		return
	}

	if c.limiter != nil {
		if err := c.limiter.For(normalized).Wait(ctx); err != nil {
			return
		}
	}

	resp, err := c.fetcher.Fetch(ctx, normalized)
	if err != nil {
		c.log.Info("fetch failed, leaving row processing", zap.String("url", normalized), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		c.log.Info("empty or unreadable body, leaving row processing", zap.String("url", normalized))
		return
	}

	offset, length, err := c.writer.WriteRecord(normalized, body)
	if err != nil {
		c.log.Error("archive write failed", zap.String("url", normalized), zap.Error(err))
		return
	}

	if err := c.meta.MarkCrawled(ctx, docID, c.writer.Basename(), offset, int32(length)); err != nil {
		c.log.Error("mark crawled failed", zap.String("url", normalized), zap.Error(err))
		return
	}

	if err := c.enqueueIndexJob(ctx, docID); err != nil {
		c.log.Warn("enqueue index job exhausted retries, marking crawled_not_queued",
			zap.Int64("doc_id", docID), zap.Error(err))
		if merr := c.meta.MarkNotQueued(ctx, docID); merr != nil {
			c.log.Error("mark not queued failed", zap.Int64("doc_id", docID), zap.Error(merr))
		}
		return
	}

	if c.cfg.FollowLinks {
		c.extractAndEnqueueLinks(ctx, resp, body)
	}
}

func (c *Crawler) enqueueIndexJob(ctx context.Context, docID int64) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.EnqueueRetries; attempt++ {
		if err := c.queue.PushIndexJob(ctx, docID); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("enqueue index job: %w", lastErr)
}

func (c *Crawler) extractAndEnqueueLinks(ctx context.Context, resp *http.Response, body []byte) {
	resp.Body = io.NopCloser(bytes.NewReader(body))
	links, err := analysis.ExtractLinks(resp)
	if err != nil {
		c.log.Debug("link extraction failed", zap.Error(err))
		return
	}
	for _, link := range links {
		if !ValidURL(link.String()) {
			continue
		}
		if err := c.queue.PushCrawlURL(ctx, link.String()); err != nil {
			c.log.Debug("failed to enqueue outlink", zap.String("url", link.String()), zap.Error(err))
		}
	}
}
