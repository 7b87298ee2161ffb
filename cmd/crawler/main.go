// Command crawler runs the crawl worker: it pops URLs from the crawl
// queue, fetches them, writes WARC records to the archive, records
// metadata, and enqueues indexing jobs.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Digvijay-x1/search-engine/internal/archive"
	"github.com/Digvijay-x1/search-engine/internal/config"
	"github.com/Digvijay-x1/search-engine/internal/crawl"
	"github.com/Digvijay-x1/search-engine/internal/logging"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
	"github.com/Digvijay-x1/search-engine/internal/queue"
)

var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "Run the crawl worker",
	RunE:  runCrawler,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCrawler(cmd *cobra.Command, args []string) error {
	log := logging.New("crawler")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q, err := queue.New(ctx, queue.Config{
		Addr:           cfg.Redis.Addr(),
		DB:             cfg.Redis.DB,
		ConnectRetries: cfg.Redis.ConnectRetries,
		ConnectBackoff: cfg.Redis.ConnectBackoff,
	})
	if err != nil {
		log.Fatal("connect to queue", zap.Error(err))
	}
	defer q.Close()

	meta, err := metadata.Open(ctx, metadata.Config{
		DSN:            cfg.Postgres.DSN(),
		ConnectRetries: cfg.Postgres.ConnTries,
		ConnectBackoff: cfg.Postgres.ConnDelay,
	})
	if err != nil {
		log.Fatal("connect to metadata store", zap.Error(err))
	}
	defer meta.Close()

	archivePath := filepath.Join(cfg.Archive.BasePath, cfg.Archive.ActiveFile)
	writer, err := archive.NewWriter(archivePath)
	if err != nil {
		log.Fatal("open archive writer", zap.Error(err))
	}
	defer writer.Close()

	if err := q.SeedIfEmpty(ctx, cfg.Crawl.SeedURL); err != nil {
		log.Fatal("seed crawl queue", zap.Error(err))
	}

	fetcher := crawl.NewHTTPFetcher(cfg.Crawl.FetchTimeout, cfg.Crawl.UserAgent)
	limiter := crawl.NewHostLimiter(cfg.Crawl.PerHostRPS, cfg.Crawl.PerHostBurst)

	c := crawl.New(crawl.Config{
		QueuePollInterval: cfg.Crawl.QueuePollInterval,
		CrawlDelay:        cfg.Crawl.CrawlDelay,
		EnqueueRetries:    cfg.Crawl.EnqueueRetries,
		FollowLinks:       cfg.Crawl.FollowLinks,
	}, q, meta, writer, fetcher, limiter, log)

	log.Info("crawler starting", zap.String("archive", archivePath))
	c.Run(ctx)
	log.Info("crawler stopped")
	return nil
}
