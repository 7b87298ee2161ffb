// Command indexer runs the indexer worker: it pops doc ids from the
// indexing queue, reads their archive slice, tokenizes the visible
// text, and updates the inverted index and doc_length.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Digvijay-x1/search-engine/internal/archive"
	"github.com/Digvijay-x1/search-engine/internal/config"
	"github.com/Digvijay-x1/search-engine/internal/index"
	"github.com/Digvijay-x1/search-engine/internal/invindex"
	"github.com/Digvijay-x1/search-engine/internal/logging"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
	"github.com/Digvijay-x1/search-engine/internal/queue"
)

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Run the indexer worker",
	RunE:  runIndexer,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, args []string) error {
	log := logging.New("indexer")
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

	reader := archive.NewReader(cfg.Archive.BasePath)

	postings, err := invindex.Open(cfg.Index.Path)
	if err != nil {
		log.Fatal("open posting store", zap.Error(err))
	}
	defer postings.Close()

	idx := index.New(index.Config{
		MaxDecompressedSize: cfg.Index.MaxDecompressedSize,
		MinTermLen:          cfg.Rank.MinTermLen,
	}, q, meta, reader, postings, log)

	log.Info("indexer starting")
	idx.Run(ctx)
	log.Info("indexer stopped")
	return nil
}
