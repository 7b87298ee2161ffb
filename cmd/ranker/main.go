// Command ranker runs the ranking service: an HTTP API exposing
// /health and /search (BM25 ranking over the inverted index).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Digvijay-x1/search-engine/internal/archive"
	"github.com/Digvijay-x1/search-engine/internal/config"
	"github.com/Digvijay-x1/search-engine/internal/invindex"
	"github.com/Digvijay-x1/search-engine/internal/logging"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
	"github.com/Digvijay-x1/search-engine/internal/queue"
	"github.com/Digvijay-x1/search-engine/internal/rank"
)

var rootCmd = &cobra.Command{
	Use:   "ranker",
	Short: "Run the ranking service",
	RunE:  runRanker,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRanker(cmd *cobra.Command, args []string) error {
	log := logging.New("ranker")
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

	postings, err := invindex.Open(cfg.Index.Path)
	if err != nil {
		log.Fatal("open posting store", zap.Error(err))
	}
	defer postings.Close()

	reader := archive.NewReader(cfg.Archive.BasePath)
	snippets := rank.NewArchiveSnippetSource(meta, reader, cfg.Index.MaxDecompressedSize)

	svc := rank.New(rank.Config{
		TopK:         cfg.Rank.TopK,
		SnippetChars: cfg.Rank.SnippetChars,
		CacheTTL:     cfg.Rank.CacheTTL,
		MinTermLen:   cfg.Rank.MinTermLen,
		Params:       rank.Params{K1: cfg.Rank.K1, B: cfg.Rank.B},
	}, postings, meta, q, snippets)

	router := rank.NewRouter(svc, log)

	srv := &http.Server{
		Addr:              cfg.Rank.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("ranker listening", zap.String("addr", cfg.Rank.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("serve", zap.Error(err))
	}
	log.Info("ranker stopped")
	return nil
}
