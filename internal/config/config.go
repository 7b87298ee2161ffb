// Package config centralizes the environment-driven configuration shared
// by the crawler, indexer and ranking binaries.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the crawler, indexer, and ranker need.
type Config struct {
	Redis    RedisConfig
	Postgres PostgresConfig
	Index    IndexConfig
	Archive  ArchiveConfig
	Crawl    CrawlConfig
	Rank     RankConfig
}

// RedisConfig addresses the job-queue-and-cache backing store.
type RedisConfig struct {
	Host string
	Port int
	DB   int

	ConnectRetries int
	ConnectBackoff time.Duration
}

// Addr returns the host:port pair go-redis expects.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PostgresConfig addresses the metadata store.
type PostgresConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Pass     string
	ConnStr  string
	ConnTries int
	ConnDelay time.Duration
}

// DSN returns the connection string, preferring an explicit DB_CONN_STR.
func (p PostgresConfig) DSN() string {
	if p.ConnStr != "" {
		return p.ConnStr
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Pass, p.Host, p.Port, p.Name)
}

// IndexConfig addresses the inverted-index KV store.
type IndexConfig struct {
	Path               string
	MaxDecompressedSize int64
}

// ArchiveConfig addresses the WARC archive files.
type ArchiveConfig struct {
	BasePath    string
	ActiveFile  string
}

// CrawlConfig holds crawler worker tunables.
type CrawlConfig struct {
	SeedURL           string
	FetchTimeout      time.Duration
	QueuePollInterval time.Duration
	CrawlDelay        time.Duration
	EnqueueRetries    int
	UserAgent         string
	FollowLinks       bool
	PerHostRPS        float64
	PerHostBurst      int
}

// RankConfig holds ranking-service tunables.
type RankConfig struct {
	ListenAddr   string
	TopK         int
	SnippetChars int
	CacheTTL     time.Duration
	K1           float64
	B            float64
	MinTermLen   int
}

// Load reads configuration from the environment. Unset viper keys fall
// back to the defaults set below.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_connect_retries", 10)
	v.SetDefault("redis_connect_backoff", 5*time.Second)

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_name", "search")
	v.SetDefault("db_user", "search")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_conn_str", "")
	v.SetDefault("db_connect_retries", 10)
	v.SetDefault("db_connect_backoff", 5*time.Second)

	v.SetDefault("rocksdb_path", "data/index")
	v.SetDefault("index_max_decompressed_bytes", int64(100*1024*1024))

	v.SetDefault("warc_base_path", "data/archive")
	v.SetDefault("warc_active_file", "crawl.warc.gz")

	v.SetDefault("crawler_seed_url", "")
	v.SetDefault("crawler_fetch_timeout", 10*time.Second)
	v.SetDefault("queue_poll_interval", 5*time.Second)
	v.SetDefault("crawl_delay", 1*time.Second)
	v.SetDefault("crawler_enqueue_retries", 3)
	v.SetDefault("crawler_user_agent", "search-enginebot/1.0 (+https://example.invalid/bot)")
	v.SetDefault("crawler_follow_links", false)
	v.SetDefault("crawler_per_host_rps", 1.0)
	v.SetDefault("crawler_per_host_burst", 2)

	v.SetDefault("ranker_listen_addr", ":8080")
	v.SetDefault("ranker_top_k", 10)
	v.SetDefault("ranker_snippet_chars", 160)
	v.SetDefault("ranker_cache_ttl", 5*time.Minute)
	v.SetDefault("ranker_bm25_k1", 1.2)
	v.SetDefault("ranker_bm25_b", 0.75)
	v.SetDefault("ranker_min_term_len", 3)

	cfg := &Config{
		Redis: RedisConfig{
			Host:           v.GetString("redis_host"),
			Port:           v.GetInt("redis_port"),
			DB:             v.GetInt("redis_db"),
			ConnectRetries: v.GetInt("redis_connect_retries"),
			ConnectBackoff: v.GetDuration("redis_connect_backoff"),
		},
		Postgres: PostgresConfig{
			Host:      v.GetString("db_host"),
			Port:      v.GetInt("db_port"),
			Name:      v.GetString("db_name"),
			User:      v.GetString("db_user"),
			Pass:      v.GetString("db_pass"),
			ConnStr:   v.GetString("db_conn_str"),
			ConnTries: v.GetInt("db_connect_retries"),
			ConnDelay: v.GetDuration("db_connect_backoff"),
		},
		Index: IndexConfig{
			Path:                v.GetString("rocksdb_path"),
			MaxDecompressedSize: v.GetInt64("index_max_decompressed_bytes"),
		},
		Archive: ArchiveConfig{
			BasePath:   v.GetString("warc_base_path"),
			ActiveFile: v.GetString("warc_active_file"),
		},
		Crawl: CrawlConfig{
			SeedURL:           v.GetString("crawler_seed_url"),
			FetchTimeout:      v.GetDuration("crawler_fetch_timeout"),
			QueuePollInterval: v.GetDuration("queue_poll_interval"),
			CrawlDelay:        v.GetDuration("crawl_delay"),
			EnqueueRetries:    v.GetInt("crawler_enqueue_retries"),
			UserAgent:         v.GetString("crawler_user_agent"),
			FollowLinks:       v.GetBool("crawler_follow_links"),
			PerHostRPS:        v.GetFloat64("crawler_per_host_rps"),
			PerHostBurst:      v.GetInt("crawler_per_host_burst"),
		},
		Rank: RankConfig{
			ListenAddr:   v.GetString("ranker_listen_addr"),
			TopK:         v.GetInt("ranker_top_k"),
			SnippetChars: v.GetInt("ranker_snippet_chars"),
			CacheTTL:     v.GetDuration("ranker_cache_ttl"),
			K1:           v.GetFloat64("ranker_bm25_k1"),
			B:            v.GetFloat64("ranker_bm25_b"),
			MinTermLen:   v.GetInt("ranker_min_term_len"),
		},
	}

	return cfg, nil
}
