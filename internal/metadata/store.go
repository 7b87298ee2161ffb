// Package metadata implements the relational document store, backed
// by PostgreSQL via pgx.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status is the document lifecycle state.
type Status string

const (
	StatusPending          Status = "pending"
	StatusProcessing       Status = "processing"
	StatusCrawled          Status = "crawled"
	StatusCrawledNotQueued Status = "crawled_not_queued"
	StatusError            Status = "error"
)

// ErrDuplicate is returned by Reserve when the url already exists.
var ErrDuplicate = errors.New("metadata: duplicate url")

// ErrNotFound is returned when a document row does not exist.
var ErrNotFound = errors.New("metadata: document not found")

// Config configures a connection to the metadata store.
type Config struct {
	DSN          string
	ConnectRetries int
	ConnectBackoff time.Duration
}

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var schemaDDL = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS documents (
	id SERIAL PRIMARY KEY,
	url TEXT UNIQUE NOT NULL,
	status VARCHAR(20) DEFAULT '%s',
	crawled_at TIMESTAMP DEFAULT now(),
	file_path TEXT,
	"offset" BIGINT,
	length INT,
	content_hash VARCHAR(64),
	title TEXT,
	doc_length INT
);
CREATE INDEX IF NOT EXISTS documents_url_idx ON documents (url);
CREATE INDEX IF NOT EXISTS documents_status_idx ON documents (status);
`, StatusPending)

// Open connects to Postgres with bounded retry: ConnectRetries
// attempts, ConnectBackoff apart, then a fatal error.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}

	var pool *pgxpool.Pool
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		pool, err = pgxpool.New(ctx, cfg.DSN)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		if attempt == retries {
			return nil, fmt.Errorf("metadata: connect after %d attempts: %w", retries, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.ConnectBackoff):
		}
	}

	s := &Store{pool: pool}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("metadata: apply schema: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Reserve inserts (url, status=processing); on a unique-constraint
// conflict it returns ErrDuplicate without mutating the existing row.
func (s *Store) Reserve(ctx context.Context, url string) (int64, error) {
	const q = `
		INSERT INTO documents (url, status)
		VALUES ($1, $2)
		ON CONFLICT (url) DO NOTHING
		RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, q, url, StatusProcessing).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("metadata: reserve: %w", err)
	}
	return id, nil
}

// MarkCrawled transitions processing -> crawled and records the
// archive locator.
func (s *Store) MarkCrawled(ctx context.Context, docID int64, file string, offset int64, length int32) error {
	const q = `
		UPDATE documents
		SET status = $2, crawled_at = now(), file_path = $3, "offset" = $4, length = $5
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, q, docID, StatusCrawled, file, offset, length)
	if err != nil {
		return fmt.Errorf("metadata: mark crawled: %w", err)
	}
	return nil
}

// MarkFailed sets status = error.
func (s *Store) MarkFailed(ctx context.Context, docID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE documents SET status = $2 WHERE id = $1`, docID, StatusError)
	if err != nil {
		return fmt.Errorf("metadata: mark failed: %w", err)
	}
	return nil
}

// MarkNotQueued sets status = crawled_not_queued (crawled but the
// index enqueue attempt exhausted its retries).
func (s *Store) MarkNotQueued(ctx context.Context, docID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE documents SET status = $2 WHERE id = $1`, docID, StatusCrawledNotQueued)
	if err != nil {
		return fmt.Errorf("metadata: mark not queued: %w", err)
	}
	return nil
}

// Locator is the archive (file, offset, length) triple.
type Locator struct {
	File   string
	Offset int64
	Length int32
}

// FetchLocator reads the archive locator for a crawled document.
func (s *Store) FetchLocator(ctx context.Context, docID int64) (Locator, error) {
	const q = `SELECT file_path, "offset", length FROM documents WHERE id = $1`
	var loc Locator
	var file *string
	var offset *int64
	var length *int32
	err := s.pool.QueryRow(ctx, q, docID).Scan(&file, &offset, &length)
	if errors.Is(err, pgx.ErrNoRows) {
		return Locator{}, ErrNotFound
	}
	if err != nil {
		return Locator{}, fmt.Errorf("metadata: fetch locator: %w", err)
	}
	if file == nil || offset == nil || length == nil {
		return Locator{}, fmt.Errorf("metadata: document %d has no archive locator", docID)
	}
	loc.File, loc.Offset, loc.Length = *file, *offset, *length
	return loc, nil
}

// SetDocLength records the pre-deduplication token count, set exactly
// once per document by whichever indexer run first succeeds.
func (s *Store) SetDocLength(ctx context.Context, docID int64, n int, title string) error {
	const q = `UPDATE documents SET doc_length = $2, title = $3 WHERE id = $1 AND doc_length IS NULL`
	_, err := s.pool.Exec(ctx, q, docID, n, title)
	if err != nil {
		return fmt.Errorf("metadata: set doc length: %w", err)
	}
	return nil
}

// DocMeta is the subset of document fields the ranker needs to render
// a result.
type DocMeta struct {
	ID    int64
	URL   string
	Title string
}

// FetchMetaBatch fetches (url, title) for a set of doc ids in a single
// query.
func (s *Store) FetchMetaBatch(ctx context.Context, docIDs []int64) (map[int64]DocMeta, error) {
	if len(docIDs) == 0 {
		return map[int64]DocMeta{}, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT id, url, COALESCE(title, '') FROM documents WHERE id = ANY($1)`, docIDs)
	if err != nil {
		return nil, fmt.Errorf("metadata: fetch meta batch: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]DocMeta, len(docIDs))
	for rows.Next() {
		var m DocMeta
		if err := rows.Scan(&m.ID, &m.URL, &m.Title); err != nil {
			return nil, fmt.Errorf("metadata: scan meta row: %w", err)
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

// AverageDocLength computes avgdl and the total indexed document count
// for BM25 scoring.
func (s *Store) AverageDocLength(ctx context.Context) (avgdl float64, total int64, err error) {
	const q = `SELECT COALESCE(AVG(doc_length), 0), COUNT(*) FROM documents WHERE doc_length IS NOT NULL`
	if err := s.pool.QueryRow(ctx, q).Scan(&avgdl, &total); err != nil {
		return 0, 0, fmt.Errorf("metadata: average doc length: %w", err)
	}
	return avgdl, total, nil
}

// FetchDocLengths fetches |D| for a batch of candidate doc ids, for
// use as the BM25 length-normalization term.
func (s *Store) FetchDocLengths(ctx context.Context, docIDs []int64) (map[int64]int, error) {
	if len(docIDs) == 0 {
		return map[int64]int{}, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT id, COALESCE(doc_length, 0) FROM documents WHERE id = ANY($1)`, docIDs)
	if err != nil {
		return nil, fmt.Errorf("metadata: fetch doc lengths: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int, len(docIDs))
	for rows.Next() {
		var id int64
		var length int
		if err := rows.Scan(&id, &length); err != nil {
			return nil, fmt.Errorf("metadata: scan doc length row: %w", err)
		}
		out[id] = length
	}
	return out, rows.Err()
}
