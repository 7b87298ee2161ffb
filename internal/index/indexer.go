// Package index implements the indexer worker: pop a doc id, read and
// decompress its archive slice, parse the HTML, tokenize, and update
// the inverted index and doc_length.
package index

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Digvijay-x1/search-engine/internal/archive"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
	"github.com/Digvijay-x1/search-engine/internal/tokenize"
)

// JobQueue is the subset of *queue.Queue the indexer needs.
type JobQueue interface {
	PopIndexJob(ctx context.Context) (int64, error)
}

// MetaStore is the subset of *metadata.Store the indexer needs.
type MetaStore interface {
	FetchLocator(ctx context.Context, docID int64) (metadata.Locator, error)
	SetDocLength(ctx context.Context, docID int64, n int, title string) error
}

// ArchiveReader is the subset of *archive.Reader the indexer needs.
type ArchiveReader interface {
	ReadRecord(file string, offset, length int64, maxDecompressed int64) ([]byte, error)
}

// PostingStore is the subset of *invindex.Store the indexer needs.
type PostingStore interface {
	AddDoc(term string, docID int64, tf uint64) error
}

// Config holds the worker-loop tunables.
type Config struct {
	MaxDecompressedSize int64
	MinTermLen          int
}

// Indexer pops doc ids off the indexing queue and updates the
// inverted index.
type Indexer struct {
	cfg      Config
	queue    JobQueue
	meta     MetaStore
	reader   ArchiveReader
	postings PostingStore
	log      *zap.Logger
}

// New constructs an Indexer.
func New(cfg Config, q JobQueue, meta MetaStore, reader ArchiveReader, postings PostingStore, log *zap.Logger) *Indexer {
	return &Indexer{cfg: cfg, queue: q, meta: meta, reader: reader, postings: postings, log: log}
}

// Run loops until ctx is canceled, processing one doc id per blocking
// pop with indefinite timeout.
func (ix *Indexer) Run(ctx context.Context) {
	for {
		docID, err := ix.queue.PopIndexJob(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			ix.log.Error("pop index job failed", zap.Error(err))
			continue
		}
		ix.processOne(ctx, docID)
	}
}

// processOne indexes a single document. Any failure is logged and the
// worker advances to the next job; there is no retry queue.
func (ix *Indexer) processOne(ctx context.Context, docID int64) {
	loc, err := ix.meta.FetchLocator(ctx, docID)
	if err != nil {
		ix.log.Error("fetch locator failed", zap.Int64("doc_id", docID), zap.Error(err))
		return
	}

	raw, err := ix.reader.ReadRecord(loc.File, loc.Offset, int64(loc.Length), ix.cfg.MaxDecompressedSize)
	if err != nil {
		if errors.Is(err, archive.ErrOversize) {
			ix.log.Warn("archive record exceeds maximum decompressed size, skipping",
				zap.Int64("doc_id", docID))
		} else {
			ix.log.Warn("archive read failed, skipping", zap.Int64("doc_id", docID), zap.Error(err))
		}
		return
	}

	_, payload, err := archive.SplitWARCRecord(raw)
	if err != nil {
		ix.log.Warn("missing WARC header boundary, skipping", zap.Int64("doc_id", docID), zap.Error(err))
		return
	}

	title, text, err := ExtractVisibleText(bytes.NewReader(payload))
	if err != nil {
		ix.log.Warn("html parse failed, skipping", zap.Int64("doc_id", docID), zap.Error(err))
		return
	}

	tokens := tokenize.Tokens(text, ix.cfg.MinTermLen)
	freq, docLength := tokenize.Frequencies(tokens)

	for term, tf := range freq {
		if err := ix.postings.AddDoc(term, docID, tf); err != nil {
			ix.log.Warn("posting list update failed, index may be partially updated",
				zap.String("term", term), zap.Int64("doc_id", docID), zap.Error(err))
		}
	}

	if err := ix.meta.SetDocLength(ctx, docID, docLength, title); err != nil {
		ix.log.Error("set doc length failed", zap.Int64("doc_id", docID), zap.Error(err))
	}
}
