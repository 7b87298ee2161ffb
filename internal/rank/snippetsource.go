package rank

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Digvijay-x1/search-engine/internal/archive"
	"github.com/Digvijay-x1/search-engine/internal/index"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
)

// LocatorStore is the metadata lookup the archive-backed snippet
// source needs to turn a doc id back into a (file, offset, length).
type LocatorStore interface {
	FetchLocator(ctx context.Context, docID int64) (metadata.Locator, error)
}

// ArchiveReader is the subset of *archive.Reader the snippet source
// needs to recover a record's raw bytes.
type ArchiveReader interface {
	ReadRecord(file string, offset, length int64, maxDecompressed int64) ([]byte, error)
}

// ArchiveSnippetSource implements SnippetSource by re-reading a
// document's WARC slice from the archive and re-extracting its
// visible text, the same path the indexer worker takes.
type ArchiveSnippetSource struct {
	locators            LocatorStore
	reader              ArchiveReader
	maxDecompressedSize int64
}

// NewArchiveSnippetSource constructs an ArchiveSnippetSource.
func NewArchiveSnippetSource(locators LocatorStore, reader ArchiveReader, maxDecompressedSize int64) *ArchiveSnippetSource {
	return &ArchiveSnippetSource{locators: locators, reader: reader, maxDecompressedSize: maxDecompressedSize}
}

// Text recovers the visible body text of docID.
func (a *ArchiveSnippetSource) Text(ctx context.Context, docID int64) (string, error) {
	loc, err := a.locators.FetchLocator(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("rank: fetch locator for doc %d: %w", docID, err)
	}

	raw, err := a.reader.ReadRecord(loc.File, int64(loc.Offset), int64(loc.Length), a.maxDecompressedSize)
	if err != nil {
		return "", fmt.Errorf("rank: read record for doc %d: %w", docID, err)
	}

	_, payload, err := archive.SplitWARCRecord(raw)
	if err != nil {
		return "", fmt.Errorf("rank: split record for doc %d: %w", docID, err)
	}

	_, text, err := index.ExtractVisibleText(bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("rank: extract text for doc %d: %w", docID, err)
	}
	return text, nil
}
