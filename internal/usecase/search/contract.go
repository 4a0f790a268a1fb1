package search

import (
	"context"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

// Backend is the external vector-search collaborator. Each query returns
// results already sorted best-first; calls need not be globally consistent
// with one another. Retry and timeout policy belong to the implementation.
type Backend interface {
	// QueryDense searches the embedding index by semantic similarity.
	QueryDense(ctx context.Context, text string, topK int) ([]result.Hit, error)

	// QuerySparse searches the lexical index.
	QuerySparse(ctx context.Context, text string, topK int) ([]result.Hit, error)

	// ScanByMetadata lists documents matching a filter without scoring.
	ScanByMetadata(ctx context.Context, f filter.Filter, topK int) ([]result.Hit, error)

	// FetchDocument returns a document's metadata and excerpt.
	FetchDocument(ctx context.Context, id string) (archive.Document, error)

	// FetchFullText returns a document's full body, bypassing excerpt
	// truncation.
	FetchFullText(ctx context.Context, id string) (string, error)
}
