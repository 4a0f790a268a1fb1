package archiveagent

import (
	"context"
	"fmt"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/request"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
)

// Search executes a free-text search against the archive.
func (c *Client) Search(
	ctx context.Context, query string, opts *SearchOptions,
) ([]SearchResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	req, err := request.New(
		query, strategy.Strategy(opts.Strategy), toInternalFilter(opts.Filter),
		opts.TopK, opts.MinScore,
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits, err := c.searchSvc.Retrieve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromHits(hits), nil
}

// Metadata lists archive documents matching a filter, without scoring.
func (c *Client) Metadata(ctx context.Context, f Filter, topK int) ([]SearchResult, error) {
	req, err := request.NewMetadataOnly(toInternalFilter(f), topK)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	hits, err := c.searchSvc.Retrieve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return fromHits(hits), nil
}

func toInternalFilter(f Filter) filter.Filter {
	return filter.New(f.Author, f.Title, f.Year, f.Month, f.Day, f.Keywords)
}

func fromHits(hits []result.Hit) []SearchResult {
	out := make([]SearchResult, len(hits))
	for i := range hits {
		out[i] = SearchResult{
			Document: fromDocument(hits[i].Document()),
			Score:    hits[i].Score(),
		}
	}
	return out
}

func fromDocument(d archive.Document) Document {
	meta := d.Metadata()
	return Document{
		ID:       d.ID(),
		Excerpt:  d.TextExcerpt(),
		Author:   meta.Author,
		Title:    meta.Title,
		Date:     meta.Date(),
		Keywords: meta.Keywords,
		HasURL:   meta.HasURL,
	}
}
