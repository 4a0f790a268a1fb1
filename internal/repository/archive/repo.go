// Package archive implements the vector-search backend over a RediSearch
// index holding the DPRG list archive.
package archive

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	domarch "github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

// Embedder vectorizes query text for the dense index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds connection parameters for the archive index.
type Config struct {
	Addrs     []string
	Password  string
	IndexName string
	KeyPrefix string
}

// Repo implements usecase/search.Backend over a RediSearch archive index.
// Documents are stored as hashes: text, text_excerpt, author, title, year,
// month, day, keywords (comma-separated), has_url, vector.
type Repo struct {
	client   rueidis.Client
	embedder Embedder
	index    string
	prefix   string
}

// returnFields are the hash fields fetched for search hits. The full text
// is deliberately excluded; FetchFullText reads it on demand.
var returnFields = []string{
	"text_excerpt", "author", "title", "year", "month", "day", "keywords", "has_url",
}

// New connects to the archive index.
func New(cfg Config, embedder Embedder) (*Repo, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Repo{
		client:   client,
		embedder: embedder,
		index:    cfg.IndexName,
		prefix:   cfg.KeyPrefix,
	}, nil
}

// Close shuts down the client.
func (r *Repo) Close() {
	r.client.Close()
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	cmd := r.client.B().Ping().Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls until the index answers or the timeout expires.
func (r *Repo) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for archive index: %w", ctx.Err())
		case <-ticker.C:
			if err := r.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// QueryDense embeds the query and runs a KNN search.
func (r *Repo) QueryDense(ctx context.Context, text string, topK int) ([]result.Hit, error) {
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @vector $BLOB]", topK)

	args := []string{r.index, queryStr}
	args = appendReturnFields(args, append(returnFields, "__vector_score"))
	args = append(args,
		"SORTBY", "__vector_score",
		"PARAMS", "2", "BLOB", vectorToBytes(vec),
		"DIALECT", "2",
		"LIMIT", "0", strconv.Itoa(topK),
	)

	cmd := r.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := r.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}

	return parseKNNHits(raw, r.prefix)
}

// QuerySparse runs a BM25 text search.
func (r *Repo) QuerySparse(ctx context.Context, text string, topK int) ([]result.Hit, error) {
	queryStr := fmt.Sprintf("@text:(%s)", escapeQuery(text))

	args := []string{r.index, queryStr}
	args = appendReturnFields(args, returnFields)
	args = append(args,
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(topK),
		"DIALECT", "2",
	)

	cmd := r.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := r.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("sparse search: %w", err)
	}

	return parseBM25Hits(raw, r.prefix)
}

// ScanByMetadata lists documents matching a filter without scoring. The
// filter translates to an FT.SEARCH pre-filter; hits come back with zero
// scores since no query text ranked them.
func (r *Repo) ScanByMetadata(ctx context.Context, f filter.Filter, topK int) ([]result.Hit, error) {
	queryStr := buildFilterQuery(f)
	if queryStr == "" {
		queryStr = "*"
	}

	args := []string{r.index, queryStr}
	args = appendReturnFields(args, returnFields)
	args = append(args,
		"LIMIT", "0", strconv.Itoa(topK),
		"DIALECT", "2",
	)

	cmd := r.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := r.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("metadata scan: %w", err)
	}

	return parseListHits(raw, r.prefix)
}

// FetchDocument returns a document's metadata and excerpt.
func (r *Repo) FetchDocument(ctx context.Context, id string) (domarch.Document, error) {
	cmd := r.client.B().Hgetall().Key(r.prefix + id).Build()
	fields, err := r.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		return domarch.Document{}, fmt.Errorf("fetch document %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domarch.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return documentFromFields(id, fields), nil
}

// FetchFullText returns a document's full body, bypassing the excerpt.
func (r *Repo) FetchFullText(ctx context.Context, id string) (string, error) {
	cmd := r.client.B().Hget().Key(r.prefix + id).Field("text").Build()
	text, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return "", fmt.Errorf("fetch full text %s: %w", id, err)
	}
	return text, nil
}

func appendReturnFields(args, fields []string) []string {
	args = append(args, "RETURN", strconv.Itoa(len(fields)))
	return append(args, fields...)
}
