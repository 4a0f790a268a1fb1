package request

import (
	"fmt"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
)

// Search parameter limits.
const (
	MaxQueryLength = 4096
	DefaultTopK    = 10
	MaxTopK        = 50
)

// Request is a validated search query. A request with an empty query text is
// a metadata-only search and requires a non-empty filter.
type Request struct {
	query      string
	strat      strategy.Strategy
	filter     filter.Filter
	topK       int
	minScore   float64
	noMinScore bool
}

// New validates and normalizes search parameters.
// Defaults: strategy=dense, topK=10.
func New(
	query string,
	strat strategy.Strategy,
	f filter.Filter,
	topK int,
	minScore float64,
) (Request, error) {
	if query == "" && f.IsEmpty() {
		return Request{}, fmt.Errorf("%w: query text or at least one metadata filter is required", domain.ErrValidation)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrValidation, MaxQueryLength)
	}
	if strat == "" {
		strat = strategy.Dense
	}
	if !strat.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search strategy %q", domain.ErrValidation, strat)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		return Request{}, fmt.Errorf("%w: top_k must be between 1 and %d", domain.ErrValidation, MaxTopK)
	}
	if minScore < 0 || minScore > 1 {
		return Request{}, fmt.Errorf("%w: min_score must be between 0 and 1", domain.ErrValidation)
	}

	return Request{
		query:    query,
		strat:    strat,
		filter:   f,
		topK:     topK,
		minScore: minScore,
		// Score thresholding is meaningless without a query to score against.
		noMinScore: query == "",
	}, nil
}

// NewMetadataOnly builds a filter-only request (no vector query).
func NewMetadataOnly(f filter.Filter, topK int) (Request, error) {
	return New("", strategy.Dense, f, topK, 0)
}

// WithoutMinScore returns a copy with the min-score threshold disabled.
// This is the sentinel "no-filter" mode callers use when the score is not
// semantically meaningful.
func (r Request) WithoutMinScore() Request {
	r.noMinScore = true
	return r
}

// Query returns the free-text query ("" for metadata-only searches).
func (r Request) Query() string { return r.query }

// Strategy returns the retrieval strategy.
func (r Request) Strategy() strategy.Strategy { return r.strat }

// Filter returns the metadata filter.
func (r Request) Filter() filter.Filter { return r.filter }

// TopK returns the maximum number of results.
func (r Request) TopK() int { return r.topK }

// MinScore returns the score threshold.
func (r Request) MinScore() float64 { return r.minScore }

// NoMinScore reports whether the threshold step is bypassed.
func (r Request) NoMinScore() bool { return r.noMinScore }

// IsMetadataOnly reports whether the request skips the vector backends.
func (r Request) IsMetadataOnly() bool { return r.query == "" }
