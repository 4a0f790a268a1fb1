package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/request"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
	"github.com/sedwardstx/DprgArchiveAgent/internal/metrics"
)

// Service orchestrates archive retrieval across dense, sparse, and hybrid
// strategies.
type Service struct {
	backend      Backend
	denseWeight  float64
	sparseWeight float64
	logger       *zap.Logger
}

// New creates a retrieval service. The weights apply to hybrid merging and
// are used as given (see Merge).
func New(backend Backend, denseWeight, sparseWeight float64, logger *zap.Logger) *Service {
	return &Service{
		backend:      backend,
		denseWeight:  denseWeight,
		sparseWeight: sparseWeight,
		logger:       logger,
	}
}

// Retrieve executes a search request: backend queries, metadata filtering,
// hybrid merging, top-k truncation, and min-score thresholding. Backend
// failures surface as retrieval failures; there is no internal retry.
func (s *Service) Retrieve(ctx context.Context, req request.Request) ([]result.Hit, error) {
	start := time.Now()

	var hits []result.Hit
	var err error

	switch {
	case req.IsMetadataOnly():
		hits, err = s.scan(ctx, req)
	case req.Strategy() == strategy.Hybrid:
		hits, err = s.retrieveHybrid(ctx, req)
	default:
		hits, err = s.retrieveSingle(ctx, req)
	}

	label := string(req.Strategy())
	if req.IsMetadataOnly() {
		label = "metadata"
	}
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(label, "error").Inc()
		return nil, err
	}

	if !req.NoMinScore() {
		kept := hits[:0]
		for _, h := range hits {
			if h.Score() >= req.MinScore() {
				kept = append(kept, h)
			}
		}
		hits = kept
	}

	metrics.SearchRequestsTotal.WithLabelValues(label, "success").Inc()
	metrics.SearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	s.logger.Debug("retrieval completed",
		zap.String("strategy", label),
		zap.Int("results", len(hits)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return hits, nil
}

// retrieveSingle runs one dense or sparse query, filters, and truncates.
func (s *Service) retrieveSingle(ctx context.Context, req request.Request) ([]result.Hit, error) {
	var hits []result.Hit
	var err error

	switch req.Strategy() {
	case strategy.Dense:
		hits, err = s.backend.QueryDense(ctx, req.Query(), req.TopK())
		if err != nil {
			return nil, fmt.Errorf("%w: dense query: %w", domain.ErrRetrievalFailure, err)
		}
	case strategy.Sparse:
		hits, err = s.backend.QuerySparse(ctx, req.Query(), req.TopK())
		if err != nil {
			return nil, fmt.Errorf("%w: sparse query: %w", domain.ErrRetrievalFailure, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported strategy %q", domain.ErrValidation, req.Strategy())
	}

	hits = applyFilter(hits, req.Filter())
	return truncate(hits, req.TopK()), nil
}

// retrieveHybrid issues both queries concurrently, filters each side
// independently, merges, and truncates. The goroutines join before Merge
// runs. Each side asks for twice top_k so filtering and fusion have
// candidates to work with.
func (s *Service) retrieveHybrid(ctx context.Context, req request.Request) ([]result.Hit, error) {
	candidateK := req.TopK() * 2

	var wg sync.WaitGroup
	var dense, sparse []result.Hit
	var denseErr, sparseErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		dense, denseErr = s.backend.QueryDense(ctx, req.Query(), candidateK)
	}()
	go func() {
		defer wg.Done()
		sparse, sparseErr = s.backend.QuerySparse(ctx, req.Query(), candidateK)
	}()
	wg.Wait()

	if denseErr != nil {
		return nil, fmt.Errorf("%w: dense query: %w", domain.ErrRetrievalFailure, denseErr)
	}
	if sparseErr != nil {
		return nil, fmt.Errorf("%w: sparse query: %w", domain.ErrRetrievalFailure, sparseErr)
	}

	dense = applyFilter(dense, req.Filter())
	sparse = applyFilter(sparse, req.Filter())

	merged := Merge(dense, sparse, s.denseWeight, s.sparseWeight)
	return truncate(merged, req.TopK()), nil
}

// scan runs a metadata-only search: no vector backend, no score threshold.
func (s *Service) scan(ctx context.Context, req request.Request) ([]result.Hit, error) {
	hits, err := s.backend.ScanByMetadata(ctx, req.Filter(), req.TopK())
	if err != nil {
		return nil, fmt.Errorf("%w: metadata scan: %w", domain.ErrRetrievalFailure, err)
	}
	// The backend lists candidates; the filter stays authoritative.
	hits = applyFilter(hits, req.Filter())
	return truncate(hits, req.TopK()), nil
}

func applyFilter(hits []result.Hit, f filter.Filter) []result.Hit {
	if f.IsEmpty() {
		return hits
	}
	kept := hits[:0]
	for _, h := range hits {
		if f.Matches(h.Document().Metadata()) {
			kept = append(kept, h)
		}
	}
	return kept
}

func truncate(hits []result.Hit, topK int) []result.Hit {
	if len(hits) > topK {
		return hits[:topK]
	}
	return hits
}
