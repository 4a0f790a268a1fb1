package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/request"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
)

// --- Mocks ---

type mockBackend struct {
	denseHits  []result.Hit
	denseErr   error
	sparseHits []result.Hit
	sparseErr  error
	scanHits   []result.Hit
	scanErr    error

	denseCalled  bool
	sparseCalled bool
	scanCalled   bool
	lastTopK     int
}

func (m *mockBackend) QueryDense(_ context.Context, _ string, topK int) ([]result.Hit, error) {
	m.denseCalled = true
	m.lastTopK = topK
	return m.denseHits, m.denseErr
}

func (m *mockBackend) QuerySparse(_ context.Context, _ string, topK int) ([]result.Hit, error) {
	m.sparseCalled = true
	return m.sparseHits, m.sparseErr
}

func (m *mockBackend) ScanByMetadata(_ context.Context, _ filter.Filter, _ int) ([]result.Hit, error) {
	m.scanCalled = true
	return m.scanHits, m.scanErr
}

func (m *mockBackend) FetchDocument(_ context.Context, id string) (archive.Document, error) {
	return archive.Document{}, domain.ErrDocumentNotFound
}

func (m *mockBackend) FetchFullText(_ context.Context, _ string) (string, error) {
	return "", domain.ErrDocumentNotFound
}

func svcHit(id string, score float64, meta archive.Metadata) result.Hit {
	return result.New(archive.New(id, "excerpt", meta), score, 0)
}

func makeRequest(t *testing.T, query string, strat strategy.Strategy, topK int, minScore float64) request.Request {
	t.Helper()
	r, err := request.New(query, strat, filter.Filter{}, topK, minScore)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

// --- Tests ---

func TestRetrieve_Dense(t *testing.T) {
	backend := &mockBackend{denseHits: []result.Hit{svcHit("a", 0.9, archive.Metadata{})}}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	hits, err := svc.Retrieve(context.Background(), makeRequest(t, "q", strategy.Dense, 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if !backend.denseCalled {
		t.Error("expected QueryDense to be called")
	}
	if backend.sparseCalled {
		t.Error("QuerySparse should not be called for a dense request")
	}
}

func TestRetrieve_Sparse(t *testing.T) {
	backend := &mockBackend{sparseHits: []result.Hit{svcHit("a", 2.5, archive.Metadata{})}}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	req := makeRequest(t, "q", strategy.Sparse, 10, 0).WithoutMinScore()
	hits, err := svc.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if backend.denseCalled {
		t.Error("QueryDense should not be called for a sparse request")
	}
}

func TestRetrieve_HybridCallsBothAndMerges(t *testing.T) {
	backend := &mockBackend{
		denseHits:  []result.Hit{svcHit("a", 0.9, archive.Metadata{})},
		sparseHits: []result.Hit{svcHit("b", 1.8, archive.Metadata{})},
	}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	req := makeRequest(t, "q", strategy.Hybrid, 10, 0).WithoutMinScore()
	hits, err := svc.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if !backend.denseCalled || !backend.sparseCalled {
		t.Error("hybrid should call both backends")
	}
	// Each side over-fetches so filtering leaves candidates.
	if backend.lastTopK != 20 {
		t.Errorf("expected candidate top_k 20, got %d", backend.lastTopK)
	}
}

func TestRetrieve_HybridBackendErrorSurfaces(t *testing.T) {
	backend := &mockBackend{sparseErr: errors.New("index gone")}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), makeRequest(t, "q", strategy.Hybrid, 10, 0))
	if !errors.Is(err, domain.ErrRetrievalFailure) {
		t.Fatalf("expected ErrRetrievalFailure, got %v", err)
	}
}

func TestRetrieve_MinScoreThreshold(t *testing.T) {
	backend := &mockBackend{denseHits: []result.Hit{
		svcHit("high", 0.9, archive.Metadata{}),
		svcHit("low", 0.3, archive.Metadata{}),
	}}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	hits, err := svc.Retrieve(context.Background(), makeRequest(t, "q", strategy.Dense, 10, 0.7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Document().ID() != "high" {
		t.Fatalf("expected only the high-scoring hit, got %v", hits)
	}
}

func TestRetrieve_ThresholdCanEmptyTheResult(t *testing.T) {
	backend := &mockBackend{denseHits: []result.Hit{svcHit("a", 0.5, archive.Metadata{})}}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	hits, err := svc.Retrieve(context.Background(), makeRequest(t, "q", strategy.Dense, 10, 1.0))
	if err != nil {
		t.Fatalf("threshold filtering is not an error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected empty result, got %d hits", len(hits))
	}
}

func TestRetrieve_NoMinScoreBypassesThreshold(t *testing.T) {
	backend := &mockBackend{denseHits: []result.Hit{svcHit("a", 0.1, archive.Metadata{})}}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	req := makeRequest(t, "q", strategy.Dense, 10, 0.9).WithoutMinScore()
	hits, err := svc.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected the low-scoring hit to survive, got %d hits", len(hits))
	}
}

func TestRetrieve_MetadataOnlySkipsVectorBackends(t *testing.T) {
	backend := &mockBackend{scanHits: []result.Hit{
		svcHit("a", 0, archive.Metadata{Author: "bob@list.org"}),
	}}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	f := filter.New("bob@list.org", "", 0, 0, 0, nil)
	req, err := request.NewMetadataOnly(f, 10)
	if err != nil {
		t.Fatalf("request.NewMetadataOnly: %v", err)
	}

	hits, err := svc.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if backend.denseCalled || backend.sparseCalled {
		t.Error("metadata-only search should not touch the vector backends")
	}
	if !backend.scanCalled {
		t.Error("expected ScanByMetadata to be called")
	}
}

func TestRetrieve_FilterAppliedAfterRetrieval(t *testing.T) {
	backend := &mockBackend{denseHits: []result.Hit{
		svcHit("keep", 0.9, archive.Metadata{Author: "bob@list.org"}),
		svcHit("drop", 0.8, archive.Metadata{Author: "alice@list.org"}),
	}}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	f := filter.New("bob@list.org", "", 0, 0, 0, nil)
	req, err := request.New("q", strategy.Dense, f, 10, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}

	hits, err := svc.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Document().ID() != "keep" {
		t.Fatalf("expected only the matching author, got %v", hits)
	}
}

func TestRetrieve_TruncatesToTopK(t *testing.T) {
	var dense []result.Hit
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		dense = append(dense, svcHit(id, 0.9, archive.Metadata{}))
	}
	backend := &mockBackend{denseHits: dense}
	svc := New(backend, 0.7, 0.3, zap.NewNop())

	req := makeRequest(t, "q", strategy.Dense, 3, 0).WithoutMinScore()
	hits, err := svc.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits after truncation, got %d", len(hits))
	}
}
