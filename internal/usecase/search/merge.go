package search

import (
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

// Merge combines dense and sparse ranked lists into one deduplicated list
// with weighted normalized scores.
//
// Each input list is normalized to [0,1] by its own maximum score, then
// combined(d) = denseWeight*normDense(d) + sparseWeight*normSparse(d), with
// a missing side contributing 0. The weights are applied literally: callers
// own the arithmetic and the merge never renormalizes them to sum to 1.
// A document present in both lists appears exactly once with the combined
// score. Either or both inputs may be empty.
func Merge(dense, sparse []result.Hit, denseWeight, sparseWeight float64) []result.Hit {
	type scored struct {
		hit   result.Hit
		score float64
		rank  int
	}

	merged := make(map[string]*scored, len(dense)+len(sparse))

	denseMax := maxScore(dense)
	for rank, h := range dense {
		norm := 0.0
		if denseMax > 0 {
			norm = h.Score() / denseMax
		}
		merged[h.Document().ID()] = &scored{
			hit:   h,
			score: denseWeight * norm,
			rank:  rank,
		}
	}

	sparseMax := maxScore(sparse)
	for rank, h := range sparse {
		norm := 0.0
		if sparseMax > 0 {
			norm = h.Score() / sparseMax
		}
		if existing, ok := merged[h.Document().ID()]; ok {
			existing.score += sparseWeight * norm
			if rank < existing.rank {
				existing.rank = rank
			}
		} else {
			merged[h.Document().ID()] = &scored{
				hit:   h,
				score: sparseWeight * norm,
				rank:  rank,
			}
		}
	}

	hits := make([]result.Hit, 0, len(merged))
	for _, s := range merged {
		hits = append(hits, result.New(s.hit.Document(), s.score, s.rank))
	}

	result.Sort(hits)
	return hits
}

func maxScore(hits []result.Hit) float64 {
	max := 0.0
	for _, h := range hits {
		if h.Score() > max {
			max = h.Score()
		}
	}
	return max
}
