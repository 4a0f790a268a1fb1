package strategy

import (
	"fmt"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
)

// Strategy is the retrieval strategy.
type Strategy string

// Retrieval strategy constants.
const (
	// Dense searches the embedding index by semantic similarity.
	Dense Strategy = "dense"
	// Sparse searches the lexical (term-weighted) index.
	Sparse Strategy = "sparse"
	// Hybrid merges dense and sparse rankings with weighted normalization.
	Hybrid Strategy = "hybrid"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Dense || s == Sparse || s == Hybrid
}

// Parse validates a strategy name.
func Parse(s string) (Strategy, error) {
	st := Strategy(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: unknown search strategy %q", domain.ErrValidation, s)
	}
	return st, nil
}
