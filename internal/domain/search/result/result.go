package result

import (
	"sort"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
)

// Hit is a single scored search result. SourceRank is the position the hit
// held in the backend list that contributed it (best position when the hit
// came from more than one list); it is the first tiebreak when scores are
// equal, followed by the document id.
type Hit struct {
	doc        archive.Document
	score      float64
	sourceRank int
}

// New creates a hit.
func New(doc archive.Document, score float64, sourceRank int) Hit {
	return Hit{doc: doc, score: score, sourceRank: sourceRank}
}

// Document returns the archive document.
func (h Hit) Document() archive.Document { return h.doc }

// Score returns the relevance score.
func (h Hit) Score() float64 { return h.score }

// SourceRank returns the best contributing backend rank.
func (h Hit) SourceRank() int { return h.sourceRank }

// Sort orders hits descending by score, then by source rank, then by
// document id. The ordering is total, so any two hit sets with the same
// contents sort identically.
func Sort(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].sourceRank != hits[j].sourceRank {
			return hits[i].sourceRank < hits[j].sourceRank
		}
		return hits[i].doc.ID() < hits[j].doc.ID()
	})
}

// Documents extracts the documents from a hit list, preserving order.
func Documents(hits []Hit) []archive.Document {
	docs := make([]archive.Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, h.Document())
	}
	return docs
}
