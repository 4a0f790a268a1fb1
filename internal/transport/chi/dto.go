package chi

import (
	"encoding/json"
	"net/http"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeAmbiguousReference = "ambiguous_reference"
	codeNotFound           = "not_found"
	codeConversationBusy   = "conversation_busy"
	codeRetrievalFailed    = "retrieval_failed"
	codeGenerationFailed   = "generation_failed"
	codeInternal           = "internal_error"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type metadataJSON struct {
	Author   string   `json:"author,omitempty"`
	Title    string   `json:"title,omitempty"`
	Year     int      `json:"year,omitempty"`
	Month    int      `json:"month,omitempty"`
	Day      int      `json:"day,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	HasURL   bool     `json:"has_url,omitempty"`
}

type documentJSON struct {
	ID          string       `json:"id"`
	TextExcerpt string       `json:"text_excerpt"`
	Metadata    metadataJSON `json:"metadata"`
	Score       float64      `json:"score"`
}

type searchResponse struct {
	Results     []documentJSON `json:"results"`
	Total       int            `json:"total"`
	Query       string         `json:"query"`
	SearchType  string         `json:"search_type"`
	ElapsedTime float64        `json:"elapsed_time"`
}

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string         `json:"conversation_id"`
	Reply          string         `json:"reply"`
	Referenced     []documentJSON `json:"referenced_documents"`
	Fallback       bool           `json:"fallback"`
	Done           bool           `json:"done,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func documentToJSON(doc archive.Document, score float64) documentJSON {
	meta := doc.Metadata()
	return documentJSON{
		ID:          doc.ID(),
		TextExcerpt: doc.TextExcerpt(),
		Metadata: metadataJSON{
			Author:   meta.Author,
			Title:    meta.Title,
			Year:     meta.Year,
			Month:    meta.Month,
			Day:      meta.Day,
			Keywords: meta.Keywords,
			HasURL:   meta.HasURL,
		},
		Score: score,
	}
}

func hitsToJSON(hits []result.Hit) []documentJSON {
	docs := make([]documentJSON, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, documentToJSON(h.Document(), h.Score()))
	}
	return docs
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}
