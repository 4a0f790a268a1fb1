// Package chi exposes the archive agent over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/request"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
	logpkg "github.com/sedwardstx/DprgArchiveAgent/internal/logger"
	chatuc "github.com/sedwardstx/DprgArchiveAgent/internal/usecase/chat"
	searchuc "github.com/sedwardstx/DprgArchiveAgent/internal/usecase/search"
	"github.com/sedwardstx/DprgArchiveAgent/internal/version"
)

// errorHandler tries to map a domain error onto an HTTP response.
// Returns true when handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server is the HTTP API: /search, /metadata, /chat, /health, /metrics.
type Server struct {
	search          *searchuc.Service
	chat            *chatuc.Service
	defaultMinScore float64
	logger          *zap.Logger
	errorHandlers   []errorHandler
}

// NewServer creates the HTTP API server. defaultMinScore applies to /search
// requests that do not pass min_score explicitly.
func NewServer(
	search *searchuc.Service, chat *chatuc.Service,
	defaultMinScore float64, logger *zap.Logger,
) *Server {
	s := &Server{
		search:          search,
		chat:            chat,
		defaultMinScore: defaultMinScore,
		logger:          logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrAmbiguousReference, http.StatusBadRequest, codeAmbiguousReference),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrConversationBusy, http.StatusConflict, codeConversationBusy),
		sentinelHandler(domain.ErrRetrievalFailure, http.StatusBadGateway, codeRetrievalFailed),
		sentinelHandler(domain.ErrGenerationFailure, http.StatusBadGateway, codeGenerationFailed),
	}
	return s
}

// Routes registers the API endpoints on the given router. Middleware is
// assembled by the caller.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/search", s.handleSearch)
	r.Get("/metadata", s.handleMetadata)
	r.Post("/chat", s.handleChat)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Version: version.Version})
}

// handleSearch handles GET /search: free-text search with optional
// metadata filters.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := q.Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter is required")
		return
	}

	strat := strategy.Strategy(q.Get("type"))
	if q.Get("type") == "" {
		strat = strategy.Dense
	}

	f, err := filterFromQuery(q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	topK, err := intParam(q.Get("top_k"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "top_k must be an integer")
		return
	}
	minScore, hasMinScore, err := floatParam(q.Get("min_score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "min_score must be a number")
		return
	}
	if !hasMinScore {
		minScore = s.defaultMinScore
	}

	req, err := request.New(query, strat, f, topK, minScore)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	start := time.Now()
	hits, err := s.search.Retrieve(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:     hitsToJSON(hits),
		Total:       len(hits),
		Query:       query,
		SearchType:  string(strat),
		ElapsedTime: time.Since(start).Seconds(),
	})
}

// handleMetadata handles GET /metadata: filter-only archive listing.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f, err := filterFromQuery(q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if f.IsEmpty() {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"at least one metadata filter must be provided")
		return
	}

	topK, err := intParam(q.Get("top_k"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "top_k must be an integer")
		return
	}

	req, err := request.NewMetadataOnly(f, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	start := time.Now()
	hits, err := s.search.Retrieve(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:     hitsToJSON(hits),
		Total:       len(hits),
		Query:       "",
		SearchType:  "metadata",
		ElapsedTime: time.Since(start).Seconds(),
	})
}

// handleChat handles POST /chat: one conversational turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "message is required")
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	reply, err := s.chat.Turn(r.Context(), conversationID, req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	docs := make([]documentJSON, 0, len(reply.Referenced))
	for _, d := range reply.Referenced {
		docs = append(docs, documentToJSON(d, 0))
	}

	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: conversationID,
		Reply:          reply.Text,
		Referenced:     docs,
		Fallback:       reply.Fallback,
		Done:           reply.Done,
	})
}

// handleDomainError walks the errorHandler chain; unmatched errors become
// opaque 500s. Logs through the per-request logger placed in the context by
// the wide-event middleware so entries carry the request id.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logpkg.FromContext(r.Context()).Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if errors.Is(err, sentinel) {
			writeError(w, status, code, err.Error())
			return true
		}
		return false
	}
}

// filterFromQuery builds a metadata filter from query parameters.
func filterFromQuery(q map[string][]string) (filter.Filter, error) {
	get := func(key string) string {
		if v, ok := q[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	year, err := intParam(get("year"), 0)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("%w: year must be an integer", domain.ErrValidation)
	}
	month, err := intParam(get("month"), 0)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("%w: month must be an integer", domain.ErrValidation)
	}
	day, err := intParam(get("day"), 0)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("%w: day must be an integer", domain.ErrValidation)
	}

	var keywords []string
	if kw := get("keywords"); kw != "" {
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}

	return filter.New(get("author"), get("title"), year, month, day, keywords), nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func floatParam(raw string) (float64, bool, error) {
	if raw == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}
