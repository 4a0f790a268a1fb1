// Package archiveagent embeds the DPRG archive retrieval and chat engine in
// a Go program, without the HTTP server. The caller brings its own Redis
// archive index and OpenAI credentials.
package archiveagent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainChat "github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
	archiverepo "github.com/sedwardstx/DprgArchiveAgent/internal/repository/archive"
	openaiTransport "github.com/sedwardstx/DprgArchiveAgent/internal/transport/openai"
	chatuc "github.com/sedwardstx/DprgArchiveAgent/internal/usecase/chat"
	searchuc "github.com/sedwardstx/DprgArchiveAgent/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the embedded archive agent: retrieval and conversation without
// the HTTP transport.
type Client struct {
	repo      *archiverepo.Repo
	searchSvc *searchuc.Service
	chatSvc   *chatuc.Service
}

// New creates an embedded client and connects to the archive index.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		indexName:      "dprg-archive:idx",
		keyPrefix:      "dprg-archive:",
		embeddingModel: "text-embedding-3-large",
		model:          "gpt-4",
		fallbackModel:  "gpt-3.5-turbo",
		topK:           10,
		minScore:       0.7,
		denseWeight:    0.7,
		sparseWeight:   0.3,
		temperature:    0.7,
		maxTokens:      500,
		sessionTTL:     time.Hour,
		logger:         zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("archiveagent: redis address required (use WithRedis)")
	}
	if cfg.apiKey == "" {
		return nil, errors.New("archiveagent: openai api key required (use WithOpenAI)")
	}

	embedder := openaiTransport.NewEmbedder(cfg.apiKey, cfg.baseURL, cfg.embeddingModel, cfg.logger)
	completer := openaiTransport.NewCompleter(cfg.apiKey, cfg.baseURL, cfg.logger)

	repo, err := archiverepo.New(archiverepo.Config{
		Addrs:     cfg.addrs,
		Password:  cfg.password,
		IndexName: cfg.indexName,
		KeyPrefix: cfg.keyPrefix,
	}, embedder)
	if err != nil {
		return nil, fmt.Errorf("archiveagent: %w", err)
	}

	ctx := context.Background()
	if err := repo.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		repo.Close()
		return nil, fmt.Errorf("archiveagent: index not ready: %w", err)
	}

	searchSvc := searchuc.New(repo, cfg.denseWeight, cfg.sparseWeight, cfg.logger)

	defaults := domainChat.Params{
		Strategy:      strategy.Hybrid,
		TopK:          cfg.topK,
		MinScore:      cfg.minScore,
		Temperature:   cfg.temperature,
		MaxTokens:     cfg.maxTokens,
		Model:         cfg.model,
		FallbackModel: cfg.fallbackModel,
		LogLevel:      "info",
	}
	store := chatuc.NewStore(defaults, cfg.sessionTTL)
	chatSvc := chatuc.New(store, searchSvc, repo, completer, nil, cfg.logger)

	return &Client{
		repo:      repo,
		searchSvc: searchSvc,
		chatSvc:   chatSvc,
	}, nil
}

// Close releases the index connection.
func (c *Client) Close() {
	c.repo.Close()
}

// Chat processes one conversational turn. Conversations are identified by
// the caller-chosen id; state lives in this process.
func (c *Client) Chat(ctx context.Context, conversationID, message string) (ChatReply, error) {
	reply, err := c.chatSvc.Turn(ctx, conversationID, message)
	if err != nil {
		return ChatReply{}, err
	}
	return fromReply(reply), nil
}

func fromReply(reply domainChat.Reply) ChatReply {
	docs := make([]Document, len(reply.Referenced))
	for i, d := range reply.Referenced {
		docs[i] = fromDocument(d)
	}
	return ChatReply{
		Text:       reply.Text,
		Referenced: docs,
		Fallback:   reply.Fallback,
		Done:       reply.Done,
	}
}
