package chat

import (
	"context"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/request"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

// Retriever fetches grounded context for a chat turn.
type Retriever interface {
	Retrieve(ctx context.Context, req request.Request) ([]result.Hit, error)
}

// DocumentFetcher reads individual documents, bypassing excerpt truncation
// for summarization.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, id string) (archive.Document, error)
	FetchFullText(ctx context.Context, id string) (string, error)
}

// Completer is the external language-model collaborator. It performs one
// completion attempt; retry policy (the single primary-to-fallback model
// retry) lives in the orchestrator.
type Completer interface {
	Complete(
		ctx context.Context, messages []chat.Turn,
		model string, temperature float64, maxTokens int,
	) (string, error)
}

// LevelSetter adjusts the process log level; wired to the zap atomic level
// by the composition root so the "set log level" chat command takes effect.
type LevelSetter interface {
	SetLevel(name string) error
}
