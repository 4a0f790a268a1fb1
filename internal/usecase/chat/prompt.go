package chat

import (
	"fmt"
	"strings"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

const systemPrompt = "You are an assistant for the DPRG mailing-list archive. " +
	"Answer questions about the archive's topics (robotics, contests, club history) " +
	"using the provided archive excerpts when they are given. Cite documents by " +
	"their number when you draw on them."

const fallbackSystemPrompt = "You are an assistant for the DPRG mailing-list archive. " +
	"No archive documents were found for this question, so answer from general " +
	"knowledge. Make clear that your answer is not sourced from the archive."

// FallbackNotice prefixes replies generated without archive context.
const FallbackNotice = "[No relevant archive documents found - answering from general knowledge]\n\n"

// maxHistoryTurns bounds how much prior conversation is replayed into the
// model prompt.
const maxHistoryTurns = 20

// groundedPrompt builds a prompt embedding the retrieved excerpts and their
// metadata ahead of the user's question.
func groundedPrompt(history []chat.Turn, question string, hits []result.Hit) []chat.Turn {
	var ctx strings.Builder
	ctx.WriteString("Archive context:\n\n")
	for i, h := range hits {
		ctx.WriteString(describeDocument(i+1, h.Document(), h.Score()))
		ctx.WriteString("\n")
	}

	msgs := []chat.Turn{
		{Role: chat.RoleSystem, Content: systemPrompt},
		{Role: chat.RoleSystem, Content: ctx.String()},
	}
	msgs = append(msgs, trimHistory(history)...)
	return append(msgs, chat.Turn{Role: chat.RoleUser, Content: question})
}

// fallbackPrompt builds the general-knowledge prompt used when retrieval
// came back empty.
func fallbackPrompt(history []chat.Turn, question string) []chat.Turn {
	msgs := []chat.Turn{{Role: chat.RoleSystem, Content: fallbackSystemPrompt}}
	msgs = append(msgs, trimHistory(history)...)
	return append(msgs, chat.Turn{Role: chat.RoleUser, Content: question})
}

// summaryPrompt builds a summarization prompt around a document's full text.
func summaryPrompt(doc archive.Document, fullText string) []chat.Turn {
	meta := doc.Metadata()
	var b strings.Builder
	b.WriteString("Summarize the following archive post.\n\n")
	if meta.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", meta.Title)
	}
	if meta.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", meta.Author)
	}
	if d := meta.Date(); d != "" {
		fmt.Fprintf(&b, "Date: %s\n", d)
	}
	b.WriteString("\n")
	b.WriteString(fullText)

	return []chat.Turn{
		{Role: chat.RoleSystem, Content: systemPrompt},
		{Role: chat.RoleUser, Content: b.String()},
	}
}

// describeDocument renders one retrieved document with its metadata for the
// grounded context block.
func describeDocument(n int, doc archive.Document, score float64) string {
	meta := doc.Metadata()
	var b strings.Builder
	fmt.Fprintf(&b, "Document %d", n)

	var parts []string
	if meta.Title != "" {
		parts = append(parts, meta.Title)
	}
	if meta.Author != "" {
		parts = append(parts, "by "+meta.Author)
	}
	if d := meta.Date(); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, fmt.Sprintf("score %.2f", score))
	fmt.Fprintf(&b, " (%s):\n", strings.Join(parts, ", "))

	b.WriteString(doc.TextExcerpt())
	b.WriteString("\n")
	return b.String()
}

func trimHistory(history []chat.Turn) []chat.Turn {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	return history
}
