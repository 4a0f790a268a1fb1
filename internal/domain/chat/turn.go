// Package chat holds the conversation model: turns, session parameters,
// and the commands recognized inside user utterances.
package chat

import "github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single conversation message.
type Turn struct {
	Role    Role
	Content string
}

// Reply is the outcome of one chat turn, returned to the transport layer.
type Reply struct {
	// Text is the assistant's answer (or the informational text of a
	// control command).
	Text string
	// Referenced lists the documents the answer was grounded in, best-first.
	Referenced []archive.Document
	// Fallback is set when no archive context met the relevance threshold
	// and the model answered from general knowledge.
	Fallback bool
	// Done is set when the user asked to end the conversation.
	Done bool
}
