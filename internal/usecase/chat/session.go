package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
)

// Session is the per-conversation state: turn history, mutable parameters,
// and the documents referenced by the most recent retrieval. A session is
// only touched between Acquire and Release, so its fields need no lock of
// their own.
type Session struct {
	id         string
	params     chat.Params
	turns      []chat.Turn
	referenced []archive.Document
	createdAt  time.Time
	lastActive time.Time
	busy       bool
}

// ID returns the conversation id.
func (s *Session) ID() string { return s.id }

// Params returns the current parameter set.
func (s *Session) Params() chat.Params { return s.params }

// Turns returns a copy of the turn history.
func (s *Session) Turns() []chat.Turn {
	out := make([]chat.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Referenced returns a copy of the referenced-document cache.
func (s *Session) Referenced() []archive.Document {
	out := make([]archive.Document, len(s.referenced))
	copy(out, s.referenced)
	return out
}

// AppendTurn records a conversation turn.
func (s *Session) AppendTurn(role chat.Role, content string) {
	s.turns = append(s.turns, chat.Turn{Role: role, Content: content})
}

// RememberReferenced replaces the referenced-document cache, bounded to the
// current top_k. Replacement is total: an empty retrieval empties the cache.
func (s *Session) RememberReferenced(docs []archive.Document) {
	bound := s.params.TopK
	if len(docs) > bound {
		docs = docs[:bound]
	}
	s.referenced = make([]archive.Document, len(docs))
	copy(s.referenced, docs)
}

// Reset clears the turn history and referenced-document cache. The
// parameter set survives a reset.
func (s *Session) Reset() {
	s.turns = nil
	s.referenced = nil
}

// Apply mutates exactly the parameter named by a set command. The command
// is assumed validated (Interpret rejects out-of-range values).
func (s *Session) Apply(cmd chat.Command) error {
	if cmd.Kind != chat.CommandSet {
		return fmt.Errorf("%w: cannot apply %q command to session parameters", domain.ErrValidation, cmd.Kind)
	}
	switch cmd.Param {
	case chat.ParamTopK:
		s.params.TopK = cmd.IntVal
	case chat.ParamMaxTokens:
		s.params.MaxTokens = cmd.IntVal
	case chat.ParamTemperature:
		s.params.Temperature = cmd.FloatVal
	case chat.ParamMinScore:
		s.params.MinScore = cmd.FloatVal
	case chat.ParamStrategy:
		s.params.Strategy = strategy.Strategy(cmd.StrVal)
	case chat.ParamLogLevel:
		s.params.LogLevel = cmd.StrVal
	case chat.ParamModel:
		s.params.Model = cmd.StrVal
	case chat.ParamFallbackModel:
		s.params.FallbackModel = cmd.StrVal
	default:
		return fmt.Errorf("%w: unknown parameter %q", domain.ErrValidation, cmd.Param)
	}
	return nil
}

// Store owns all conversation sessions. It guarantees at most one turn is
// processed per conversation id at a time; turns for distinct ids proceed
// concurrently with no shared mutable state between them.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	defaults chat.Params
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store. ttl bounds how long an idle
// conversation stays reachable; state is process-local and never persisted.
func NewStore(defaults chat.Params, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		defaults: defaults,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Acquire returns the session for id, creating it on first use, and marks
// it busy. A second concurrent turn for the same id fails with
// ErrConversationBusy. The caller must Release.
func (s *Store) Acquire(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	sess, ok := s.sessions[id]
	if !ok {
		now := s.now()
		sess = &Session{
			id:         id,
			params:     s.defaults,
			createdAt:  now,
			lastActive: now,
		}
		s.sessions[id] = sess
	}
	if sess.busy {
		return nil, fmt.Errorf("%w: %s", domain.ErrConversationBusy, id)
	}
	sess.busy = true
	return sess, nil
}

// Release marks the session idle again.
func (s *Store) Release(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.busy = false
	sess.lastActive = s.now()
}

// Drop discards a conversation's state.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweepLocked discards idle sessions past the ttl. Called with mu held.
func (s *Store) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if !sess.busy && sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
