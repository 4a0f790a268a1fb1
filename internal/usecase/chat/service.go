package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/filter"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/request"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
	"github.com/sedwardstx/DprgArchiveAgent/internal/metrics"
)

// errorMarker is recorded as the assistant turn when generation fails, so
// the history shows the failed turn without fabricating an answer.
const errorMarker = "[error: the model could not generate a response for this turn]"

// Service drives the chat turn state machine: interpret the utterance,
// execute commands locally, or retrieve context, decide sufficiency, build
// a prompt, call the model, and update conversation state.
type Service struct {
	store     *Store
	retriever Retriever
	docs      DocumentFetcher
	completer Completer
	levels    LevelSetter
	logger    *zap.Logger
}

// New creates a chat service. levels may be nil when runtime log-level
// switching is not wired.
func New(
	store *Store,
	retriever Retriever,
	docs DocumentFetcher,
	completer Completer,
	levels LevelSetter,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		retriever: retriever,
		docs:      docs,
		completer: completer,
		levels:    levels,
		logger:    logger,
	}
}

// Turn processes one user utterance for a conversation. At most one turn
// runs per conversation id at a time; a second concurrent turn fails with
// ErrConversationBusy. Validation and ambiguous-reference errors leave the
// conversation state untouched so the user can rephrase.
func (s *Service) Turn(ctx context.Context, conversationID, utterance string) (chat.Reply, error) {
	sess, err := s.store.Acquire(conversationID)
	if err != nil {
		return chat.Reply{}, err
	}
	defer s.store.Release(sess)

	cmd, err := Interpret(utterance, len(sess.Referenced()))
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return chat.Reply{}, err
	}

	switch cmd.Kind {
	case chat.CommandExit:
		metrics.ChatTurnsTotal.WithLabelValues("command").Inc()
		sess.AppendTurn(chat.RoleUser, utterance)
		sess.AppendTurn(chat.RoleAssistant, "Goodbye.")
		return chat.Reply{Text: "Goodbye.", Done: true}, nil

	case chat.CommandReset:
		metrics.ChatTurnsTotal.WithLabelValues("command").Inc()
		sess.Reset()
		const msg = "Conversation history cleared. Settings are unchanged."
		sess.AppendTurn(chat.RoleAssistant, msg)
		return chat.Reply{Text: msg}, nil

	case chat.CommandShowSettings:
		metrics.ChatTurnsTotal.WithLabelValues("command").Inc()
		text := "Current settings:\n" + sess.Params().Describe()
		sess.AppendTurn(chat.RoleUser, utterance)
		sess.AppendTurn(chat.RoleAssistant, text)
		return chat.Reply{Text: text}, nil

	case chat.CommandSet:
		return s.applySetting(sess, utterance, cmd)

	case chat.CommandSummarize:
		return s.summarize(ctx, sess, utterance, cmd.Target)

	default:
		return s.answer(ctx, sess, utterance)
	}
}

// applySetting mutates one session parameter and records the adjustment.
func (s *Service) applySetting(sess *Session, utterance string, cmd chat.Command) (chat.Reply, error) {
	if err := sess.Apply(cmd); err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return chat.Reply{}, err
	}
	if cmd.Param == chat.ParamLogLevel && s.levels != nil {
		if err := s.levels.SetLevel(cmd.StrVal); err != nil {
			s.logger.Warn("failed to apply log level", zap.String("level", cmd.StrVal), zap.Error(err))
		}
	}
	metrics.ChatTurnsTotal.WithLabelValues("command").Inc()

	text := fmt.Sprintf("%s set to %s.", cmd.Param, settingValue(cmd))
	sess.AppendTurn(chat.RoleUser, utterance)
	sess.AppendTurn(chat.RoleAssistant, text)
	s.logger.Info("session parameter adjusted",
		zap.String("conversation_id", sess.ID()),
		zap.String("parameter", string(cmd.Param)),
	)
	return chat.Reply{Text: text}, nil
}

// summarize fetches the full text of a referenced document and asks the
// model for a summary. The target index was already range-checked by
// Interpret against the referenced-document cache.
func (s *Service) summarize(ctx context.Context, sess *Session, utterance string, target int) (chat.Reply, error) {
	refs := sess.Referenced()
	if target < 0 || target >= len(refs) {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return chat.Reply{}, fmt.Errorf(
			"%w: document %d is not among the %d referenced document(s)",
			domain.ErrAmbiguousReference, target+1, len(refs))
	}
	doc := refs[target]

	fullText, err := s.docs.FetchFullText(ctx, doc.ID())
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return chat.Reply{}, fmt.Errorf("%w: fetch full text %s: %w", domain.ErrRetrievalFailure, doc.ID(), err)
	}

	p := sess.Params()
	text, err := s.complete(ctx, summaryPrompt(doc, fullText), p)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		sess.AppendTurn(chat.RoleUser, utterance)
		sess.AppendTurn(chat.RoleAssistant, errorMarker)
		return chat.Reply{}, err
	}

	sess.AppendTurn(chat.RoleUser, utterance)
	sess.AppendTurn(chat.RoleAssistant, text)
	metrics.ChatTurnsTotal.WithLabelValues("grounded").Inc()
	return chat.Reply{Text: text, Referenced: refs[target : target+1]}, nil
}

// answer handles an ordinary chat message: retrieve context with the
// session parameters, decide whether it suffices, and generate.
func (s *Service) answer(ctx context.Context, sess *Session, utterance string) (chat.Reply, error) {
	p := sess.Params()

	req, err := request.New(utterance, p.Strategy, filter.Filter{}, p.TopK, p.MinScore)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return chat.Reply{}, err
	}

	hits, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		// Conversation state unchanged so the user may retry.
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return chat.Reply{}, err
	}

	history := sess.Turns()
	fallback := len(hits) == 0

	var msgs []chat.Turn
	if fallback {
		msgs = fallbackPrompt(history, utterance)
	} else {
		msgs = groundedPrompt(history, utterance, hits)
	}

	sess.AppendTurn(chat.RoleUser, utterance)

	text, err := s.complete(ctx, msgs, p)
	if err != nil {
		sess.AppendTurn(chat.RoleAssistant, errorMarker)
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return chat.Reply{}, err
	}

	if fallback {
		text = FallbackNotice + text
		metrics.ChatTurnsTotal.WithLabelValues("fallback").Inc()
	} else {
		metrics.ChatTurnsTotal.WithLabelValues("grounded").Inc()
	}

	sess.AppendTurn(chat.RoleAssistant, text)
	docs := result.Documents(hits)
	sess.RememberReferenced(docs)

	return chat.Reply{Text: text, Referenced: docs, Fallback: fallback}, nil
}

// complete calls the primary model and retries once against the fallback
// model before surfacing a generation failure. No other retries happen
// anywhere in the turn.
func (s *Service) complete(ctx context.Context, msgs []chat.Turn, p chat.Params) (string, error) {
	text, err := s.completer.Complete(ctx, msgs, p.Model, p.Temperature, p.MaxTokens)
	if err == nil {
		return text, nil
	}

	if p.FallbackModel == "" || p.FallbackModel == p.Model {
		return "", fmt.Errorf("%w: model %s: %w", domain.ErrGenerationFailure, p.Model, err)
	}

	s.logger.Warn("primary model failed, trying fallback",
		zap.String("model", p.Model),
		zap.String("fallback_model", p.FallbackModel),
		zap.Error(err),
	)

	text, fbErr := s.completer.Complete(ctx, msgs, p.FallbackModel, p.Temperature, p.MaxTokens)
	if fbErr != nil {
		return "", fmt.Errorf("%w: primary %s: %v; fallback %s: %w",
			domain.ErrGenerationFailure, p.Model, err, p.FallbackModel, fbErr)
	}
	return text, nil
}

func settingValue(cmd chat.Command) string {
	switch cmd.Param {
	case chat.ParamTopK, chat.ParamMaxTokens:
		return fmt.Sprintf("%d", cmd.IntVal)
	case chat.ParamTemperature, chat.ParamMinScore:
		return fmt.Sprintf("%g", cmd.FloatVal)
	default:
		return cmd.StrVal
	}
}
