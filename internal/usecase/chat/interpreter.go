package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
)

// Utterance pattern matchers, tried in order. Matching runs over the
// normalized utterance: lowercased, whitespace collapsed, trailing
// punctuation stripped. The grammar is a floor, not a ceiling: the listed
// phrasings must match, extra synonyms are fine.
var (
	exitRe  = regexp.MustCompile(`^(exit|quit|bye|goodbye|q)$`)
	resetRe = regexp.MustCompile(`^(reset|clear|restart)(\s+(the\s+)?(conversation|history|chat|session))?$`)

	settingsRe = regexp.MustCompile(
		`^((show|display|view)\s+)?((me\s+)?(the\s+)?)?((current|my)\s+)?(settings|parameters|configuration|config)$`)

	summarizeNumRe = regexp.MustCompile(
		`^(please\s+)?(summarize|give\s+me\s+a\s+summary\s+of|summary\s+of)\s+(document|post|doc)\s+#?(\d+)$`)
	summarizeThisRe = regexp.MustCompile(
		`^(please\s+)?(summarize|give\s+me\s+a\s+summary\s+of|summary\s+of)\s+(this|that|the)\s+(document|post|doc)$`)

	setRe       = regexp.MustCompile(`^(please\s+)?(set|change|update)\s+(the\s+)?(.+?)\s+to\s+(.+)$`)
	returnNRe   = regexp.MustCompile(`^(return|give\s+me|show\s+me|fetch)\s+(\d+)\s+results?$`)
	useStrategyRe = regexp.MustCompile(`^(use|switch\s+to)\s+(dense|sparse|hybrid)(\s+(search|mode|strategy))?$`)
)

// parameter name synonyms accepted by the set command.
var paramNames = map[string]chat.Parameter{
	"top k":             chat.ParamTopK,
	"top-k":             chat.ParamTopK,
	"topk":              chat.ParamTopK,
	"top_k":             chat.ParamTopK,
	"results":           chat.ParamTopK,
	"result count":      chat.ParamTopK,
	"number of results": chat.ParamTopK,
	"temperature":       chat.ParamTemperature,
	"temp":              chat.ParamTemperature,
	"min score":         chat.ParamMinScore,
	"min-score":         chat.ParamMinScore,
	"min_score":         chat.ParamMinScore,
	"minimum score":     chat.ParamMinScore,
	"score threshold":   chat.ParamMinScore,
	"max tokens":        chat.ParamMaxTokens,
	"max-tokens":        chat.ParamMaxTokens,
	"max_tokens":        chat.ParamMaxTokens,
	"maximum tokens":    chat.ParamMaxTokens,
	"token limit":       chat.ParamMaxTokens,
	"search":            chat.ParamStrategy,
	"search type":       chat.ParamStrategy,
	"search mode":       chat.ParamStrategy,
	"search strategy":   chat.ParamStrategy,
	"strategy":          chat.ParamStrategy,
	"log level":         chat.ParamLogLevel,
	"logging level":     chat.ParamLogLevel,
	"logging":           chat.ParamLogLevel,
	"model":             chat.ParamModel,
	"fallback model":    chat.ParamFallbackModel,
	"fallback":          chat.ParamFallbackModel,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Interpret recognizes control and parameter-adjustment intents in a user
// utterance. referencedCount is the number of documents referenced in the
// prior turn, used to resolve "this document" and to range-check explicit
// targets. A zero Command with nil error means no intent matched and the
// utterance is an ordinary chat message. Pure and deterministic: no I/O.
func Interpret(utterance string, referencedCount int) (chat.Command, error) {
	text := normalize(utterance)
	if text == "" {
		return chat.Command{}, nil
	}

	if exitRe.MatchString(text) {
		return chat.Command{Kind: chat.CommandExit}, nil
	}
	if resetRe.MatchString(text) {
		return chat.Command{Kind: chat.CommandReset}, nil
	}
	if settingsRe.MatchString(text) {
		return chat.Command{Kind: chat.CommandShowSettings}, nil
	}

	if m := summarizeNumRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[4])
		if err != nil || n < 1 || n > referencedCount {
			return chat.Command{}, fmt.Errorf(
				"%w: document %s is not among the %d referenced document(s)",
				domain.ErrAmbiguousReference, m[4], referencedCount)
		}
		return chat.Command{Kind: chat.CommandSummarize, Target: n - 1}, nil
	}
	if summarizeThisRe.MatchString(text) {
		// Only unambiguous when exactly one document was referenced;
		// otherwise fall through to normal chat.
		if referencedCount == 1 {
			return chat.Command{Kind: chat.CommandSummarize, Target: 0}, nil
		}
		return chat.Command{}, nil
	}

	if m := returnNRe.FindStringSubmatch(text); m != nil {
		return setCommand(chat.ParamTopK, m[2])
	}
	if m := useStrategyRe.FindStringSubmatch(text); m != nil {
		return setCommand(chat.ParamStrategy, m[2])
	}
	if m := setRe.FindStringSubmatch(text); m != nil {
		param, ok := paramNames[strings.TrimSpace(m[4])]
		if !ok {
			// Unknown parameter name: treat as ordinary chat.
			return chat.Command{}, nil
		}
		return setCommand(param, strings.TrimSpace(m[5]))
	}

	return chat.Command{}, nil
}

// setCommand validates a raw value for a parameter and builds the set
// command. Out-of-range values are rejected, never clamped.
func setCommand(param chat.Parameter, raw string) (chat.Command, error) {
	cmd := chat.Command{Kind: chat.CommandSet, Param: param}

	switch param {
	case chat.ParamTopK:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return chat.Command{}, fmt.Errorf("%w: top_k value %q is not a number", domain.ErrValidation, raw)
		}
		if n < chat.MinTopK || n > chat.MaxTopK {
			return chat.Command{}, fmt.Errorf(
				"%w: top_k must be between %d and %d, got %d",
				domain.ErrValidation, chat.MinTopK, chat.MaxTopK, n)
		}
		cmd.IntVal = n

	case chat.ParamMaxTokens:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return chat.Command{}, fmt.Errorf("%w: max_tokens value %q is not a number", domain.ErrValidation, raw)
		}
		if n < chat.MinMaxTokens || n > chat.MaxMaxTokens {
			return chat.Command{}, fmt.Errorf(
				"%w: max_tokens must be between %d and %d, got %d",
				domain.ErrValidation, chat.MinMaxTokens, chat.MaxMaxTokens, n)
		}
		cmd.IntVal = n

	case chat.ParamTemperature:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return chat.Command{}, fmt.Errorf("%w: temperature value %q is not a number", domain.ErrValidation, raw)
		}
		if f < chat.MinTemperature || f > chat.MaxTemperature {
			return chat.Command{}, fmt.Errorf(
				"%w: temperature must be between %g and %g, got %g",
				domain.ErrValidation, chat.MinTemperature, chat.MaxTemperature, f)
		}
		cmd.FloatVal = f

	case chat.ParamMinScore:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return chat.Command{}, fmt.Errorf("%w: min_score value %q is not a number", domain.ErrValidation, raw)
		}
		if f < 0 || f > 1 {
			return chat.Command{}, fmt.Errorf("%w: min_score must be between 0 and 1, got %g", domain.ErrValidation, f)
		}
		cmd.FloatVal = f

	case chat.ParamStrategy:
		st, err := strategy.Parse(raw)
		if err != nil {
			return chat.Command{}, err
		}
		cmd.StrVal = string(st)

	case chat.ParamLogLevel:
		if !chat.IsLogLevel(raw) {
			return chat.Command{}, fmt.Errorf(
				"%w: log level must be one of %s, got %q",
				domain.ErrValidation, strings.Join(chat.LogLevels, "/"), raw)
		}
		cmd.StrVal = raw

	case chat.ParamModel, chat.ParamFallbackModel:
		if raw == "" {
			return chat.Command{}, fmt.Errorf("%w: model name is required", domain.ErrValidation)
		}
		cmd.StrVal = raw

	default:
		return chat.Command{}, fmt.Errorf("%w: unknown parameter %q", domain.ErrValidation, param)
	}

	return cmd, nil
}

// normalize lowercases, collapses whitespace, and strips trailing
// punctuation so the matchers see a canonical form.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimRight(s, ".!?")
}
