package chat

import (
	"errors"
	"testing"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
)

func TestInterpret_Exit(t *testing.T) {
	for _, in := range []string{"exit", "quit", "Bye", "goodbye!", "  q  "} {
		cmd, err := Interpret(in, 0)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if cmd.Kind != chat.CommandExit {
			t.Errorf("%q: expected exit command, got %q", in, cmd.Kind)
		}
	}
}

func TestInterpret_Reset(t *testing.T) {
	for _, in := range []string{
		"reset", "clear", "restart",
		"reset the conversation", "clear history", "restart the chat",
	} {
		cmd, err := Interpret(in, 0)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if cmd.Kind != chat.CommandReset {
			t.Errorf("%q: expected reset command, got %q", in, cmd.Kind)
		}
	}
}

func TestInterpret_ShowSettings(t *testing.T) {
	for _, in := range []string{
		"settings", "show settings", "show me the settings",
		"display the current settings", "view my configuration", "show parameters",
	} {
		cmd, err := Interpret(in, 0)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if cmd.Kind != chat.CommandShowSettings {
			t.Errorf("%q: expected show-settings command, got %q", in, cmd.Kind)
		}
	}
}

func TestInterpret_SummarizeExplicit(t *testing.T) {
	cmd, err := Interpret("summarize document 2", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != chat.CommandSummarize || cmd.Target != 1 {
		t.Errorf("expected summarize target 1, got kind=%q target=%d", cmd.Kind, cmd.Target)
	}

	// Variants.
	for _, in := range []string{"summarize post #3", "please summarize doc 1", "give me a summary of document 2"} {
		cmd, err := Interpret(in, 3)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if cmd.Kind != chat.CommandSummarize {
			t.Errorf("%q: expected summarize command, got %q", in, cmd.Kind)
		}
	}
}

func TestInterpret_SummarizeOutOfRange(t *testing.T) {
	_, err := Interpret("summarize document 2", 1)
	if !errors.Is(err, domain.ErrAmbiguousReference) {
		t.Fatalf("expected ErrAmbiguousReference, got %v", err)
	}

	_, err = Interpret("summarize document 1", 0)
	if !errors.Is(err, domain.ErrAmbiguousReference) {
		t.Fatalf("no referenced documents: expected ErrAmbiguousReference, got %v", err)
	}
}

func TestInterpret_SummarizePronoun(t *testing.T) {
	cmd, err := Interpret("summarize this document", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != chat.CommandSummarize || cmd.Target != 0 {
		t.Errorf("one reference: expected summarize target 0, got kind=%q target=%d", cmd.Kind, cmd.Target)
	}

	// Ambiguous pronoun with several (or zero) references is ordinary chat.
	for _, refs := range []int{0, 3} {
		cmd, err := Interpret("summarize this document", refs)
		if err != nil {
			t.Errorf("refs=%d: unexpected error: %v", refs, err)
			continue
		}
		if cmd.IsCommand() {
			t.Errorf("refs=%d: expected fall-through to chat, got %q", refs, cmd.Kind)
		}
	}
}

func TestInterpret_SetTopK(t *testing.T) {
	cmd, err := Interpret("set top-k to 20", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != chat.CommandSet || cmd.Param != chat.ParamTopK || cmd.IntVal != 20 {
		t.Errorf("unexpected command: %+v", cmd)
	}

	// Out of range is rejected, never clamped.
	_, err = Interpret("set top-k to 75", 0)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	_, err = Interpret("set top_k to 0", 0)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestInterpret_SetSynonymsAndPhrasings(t *testing.T) {
	tests := []struct {
		in    string
		param chat.Parameter
	}{
		{"set the temperature to 0.5", chat.ParamTemperature},
		{"change temp to 0.2", chat.ParamTemperature},
		{"update the min score to 0.8", chat.ParamMinScore},
		{"set score threshold to 0.6", chat.ParamMinScore},
		{"set max tokens to 1000", chat.ParamMaxTokens},
		{"please set the token limit to 500", chat.ParamMaxTokens},
		{"set number of results to 5", chat.ParamTopK},
		{"set search strategy to hybrid", chat.ParamStrategy},
		{"change the log level to debug", chat.ParamLogLevel},
		{"set model to gpt-4", chat.ParamModel},
		{"set fallback model to gpt-3.5-turbo", chat.ParamFallbackModel},
	}
	for _, tc := range tests {
		cmd, err := Interpret(tc.in, 0)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if cmd.Kind != chat.CommandSet || cmd.Param != tc.param {
			t.Errorf("%q: expected set %s, got kind=%q param=%q", tc.in, tc.param, cmd.Kind, cmd.Param)
		}
	}
}

func TestInterpret_SetValueValidation(t *testing.T) {
	cases := []string{
		"set temperature to 1.5",
		"set temperature to -0.1",
		"set min score to 2",
		"set max tokens to 50",
		"set max tokens to 5000",
		"set search strategy to fuzzy",
		"set log level to loud",
		"set temperature to warm",
	}
	for _, in := range cases {
		_, err := Interpret(in, 0)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%q: expected ErrValidation, got %v", in, err)
		}
	}
}

func TestInterpret_ReturnNResults(t *testing.T) {
	cmd, err := Interpret("return 5 results", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Param != chat.ParamTopK || cmd.IntVal != 5 {
		t.Errorf("unexpected command: %+v", cmd)
	}

	cmd, err = Interpret("give me 1 result", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Param != chat.ParamTopK || cmd.IntVal != 1 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestInterpret_UseStrategy(t *testing.T) {
	for _, in := range []string{"use hybrid search", "switch to sparse", "use dense mode"} {
		cmd, err := Interpret(in, 0)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if cmd.Param != chat.ParamStrategy {
			t.Errorf("%q: expected strategy set, got %+v", in, cmd)
		}
	}
}

func TestInterpret_UnknownParameterIsChat(t *testing.T) {
	cmd, err := Interpret("set the mood to cheerful", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.IsCommand() {
		t.Errorf("unknown parameter should fall through to chat, got %+v", cmd)
	}
}

func TestInterpret_OrdinaryChat(t *testing.T) {
	for _, in := range []string{
		"what did the club build for the 2007 contest?",
		"tell me about encoder calibration",
		"",
		"   ",
	} {
		cmd, err := Interpret(in, 0)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if cmd.IsCommand() {
			t.Errorf("%q: expected ordinary chat, got %+v", in, cmd)
		}
	}
}

func TestInterpret_NormalizationIsForgiving(t *testing.T) {
	cmd, err := Interpret("  Set   TOP-K   to 20.  ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Param != chat.ParamTopK || cmd.IntVal != 20 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}
