package chat

// CommandKind classifies a recognized in-chat command.
type CommandKind string

// Command kinds. The zero value means no command was recognized and the
// utterance is an ordinary chat message.
const (
	CommandNone         CommandKind = ""
	CommandExit         CommandKind = "exit"
	CommandReset        CommandKind = "reset"
	CommandShowSettings CommandKind = "show_settings"
	CommandSummarize    CommandKind = "summarize"
	CommandSet          CommandKind = "set"
)

// Parameter names a session parameter targeted by a set command.
type Parameter string

// Adjustable session parameters.
const (
	ParamTopK          Parameter = "top_k"
	ParamTemperature   Parameter = "temperature"
	ParamMinScore      Parameter = "min_score"
	ParamMaxTokens     Parameter = "max_tokens"
	ParamStrategy      Parameter = "search_strategy"
	ParamLogLevel      Parameter = "log_level"
	ParamModel         Parameter = "model"
	ParamFallbackModel Parameter = "fallback_model"
)

// Command is a recognized mutation of the conversation state or a control
// action. Parsed fresh from each utterance, never persisted.
type Command struct {
	Kind CommandKind

	// Target is the zero-based referenced-document index for summarize.
	Target int

	// Set command payload. Exactly one of the typed values is meaningful,
	// depending on Param.
	Param    Parameter
	IntVal   int
	FloatVal float64
	StrVal   string
}

// IsCommand reports whether an intent was recognized.
func (c Command) IsCommand() bool { return c.Kind != CommandNone }
