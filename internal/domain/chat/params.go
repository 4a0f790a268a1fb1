package chat

import (
	"fmt"
	"strings"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
)

// Parameter ranges for mid-conversation adjustment. Values outside these
// ranges are rejected, never clamped.
const (
	MinTopK        = 1
	MaxTopK        = 50
	MinMaxTokens   = 100
	MaxMaxTokens   = 2000
	MinTemperature = 0.0
	MaxTemperature = 1.0
)

// LogLevels are the accepted values for the log level parameter.
var LogLevels = []string{"debug", "info", "warning", "error", "critical"}

// Params is the mutable per-conversation parameter set.
type Params struct {
	Strategy      strategy.Strategy
	TopK          int
	MinScore      float64
	Temperature   float64
	MaxTokens     int
	Model         string
	FallbackModel string
	LogLevel      string
}

// Describe renders the parameter set for the show-settings command.
func (p Params) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "search strategy: %s\n", p.Strategy)
	fmt.Fprintf(&b, "top_k: %d\n", p.TopK)
	fmt.Fprintf(&b, "min_score: %.2f\n", p.MinScore)
	fmt.Fprintf(&b, "temperature: %.2f\n", p.Temperature)
	fmt.Fprintf(&b, "max_tokens: %d\n", p.MaxTokens)
	fmt.Fprintf(&b, "model: %s\n", p.Model)
	fmt.Fprintf(&b, "fallback model: %s\n", p.FallbackModel)
	fmt.Fprintf(&b, "log level: %s", p.LogLevel)
	return b.String()
}

// IsLogLevel reports whether s is an accepted log level name.
func IsLogLevel(s string) bool {
	for _, l := range LogLevels {
		if s == l {
			return true
		}
	}
	return false
}
