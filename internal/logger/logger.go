package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given environment.
// prod uses JSON output, local/dev use colored console output.
// levelOverride (if non-empty) overrides the log level.
// The returned Level can adjust the level at runtime; the chat engine's
// "set log level" command is wired to it.
func New(env string, levelOverride string) (*zap.Logger, *Level, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if levelOverride != "" {
		lvl, err := ParseLevel(levelOverride)
		if err != nil {
			return nil, nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return l, &Level{atomic: cfg.Level}, nil
}

// Level wraps the logger's atomic level for runtime adjustment.
type Level struct {
	atomic zap.AtomicLevel
}

// SetLevel parses a level name and applies it.
func (l *Level) SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.atomic.SetLevel(lvl)
	return nil
}

// ParseLevel maps a level name to a zap level. Accepts zap's own names plus
// the "warning" and "critical" aliases the chat command uses.
func ParseLevel(name string) (zapcore.Level, error) {
	switch name {
	case "warning":
		return zapcore.WarnLevel, nil
	case "critical":
		return zapcore.FatalLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
