package logging

import (
	"log/slog"
	"os"
)

// Standard component names used across the service.
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentStorage     = "storage"
	ComponentTransaction = "transaction"
	ComponentCategory    = "category"
	ComponentBudget      = "budget"
	ComponentSeed        = "seed"
	ComponentEmail       = "email"
	ComponentScheduler   = "scheduler"
	ComponentRateLimit   = "rate_limit"
)

// Logger wraps slog.Logger with a component field attached to every record.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// New creates a new logger with the given configuration.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return &Logger{
		Logger:    slog.New(handler).With("component", config.Component),
		component: config.Component,
	}
}

// With returns a new logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent returns a new logger scoped to a specific component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("component", component),
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}
