package logging

import (
	"context"
	"maps"
)

// Logger defines the leveled logging contract used across the pipeline.
// It mirrors the interface exposed by github.com/goliatone/go-logger so
// host applications can plug that package in without additional adapters.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// Provider exposes named loggers. Implementations can return the same
// instance for every name or scope loggers per module.
type Provider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for attaching persistent structured
// fields to a logger.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

const (
	rootModule      = "translation"
	diffModule      = "translation.diff"
	dispatchModule  = "translation.dispatch"
	reconcileModule = "translation.reconcile"
	publishModule   = "translation.publish"
	lookupModule    = "translation.lookup"
	commandsModule  = "translation.commands"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied.
func ModuleLogger(provider Provider, module string) Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

// DiffLogger returns the logger namespace reserved for the diff engine.
func DiffLogger(provider Provider) Logger { return ModuleLogger(provider, diffModule) }

// DispatchLogger returns the logger namespace reserved for the dispatch engine.
func DispatchLogger(provider Provider) Logger { return ModuleLogger(provider, dispatchModule) }

// ReconcileLogger returns the logger namespace reserved for reconciliation.
func ReconcileLogger(provider Provider) Logger { return ModuleLogger(provider, reconcileModule) }

// PublishLogger returns the logger namespace reserved for the publish engine.
func PublishLogger(provider Provider) Logger { return ModuleLogger(provider, publishModule) }

// LookupLogger returns the logger namespace reserved for runtime lookups.
func LookupLogger(provider Provider) Logger { return ModuleLogger(provider, lookupModule) }

// CommandsLogger returns the logger namespace reserved for the command layer.
func CommandsLogger(provider Provider) Logger { return ModuleLogger(provider, commandsModule) }

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension.
func WithFields(logger Logger, fields map[string]any) Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// NoOp returns a logger that drops every log entry.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) Logger {
	return n
}
