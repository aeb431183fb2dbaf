// Package structlog is a small JSON structured logger used by the veiling
// engine and its service front-ends. Loggers carry a component name and base
// fields; child loggers extend those without mutating the parent.
package structlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type ctxKeyRequestID struct{}

// WithRequestID stores a request identifier in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// RequestID extracts the request identifier, if any.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID{}).(string); ok {
		return id
	}
	return ""
}

// Fields holds structured log fields.
type Fields map[string]interface{}

// Logger writes one JSON object per line.
type Logger struct {
	component string
	level     Level
	output    io.Writer
	mu        sync.Mutex
	fields    Fields
}

// New creates a logger for a component. A nil output defaults to stdout.
func New(component string, level Level, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{component: component, level: level, output: output, fields: Fields{}}
}

// WithFields returns a child logger with additional base fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	child := &Logger{
		component: l.component,
		level:     l.level,
		output:    l.output,
		fields:    make(Fields, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// WithContext attaches the context's request ID as a base field.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := RequestID(ctx); id != "" {
		return l.WithFields(Fields{"request_id": id})
	}
	return l
}

// Debug logs at debug level.
func (l *Logger) Debug(message string, fields Fields) { l.log(LevelDebug, message, fields) }

// Info logs at info level.
func (l *Logger) Info(message string, fields Fields) { l.log(LevelInfo, message, fields) }

// Warn logs at warn level.
func (l *Logger) Warn(message string, fields Fields) { l.log(LevelWarn, message, fields) }

// Error logs at error level.
func (l *Logger) Error(message string, fields Fields) { l.log(LevelError, message, fields) }

func (l *Logger) log(level Level, message string, fields Fields) {
	if level < l.level {
		return
	}

	all := make(Fields, len(l.fields)+len(fields)+5)
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	all["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	all["level"] = level.String()
	all["component"] = l.component
	all["message"] = message

	if level >= LevelError {
		if _, file, line, ok := runtime.Caller(2); ok {
			all["caller"] = fmt.Sprintf("%s:%d", file, line)
		}
	}

	line, err := json.Marshal(all)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":"ERROR","message":"log marshal failed: %v"}`, err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(append(line, '\n'))
}
