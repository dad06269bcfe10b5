package logger

import (
	"context"
	"time"
)

// Entry represents a log entry with accumulated fields.
// It allows building up fields before logging, which is useful
// for adding metrics alongside the message.
type Entry struct {
	logger *Logger
	fields Fields
}

// With starts a new log entry with the given fields.
// Parameters:
//   - fields: initial fields for the entry.
// Returns:
//   - *Entry: entry that can accumulate more fields before logging.
func With(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// With adds additional fields to the entry.
func (e *Entry) With(fields Fields) *Entry {
	if e.fields == nil {
		e.fields = make(Fields, len(fields))
	}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithField adds a single field to the entry.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	if e.fields == nil {
		e.fields = make(Fields, 1)
	}
	e.fields[key] = value
	return e
}

// WithDuration adds a duration field in milliseconds.
func (e *Entry) WithDuration(d time.Duration) *Entry {
	return e.WithField(FieldDurationMs, d.Milliseconds())
}

// WithCount adds a count field.
func (e *Entry) WithCount(count int) *Entry {
	return e.WithField(FieldCount, count)
}

// WithSize adds a size field in bytes.
func (e *Entry) WithSize(size int64) *Entry {
	return e.WithField(FieldSize, size)
}

// WithStatus adds a status field.
func (e *Entry) WithStatus(status interface{}) *Entry {
	return e.WithField(FieldStatus, status)
}

// getLogger resolves the logger for the entry, preferring the context logger.
func (e *Entry) getLogger(ctx context.Context) *Logger {
	if e.logger != nil {
		return e.logger
	}
	return FromContext(ctx)
}

// Debug logs the entry at debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.getLogger(ctx).WithFields(e.fields).Debugf(format, args...)
}

// Info logs the entry at info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.getLogger(ctx).WithFields(e.fields).Infof(format, args...)
}

// Warn logs the entry at warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.getLogger(ctx).WithFields(e.fields).Warnf(format, args...)
}

// Error logs the entry at error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.getLogger(ctx).WithFields(e.fields).Errorf(format, args...)
}
