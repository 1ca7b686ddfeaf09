// FILE: tlog/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/tlog"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

var fasthttpLevels = []tlog.Level{tlog.LevelDebug, tlog.LevelInfo, tlog.LevelWarning, tlog.LevelError}

// FastHTTPAdapter routes fasthttp's Printf logging into a tlog context
type FastHTTPAdapter struct {
	src           *source
	defaultLevel  tlog.Level
	levelDetector func(string) tlog.Level // Function to detect log level from message
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*fasthttpOptions)

type fasthttpOptions struct {
	sourceConfig
	defaultLevel  tlog.Level
	levelDetector func(string) tlog.Level
}

// WithDefaultLevel sets the level used when detection finds nothing
func WithDefaultLevel(level tlog.Level) FastHTTPOption {
	return func(o *fasthttpOptions) {
		o.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content.
// A negative result selects the default level.
func WithLevelDetector(detector func(string) tlog.Level) FastHTTPOption {
	return func(o *fasthttpOptions) {
		o.levelDetector = detector
	}
}

// WithFastHTTPName sets the logger name shown in every line, "fasthttp" by default
func WithFastHTTPName(name string) FastHTTPOption {
	return func(o *fasthttpOptions) {
		o.name = name
	}
}

// WithFastHTTPLevel sets the least severe level written, LevelDebug by default
func WithFastHTTPLevel(level tlog.Level) FastHTTPOption {
	return func(o *fasthttpOptions) {
		o.level = level
	}
}

// WithFastHTTPThrottle limits lines below LevelError to one per interval seconds.
// The interval is measured from the last line written to the context, so
// throttled severities hold each other back. Errors are never throttled.
func WithFastHTTPThrottle(interval float64) FastHTTPOption {
	return func(o *fasthttpOptions) {
		o.throttle = interval
	}
}

// NewFastHTTPAdapter registers the fasthttp messages in ctx and returns the adapter
func NewFastHTTPAdapter(ctx *tlog.Context, opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	o := fasthttpOptions{
		sourceConfig:  sourceConfig{name: "fasthttp", level: tlog.LevelDebug},
		defaultLevel:  tlog.LevelInfo,
		levelDetector: DetectLogLevel,
	}
	for _, opt := range opts {
		opt(&o)
	}

	src, err := newSource(ctx, o.sourceConfig, fasthttpLevels...)
	if err != nil {
		return nil, err
	}
	return &FastHTTPAdapter{
		src:           src,
		defaultLevel:  o.defaultLevel,
		levelDetector: o.levelDetector,
	}, nil
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected >= 0 {
			level = detected
		}
	}

	switch {
	case level <= tlog.LevelError:
		level = tlog.LevelError
	case level == tlog.LevelNotice:
		level = tlog.LevelInfo
	}
	a.src.emit(level, msg)
}

// DetectLogLevel attempts to detect log level from message content
func DetectLogLevel(msg string) tlog.Level {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return tlog.LevelError
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return tlog.LevelWarning
	}

	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return tlog.LevelDebug
	}

	return tlog.LevelInfo
}
