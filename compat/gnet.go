package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/tlog"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// gnetLevels are the severities a gnet logger can produce
var gnetLevels = []tlog.Level{tlog.LevelDebug, tlog.LevelInfo, tlog.LevelWarning, tlog.LevelError, tlog.LevelCrit}

// GnetAdapter routes gnet's logging.Logger calls into a tlog context
type GnetAdapter struct {
	src          *source
	fatalHandler func(msg string) // Customizable fatal behavior
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*gnetOptions)

type gnetOptions struct {
	sourceConfig
	fatalHandler func(msg string)
}

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(o *gnetOptions) {
		o.fatalHandler = handler
	}
}

// WithGnetName sets the logger name shown in every line, "gnet" by default
func WithGnetName(name string) GnetOption {
	return func(o *gnetOptions) {
		o.name = name
	}
}

// WithGnetLevel sets the least severe level written, LevelDebug by default
func WithGnetLevel(level tlog.Level) GnetOption {
	return func(o *gnetOptions) {
		o.level = level
	}
}

// WithGnetThrottle limits lines below LevelError to one per interval seconds.
// The interval is measured from the last line written to the context, so
// throttled severities hold each other back. Errors are never throttled.
func WithGnetThrottle(interval float64) GnetOption {
	return func(o *gnetOptions) {
		o.throttle = interval
	}
}

// NewGnetAdapter registers the gnet messages in ctx and returns the adapter
func NewGnetAdapter(ctx *tlog.Context, opts ...GnetOption) (*GnetAdapter, error) {
	o := gnetOptions{
		sourceConfig: sourceConfig{name: "gnet", level: tlog.LevelDebug},
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	src, err := newSource(ctx, o.sourceConfig, gnetLevels...)
	if err != nil {
		return nil, err
	}
	return &GnetAdapter{src: src, fatalHandler: o.fatalHandler}, nil
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.src.emit(tlog.LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.src.emit(tlog.LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs at warning level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.src.emit(tlog.LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.src.emit(tlog.LevelError, fmt.Sprintf(format, args...))
}

// Fatalf logs at critical level and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.src.emit(tlog.LevelCrit, msg)
	_ = a.src.flush()

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
