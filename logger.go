// FILE: tlog/logger.go
package tlog

import (
	"os"
	"sync/atomic"

	"github.com/lixenwraith/tlog/sanitizer"
)

// Context combines a line buffer, a writer and a message registry.
// It is shared by reference count; emitting through one context is not goroutine-safe
// and callers serialize their own access.
type Context struct {
	refs     atomic.Int64
	closed   atomic.Bool
	buf      *LineBuffer
	bufSize  int
	w        writer
	messages *MessageRegistry
	pid      int
	kind     Kind
	curTime  float64 // Writer clock field, the throttle reference time
	clock    Clock
	san      *sanitizer.Sanitizer // nil when bodies are written verbatim
	diag     bool
	stats    counters
}

// NewContext creates an unregistered context with one reference.
// Most callers go through Open so the context gets a handle.
func NewContext(cfg *Config) (*Context, error) {
	if cfg == nil {
		return nil, fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}
	kind, _ := ParseKind(cfg.Kind)

	c := &Context{
		buf:      NewLineBuffer(int(cfg.BufferSize)),
		bufSize:  int(cfg.BufferSize),
		messages: NewMessageRegistry(int(cfg.MaxMessages)),
		pid:      os.Getpid(),
		kind:     kind,
		clock:    cfg.clock,
		diag:     cfg.InternalErrorsToStderr,
	}
	if c.clock == nil {
		c.clock = NowPosix
	}
	if p := sanitizer.Policy(cfg.Sanitize); p != sanitizer.PolicyRaw && p != "" {
		c.san = sanitizer.New().Policy(p)
	}

	switch kind {
	case KindFile:
		fw, err := newFileWriter(cfg, c.clock())
		if err != nil {
			return nil, err
		}
		c.w = fw
	default:
		c.w = newStdWriter(kind)
	}

	c.refs.Store(1)
	return c, nil
}

// Kind returns the writer variant
func (c *Context) Kind() Kind { return c.kind }

// Messages exposes the message registry for registration and reconfiguration
func (c *Context) Messages() *MessageRegistry { return c.messages }

// Register adds a message to the context's registry
func (c *Context) Register(fileLevel, enableLevel Level, name string, throttle float64) (MessageID, error) {
	return c.messages.Register(fileLevel, enableLevel, name, throttle)
}

// SetLevel changes the file level of messages matching selector
func (c *Context) SetLevel(selector string, level Level) int {
	return c.messages.SetLevel(selector, level)
}

// SetThrottle changes the throttle interval of messages matching selector
func (c *Context) SetThrottle(selector string, interval float64) int {
	return c.messages.SetThrottle(selector, interval)
}

// ResetLevels restores the registration level of messages matching selector
func (c *Context) ResetLevels(selector string) int {
	return c.messages.ResetLevels(selector)
}

// Traverse visits every registered message in id order
func (c *Context) Traverse(fn func(*MessageInfo) error) error {
	return c.messages.Traverse(fn)
}

// SetBufferSize changes the soft flush threshold. Bytes already buffered stay
// until the next comparison against the new threshold.
func (c *Context) SetBufferSize(size int) error {
	if size <= 0 {
		return fmtErrorf("buffer size must be positive: %d", size)
	}
	c.bufSize = size
	return nil
}

// BufferSize returns the soft flush threshold
func (c *Context) BufferSize() int { return c.bufSize }

// CurTime returns the writer clock field
func (c *Context) CurTime() float64 { return c.curTime }

// Flush writes buffered lines to the sink
func (c *Context) Flush() error {
	if c.closed.Load() {
		return ErrInvalidHandle
	}
	return c.flush()
}

func (c *Context) flush() error {
	if err := c.w.write(c); err != nil {
		c.stats.IOErrors.Add(1)
		internalLog(c.diag, "flush failed: %v\n", err)
		return err
	}
	return nil
}

// Incref adds a holder to a context created with NewContext
func (c *Context) Incref() *Context {
	c.refs.Add(1)
	return c
}

// Close drops a holder of a context created with NewContext.
// The last holder flushes and closes the writer.
func (c *Context) Close() error {
	n := c.refs.Add(-1)
	if n > 0 {
		return nil
	}
	if n < 0 {
		return ErrInvalidHandle
	}
	return c.shutdown()
}

// shutdown flushes and closes the writer exactly once
func (c *Context) shutdown() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrInvalidHandle
	}
	if err := c.w.close(c); err != nil {
		c.stats.IOErrors.Add(1)
		return err
	}
	return nil
}

// Refs returns the current reference count
func (c *Context) Refs() int64 { return c.refs.Load() }
