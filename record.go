// FILE: tlog/record.go
package tlog

import (
	"strings"
)

// timeStyle selects how the line header renders the timestamp
type timeStyle int

const (
	timePosix  timeStyle = iota // "1700000000.123456"
	timeLocal                   // "2023-11-14 22:13:20"
	timeLocal2                  // "1700000000.123456 2023-11-14 22:13:20"
)

const localTimeLayout = "2006-01-02 15:04:05"

// Header layouts. The throttled form carries the suppressed counter.
const (
	hdrThrottled = "%.06f [%d] %s %s[%d]: "
	hdrPosix     = "%.06f [%d] %s %s: "
	hdrLocal     = "%s [%d] %s %s: "
	hdrLocal2    = "%f %s [%d] %s %s: "
)

// Allowed reports whether a call at level may emit message id.
// Levels compare numerically, lower is more severe.
func (c *Context) Allowed(level Level, id MessageID) bool {
	if id < 0 || int(id) >= len(c.messages.infos) {
		return false
	}
	mi := &c.messages.infos[id]
	if level == LevelMessage {
		level = mi.FileLevel
	}
	return level <= mi.FileLevel
}

// lookup resolves the message and the effective level of a call
func (c *Context) lookup(level Level, id MessageID) (*MessageInfo, Level, error) {
	mi, err := c.messages.Get(id)
	if err != nil {
		return nil, level, err
	}
	if level == LevelMessage {
		level = mi.FileLevel
	}
	return mi, level, nil
}

// appendHeader formats the header, the literal prefix and the message body as one append.
// On failure the buffer is already rewound.
func (c *Context) appendHeader(style timeStyle, counter bool, level Level, mi *MessageInfo, prefix, format string, args []any) error {
	var (
		hdr   string
		hargs []any
	)
	switch {
	case counter:
		hdr = hdrThrottled
		hargs = []any{c.curTime, c.pid, mi.Name, level.String(), mi.Suppressed}
	case style == timeLocal:
		hdr = hdrLocal
		hargs = []any{posixToTime(c.curTime).Format(localTimeLayout), c.pid, mi.Name, level.String()}
	case style == timeLocal2:
		hdr = hdrLocal2
		hargs = []any{c.curTime, posixToTime(c.curTime).Format(localTimeLayout), c.pid, mi.Name, level.String()}
	default:
		hdr = hdrPosix
		hargs = []any{c.curTime, c.pid, mi.Name, level.String()}
	}
	if prefix != "" {
		hdr += strings.ReplaceAll(prefix, "%", "%%")
	}

	_, err := c.buf.AppendFormatted(hdr+format, append(hargs, args...)...)
	return err
}

// finishLine strips the terminator, terminates the line and decides on flushing
func (c *Context) finishLine(always bool) error {
	c.buf.TruncateLastByte()
	if c.san != nil {
		c.buf.replaceTail(c.san.Bytes(c.buf.tail()))
	}
	c.buf.AppendByte('\n')
	c.buf.Mark()
	c.stats.LinesEmitted.Add(1)
	if always || c.buf.CapacityReached(c.bufSize) {
		return c.flush()
	}
	return nil
}

// dropLine accounts for a line lost to a formatting error
func (c *Context) dropLine(err error) {
	c.stats.FormatErrors.Add(1)
	internalLog(c.diag, "dropped line: %v\n", err)
}

// throttled runs the rate-limited emit protocol.
// stampFirst re-reads the clock into curTime before the comparison.
func (c *Context) throttled(stampFirst bool, level Level, id MessageID, prefix, format string, args []any) error {
	if c.closed.Load() {
		return ErrInvalidHandle
	}
	mi, level, err := c.lookup(level, id)
	if err != nil {
		return err
	}
	if level > mi.FileLevel {
		return nil
	}

	now := c.clock()
	if stampFirst {
		c.curTime = c.clock()
	}
	if (stampFirst && mi.ThrottleInterval == 0) || c.curTime+mi.ThrottleInterval <= now {
		if !stampFirst {
			c.curTime = now
		}
		var ferr error
		if aerr := c.appendHeader(timePosix, true, level, mi, prefix, format, args); aerr != nil {
			c.dropLine(aerr)
		} else {
			ferr = c.finishLine(false)
		}
		mi.Suppressed = 0
		return ferr
	}

	mi.Suppressed++
	c.stats.LinesSuppressed.Add(1)
	return nil
}

// Maybe emits a throttled line. The writer clock only advances when the line is written.
// It returns an error for unknown ids and failed flushes; formatting errors are absorbed.
func (c *Context) Maybe(level Level, id MessageID, format string, args ...any) error {
	return c.throttled(false, level, id, "", format, args)
}

// MaybeContext emits a throttled line with a literal prefix before the body.
// The writer clock is stamped on every evaluation before the throttle comparison,
// so with a non-zero interval the comparison only passes when the clock stalls.
func (c *Context) MaybeContext(level Level, id MessageID, prefix, format string, args ...any) error {
	return c.throttled(true, level, id, prefix, format, args)
}

// once emits an unthrottled line and flushes it immediately
func (c *Context) once(style timeStyle, level Level, id MessageID, prefix, format string, args []any) error {
	if c.closed.Load() {
		return ErrInvalidHandle
	}
	mi, level, err := c.lookup(level, id)
	if err != nil {
		return err
	}
	if level > mi.FileLevel {
		return nil
	}
	c.curTime = c.clock()
	if aerr := c.appendHeader(style, false, level, mi, prefix, format, args); aerr != nil {
		c.dropLine(aerr)
		return nil
	}
	return c.finishLine(true)
}

// Once emits a line without throttling and flushes regardless of the buffer threshold.
func (c *Context) Once(level Level, id MessageID, format string, args ...any) error {
	return c.once(timePosix, level, id, "", format, args)
}

// OnceContext is Once with a literal prefix before the body.
func (c *Context) OnceContext(level Level, id MessageID, prefix, format string, args ...any) error {
	return c.once(timePosix, level, id, prefix, format, args)
}

// OnceLocal is Once with a local "YYYY-MM-DD HH:MM:SS" timestamp.
func (c *Context) OnceLocal(level Level, id MessageID, format string, args ...any) error {
	return c.once(timeLocal, level, id, "", format, args)
}

// OnceLocalContext is OnceLocal with a literal prefix.
func (c *Context) OnceLocalContext(level Level, id MessageID, prefix, format string, args ...any) error {
	return c.once(timeLocal, level, id, prefix, format, args)
}

// OnceLocal2 is Once with both the numeric and the local timestamp.
func (c *Context) OnceLocal2(level Level, id MessageID, format string, args ...any) error {
	return c.once(timeLocal2, level, id, "", format, args)
}

// OnceLocal2Context is OnceLocal2 with a literal prefix.
func (c *Context) OnceLocal2Context(level Level, id MessageID, prefix, format string, args ...any) error {
	return c.once(timeLocal2, level, id, prefix, format, args)
}

// DoAt runs fn only when a call at level may emit message id.
func (c *Context) DoAt(level Level, id MessageID, fn func()) {
	if c.Allowed(level, id) {
		fn()
	}
}
