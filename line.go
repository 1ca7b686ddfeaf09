package tlog

// Line is a log line assembled over several calls: Start writes the header,
// Next appends fragments, Stop finalizes and flushes.
// A Line from a disallowed or unknown message is inert.
type Line struct {
	c      *Context
	active bool
	failed bool
	err    error
}

// Start begins a line with the header and a first fragment.
func (c *Context) Start(level Level, id MessageID, format string, args ...any) *Line {
	return c.start(timePosix, level, id, "", format, args)
}

// StartContext is Start with a literal prefix after the header.
func (c *Context) StartContext(level Level, id MessageID, prefix, format string, args ...any) *Line {
	return c.start(timePosix, level, id, prefix, format, args)
}

// StartLocal is Start with a local "YYYY-MM-DD HH:MM:SS" timestamp.
func (c *Context) StartLocal(level Level, id MessageID, format string, args ...any) *Line {
	return c.start(timeLocal, level, id, "", format, args)
}

// StartLocal2 is Start with both the numeric and the local timestamp.
func (c *Context) StartLocal2(level Level, id MessageID, format string, args ...any) *Line {
	return c.start(timeLocal2, level, id, "", format, args)
}

func (c *Context) start(style timeStyle, level Level, id MessageID, prefix, format string, args []any) *Line {
	if c.closed.Load() {
		return &Line{err: ErrInvalidHandle}
	}
	mi, level, err := c.lookup(level, id)
	if err != nil {
		return &Line{err: err}
	}
	if level > mi.FileLevel {
		return &Line{}
	}
	c.curTime = c.clock()
	l := &Line{c: c, active: true}
	if aerr := c.appendHeader(style, false, level, mi, prefix, format, args); aerr != nil {
		l.fail(aerr)
	}
	return l
}

// Active reports whether the line is being written
func (l *Line) Active() bool {
	return l.active && !l.failed
}

// Next appends a formatted fragment
func (l *Line) Next(format string, args ...any) *Line {
	if !l.Active() {
		return l
	}
	l.c.buf.TruncateLastByte()
	if _, err := l.c.buf.AppendFormatted(format, args...); err != nil {
		l.fail(err)
	}
	return l
}

// Values appends args as space-separated raw values
func (l *Line) Values(args ...any) *Line {
	if !l.Active() {
		return l
	}
	l.c.buf.TruncateLastByte()
	l.c.buf.AppendValues(args...)
	return l
}

// Stop appends the final fragment, terminates the line and flushes it.
// It returns the lookup or flush error, formatting errors are absorbed.
func (l *Line) Stop(format string, args ...any) error {
	if !l.active {
		return l.err
	}
	l.active = false
	if l.failed {
		return nil
	}
	l.c.buf.TruncateLastByte()
	if _, err := l.c.buf.AppendFormatted(format, args...); err != nil {
		l.c.dropLine(err)
		return nil
	}
	return l.c.finishLine(true)
}

// fail drops everything written for the line
func (l *Line) fail(err error) {
	l.failed = true
	l.c.buf.Rewind()
	l.c.dropLine(err)
}
