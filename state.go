// FILE: tlog/state.go
package tlog

import (
	"sync/atomic"
)

// counters are the live statistics of a context
type counters struct {
	LinesEmitted    atomic.Uint64 // Lines that reached the buffer
	LinesSuppressed atomic.Uint64 // Calls elided by throttling
	FormatErrors    atomic.Uint64 // Lines dropped because formatting failed
	BytesWritten    atomic.Uint64 // Bytes handed to the sink
	Flushes         atomic.Uint64 // Writes to the sink
	Rotations       atomic.Uint64 // Completed file rotations
	IOErrors        atomic.Uint64 // Failed flush, rotation or close attempts
}

// Stats is a point-in-time copy of a context's counters
type Stats struct {
	LinesEmitted    uint64
	LinesSuppressed uint64
	FormatErrors    uint64
	BytesWritten    uint64
	Flushes         uint64
	Rotations       uint64
	IOErrors        uint64
	Buffered        int // Bytes waiting for the next flush
}

// Stats returns a snapshot of the counters
func (c *Context) Stats() Stats {
	return Stats{
		LinesEmitted:    c.stats.LinesEmitted.Load(),
		LinesSuppressed: c.stats.LinesSuppressed.Load(),
		FormatErrors:    c.stats.FormatErrors.Load(),
		BytesWritten:    c.stats.BytesWritten.Load(),
		Flushes:         c.stats.Flushes.Load(),
		Rotations:       c.stats.Rotations.Load(),
		IOErrors:        c.stats.IOErrors.Load(),
		Buffered:        c.buf.Len(),
	}
}
