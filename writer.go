// FILE: tlog/writer.go
package tlog

import (
	"io"
	"os"
)

// writer is the sink of a context. One implementation per Kind.
type writer interface {
	// write flushes the context buffer to the sink and resets it
	write(c *Context) error
	// close flushes what is left and releases the sink
	close(c *Context) error
	kind() Kind
}

// stdWriter writes straight to standard output or standard error, no rotation
type stdWriter struct {
	out io.Writer
	k   Kind
}

// newStdWriter creates a writer for KindStdout or KindStderr
func newStdWriter(k Kind) *stdWriter {
	w := &stdWriter{out: os.Stdout, k: k}
	if k == KindStderr {
		w.out = os.Stderr
	}
	return w
}

func (w *stdWriter) kind() Kind { return w.k }

func (w *stdWriter) write(c *Context) error {
	if c.buf.Len() == 0 {
		return nil
	}
	n, err := w.out.Write(c.buf.Bytes())
	c.buf.Reset()
	c.stats.BytesWritten.Add(uint64(n))
	c.stats.Flushes.Add(1)
	if err != nil {
		return &IOError{Op: "write", Path: w.k.String(), Err: err}
	}
	return nil
}

func (w *stdWriter) close(c *Context) error {
	// standard streams belong to the process, leave them open
	return w.write(c)
}
