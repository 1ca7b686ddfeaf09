// FILE: tlog/buffer.go
package tlog

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// fmt reports verb/argument problems inline instead of returning an error.
// Markers that arrive inside argument text are not format errors, see argMarkers.
var fmtErrorMarker = regexp.MustCompile(`%!(?:[a-zA-Z]?\((?:MISSING|BADINDEX|BADWIDTH|BADPREC|NOVERB)\)|\(EXTRA |[a-zA-Z]\([^=()]+=)`)

// dumper renders composite values compactly on one line
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// LineBuffer is an append-only growable byte buffer used to format one line at a time.
// It keeps a mark at the end of the last complete line so a failed append can be undone.
type LineBuffer struct {
	buf  []byte
	mark int
}

// NewLineBuffer creates a buffer with the given initial capacity.
func NewLineBuffer(capacity int) *LineBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &LineBuffer{buf: make([]byte, 0, capacity)}
}

// AppendFormatted appends the formatted text followed by a single terminator byte.
// On failure the buffer is rewound to the mark and ErrFormat is returned.
func (b *LineBuffer) AppendFormatted(format string, args ...any) (n int, err error) {
	start := len(b.buf)
	defer func() {
		if r := recover(); r != nil {
			b.Rewind()
			n, err = 0, fmtErrorf("%w: %v", ErrFormat, r)
		}
	}()

	b.buf = fmt.Appendf(b.buf, format, args...)
	region := b.buf[start:]
	if bytes.Contains(region, []byte("%!")) {
		if found := len(fmtErrorMarker.FindAllIndex(region, -1)); found > argMarkers(args) {
			b.Rewind()
			return 0, ErrFormat
		}
	}
	b.buf = append(b.buf, 0)
	return len(b.buf) - start, nil
}

// argMarkers counts the fmt error markers already present in string and byte slice
// arguments. Other values are rendered by fmt itself and are not inspected.
func argMarkers(args []any) int {
	n := 0
	for _, arg := range args {
		var text string
		switch v := arg.(type) {
		case string:
			text = v
		case []byte:
			text = string(v)
		default:
			continue
		}
		if strings.Contains(text, "%!") {
			n += len(fmtErrorMarker.FindAllStringIndex(text, -1))
		}
	}
	return n
}

// AppendValues appends args as space-separated raw values followed by a terminator byte.
func (b *LineBuffer) AppendValues(args ...any) int {
	start := len(b.buf)
	for i, arg := range args {
		if i > 0 {
			b.buf = append(b.buf, ' ')
		}
		b.appendValue(arg)
	}
	b.buf = append(b.buf, 0)
	return len(b.buf) - start
}

// appendValue converts any value to its raw string representation
func (b *LineBuffer) appendValue(v any) {
	switch val := v.(type) {
	case string:
		b.buf = append(b.buf, val...)
	case int:
		b.buf = strconv.AppendInt(b.buf, int64(val), 10)
	case int64:
		b.buf = strconv.AppendInt(b.buf, val, 10)
	case uint:
		b.buf = strconv.AppendUint(b.buf, uint64(val), 10)
	case uint64:
		b.buf = strconv.AppendUint(b.buf, val, 10)
	case float32:
		b.buf = strconv.AppendFloat(b.buf, float64(val), 'f', -1, 32)
	case float64:
		b.buf = strconv.AppendFloat(b.buf, val, 'f', -1, 64)
	case bool:
		b.buf = strconv.AppendBool(b.buf, val)
	case nil:
		b.buf = append(b.buf, "nil"...)
	case error:
		b.buf = append(b.buf, val.Error()...)
	case fmt.Stringer:
		b.buf = append(b.buf, val.String()...)
	case []byte:
		b.buf = hex.AppendEncode(b.buf, val)
	default:
		var out bytes.Buffer
		dumper.Fdump(&out, val)
		// spew output is multi-line, fold it so the record stays on one line
		b.buf = append(b.buf, bytes.Join(bytes.Fields(out.Bytes()), []byte{' '})...)
	}
}

// AppendString appends s verbatim.
func (b *LineBuffer) AppendString(s string) {
	b.buf = append(b.buf, s...)
}

// AppendByte appends a single byte.
func (b *LineBuffer) AppendByte(c byte) {
	b.buf = append(b.buf, c)
}

// Mark records the current end as the last known-good position.
func (b *LineBuffer) Mark() {
	b.mark = len(b.buf)
}

// Rewind discards everything after the mark.
func (b *LineBuffer) Rewind() {
	if b.mark > len(b.buf) {
		b.mark = len(b.buf)
	}
	b.buf = b.buf[:b.mark]
}

// TruncateLastByte removes exactly one trailing byte.
func (b *LineBuffer) TruncateLastByte() {
	if len(b.buf) > 0 {
		b.buf = b.buf[:len(b.buf)-1]
	}
}

// Len returns the number of buffered bytes.
func (b *LineBuffer) Len() int {
	return len(b.buf)
}

// Bytes returns the buffered bytes. The slice is valid until the next mutation.
func (b *LineBuffer) Bytes() []byte {
	return b.buf
}

// CapacityReached reports whether the buffered length reached the soft threshold.
func (b *LineBuffer) CapacityReached(threshold int) bool {
	return len(b.buf) >= threshold
}

// Reset empties the buffer, keeping the allocation.
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
	b.mark = 0
}

// tail returns the bytes appended after the mark.
func (b *LineBuffer) tail() []byte {
	return b.buf[b.mark:]
}

// replaceTail swaps the bytes after the mark with p.
func (b *LineBuffer) replaceTail(p []byte) {
	b.buf = append(b.buf[:b.mark], p...)
}
