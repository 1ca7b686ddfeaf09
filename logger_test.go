// FILE: tlog/logger_test.go
package tlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source
type fakeClock struct {
	t float64
}

func newFakeClock(start float64) *fakeClock { return &fakeClock{t: start} }

func (f *fakeClock) now() float64 { return f.t }

func (f *fakeClock) advance(d float64) { f.t += d }

// createTestContext creates a file context in a temp directory driven by a fake clock
func createTestContext(t *testing.T, mutate func(cfg *Config)) (*Context, string, *fakeClock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	clk := newFakeClock(1000)

	cfg := DefaultConfig()
	cfg.Kind = "file"
	cfg.Path = path
	if mutate != nil {
		mutate(cfg)
	}

	c, err := NewContext(cfg.WithClock(clk.now))
	require.NoError(t, err)
	t.Cleanup(func() {
		if !c.closed.Load() {
			_ = c.Close()
		}
	})
	return c, path, clk
}

// readLines returns the lines of a file without their newlines
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(data) == 0 {
		return nil
	}
	require.True(t, strings.HasSuffix(string(data), "\n"), "file must end with a newline")
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// header renders the unthrottled header the way the writer does for the fake clock
func header(ts float64, name string, level Level) string {
	return fmt.Sprintf("%.06f [%d] %s %s: ", ts, os.Getpid(), name, level)
}

// throttledHeader renders the header of a throttled line
func throttledHeader(ts float64, name string, level Level, suppressed uint64) string {
	return fmt.Sprintf("%.06f [%d] %s %s[%d]: ", ts, os.Getpid(), name, level, suppressed)
}

func TestNewContext(t *testing.T) {
	c, path, _ := createTestContext(t, nil)

	assert.Equal(t, KindFile, c.Kind())
	assert.Equal(t, int64(1), c.Refs())
	assert.Equal(t, DefaultBufferSize, c.BufferSize())
	assert.Equal(t, DefaultMaxMessages, c.Messages().Cap())

	_, err := os.Stat(path)
	assert.NoError(t, err, "file sink is created on open")
}

func TestNewContextErrors(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewContext(nil)
		assert.Error(t, err)
	})

	t.Run("file without path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Kind = "file"
		_, err := NewContext(cfg)
		assert.Error(t, err)
	})

	t.Run("unopenable path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Kind = "file"
		cfg.Path = filepath.Join(t.TempDir(), "missing", "dir", "x.log")
		_, err := NewContext(cfg)
		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "open", ioErr.Op)
	})
}

func TestStdContext(t *testing.T) {
	for _, kind := range []string{"stdout", "stderr"} {
		t.Run(kind, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Kind = kind
			c, err := NewContext(cfg)
			require.NoError(t, err)

			k, _ := ParseKind(kind)
			assert.Equal(t, k, c.Kind())
			assert.NoError(t, c.Flush(), "empty flush is a no-op")
			assert.NoError(t, c.Close())
		})
	}
}

func TestSetBufferSize(t *testing.T) {
	c, path, _ := createTestContext(t, nil)
	id, err := c.Register(LevelInfo, LevelInfo, "buf", 0)
	require.NoError(t, err)

	require.NoError(t, c.Maybe(LevelInfo, id, "first"))
	assert.Empty(t, readLines(t, path), "line stays buffered below the threshold")

	assert.Error(t, c.SetBufferSize(0))
	require.NoError(t, c.SetBufferSize(1))
	assert.Equal(t, 1, c.BufferSize())

	// The next emit compares the whole buffer against the new threshold
	require.NoError(t, c.Maybe(LevelInfo, id, "second"))
	assert.Len(t, readLines(t, path), 2)
	assert.Equal(t, 0, c.Stats().Buffered)
}

func TestContextCloseFlushes(t *testing.T) {
	c, path, clk := createTestContext(t, nil)
	id, err := c.Register(LevelDebug, LevelDebug, "close", 0)
	require.NoError(t, err)

	require.NoError(t, c.Maybe(LevelDebug, id, "pending %d", 1))
	c.Incref()
	assert.NoError(t, c.Close(), "first close only drops a holder")
	assert.Empty(t, readLines(t, path))

	assert.NoError(t, c.Close())
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, throttledHeader(clk.t, "close", LevelDebug, 0)+"pending 1", lines[0])

	assert.ErrorIs(t, c.Close(), ErrInvalidHandle)
	assert.ErrorIs(t, c.Flush(), ErrInvalidHandle)
	assert.ErrorIs(t, c.Maybe(LevelDebug, id, "late"), ErrInvalidHandle)
}

func TestRoundTripAcrossThreshold(t *testing.T) {
	c, path, clk := createTestContext(t, func(cfg *Config) {
		cfg.BufferSize = 128
	})
	id, err := c.Register(LevelInfo, LevelInfo, "rt", 0)
	require.NoError(t, err)

	var want []string
	for i := 0; i < 50; i++ {
		clk.advance(0.5)
		body := fmt.Sprintf("line %02d %s", i, strings.Repeat("y", i%7))
		require.NoError(t, c.Maybe(LevelInfo, id, "%s", body))
		want = append(want, throttledHeader(clk.t, "rt", LevelInfo, 0)+body)
	}
	require.NoError(t, c.Flush())

	assert.Equal(t, want, readLines(t, path))
	stats := c.Stats()
	assert.Equal(t, uint64(50), stats.LinesEmitted)
	assert.Greater(t, stats.Flushes, uint64(1), "threshold crossings flush mid-stream")
}

func TestContextResetLevels(t *testing.T) {
	c, _, _ := createTestContext(t, nil)
	rx, err := c.Register(LevelInfo, LevelInfo, "net.rx", 0)
	require.NoError(t, err)
	_, err = c.Register(LevelError, LevelError, "disk", 0)
	require.NoError(t, err)

	assert.Equal(t, 2, c.SetLevel("*", LevelDebug))
	assert.True(t, c.Allowed(LevelDebug, rx))

	assert.Equal(t, 1, c.ResetLevels("net.*"))
	assert.False(t, c.Allowed(LevelDebug, rx))

	var levels []Level
	require.NoError(t, c.Traverse(func(mi *MessageInfo) error {
		levels = append(levels, mi.FileLevel)
		return nil
	}))
	assert.Equal(t, []Level{LevelInfo, LevelDebug}, levels)
}
