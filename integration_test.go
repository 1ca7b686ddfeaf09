// FILE: tlog/integration_test.go
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

// TestFullLifecycle drives a context from a config file through reconfiguration,
// throttling, rotation and close
func TestFullLifecycle(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	cfgPath := filepath.Join(dir, "app.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
[tlog]
kind = "file"
path = %q
max_size_kb = 1
max_backups = 2
buffer_size = 256
`, logPath)), 0644))

	cfg, err := NewConfigFromFile(cfgPath)
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyOverride("flock=true", "sanitize=escape"))

	clk := newFakeClock(2000)
	h, err := Open(cfg.WithClock(clk.now))
	require.NoError(t, err)

	rx, err := RegisterMessage(h, LevelInfo, LevelInfo, "net.rx", 1)
	require.NoError(t, err)
	dbg, err := RegisterMessage(h, LevelNotice, LevelNotice, "net.dbg", 0)
	require.NoError(t, err)
	boot, err := RegisterMessage(h, LevelInfo, LevelInfo, "boot", 0)
	require.NoError(t, err)

	c, err := Get(h)
	require.NoError(t, err)

	require.NoError(t, c.Once(LevelInfo, boot, "starting\nup"))

	// 100 packets over 25 seconds; the boot line stamped the writer clock,
	// so one packet per second gets through starting one second later
	for i := 0; i < 100; i++ {
		require.NoError(t, c.Maybe(LevelInfo, rx, "packet %d len=%d", i, 64))
		require.NoError(t, c.Maybe(LevelDebug, dbg, "hidden %d", i))
		clk.advance(0.25)
	}

	// Raise verbosity at run time
	n, err := SetLevel(h, LevelDebug, "net.*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, c.Maybe(LevelDebug, dbg, "now visible"))

	var names []string
	require.NoError(t, Traverse(h, func(mi *MessageInfo) error {
		names = append(names, fmt.Sprintf("%s=%s", mi.Name, mi.FileLevel))
		return nil
	}))
	assert.Equal(t, []string{"net.rx=DEBUG", "net.dbg=DEBUG", "boot=INFO"}, names)

	require.NoError(t, Close(h))

	var all []string
	for _, p := range []string{logPath + ".2", logPath + ".1", logPath} {
		if _, err := os.Stat(p); err == nil {
			all = append(all, readLines(t, p)...)
		}
	}

	require.NotEmpty(t, all)
	assert.Contains(t, all[0], `boot INFO: starting\nup`, "sanitized body stays on one line")

	var packets, visible int
	for _, line := range all {
		if strings.Contains(line, " net.rx INFO[") {
			packets++
		}
		if strings.Contains(line, "now visible") {
			visible++
		}
		assert.NotContains(t, line, "hidden")
	}
	assert.Equal(t, 24, packets)
	assert.Equal(t, 1, visible)
	assert.GreaterOrEqual(t, c.Stats().Rotations, uint64(1))
}
