// FILE: tlog/config_test.go
package tlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stderr", cfg.Kind)
	assert.Equal(t, int64(DefaultBufferSize), cfg.BufferSize)
	assert.Equal(t, int64(DefaultMaxMessages), cfg.MaxMessages)
	assert.Equal(t, int64(DefaultFileMode), cfg.FileMode)
	assert.Equal(t, "raw", cfg.Sanitize)
	assert.NoError(t, cfg.Validate())

	// Copies are independent
	cfg.Kind = "file"
	assert.Equal(t, "stderr", DefaultConfig().Kind)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"file with path", func(c *Config) { c.Kind = "file"; c.Path = "/tmp/x.log" }, false},
		{"file without path", func(c *Config) { c.Kind = "file" }, true},
		{"unknown kind", func(c *Config) { c.Kind = "syslog" }, true},
		{"shadow equals path", func(c *Config) { c.Kind = "file"; c.Path = "a"; c.ShadowPath = "a" }, true},
		{"negative size", func(c *Config) { c.MaxSizeKB = -1 }, true},
		{"negative bytes", func(c *Config) { c.MaxSizeBytes = -1 }, true},
		{"negative age", func(c *Config) { c.MaxAgeS = -0.5 }, true},
		{"negative backups", func(c *Config) { c.MaxBackups = -1 }, true},
		{"bad mode", func(c *Config) { c.FileMode = 0o10000 }, true},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, true},
		{"zero registry", func(c *Config) { c.MaxMessages = 0 }, true},
		{"unknown sanitize", func(c *Config) { c.Sanitize = "json" }, true},
		{"empty sanitize", func(c *Config) { c.Sanitize = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestMaxSizeBytes(t *testing.T) {
	cfg := DefaultConfig()
	assert.Zero(t, cfg.maxSizeBytes())

	cfg.MaxSizeKB = 2
	assert.Equal(t, int64(2048), cfg.maxSizeBytes())

	cfg.MaxSizeBytes = 100
	assert.Equal(t, int64(100), cfg.maxSizeBytes(), "bytes win over KB")
}

func TestNewConfigFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("loads tlog table", func(t *testing.T) {
		path := filepath.Join(dir, "tlog.toml")
		content := `
[tlog]
kind = "file"
path = "/var/log/app.log"
max_size_kb = 512
max_age_s = 3600
max_backups = 4
flock = true
buffer_size = 8192
sanitize = "escape"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "file", cfg.Kind)
		assert.Equal(t, "/var/log/app.log", cfg.Path)
		assert.Equal(t, int64(512), cfg.MaxSizeKB)
		assert.Equal(t, 3600.0, cfg.MaxAgeS)
		assert.Equal(t, int64(4), cfg.MaxBackups)
		assert.True(t, cfg.Flock)
		assert.Equal(t, int64(8192), cfg.BufferSize)
		assert.Equal(t, "escape", cfg.Sanitize)
		// Untouched keys keep their defaults
		assert.Equal(t, int64(DefaultMaxMessages), cfg.MaxMessages)
	})

	t.Run("missing file keeps defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(dir, "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[tlog]\nkind = \"file\"\n"), 0644))
		_, err := NewConfigFromFile(path)
		assert.Error(t, err)
	})
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"kind":        "file",
		"path":        "/tmp/app.log",
		"max_backups": 3,
		"max_age_s":   1.5,
		"flock":       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Kind)
	assert.Equal(t, int64(3), cfg.MaxBackups)
	assert.Equal(t, 1.5, cfg.MaxAgeS)
	assert.True(t, cfg.Flock)

	_, err = NewConfigFromDefaults(map[string]any{"unknown": 1})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"buffer_size": "big"})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"kind": "file"})
	assert.Error(t, err, "result is validated")
}

func TestConfigClockNotLoadable(t *testing.T) {
	_, err := NewConfigFromDefaults(map[string]any{"clock": 1})
	assert.Error(t, err)

	clk := newFakeClock(42)
	cfg := DefaultConfig().WithClock(clk.now)
	require.NotNil(t, cfg.clock)
	assert.Equal(t, 42.0, cfg.clock())
	assert.Nil(t, DefaultConfig().clock)
}

func TestApplyOverride(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyOverride(
		"kind=FILE",
		"path=/var/log/x.log",
		"shadow_path=/var/log/x.log.old",
		"max_size_kb=10",
		"max_size_bytes=2048",
		"max_age_s=0.25",
		"max_backups=2",
		"open_flags=0x441",
		"file_mode=0600",
		"flock=true",
		"buffer_size=100",
		"max_messages=16",
		"sanitize=Strip",
		"internal_errors_to_stderr=true",
	)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Kind)
	assert.Equal(t, "/var/log/x.log", cfg.Path)
	assert.Equal(t, "/var/log/x.log.old", cfg.ShadowPath)
	assert.Equal(t, int64(10), cfg.MaxSizeKB)
	assert.Equal(t, int64(2048), cfg.MaxSizeBytes)
	assert.Equal(t, 0.25, cfg.MaxAgeS)
	assert.Equal(t, int64(2), cfg.MaxBackups)
	assert.Equal(t, int64(0x441), cfg.OpenFlags)
	assert.Equal(t, int64(0o600), cfg.FileMode)
	assert.True(t, cfg.Flock)
	assert.Equal(t, int64(100), cfg.BufferSize)
	assert.Equal(t, int64(16), cfg.MaxMessages)
	assert.Equal(t, "strip", cfg.Sanitize)
	assert.True(t, cfg.InternalErrorsToStderr)
}

func TestApplyOverrideErrors(t *testing.T) {
	t.Run("collects every error", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverride("nokey", "max_backups=many", "flock=perhaps", "bogus=1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple configuration errors")
		assert.Contains(t, err.Error(), "4. ")
	})

	t.Run("leaves config unchanged on failure", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverride("buffer_size=64", "kind=file")
		assert.Error(t, err, "file without path fails validation")
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("single error is returned as is", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverride("kind=pipe")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "multiple")
	})
}
