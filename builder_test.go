package tlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "built.log")
	clk := newFakeClock(500)

	cfg, err := NewBuilder().
		Path(path).
		ShadowPath(path + ".prev").
		MaxSizeKB(64).
		MaxSizeBytes(1000).
		MaxAgeS(30).
		MaxBackups(2).
		OpenFlags(DefaultOpenFlags).
		FileMode(0640).
		Flock(true).
		BufferSize(256).
		MaxMessages(10).
		Sanitize("escape").
		InternalErrorsToStderr(true).
		Clock(clk.now).
		Config()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Kind)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, path+".prev", cfg.ShadowPath)
	assert.Equal(t, int64(64), cfg.MaxSizeKB)
	assert.Equal(t, int64(1000), cfg.maxSizeBytes())
	assert.Equal(t, 30.0, cfg.MaxAgeS)
	assert.Equal(t, int64(2), cfg.MaxBackups)
	assert.Equal(t, int64(0640), cfg.FileMode)
	assert.True(t, cfg.Flock)
	assert.Equal(t, int64(256), cfg.BufferSize)
	assert.Equal(t, int64(10), cfg.MaxMessages)
	assert.Equal(t, "escape", cfg.Sanitize)
	assert.True(t, cfg.InternalErrorsToStderr)
	assert.Equal(t, 500.0, cfg.clock())
}

func TestBuilderBuildAndOpen(t *testing.T) {
	t.Run("build", func(t *testing.T) {
		c, err := NewBuilder().Kind(KindStdout).MaxMessages(3).Build()
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, KindStdout, c.Kind())
		assert.Equal(t, 3, c.Messages().Cap())
	})

	t.Run("open", func(t *testing.T) {
		h, err := NewBuilder().Path(filepath.Join(t.TempDir(), "o.log")).Open()
		require.NoError(t, err)
		c, err := Get(h)
		require.NoError(t, err)
		assert.Equal(t, KindFile, c.Kind())
		require.NoError(t, Close(h))
	})
}

func TestBuilderErrors(t *testing.T) {
	_, err := NewBuilder().KindString("pipe").Config()
	assert.Error(t, err)

	// The first error sticks
	b := NewBuilder().KindString("pipe").KindString("stdout")
	_, err = b.Build()
	assert.Error(t, err)
	_, err = b.Open()
	assert.Error(t, err)

	_, err = NewBuilder().BufferSize(0).Config()
	assert.Error(t, err, "config is validated")

	cfg, err := NewBuilder().KindString("STDERR").Config()
	require.NoError(t, err)
	assert.Equal(t, "stderr", cfg.Kind)
}
