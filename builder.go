// FILE: tlog/builder.go
package tlog

// Builder provides a fluent API for building context configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Config returns a validated copy of the built configuration.
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	return b.cfg.Clone(), nil
}

// Build creates an unregistered Context with the specified configuration.
func (b *Builder) Build() (*Context, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewContext(b.cfg)
}

// Open creates a Context and registers it under a handle.
func (b *Builder) Open() (Handle, error) {
	if b.err != nil {
		return HandleInvalid, b.err
	}
	return Open(b.cfg)
}

// Kind sets the writer variant.
func (b *Builder) Kind(kind Kind) *Builder {
	b.cfg.Kind = kind.String()
	return b
}

// KindString sets the writer variant from its name.
func (b *Builder) KindString(kind string) *Builder {
	if b.err != nil {
		return b
	}
	k, err := ParseKind(kind)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Kind = k.String()
	return b
}

// Path sets the active file path and selects the file writer.
func (b *Builder) Path(path string) *Builder {
	b.cfg.Kind = KindFile.String()
	b.cfg.Path = path
	return b
}

// ShadowPath sets the fixed rotation target.
func (b *Builder) ShadowPath(path string) *Builder {
	b.cfg.ShadowPath = path
	return b
}

// MaxSizeKB sets the rotation size in KB.
func (b *Builder) MaxSizeKB(size int64) *Builder {
	b.cfg.MaxSizeKB = size
	return b
}

// MaxSizeBytes sets the rotation size in bytes.
func (b *Builder) MaxSizeBytes(size int64) *Builder {
	b.cfg.MaxSizeBytes = size
	return b
}

// MaxAgeS sets the rotation age in seconds.
func (b *Builder) MaxAgeS(age float64) *Builder {
	b.cfg.MaxAgeS = age
	return b
}

// MaxBackups sets the number of numbered backups kept.
func (b *Builder) MaxBackups(n int64) *Builder {
	b.cfg.MaxBackups = n
	return b
}

// OpenFlags sets the os.OpenFile flags of the active file.
func (b *Builder) OpenFlags(flags int) *Builder {
	b.cfg.OpenFlags = int64(flags)
	return b
}

// FileMode sets the permission bits of created files.
func (b *Builder) FileMode(mode uint32) *Builder {
	b.cfg.FileMode = int64(mode)
	return b
}

// Flock enables the advisory lock around writes and rotations.
func (b *Builder) Flock(enable bool) *Builder {
	b.cfg.Flock = enable
	return b
}

// BufferSize sets the soft flush threshold.
func (b *Builder) BufferSize(size int64) *Builder {
	b.cfg.BufferSize = size
	return b
}

// MaxMessages sets the registry capacity.
func (b *Builder) MaxMessages(n int64) *Builder {
	b.cfg.MaxMessages = n
	return b
}

// Sanitize sets the body sanitizing policy.
func (b *Builder) Sanitize(policy string) *Builder {
	b.cfg.Sanitize = policy
	return b
}

// InternalErrorsToStderr enables diagnostics on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Clock sets the time source.
func (b *Builder) Clock(clock Clock) *Builder {
	b.cfg.clock = clock
	return b
}

// Example usage:
// h, err := tlog.NewBuilder().
//
//	Path("/var/log/app.log").
//	MaxSizeKB(1024).
//	MaxBackups(3).
//	Flock(true).
//	Open()
//
// if err == nil {
//
//	 defer tlog.Close(h)
//
// }
