// FILE: tlog/config.go
package tlog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/tlog/sanitizer"
)

// Config holds all context configuration values
type Config struct {
	// Sink
	Kind       string `toml:"kind"` // "stdout", "stderr", or "file"
	Path       string `toml:"path"`
	ShadowPath string `toml:"shadow_path"` // Fixed rotation target, replaces numbered backups

	// Rotation
	MaxSizeKB    int64   `toml:"max_size_kb"`    // 0 disables size rotation
	MaxSizeBytes int64   `toml:"max_size_bytes"` // Takes precedence over max_size_kb when set
	MaxAgeS      float64 `toml:"max_age_s"`      // 0 disables age rotation
	MaxBackups   int64   `toml:"max_backups"`    // 0 truncates the active file on rotation

	// File handling
	OpenFlags int64 `toml:"open_flags"` // os.OpenFile flags, 0 selects the default
	FileMode  int64 `toml:"file_mode"`  // Permission bits for created files, 0 selects 0644
	Flock     bool  `toml:"flock"`      // Advisory lock around writes and rotations

	// Buffering and registry
	BufferSize  int64 `toml:"buffer_size"`  // Soft flush threshold in bytes
	MaxMessages int64 `toml:"max_messages"` // Registry capacity

	// Body handling
	Sanitize string `toml:"sanitize"` // "raw", "txt", "escape", or "strip"

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Write internal errors to stderr

	clock Clock // Time source override, nil selects NowPosix
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Kind: "stderr",

	MaxSizeKB:  0,
	MaxAgeS:    0,
	MaxBackups: 0,

	OpenFlags: int64(DefaultOpenFlags),
	FileMode:  int64(DefaultFileMode),
	Flock:     false,

	BufferSize:  DefaultBufferSize,
	MaxMessages: DefaultMaxMessages,

	Sanitize: string(sanitizer.PolicyRaw),

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config.
// Keys live under the [tlog] table.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("tlog.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Missing file keeps the defaults
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "tlog.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configKey returns the toml key of a field, empty for fields that are not loaded
func configKey(field reflect.StructField) string {
	if !field.IsExported() {
		return ""
	}
	tag := field.Tag.Get("toml")
	if tag == "-" {
		return ""
	}
	return tag
}

// WithClock returns a copy of the configuration that reads time from clock
func (c *Config) WithClock(clock Clock) *Config {
	cfg := c.Clone()
	cfg.clock = clock
	return cfg
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := configKey(field)
		if key == "" {
			continue
		}

		val, found := loader.Get(prefix + key)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if key := configKey(t.Field(i)); key != "" {
			fieldMap[key] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Float64:
		switch v := value.(type) {
		case float64:
			field.SetFloat(v)
		case int64:
			// TOML integers for fractional-second settings
			field.SetFloat(float64(v))
		case int:
			field.SetFloat(float64(v))
		default:
			return fmt.Errorf("expected float64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	kind, err := ParseKind(c.Kind)
	if err != nil {
		return err
	}

	if kind == KindFile && strings.TrimSpace(c.Path) == "" {
		return fmtErrorf("path cannot be empty for kind 'file'")
	}

	if c.ShadowPath != "" && c.ShadowPath == c.Path {
		return fmtErrorf("shadow_path must differ from path: %s", c.Path)
	}

	if c.MaxSizeKB < 0 || c.MaxSizeBytes < 0 {
		return fmtErrorf("size limits cannot be negative")
	}

	if c.MaxAgeS < 0 {
		return fmtErrorf("max_age_s cannot be negative: %f", c.MaxAgeS)
	}

	if c.MaxBackups < 0 {
		return fmtErrorf("max_backups cannot be negative: %d", c.MaxBackups)
	}

	if c.OpenFlags < 0 || c.FileMode < 0 || c.FileMode > 0o7777 {
		return fmtErrorf("invalid open_flags (%d) or file_mode (%#o)", c.OpenFlags, c.FileMode)
	}

	if c.BufferSize <= 0 {
		return fmtErrorf("buffer_size must be positive: %d", c.BufferSize)
	}

	if c.MaxMessages <= 0 {
		return fmtErrorf("max_messages must be positive: %d", c.MaxMessages)
	}

	if c.Sanitize != "" && !sanitizer.Known(sanitizer.Policy(c.Sanitize)) {
		return fmtErrorf("invalid sanitize policy: '%s' (use raw, txt, escape, or strip)", c.Sanitize)
	}

	return nil
}

// maxSizeBytes resolves the size limit, the byte setting wins over the KB one
func (c *Config) maxSizeBytes() int64 {
	if c.MaxSizeBytes > 0 {
		return c.MaxSizeBytes
	}
	return c.MaxSizeKB * sizeMultiplier
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
