// FILE: tlog/override.go
package tlog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to the configuration.
// Each override should be in the format "key=value". Either every override
// applies and the result validates, or the configuration is left unchanged.
//
// Example:
//
//	cfg := tlog.DefaultConfig()
//	err := cfg.ApplyOverride(
//	    "kind=file",
//	    "path=/var/log/app.log",
//	    "max_size_kb=1024",
//	    "max_backups=3",
//	)
func (c *Config) ApplyOverride(overrides ...string) error {
	cfg := c.Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	*c = *cfg
	return nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("tlog: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "tlog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// Sink
	case "kind":
		kind, err := ParseKind(value)
		if err != nil {
			return err
		}
		cfg.Kind = kind.String()
	case "path":
		cfg.Path = value
	case "shadow_path":
		cfg.ShadowPath = value

	// Rotation
	case "max_size_kb":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_size_kb '%s': %w", value, err)
		}
		cfg.MaxSizeKB = intVal
	case "max_size_bytes":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_size_bytes '%s': %w", value, err)
		}
		cfg.MaxSizeBytes = intVal
	case "max_age_s":
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmtErrorf("invalid float value for max_age_s '%s': %w", value, err)
		}
		cfg.MaxAgeS = floatVal
	case "max_backups":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_backups '%s': %w", value, err)
		}
		cfg.MaxBackups = intVal

	// File handling
	case "open_flags":
		// base 0 accepts 0x and 0o prefixes
		intVal, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for open_flags '%s': %w", value, err)
		}
		cfg.OpenFlags = intVal
	case "file_mode":
		// modes are conventionally written in octal, "644" and "0644" are the same
		intVal, err := strconv.ParseInt(value, 8, 64)
		if err != nil {
			return fmtErrorf("invalid octal value for file_mode '%s': %w", value, err)
		}
		cfg.FileMode = intVal
	case "flock":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for flock '%s': %w", value, err)
		}
		cfg.Flock = boolVal

	// Buffering and registry
	case "buffer_size":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for buffer_size '%s': %w", value, err)
		}
		cfg.BufferSize = intVal
	case "max_messages":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_messages '%s': %w", value, err)
		}
		cfg.MaxMessages = intVal

	// Body handling
	case "sanitize":
		cfg.Sanitize = strings.ToLower(value)

	// Internal error handling
	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
