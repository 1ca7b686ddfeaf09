// FILE: tlog/utility.go
package tlog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sentinel errors
var (
	ErrCapacityExceeded = errors.New("tlog: message registry capacity exceeded")
	ErrUnknownMessageID = errors.New("tlog: unknown message id")
	ErrFormat           = errors.New("tlog: line formatting failed")
	ErrInvalidHandle    = errors.New("tlog: invalid logger handle")
)

// IOError reports a failed open, flush or rotation step
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return "tlog: " + e.Op + ": " + e.Err.Error()
	}
	return "tlog: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "tlog: ") {
		format = "tlog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// ParseLevel converts a level token or number to a Level.
func ParseLevel(levelStr string) (Level, error) {
	s := strings.ToUpper(strings.TrimSpace(levelStr))
	if n, err := strconv.Atoi(s); err == nil {
		if !Level(n).Valid() {
			return 0, fmtErrorf("level out of range: %d (use 0-7)", n)
		}
		return Level(n), nil
	}
	switch s {
	case "WARN":
		return LevelWarning, nil
	case "ERR":
		return LevelError, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return 0, fmtErrorf("invalid level string: '%s' (use emerg, alert, crit, error, warning, notice, info, debug)", levelStr)
}

// ParseKind converts a config kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stdout":
		return KindStdout, nil
	case "stderr":
		return KindStderr, nil
	case "file":
		return KindFile, nil
	default:
		return 0, fmtErrorf("invalid kind: '%s' (use stdout, stderr, or file)", s)
	}
}

// internalLog writes diagnostics about the logger itself to stderr, if enabled.
func internalLog(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	if !strings.HasPrefix(format, "tlog: ") {
		format = "tlog: " + format
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
