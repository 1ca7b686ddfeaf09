// FILE: tlog/constant.go
package tlog

import (
	"os"
)

// Level is a syslog-style severity. Lower values are more severe.
type Level int

// Severity levels, most to least severe
const (
	LevelEmerg Level = iota
	LevelAlert
	LevelCrit
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
)

// LevelMessage requests the message's own configured file level
const LevelMessage Level = -1

// Kind selects the writer variant of a context
type Kind int

const (
	KindStdout Kind = iota + 1
	KindStderr
	KindFile
)

// Open flags, low byte is the kind
const (
	OpenStdout uint = 0x0001
	OpenStderr uint = 0x0002
	OpenFile   uint = 0x0003
	OpenKind   uint = 0x00ff
	OpenFlock  uint = 0x0100
)

// File writer defaults
const (
	DefaultOpenFlags            = os.O_WRONLY | os.O_APPEND | os.O_CREATE
	DefaultFileMode os.FileMode = 0644
)

const (
	// DefaultMaxMessages bounds a message registry
	DefaultMaxMessages = 1024
	// DefaultBufferSize is the soft flush threshold in bytes
	DefaultBufferSize = 4096
	// Size multiplier for KB
	sizeMultiplier = 1024
)

var levelNames = [...]string{
	"EMERG",
	"ALERT",
	"CRIT",
	"ERROR",
	"WARNING",
	"NOTICE",
	"INFO",
	"DEBUG",
}

// String returns the fixed level token
func (l Level) String() string {
	if l < LevelEmerg || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Valid reports whether l is one of the eight severity levels
func (l Level) Valid() bool {
	return l >= LevelEmerg && l <= LevelDebug
}

// String returns the config name of the kind
func (k Kind) String() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}
