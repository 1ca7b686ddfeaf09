// FILE: tlog/sanitizer/sanitizer.go
// Package sanitizer keeps caller-supplied text from breaking the one-record-per-line
// layout of a log file, using ordered filter/transform rules.
package sanitizer

import (
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for rune matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterLineBreak                       // '\n', '\r', U+2028, U+2029
)

// Transform flags
const (
	TransformStrip     uint64 = 1 << iota // Drop the rune
	TransformHexEncode                    // Replace with "<xx..>" of its UTF-8 bytes
	TransformEscape                       // Backslash escape (\n, \r, \t, \xNN)
)

// Policy names a preset rule list
type Policy string

const (
	PolicyRaw    Policy = "raw"    // passthrough
	PolicyTxt    Policy = "txt"    // hex-encode anything non-printable
	PolicyEscape Policy = "escape" // backslash-escape line breaks and control runes
	PolicyStrip  Policy = "strip"  // drop line breaks and control runes
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[Policy][]rule{
	PolicyRaw:    {},
	PolicyTxt:    {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyEscape: {{filter: FilterLineBreak | FilterControl, transform: TransformEscape}},
	PolicyStrip:  {{filter: FilterLineBreak | FilterControl, transform: TransformStrip}},
}

// Sanitizer applies rules in order, first match wins
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates an empty (passthrough) sanitizer
func New() *Sanitizer {
	return &Sanitizer{buf: make([]byte, 0, 256)}
}

// Known reports whether p is a preset policy name
func Known(p Policy) bool {
	_, ok := policyRules[p]
	return ok
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(p Policy) *Sanitizer {
	s.rules = append(s.rules, policyRules[p]...)
	return s
}

// Passthrough reports whether the sanitizer has no rules
func (s *Sanitizer) Passthrough() bool {
	return len(s.rules) == 0
}

// Sanitize returns the sanitized form of data
func (s *Sanitizer) Sanitize(data string) string {
	return string(s.Bytes([]byte(data)))
}

// Bytes sanitizes src into the sanitizer's scratch buffer and returns it.
// The result is only valid until the next call.
func (s *Sanitizer) Bytes(src []byte) []byte {
	s.buf = s.buf[:0]
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		raw := src[:size]
		src = src[size:]

		matched := false
		for _, rl := range s.rules {
			if matches(r, raw, rl.filter) {
				s.buf = apply(s.buf, r, raw, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = append(s.buf, raw...)
		}
	}
	return s.buf
}

func matches(r rune, raw []byte, filter uint64) bool {
	if filter&FilterLineBreak != 0 && (r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029') {
		return true
	}
	if filter&FilterControl != 0 && unicode.IsControl(r) {
		return true
	}
	if filter&FilterNonPrintable != 0 {
		// invalid UTF-8 decodes as RuneError with size 1
		if r == utf8.RuneError && len(raw) == 1 {
			return true
		}
		return !strconv.IsPrint(r)
	}
	return false
}

func apply(dst []byte, r rune, raw []byte, transform uint64) []byte {
	switch {
	case transform&TransformStrip != 0:
		return dst
	case transform&TransformHexEncode != 0:
		dst = append(dst, '<')
		dst = hex.AppendEncode(dst, raw)
		return append(dst, '>')
	case transform&TransformEscape != 0:
		switch r {
		case '\n':
			return append(dst, '\\', 'n')
		case '\r':
			return append(dst, '\\', 'r')
		case '\t':
			return append(dst, '\\', 't')
		}
		for _, c := range raw {
			dst = append(dst, '\\', 'x')
			dst = hex.AppendEncode(dst, []byte{c})
		}
		return dst
	}
	return append(dst, raw...)
}
