// FILE: tlog/sanitizer/sanitizer_test.go
package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizerPolicies(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		policy   Policy
		expected string
	}{
		{
			name:     "raw passes through",
			input:    "hello\x00world\n",
			policy:   PolicyRaw,
			expected: "hello\x00world\n",
		},
		{
			name:     "txt hex encodes null byte",
			input:    "test\x00data",
			policy:   PolicyTxt,
			expected: "test<00>data",
		},
		{
			name:     "txt hex encodes newline",
			input:    "line1\nline2",
			policy:   PolicyTxt,
			expected: "line1<0a>line2",
		},
		{
			name:     "txt keeps printable unicode",
			input:    "héllo wörld",
			policy:   PolicyTxt,
			expected: "héllo wörld",
		},
		{
			name:     "txt multi-byte control",
			input:    "line1\u0085line2",
			policy:   PolicyTxt,
			expected: "line1<c285>line2",
		},
		{
			name:     "txt invalid utf8",
			input:    "a\xffb",
			policy:   PolicyTxt,
			expected: "a<ff>b",
		},
		{
			name:     "escape line breaks",
			input:    "a\nb\r\tc",
			policy:   PolicyEscape,
			expected: `a\nb\r\tc`,
		},
		{
			name:     "escape other control",
			input:    "bell\x07",
			policy:   PolicyEscape,
			expected: `bell\x07`,
		},
		{
			name:     "strip line breaks",
			input:    "one\ntwo\r\n",
			policy:   PolicyStrip,
			expected: "onetwo",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New().Policy(tc.policy)
			assert.Equal(t, tc.expected, s.Sanitize(tc.input))
		})
	}
}

func TestSanitizerRuleOrder(t *testing.T) {
	// first matching rule wins
	s := New().
		Rule(FilterLineBreak, TransformStrip).
		Rule(FilterControl, TransformHexEncode)

	assert.Equal(t, "ab<07>", s.Sanitize("a\nb\x07"))
}

func TestSanitizerPassthrough(t *testing.T) {
	assert.True(t, New().Passthrough())
	assert.True(t, New().Policy(PolicyRaw).Passthrough())
	assert.False(t, New().Policy(PolicyTxt).Passthrough())
	assert.True(t, Known(PolicyEscape))
	assert.False(t, Known("json"))
}

func TestSanitizerBytesReusesBuffer(t *testing.T) {
	s := New().Policy(PolicyEscape)
	first := string(s.Bytes([]byte("x\ny")))
	second := string(s.Bytes([]byte("z")))
	assert.Equal(t, `x\ny`, first)
	assert.Equal(t, "z", second)
}
