package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidToken(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected bool
	}{
		{
			desc:     "field name",
			input:    "Content-Type",
			expected: true,
		},
		{
			desc:     "digits",
			input:    "X-Ratelimit-100",
			expected: true,
		},
		{
			desc:     "special characters",
			input:    "Token-._~",
			expected: true,
		},
		{
			desc:     "space",
			input:    "Set Cookie",
			expected: false,
		},
		{
			desc:     "colon",
			input:    "Host:",
			expected: false,
		},
		{
			desc:     "empty",
			input:    "",
			expected: false,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsValidToken(tc.input))
		})
	}
}

func TestUnquote(t *testing.T) {
	testcases := []struct {
		desc     string
		input    []byte
		expected []byte
	}{
		{
			desc:     "not quoted",
			input:    []byte("chunked"),
			expected: []byte("chunked"),
		},
		{
			desc:     "quoted",
			input:    []byte(`"chunked"`),
			expected: []byte("chunked"),
		},
		{
			desc:     "half-quoted",
			input:    []byte(`"chunked`),
			expected: []byte(`"chunked`),
		},
		{
			desc:     "escaped quote",
			input:    []byte(`"a\"b"`),
			expected: []byte(`a"b`),
		},
		{
			desc:     "escaped backslash",
			input:    []byte(`"a\\b"`),
			expected: []byte(`a\b`),
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, Unquote(tc.input))
		})
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("200"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("2O0"))
}

func TestTrimLineEnd(t *testing.T) {
	assert.Equal(t, "HTTP/1.1 200 OK", TrimLineEnd("HTTP/1.1 200 OK\r\n"))
	assert.Equal(t, "HTTP/1.1 200 OK", TrimLineEnd("HTTP/1.1 200 OK\n"))
	assert.Equal(t, "a\r", TrimLineEnd("a\r"))
	assert.Equal(t, "", TrimLineEnd("\r\n"))
}
