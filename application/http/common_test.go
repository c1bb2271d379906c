package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected Version
		wantErr  bool
	}{
		{
			desc:     "http 1.1",
			input:    "HTTP/1.1",
			expected: Version{1, 1},
		},
		{
			desc:     "http 1.0",
			input:    "HTTP/1.0",
			expected: Version{1, 0},
		},
		{
			desc:    "missing prefix",
			input:   "1.1",
			wantErr: true,
		},
		{
			desc:    "missing prefix (partial)",
			input:   "HTTP1.1",
			wantErr: true,
		},
		{
			desc:    "missing seperator",
			input:   "HTTP/1",
			wantErr: true,
		},
		{
			desc:    "two seperators",
			input:   "HTTP/1.1.1",
			wantErr: true,
		},
		{
			desc:    "version not convertable to int",
			input:   "HTTP/ayo.2",
			wantErr: true,
		},
		{
			desc:    "negative version",
			input:   "HTTP/1.-1",
			wantErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			ver, err := ParseVersion(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, ver)
		})
	}
}

func TestVersionString(t *testing.T) {
	testcases := []struct {
		input    Version
		expected string
	}{
		{input: Version{1, 1}, expected: "HTTP/1.1"},
		{input: Version{1, 0}, expected: "HTTP/1.0"},
		{input: Version{20, 1}, expected: "HTTP/20.1"},
	}
	for _, tc := range testcases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.input.String())
		})
	}
}

func TestParseField(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected Field
	}{
		{
			desc:     "simple",
			input:    "Content-Type: text/html",
			expected: Field{Name: "Content-Type", Value: "text/html"},
		},
		{
			desc:     "value containing separator",
			input:    "X-Note: a: b",
			expected: Field{Name: "X-Note", Value: "a: b"},
		},
		{
			desc:     "value whitespace kept",
			input:    "X-Pad:   spaced  ",
			expected: Field{Name: "X-Pad", Value: "  spaced  "},
		},
		{
			desc:     "empty value",
			input:    "X-Empty: ",
			expected: Field{Name: "X-Empty", Value: ""},
		},
		{
			desc:     "no separator",
			input:    "X-Broken:value",
			expected: Field{Name: "X-Broken:value", Value: ""},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseField(tc.input))
		})
	}
}

func TestFieldText(t *testing.T) {
	field := Field{Name: "Host", Value: "example.com"}
	assert.Equal(t, "Host: example.com", field.Text())
}
