package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParse(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected URI
	}{
		{
			desc:  "full",
			input: "HTTP://user@Example.COM:8080/a/b?x=1&y=%20#top",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{UserInfo: "user", Host: "example.com", Port: ptr[uint16](8080)},
				Path:      "/a/b",
				Query:     ptr("x=1&y=%20"),
				Fragment:  ptr("top"),
			},
		},
		{
			desc:     "no path",
			input:    "http://example.com",
			expected: URI{Scheme: "http", Authority: &Authority{Host: "example.com"}},
		},
		{
			desc:     "empty query",
			input:    "http://a/?",
			expected: URI{Scheme: "http", Authority: &Authority{Host: "a"}, Path: "/", Query: ptr("")},
		},
		{
			desc:     "ip literal",
			input:    "http://[::1]:80/",
			expected: URI{Scheme: "http", Authority: &Authority{Host: "[::1]", Port: ptr[uint16](80)}, Path: "/"},
		},
		{
			desc:     "empty port",
			input:    "http://a:/",
			expected: URI{Scheme: "http", Authority: &Authority{Host: "a"}, Path: "/"},
		},
		{
			desc:     "relative path with colon after slash",
			input:    "g/h:i",
			expected: URI{Path: "g/h:i"},
		},
		{
			desc:     "network-path reference",
			input:    "//g",
			expected: URI{Authority: &Authority{Host: "g"}},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			u, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u)
		})
	}
}

func TestParseError(t *testing.T) {
	testcases := []struct {
		desc  string
		input string
		err   error
	}{
		{desc: "space", input: "http://a/b c", err: ErrContainsCTL},
		{desc: "newline", input: "http://a/\r\nX: y", err: ErrContainsCTL},
		{desc: "scheme with leading digit", input: "1http://a", err: ErrInvalidScheme},
		{desc: "scheme with underscore", input: "ht_tp://a", err: ErrInvalidScheme},
		{desc: "port not numeric", input: "http://a:8o/", err: ErrInvalidPort},
		{desc: "port overflow", input: "http://a:65536/", err: ErrInvalidPort},
		{desc: "unterminated ip literal", input: "http://[::1/", err: ErrInvalidHost},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Parse(tc.input)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestParseAbsolute(t *testing.T) {
	_, err := ParseAbsolute("/just/a/path")
	assert.ErrorIs(t, err, ErrNotAbsolute)

	_, err = ParseAbsolute("http:///path")
	assert.ErrorIs(t, err, ErrMissingHost)

	u, err := ParseAbsolute("http://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Authority.Host)
}

func TestString(t *testing.T) {
	inputs := []string{
		"http://user@example.com:8080/a/b?x=1#top",
		"http://a/?",
		"http://a/#",
		"http://[::1]/p%20q",
		"mailto:someone@example.com",
		"../g?y",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			u, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, input, u.String())
		})
	}
}

func TestRequestTarget(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{input: "http://a", expected: "/"},
		{input: "http://a/", expected: "/"},
		{input: "http://a/b/c?q=1#frag", expected: "/b/c?q=1"},
		{input: "http://a?q", expected: "/?q"},
	}

	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			u, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u.RequestTarget())
		})
	}
}

func TestHostHeader(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{input: "http://example.com/", expected: "example.com"},
		{input: "http://example.com:80/", expected: "example.com"},
		{input: "http://example.com:8080/", expected: "example.com:8080"},
		{input: "http://user@[::1]:81/", expected: "[::1]:81"},
		{input: "/relative", expected: ""},
	}

	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			u, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u.HostHeader(80))
		})
	}
}

func TestAuthorityHostname(t *testing.T) {
	assert.Equal(t, "::1", Authority{Host: "[::1]"}.Hostname())
	assert.Equal(t, "example.com", Authority{Host: "example.com"}.Hostname())
}

func TestPort(t *testing.T) {
	u, err := Parse("http://a:8080")
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), u.Port(80))

	u, err = Parse("http://a")
	require.NoError(t, err)
	assert.Equal(t, uint16(80), u.Port(80))
}
