package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	raw := "a\r\n\r\nb\n\nc\r\n\nd"

	chunks := splitChunks(raw)

	expected := []chunk{
		{text: "a", offset: 0},
		{text: "b", offset: 5},
		{text: "c", offset: 8},
		{text: "d", offset: 12},
	}
	assert.Equal(t, expected, chunks)
	for _, c := range chunks {
		assert.Equal(t, c.text, raw[c.offset:c.offset+len(c.text)])
	}
}

func TestSplit(t *testing.T) {
	testcases := []struct {
		desc    string
		raw     string
		status  string
		block   string
		body    string
		wantErr error
	}{
		{
			desc:   "simple",
			raw:    "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\nhello world",
			status: "HTTP/1.1 200 OK",
			block:  "HTTP/1.1 200 OK\r\nContent-Type: text/plain",
			body:   "hello world",
		},
		{
			desc:   "sole LF",
			raw:    "HTTP/1.0 200 OK\nServer: x\n\nbody",
			status: "HTTP/1.0 200 OK",
			block:  "HTTP/1.0 200 OK\nServer: x",
			body:   "body",
		},
		{
			desc:   "body kept verbatim across blank lines",
			raw:    "HTTP/1.1 200 OK\r\nA: b\r\n\r\nline one\r\n\r\nline two\n\n",
			status: "HTTP/1.1 200 OK",
			block:  "HTTP/1.1 200 OK\r\nA: b",
			body:   "line one\r\n\r\nline two\n\n",
		},
		{
			desc:   "empty body",
			raw:    "HTTP/1.1 204 No Content\r\nA: b\r\n\r\n",
			status: "HTTP/1.1 204 No Content",
			block:  "HTTP/1.1 204 No Content\r\nA: b",
			body:   "",
		},
		{
			desc: "interim response before final",
			raw: "HTTP/1.1 100 Continue\r\n\r\n" +
				"HTTP/1.1 200 OK\r\nServer: x\r\n\r\n" +
				"done",
			status: "HTTP/1.1 200 OK",
			block:  "HTTP/1.1 200 OK\r\nServer: x",
			body:   "done",
		},
		{
			desc: "auth challenge then real response",
			raw: "HTTP/1.1 401 Unauthorized\r\nWWW-Authenticate: Digest realm=\"x\"\r\n\r\n" +
				"HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n" +
				"ok",
			status: "HTTP/1.1 200 OK",
			block:  "HTTP/1.1 200 OK\r\nContent-Length: 2",
			body:   "ok",
		},
		{
			desc:    "single chunk without boundary",
			raw:     "HTTP/1.1 200 OK\r\nContent-Type: text/plain",
			wantErr: ErrPlausibleHeadersNotFound,
		},
		{
			desc:    "every chunk header shaped",
			raw:     "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nA: b",
			wantErr: ErrPlausibleHeadersNotFound,
		},
		{
			desc:    "body first",
			raw:     "hello\r\n\r\nHTTP/1.1 200 OK\r\n\r\nbody",
			wantErr: ErrPlausibleHeadersNotFound,
		},
		{
			desc:    "empty",
			raw:     "",
			wantErr: ErrPlausibleHeadersNotFound,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			parts, err := Split(tc.raw)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.status, parts.Status.Raw)
			assert.Equal(t, tc.block, parts.HeaderBlock)
			assert.Equal(t, tc.body, parts.Body)
		})
	}
}

func TestSplitIsIdempotent(t *testing.T) {
	raw := "HTTP/1.1 302 Found\r\nLocation: /b\r\n\r\nHTTP/1.1 200 OK\r\n\r\nbody"

	first, err := Split(raw)
	require.NoError(t, err)
	second, err := Split(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplitRecoversBody(t *testing.T) {
	bodies := []string{
		"",
		"x",
		"{\"a\": 1}\n",
		"\r\n\r\n",
		"HTTP/1.1 200 OK\r\n",
		"multi\n\nparagraph\r\n\r\nbody",
	}

	for _, body := range bodies {
		raw := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\n" + body

		parts, err := Split(raw)
		if body == "HTTP/1.1 200 OK\r\n" {
			// A body that itself looks like a header block is not a boundary.
			assert.ErrorIs(t, err, ErrPlausibleHeadersNotFound)
			continue
		}

		require.NoError(t, err, "body %q", body)
		assert.Equal(t, body, parts.Body)
	}
}
