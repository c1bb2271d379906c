package http

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestEncoderEncode(t *testing.T) {
	testcases := []struct {
		desc     string
		opts     EncodeOptions
		request  Request
		expected string
		wantErr  error
	}{
		{
			desc: "no body",
			request: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/index.html", Version: Version11},
				FieldLines:  []string{"Host: example.com", "Accept: text/html"},
			},
			expected: "GET /index.html HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"Accept: text/html\r\n" +
				"\r\n",
		},
		{
			desc: "with body",
			request: Request{
				RequestLine: RequestLine{Method: "POST", Target: "/form", Version: Version11},
				FieldLines:  []string{"Content-Length: 3"},
				Body:        strings.NewReader("a=b"),
			},
			expected: "POST /form HTTP/1.1\r\n" +
				"Content-Length: 3\r\n" +
				"\r\n" +
				"a=b",
		},
		{
			desc: "sole LF",
			opts: EncodeOptions{UseSoleLF: true},
			request: Request{
				RequestLine: RequestLine{Method: "HEAD", Target: "*", Version: Version{1, 0}},
			},
			expected: "HEAD * HTTP/1.0\n\n",
		},
		{
			desc: "header injection",
			request: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/", Version: Version11},
				FieldLines:  []string{"X-Evil: a\r\nInjected: b"},
			},
			wantErr: ErrInvalidFieldLine,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			err := NewRequestEncoder(buf, tc.opts).Encode(tc.request)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestRequestEncoderRejectsMalformedRequestLine(t *testing.T) {
	testcases := []struct {
		desc string
		line RequestLine
	}{
		{desc: "method with space", line: RequestLine{Method: "GE T", Target: "/", Version: Version11}},
		{desc: "empty method", line: RequestLine{Method: "", Target: "/", Version: Version11}},
		{desc: "empty target", line: RequestLine{Method: "GET", Target: "", Version: Version11}},
		{desc: "target with space", line: RequestLine{Method: "GET", Target: "/a b", Version: Version11}},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			err := NewRequestEncoder(bytes.NewBuffer(nil), DefaultEncodeOptions).Encode(Request{RequestLine: tc.line})
			assert.Error(t, err)
		})
	}
}
