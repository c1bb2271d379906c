package http

import (
	"strings"
	"sync"

	"httpwrap/application/http/semantic"
)

// Response is a raw response split into its parts.
// Headers are parsed on first access and cached afterwards.
type Response struct {
	raw   string
	parts Parts

	headersOnce sync.Once
	headers     *semantic.Headers
}

// NewResponse splits raw. It fails with [ErrPlausibleHeadersNotFound]
// when no header/body boundary can be found.
func NewResponse(raw string) (*Response, error) {
	parts, err := Split(raw)
	if err != nil {
		return nil, err
	}

	return &Response{raw: raw, parts: parts}, nil
}

func (r *Response) Raw() string         { return r.raw }
func (r *Response) Status() StatusLine  { return r.parts.Status }
func (r *Response) HeaderBlock() string { return r.parts.HeaderBlock }
func (r *Response) Body() string        { return r.parts.Body }

// Head returns the authoritative header block exactly as received,
// line terminators and the blank line before the body included.
func (r *Response) Head() string {
	// The body is always a suffix of raw.
	prefix := r.raw[:len(r.raw)-len(r.parts.Body)]
	if i := strings.LastIndex(prefix, r.parts.HeaderBlock); i >= 0 {
		return prefix[i:]
	}
	return prefix
}

// Headers returns the parsed header block.
// Every call returns the same table; callers must not modify it.
func (r *Response) Headers() *semantic.Headers {
	r.headersOnce.Do(func() {
		headers := ParseHeaderBlock(r.parts.HeaderBlock)
		r.headers = &headers
	})

	return r.headers
}

func (r *Response) Header(name string) ([]string, bool) {
	return r.Headers().Values(name)
}
