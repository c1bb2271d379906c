// Package handle wraps a transport session with chained request
// configuration and parsed access to the response.
//
//	h := handle.New(opener).
//		SetURI("http://example.com/").
//		SetOutgoingHeader("Accept", "text/html")
//	defer h.Close()
//
//	if _, err := h.Execute(ctx); err != nil {
//		return err
//	}
//	body, _ := h.ResponseBody()
//
// A Handle is not safe for concurrent configuration or execution.
// Response accessors may be used concurrently once Execute has returned.
package handle

import (
	"context"
	"maps"
	"slices"

	"httpwrap/application/http"
	"httpwrap/application/http/semantic"
	"httpwrap/transport"

	"github.com/pkg/errors"
)

type Handle struct {
	opener  transport.Opener
	session transport.Session // acquired on first Execute.

	uri      string
	outgoing semantic.Headers
	settings transport.Settings

	response *http.Response
}

type Option func(h *Handle)

func WithURI(uri string) Option {
	return func(h *Handle) { h.uri = uri }
}

func WithOutgoingHeader(name string, values ...string) Option {
	return func(h *Handle) { h.outgoing.Set(name, values...) }
}

func New(opener transport.Opener, opts ...Option) *Handle {
	h := &Handle{
		opener:   opener,
		settings: make(transport.Settings),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handle) SetURI(uri string) *Handle {
	h.uri = uri
	return h
}

func (h *Handle) URI() string { return h.uri }

// SetOutgoingHeader replaces the values sent for name.
// Several values are sent as separate header lines.
func (h *Handle) SetOutgoingHeader(name string, values ...string) *Handle {
	h.outgoing.Set(name, values...)
	return h
}

// SetOutgoingHeaders replaces the values of every name in headers.
// Names not in headers are kept. Names are applied in lexical order.
func (h *Handle) SetOutgoingHeaders(headers map[string][]string) *Handle {
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		h.outgoing.Set(name, headers[name]...)
	}
	return h
}

func (h *Handle) OutgoingHeader(name string) ([]string, bool) {
	return h.outgoing.Values(name)
}

// SetOption sets a transport setting. Header lines and header inclusion
// belong to the handle and cannot be set here.
func (h *Handle) SetOption(key transport.Setting, value any) error {
	switch key {
	case transport.SettingHeaderLines, transport.SettingIncludeHeaders:
		return &ConfigurationError{Setting: key, cause: ErrReservedSetting}
	}
	if err := transport.CheckSetting(key, value); err != nil {
		return &ConfigurationError{Setting: key, cause: err}
	}

	h.settings[key] = value
	return nil
}

// SetOptions sets every setting or none of them.
func (h *Handle) SetOptions(settings map[transport.Setting]any) error {
	for _, key := range slices.Sorted(maps.Keys(settings)) {
		switch key {
		case transport.SettingHeaderLines, transport.SettingIncludeHeaders:
			return &ConfigurationError{Setting: key, cause: ErrReservedSetting}
		}
		if err := transport.CheckSetting(key, settings[key]); err != nil {
			return &ConfigurationError{Setting: key, cause: err}
		}
	}

	maps.Copy(h.settings, settings)
	return nil
}

func (h *Handle) Option(key transport.Setting) (any, bool) {
	v, ok := h.settings[key]
	return v, ok
}

// Execute performs the transfer and splits the response.
//
// On failure the previous response, if any, stays in place.
// Transport failures are returned as is and release the session.
func (h *Handle) Execute(ctx context.Context) (*Handle, error) {
	if h.uri == "" {
		return h, &ConfigurationError{cause: ErrMissingURI}
	}

	opts := transport.Options{
		URI:            h.uri,
		Settings:       h.settings.Clone(),
		IncludeHeaders: true,
		HeaderLines:    headerLines(&h.outgoing),
	}

	if h.session == nil {
		session, err := h.opener.Open(ctx)
		if err != nil {
			return h, err
		}
		h.session = session
	}

	raw, err := h.session.Execute(ctx, opts)
	if err != nil {
		_ = h.release()
		return h, err
	}

	response, err := http.NewResponse(raw)
	if err != nil {
		return h, err
	}

	h.response = response
	return h, nil
}

// InjectResponse sets the response as if raw was received.
func (h *Handle) InjectResponse(raw string) error {
	response, err := http.NewResponse(raw)
	if err != nil {
		return err
	}

	h.response = response
	return nil
}

// headerLines flattens headers into "Name: value" lines, one per value.
func headerLines(headers *semantic.Headers) []string {
	lines := make([]string, 0, headers.Len())
	headers.Each(func(name, value string) {
		lines = append(lines, http.Field{Name: name, Value: value}.Text())
	})
	return lines
}

func (h *Handle) Response() (*http.Response, error) {
	if h.response == nil {
		return nil, http.ErrMissingResponse
	}
	return h.response, nil
}

// ResponseBody reports false before a response exists.
func (h *Handle) ResponseBody() (string, bool) {
	if h.response == nil {
		return "", false
	}
	return h.response.Body(), true
}

// ResponseHeaders returns the response headers, parsed on first access.
// Subsequent calls return the same table.
func (h *Handle) ResponseHeaders() (*semantic.Headers, error) {
	if h.response == nil {
		return nil, http.ErrMissingResponse
	}
	return h.response.Headers(), nil
}

// ResponseHeader reports the values received for name. Before any
// response exists it fails with [http.ErrMissingResponse].
func (h *Handle) ResponseHeader(name string) ([]string, bool, error) {
	if h.response == nil {
		return nil, false, http.ErrMissingResponse
	}
	values, ok := h.response.Header(name)
	return values, ok, nil
}

func (h *Handle) ResponseStatus() (http.StatusLine, error) {
	if h.response == nil {
		return http.StatusLine{}, http.ErrMissingResponse
	}
	return h.response.Status(), nil
}

func (h *Handle) ResponseStatusPart(part http.StatusPart) (string, error) {
	status, err := h.ResponseStatus()
	if err != nil {
		return "", err
	}
	return status.Part(part)
}

// Close releases the session. It is safe to call more than once.
func (h *Handle) Close() error {
	return h.release()
}

func (h *Handle) release() error {
	if h.session == nil {
		return nil
	}

	session := h.session
	h.session = nil
	if err := session.Close(); err != nil {
		return errors.Wrap(err, "closing session")
	}
	return nil
}
