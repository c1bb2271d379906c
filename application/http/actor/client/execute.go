package client

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"httpwrap/application/util/uri"
	"httpwrap/transport"

	"github.com/pkg/errors"
)

var errTimedOut = errors.New("transfer timed out")

// Execute performs the transfer described by opts.
//
// When opts.IncludeHeaders is set, the result holds every received head
// verbatim, interim and redirect responses included, followed by the body
// of the final response. Otherwise it holds the body only.
func (s *session) Execute(ctx context.Context, opts transport.Options) (string, error) {
	if s.isClosed() {
		return "", transport.NewError(transport.CodeSessionClosed, nil, "session is closed")
	}
	if err := opts.Settings.Check(); err != nil {
		return "", transport.NewError(transport.CodeBadSetting, err, "invalid setting")
	}

	target, err := uri.ParseAbsolute(opts.URI)
	if err != nil {
		return "", transport.NewError(transport.CodeMalformedURI, err, "parsing "+opts.URI)
	}

	c := s.client
	settings := opts.Settings

	timeout := settings.Duration(transport.SettingTimeout, c.opts.Timeout.Default)
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if timeout > 0 {
		timer := c.clock.AfterFunc(timeout, func() { cancel(errTimedOut) })
		defer timer.Stop()
	}

	req := exchangeRequest{
		method:     strings.ToUpper(settings.String(transport.SettingMethod, "GET")),
		target:     target,
		fieldLines: opts.HeaderLines,
		userAgent:  settings.String(transport.SettingUserAgent, c.opts.Send.UserAgent),
	}
	if body, ok := settings[transport.SettingBody].(string); ok {
		req.body, req.hasBody = body, true
	}
	if id := settings.String(transport.SettingRequestID, ""); id != "" {
		req.fieldLines = append(req.fieldLines[:len(req.fieldLines):len(req.fieldLines)], "X-Request-Id: "+id)
	}
	if timeout > 0 {
		req.deadline = c.clock.Now().Add(timeout)
	}

	follow := settings.Bool(transport.SettingFollowLocation, false)
	maxRedirects := settings.Int(transport.SettingMaxRedirects, c.opts.Redirect.MaxRedirects)
	maxBody := settings.Int64(transport.SettingMaxBodySize, c.opts.Receive.MaxBodySize)

	var out strings.Builder
	for hop := 0; ; hop++ {
		s.logger.DebugContext(ctx, "sending request",
			slog.Int("hop", hop),
			slog.String("method", req.method),
			slog.String("uri", req.target.String()),
		)

		res, err := s.exchange(ctx, req, maxBody)
		if err != nil {
			return "", s.classify(ctx, err)
		}

		final := res.heads[len(res.heads)-1]
		s.logger.DebugContext(ctx, "response received",
			slog.Int("hop", hop),
			slog.String("status", final.Status.Raw),
			slog.Int("heads", len(res.heads)),
			slog.Int("body", len(res.body)),
		)

		if opts.IncludeHeaders {
			for _, head := range res.heads {
				out.WriteString(head.Raw)
			}
		}

		location, redirect := redirectLocation(final.StatusCode(), final.Lookup)
		if !follow || !redirect {
			out.WriteString(res.body)
			return out.String(), nil
		}

		if hop >= maxRedirects {
			return "", transport.NewError(transport.CodeTooManyRedirects, nil,
				"maximum of "+strconv.Itoa(maxRedirects)+" redirects followed")
		}

		next, err := uri.ResolveString(req.target, location)
		if err != nil {
			return "", transport.NewError(transport.CodeMalformedResponse, err, "resolving location "+location)
		}
		next.Fragment = nil

		req = req.redirected(next, final.StatusCode())
	}
}

func (s *session) classify(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), errTimedOut) {
		return transport.NewError(transport.CodeTimeout, err, "operation timed out")
	}

	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr
	}

	switch {
	case errors.Is(err, transport.ErrDeadLineExceeded):
		return transport.NewError(transport.CodeTimeout, err, "operation timed out")
	case errors.Is(err, context.DeadlineExceeded):
		return transport.NewError(transport.CodeTimeout, err, "operation timed out")
	case errors.Is(err, context.Canceled):
		return transport.NewError(transport.CodeUnknown, err, "transfer canceled")
	}
	return transport.NewError(transport.CodeUnknown, err, "transfer failed")
}

// redirectLocation reports the Location of a redirect response.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.4
func redirectLocation(code int, lookup func(string) (string, bool)) (string, bool) {
	switch code {
	case 301, 302, 303, 307, 308:
	default:
		return "", false
	}

	location, ok := lookup("Location")
	location = strings.TrimSpace(location)
	return location, ok && location != ""
}

type exchangeRequest struct {
	method     string
	target     uri.URI
	fieldLines []string
	userAgent  string

	body    string
	hasBody bool

	deadline time.Time
}

// redirected returns the request to send to next after a code response.
// 303 turns everything but HEAD into GET. 301 and 302 turn POST into GET,
// as user agents historically do. A request turned into GET loses its body
// and the caller's fields describing it.
func (r exchangeRequest) redirected(next uri.URI, code int) exchangeRequest {
	toGet := (code == 303 && r.method != "HEAD") ||
		((code == 301 || code == 302) && r.method == "POST")

	r.target = next
	if toGet {
		r.method = "GET"
		r.body, r.hasBody = "", false
		r.fieldLines = withoutFields(r.fieldLines, "Content-Length", "Content-Type", "Transfer-Encoding")
	}
	return r
}
