package client

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"httpwrap/application/http"
	"httpwrap/application/http/transfer"
	"httpwrap/application/util/rule"
	iolib "httpwrap/lib/io"
	"httpwrap/transport"

	"github.com/pkg/errors"
)

type exchangeResponse struct {
	// heads are interim heads followed by the final one.
	heads []http.Head
	body  string
}

// exchange sends a single request on a fresh connection and reads the
// response until the connection can be closed.
func (s *session) exchange(ctx context.Context, req exchangeRequest, maxBody int64) (exchangeResponse, error) {
	c := s.client

	if req.target.Scheme != "http" {
		return exchangeResponse{}, transport.NewError(transport.CodeUnsupportedScheme, nil,
			"scheme "+strconv.Quote(req.target.Scheme)+" is not supported")
	}

	addr, err := s.resolve(ctx, req)
	if err != nil {
		return exchangeResponse{}, err
	}

	conn, err := c.connDialer.Dial(ctx, addr)
	if err != nil {
		if ctx.Err() != nil {
			return exchangeResponse{}, err
		}
		return exchangeResponse{}, transport.NewError(transport.CodeConnectFailed, err, "dialing "+addr.String())
	}
	defer conn.Close()

	// Unblock pending reads and writes once ctx is done.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if !req.deadline.IsZero() {
		conn.SetReadDeadLine(req.deadline)
		conn.SetWriteDeadLine(req.deadline)
	}

	if err := s.writeRequest(conn, req); err != nil {
		if errors.Is(err, http.ErrInvalidFieldLine) {
			return exchangeResponse{}, transport.NewError(transport.CodeBadSetting, err, "invalid header line")
		}
		if errors.Is(err, transport.ErrDeadLineExceeded) || ctx.Err() != nil {
			return exchangeResponse{}, err
		}
		return exchangeResponse{}, transport.NewError(transport.CodeWriteFailed, err, "sending request")
	}

	return s.readResponse(conn, req, maxBody)
}

func (s *session) resolve(ctx context.Context, req exchangeRequest) (transport.Addr, error) {
	host := req.target.Authority.Hostname()

	addrs, err := s.client.lookuper.LookupHost(ctx, host)
	if err != nil {
		return transport.Addr{}, transport.NewError(transport.CodeResolveFailed, err, "resolving "+host)
	}
	if len(addrs) == 0 {
		return transport.Addr{}, transport.NewError(transport.CodeResolveFailed, nil, "no address for "+host)
	}

	// The first address is used. Others are not tried.
	return transport.Addr{Host: addrs[0], Port: req.target.Port(DefaultPort)}, nil
}

func (s *session) writeRequest(w io.Writer, req exchangeRequest) error {
	c := s.client

	lines := make([]string, 0, len(req.fieldLines)+4)
	if !hasField(req.fieldLines, "Host") {
		lines = append(lines, "Host: "+req.target.HostHeader(DefaultPort))
	}
	if req.userAgent != "" && !hasField(req.fieldLines, "User-Agent") {
		lines = append(lines, "User-Agent: "+req.userAgent)
	}
	if req.hasBody && !hasField(req.fieldLines, "Content-Length") {
		lines = append(lines, "Content-Length: "+strconv.Itoa(len(req.body)))
	}
	lines = append(lines, "Connection: close")
	lines = append(lines, req.fieldLines...)

	request := http.Request{
		RequestLine: http.RequestLine{
			Method:  req.method,
			Target:  req.target.RequestTarget(),
			Version: http.Version11,
		},
		FieldLines: lines,
	}
	if req.hasBody {
		request.Body = strings.NewReader(req.body)
	}

	return http.NewRequestEncoder(w, c.opts.Send.Encode).Encode(request)
}

func (s *session) readResponse(conn transport.Conn, req exchangeRequest, maxBody int64) (exchangeResponse, error) {
	var res exchangeResponse

	hr := http.NewHeadReader(conn, s.client.opts.Receive.Decode)

	var head http.Head
	for {
		var err error
		if head, err = hr.Read(); err != nil {
			return res, readError(err, "reading response head")
		}
		res.heads = append(res.heads, head)

		// Interim responses are followed by another head.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.2
		if code := head.StatusCode(); code < 100 || code >= 200 || code == 101 {
			break
		}
		s.logger.Debug("interim response", slog.String("status", head.Status.Raw))
	}

	body, err := s.bodyReader(head, req, hr.Body())
	if err != nil {
		return res, err
	}

	b, err := iolib.ReadAtMost(body, uint64(max(maxBody, 0)))
	if err != nil {
		if errors.Is(err, iolib.ErrTooLarge) {
			return res, transport.NewError(transport.CodeReadFailed, err, "response body too large")
		}
		return res, readError(err, "reading response body")
	}
	res.body = string(b)

	return res, nil
}

// bodyReader frames the message body of head.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
func (s *session) bodyReader(head http.Head, req exchangeRequest, r io.Reader) (io.Reader, error) {
	code := head.StatusCode()
	if req.method == "HEAD" || code < 200 || code == 204 || code == 304 {
		return strings.NewReader(""), nil
	}

	// Bodies delimited by close end with the transport's closed error.
	untilClose := iolib.EOFOn(r, transport.ErrConnClosed)

	if codings := head.Values("Transfer-Encoding"); len(codings) > 0 {
		src := r
		if !transfer.IsChunked(codings) {
			src = untilClose
		}

		decoded, err := transfer.Decode(src, codings, func(fields []http.Field) {
			for _, f := range fields {
				s.logger.Debug("trailer received", slog.String("name", f.Name), slog.String("value", f.Value))
			}
		})
		if err != nil {
			return nil, transport.NewError(transport.CodeMalformedResponse, err, "decoding transfer codings")
		}
		return decoded, nil
	}

	if values := head.Values("Content-Length"); len(values) > 0 {
		n, err := contentLength(values)
		if err != nil {
			return nil, transport.NewError(transport.CodeMalformedResponse, err, "invalid Content-Length")
		}
		return iolib.ExactReader(r, n), nil
	}

	return untilClose, nil
}

var errConflictingLength = errors.New("conflicting Content-Length values")

// contentLength accepts a list of identical values.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6-8
func contentLength(values []string) (uint64, error) {
	var n uint64
	for i, v := range values {
		if !rule.IsDigits(v) {
			return 0, errors.Errorf("%q is not a number", v)
		}
		parsed, err := strconv.ParseUint(v, 10, 63)
		if err != nil {
			return 0, errors.Wrapf(err, "parsing %q", v)
		}
		if i > 0 && parsed != n {
			return 0, errConflictingLength
		}
		n = parsed
	}
	return n, nil
}

func readError(err error, msg string) error {
	switch {
	case errors.Is(err, transport.ErrDeadLineExceeded):
		return err
	case errors.Is(err, http.ErrMalformedStatusLine),
		errors.Is(err, http.ErrMalformedFieldLine),
		errors.Is(err, http.ErrStatusLineTooLong),
		errors.Is(err, http.ErrFieldLineTooLong),
		errors.Is(err, http.ErrMissingCRBeforeLF),
		errors.Is(err, transfer.ErrUnsupportedCoding),
		errors.Is(err, transfer.ErrMalformedChunk):
		return transport.NewError(transport.CodeMalformedResponse, err, msg)
	}
	return transport.NewError(transport.CodeReadFailed, err, msg)
}

func hasField(lines []string, name string) bool {
	for _, line := range lines {
		if n, _, ok := strings.Cut(line, ":"); ok && rule.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}

// withoutFields returns lines minus the field lines named by names.
func withoutFields(lines []string, names ...string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		drop := false
		for _, name := range names {
			if hasField([]string{line}, name) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, line)
		}
	}
	return kept
}
