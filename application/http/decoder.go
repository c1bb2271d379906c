package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"httpwrap/application/util/rule"
	bytesutil "httpwrap/util/bytes"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// AllowSoleLF specifies wheter a single LF character should be recognized as a valid line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	AllowSoleLF bool

	// MaxFieldLineLength sets the limit of field line length on headers.
	// It's not on the RFC but I think it's better to have it.
	MaxFieldLineLength uint

	// MaxStatusLineLength sets the limit of status line length.
	// It's not on the RFC but I think it's better to have it.
	MaxStatusLineLength uint
}

var DefaultDecodeOptions = DecodeOptions{
	AllowSoleLF:         true,
	MaxFieldLineLength:  64 << 10,
	MaxStatusLineLength: 8 << 10,
}

var (
	ErrMissingCRBeforeLF  = errors.New("missing CR before LF")
	ErrStatusLineTooLong  = errors.New("status line length exceeds limit")
	ErrFieldLineTooLong   = errors.New("field line length exceeds limit")
	ErrMalformedFieldLine = errors.New("field line is malformed")
)

// Head is a response status line with its field lines.
type Head struct {
	// Raw is the head exactly as received, terminating empty line included.
	Raw    string
	Status StatusLine
	// Fields have OWS trimmed from their values.
	Fields []Field
}

// StatusCode returns the numeric status code.
func (h Head) StatusCode() int {
	code, _ := strconv.Atoi(h.Status.Code)
	return code
}

// Lookup returns the first value of name, compared case-insensitively.
func (h Head) Lookup(name string) (string, bool) {
	for _, f := range h.Fields {
		if rule.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns all values of name, compared case-insensitively.
// Comma separated list values are split into elements.
func (h Head) Values(name string) []string {
	values := make([]string, 0)
	for _, f := range h.Fields {
		if !rule.EqualFold(f.Name, name) {
			continue
		}
		for _, v := range strings.Split(f.Value, ",") {
			v = strings.TrimFunc(v, rule.IsWhitespace)
			if v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// HeadReader reads consecutive response heads from a stream.
// Bytes after a head are left for [HeadReader.Body].
type HeadReader struct {
	br   *bufio.Reader
	opts DecodeOptions
}

func NewHeadReader(r io.Reader, opts DecodeOptions) *HeadReader {
	return &HeadReader{br: bufio.NewReader(r), opts: opts}
}

// Body returns the buffered stream positioned after the last head read.
func (hr *HeadReader) Body() *bufio.Reader { return hr.br }

func (hr *HeadReader) Read() (Head, error) {
	raw := bytes.NewBuffer(nil)

	line, err := hr.readStatusLine(raw)
	if err != nil {
		return Head{}, err
	}

	status, err := ParseStatusLine(line)
	if err != nil {
		return Head{}, err
	}

	fields := make([]Field, 0)
	for {
		line, err := hr.readLine(raw, hr.opts.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, bytesutil.ErrLineTooLong) {
				return Head{}, ErrFieldLineTooLong
			}
			return Head{}, errors.Wrap(err, "reading field line")
		}

		if len(line) == 0 {
			// An empty line. This means that there are no more headers.
			break
		}

		field, err := parseWireField(line)
		if err != nil {
			return Head{}, err
		}
		fields = append(fields, field)
	}

	return Head{Raw: raw.String(), Status: status, Fields: fields}, nil
}

func (hr *HeadReader) readStatusLine(raw *bytes.Buffer) (string, error) {
	for {
		// Empty lines before the status line are not part of the head.
		var lineBuf bytes.Buffer
		line, err := hr.readLine(&lineBuf, hr.opts.MaxStatusLineLength)
		if err != nil {
			if errors.Is(err, bytesutil.ErrLineTooLong) {
				return "", ErrStatusLineTooLong
			}
			return "", errors.Wrap(err, "reading status line")
		}

		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
		if len(line) > 0 {
			raw.Write(lineBuf.Bytes())
			return line, nil
		}
	}
}

// readLine reads a line, records it verbatim into raw and
// returns it without the terminator.
func (hr *HeadReader) readLine(raw *bytes.Buffer, limit uint) (string, error) {
	b, err := bytesutil.ReadLine(hr.br, limit)
	if err != nil {
		return "", err
	}
	raw.Write(b)

	b = b[:len(b)-1] // Remove LF.

	if len(b) > 0 && b[len(b)-1] == rule.CR {
		b = b[:len(b)-1] // Remove CR.
	} else if !hr.opts.AllowSoleLF {
		return "", ErrMissingCRBeforeLF
	}

	return string(b), nil
}

func parseWireField(line string) (Field, error) {
	name, value, found := strings.Cut(line, ":")
	if !found || name == "" {
		return Field{}, errors.Wrapf(ErrMalformedFieldLine, "%q", line)
	}

	// No whitespace is allowed between field name and colon,
	// obs-fold lines start with whitespace as well.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-2
	if !rule.IsValidToken(name) {
		return Field{}, errors.Wrapf(ErrMalformedFieldLine, "%q", line)
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
	value = strings.Trim(value, string(rule.OWS))

	return Field{Name: name, Value: value}, nil
}
