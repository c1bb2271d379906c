package http

import (
	"bufio"
	"io"
	"strings"

	"httpwrap/application/util/rule"

	"github.com/pkg/errors"
)

type EncodeOptions struct {
	// UseSoleLF specifies wheter a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF: false,
}

type RequestLine struct {
	Method  string
	Target  string
	Version Version
}

type Request struct {
	RequestLine

	// FieldLines are written as is, one per line.
	FieldLines []string

	Body io.Reader // optional.
}

var ErrInvalidFieldLine = errors.New("field line contains line terminator")

type RequestEncoder struct {
	bw   *bufio.Writer
	opts EncodeOptions
}

func NewRequestEncoder(w io.Writer, opts EncodeOptions) *RequestEncoder {
	return &RequestEncoder{bw: bufio.NewWriter(w), opts: opts}
}

func (re *RequestEncoder) Encode(request Request) error {
	if err := re.encodeRequestLine(request.RequestLine); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	if err := re.encodeFieldLines(request.FieldLines); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	// I think it's better to flush it before body.
	if err := re.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing request line & header")
	}

	if request.Body == nil {
		return nil
	}

	if _, err := re.bw.ReadFrom(request.Body); err != nil {
		return errors.Wrap(err, "writing request body")
	}

	if err := re.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing request body")
	}

	return nil
}

func (re *RequestEncoder) encodeRequestLine(reqLine RequestLine) error {
	if !rule.IsValidToken(reqLine.Method) {
		return errors.Errorf("method is not a valid token: %q", reqLine.Method)
	}
	if reqLine.Target == "" || strings.ContainsAny(reqLine.Target, " \r\n") {
		return errors.Errorf("request target is malformed: %q", reqLine.Target)
	}

	line := reqLine.Method + string(rule.SP) + reqLine.Target + string(rule.SP) + reqLine.Version.String()
	return re.writeLine(line)
}

func (re *RequestEncoder) encodeFieldLines(lines []string) error {
	for _, line := range lines {
		if strings.ContainsAny(line, "\r\n") {
			return errors.Wrapf(ErrInvalidFieldLine, "%q", line)
		}
		if err := re.writeLine(line); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := re.writeLine(""); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (re *RequestEncoder) writeLine(line string) error {
	if _, err := re.bw.WriteString(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	term := rule.CRLF
	if re.opts.UseSoleLF {
		term = term[1:]
	}

	if _, err := re.bw.Write(term); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}
