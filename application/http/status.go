package http

import (
	"regexp"

	"httpwrap/application/util/rule"

	"github.com/pkg/errors"
)

// statusLinePattern matches "PROTOCOL/MAJOR.MINOR SP 3DIGIT SP REASON"
// at the start of any line.
var statusLinePattern = regexp.MustCompile(
	`(?m)^([A-Za-z]+/[0-9]+\.[0-9]+) ([0-9]{3})(?: ([^\r\n]*))?\r?$`,
)

var (
	ErrMalformedStatusLine = errors.New("status line is malformed")
	ErrUnknownStatusPart   = errors.New("unknown status line part")
)

type StatusLine struct {
	Raw     string // the line as received, without terminator.
	Version string // e.g. "HTTP/1.1"
	Code    string // always 3 ASCII digits.
	Reason  string
}

// ParseStatusLine extracts the fields of a single status line.
// A trailing line terminator is ignored.
func ParseStatusLine(line string) (StatusLine, error) {
	line = rule.TrimLineEnd(line)

	m := statusLinePattern.FindStringSubmatchIndex(line)
	if m == nil || m[0] != 0 || m[1] != len(line) {
		return StatusLine{}, errors.Wrapf(ErrMalformedStatusLine, "%q", line)
	}

	return statusLineFromMatch(line, m), nil
}

// findStatusLine searches text for the first line shaped like a status line.
func findStatusLine(text string) (StatusLine, bool) {
	m := statusLinePattern.FindStringSubmatchIndex(text)
	if m == nil {
		return StatusLine{}, false
	}

	return statusLineFromMatch(text, m), true
}

func statusLineFromMatch(text string, m []int) StatusLine {
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}

	raw := text[m[0]:m[1]]
	if n := len(raw); n > 0 && raw[n-1] == '\r' {
		raw = raw[:n-1]
	}

	return StatusLine{
		Raw:     raw,
		Version: group(1),
		Code:    group(2),
		Reason:  group(3),
	}
}

// Protocol parses the version token. It fails for protocols other than HTTP.
func (sl StatusLine) Protocol() (Version, error) {
	return ParseVersion(sl.Version)
}

func (sl StatusLine) String() string { return sl.Raw }

// StatusPart names a single field of [StatusLine].
type StatusPart string

const (
	PartRaw     StatusPart = "raw"
	PartVersion StatusPart = "version"
	PartCode    StatusPart = "code"
	PartStatus  StatusPart = "status"
)

func (sl StatusLine) Part(part StatusPart) (string, error) {
	switch part {
	case PartRaw:
		return sl.Raw, nil
	case PartVersion:
		return sl.Version, nil
	case PartCode:
		return sl.Code, nil
	case PartStatus:
		return sl.Reason, nil
	}

	return "", errors.Wrapf(ErrUnknownStatusPart, "%q", part)
}
