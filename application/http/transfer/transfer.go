package transfer

import (
	"io"

	"httpwrap/application/http"
	"httpwrap/application/util/rule"

	"github.com/pkg/errors"
)

type Coding string

const (
	CodingChunked  Coding = "chunked"
	CodingIdentity Coding = "identity"
)

var ErrUnsupportedCoding = errors.New("coding is unsupported")

// Decode undoes transfer codings applied to r, last applied first.
// onTrailer receives the trailer section of a chunked body, if any.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7
func Decode(r io.Reader, codings []string, onTrailer func(fields []http.Field)) (io.Reader, error) {
	for idx := len(codings) - 1; idx >= 0; idx-- {
		switch coding := codings[idx]; {
		case rule.EqualFold(coding, string(CodingChunked)):
			if idx != len(codings)-1 {
				// chunked must be the final coding.
				return nil, errors.Wrap(ErrUnsupportedCoding, "chunked is not the final coding")
			}

			cr := NewChunkedReader(r)
			cr.SetOnTrailerReceived(onTrailer)
			r = cr
		case rule.EqualFold(coding, string(CodingIdentity)):
		default:
			return nil, errors.Wrapf(ErrUnsupportedCoding, "%q", coding)
		}
	}

	return r, nil
}

// IsChunked reports whether the final coding is chunked,
// which means the body is self-delimited.
func IsChunked(codings []string) bool {
	return len(codings) > 0 && rule.EqualFold(codings[len(codings)-1], string(CodingChunked))
}
