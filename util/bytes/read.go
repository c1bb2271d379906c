package bytesutil

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var ErrLineTooLong = errors.New("line length exceeds limit")

// ReadUntil reads from r until delim. The output will include delim.
// If limit is greater than zero, reading stops with [ErrLineTooLong]
// once more than limit bytes were consumed without seeing delim.
func ReadUntil(r *bufio.Reader, delim []byte, limit uint) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	last := delim[len(delim)-1]
	for {
		b, err := r.ReadSlice(last)
		buf.Write(b)

		if limit > 0 && uint(buf.Len()) > limit {
			return nil, ErrLineTooLong
		}

		switch {
		case err == nil:
			if bytes.HasSuffix(buf.Bytes(), delim) {
				return buf.Bytes(), nil
			}
		case errors.Is(err, bufio.ErrBufferFull):
			// Keep reading, the limit above guards the growth.
		case errors.Is(err, io.EOF):
			return nil, io.ErrUnexpectedEOF
		default:
			return nil, err
		}
	}
}

// ReadLine reads a single LF terminated line. The terminator is kept.
func ReadLine(r *bufio.Reader, limit uint) ([]byte, error) {
	return ReadUntil(r, []byte{'\n'}, limit)
}
