package iolib

import (
	"io"

	"github.com/pkg/errors"
)

// EOFOn returns a reader that reports errors matching target as [io.EOF].
// Bodies delimited by connection close end with the transport's
// closed-connection error rather than io.EOF.
func EOFOn(r io.Reader, target error) io.Reader {
	return &eofOnReader{r: r, target: target}
}

type eofOnReader struct {
	r      io.Reader
	target error
}

func (r *eofOnReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	if err != nil && errors.Is(err, r.target) {
		return n, io.EOF
	}
	return n, err
}

// ReadAtMost reads r until EOF, failing with [ErrTooLarge] when more than
// max bytes are available. max of zero means no limit.
func ReadAtMost(r io.Reader, max uint64) ([]byte, error) {
	if max == 0 {
		return io.ReadAll(r)
	}

	b, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return b, err
	}
	if uint64(len(b)) > max {
		return nil, ErrTooLarge
	}
	return b, nil
}

var ErrTooLarge = errors.New("content exceeds size limit")
