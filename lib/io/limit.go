package iolib

import "io"

// ExactReader returns a reader that yields exactly n bytes of r.
// If r ends early, Read fails with [io.ErrUnexpectedEOF].
func ExactReader(r io.Reader, n uint64) io.Reader { return &ExactlyReader{R: r, N: n} }

// ExactlyReader is [io.LimitedReader] that also reports short sources.
type ExactlyReader struct {
	R io.Reader // underlying reader
	N uint64    // bytes remaining
}

func (l *ExactlyReader) Read(p []byte) (n int, err error) {
	if l.N == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= uint64(n)
	if err == io.EOF && l.N > 0 {
		err = io.ErrUnexpectedEOF
	}
	return
}
