package transfer

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"httpwrap/application/http"
	"httpwrap/application/util/rule"
	bytesutil "httpwrap/util/bytes"

	"github.com/pkg/errors"
)

const maxChunkLineLength = 4 << 10

var ErrMalformedChunk = errors.New("malformed chunked body")

type Chunk struct {
	Size       uint64
	Extensions [][2]string
}

// ChunkedReader converts chunked http message into byte stream.
type ChunkedReader struct {
	br    *bufio.Reader
	chunk *Chunk
	read  uint64 // reset for each chunk
	done  bool

	onTrailer func(fields []http.Field)
}

var _ io.Reader = (*ChunkedReader)(nil)

func NewChunkedReader(r io.Reader) *ChunkedReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ChunkedReader{br: br}
}

// SetOnTrailerReceived sets fn to be called with the trailer section
// once the last chunk has been read. fn is not called for empty trailers.
func (cr *ChunkedReader) SetOnTrailerReceived(fn func(fields []http.Field)) {
	cr.onTrailer = fn
}

func (cr *ChunkedReader) Read(b []byte) (int, error) {
	if cr.done {
		return 0, io.EOF
	}

	if cr.chunk == nil {
		if err := cr.decodeChunk(); err != nil {
			return 0, errors.Wrap(err, "decoding chunk")
		}

		if cr.chunk.Size == 0 {
			// Last chunk.
			cr.done = true
			if err := cr.decodeTrailers(); err != nil {
				return 0, errors.Wrap(err, "decoding trailer")
			}
			return 0, io.EOF
		}
	}

	if remain := cr.chunk.Size - cr.read; uint64(len(b)) > remain {
		b = b[:remain]
	}

	n, err := cr.br.Read(b)
	cr.read += uint64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return n, errors.Wrap(err, "reading chunk data")
	}

	if cr.read == cr.chunk.Size {
		line, err := readLine(cr.br)
		if err != nil {
			return n, errors.Wrap(err, "reading chunk delimiter")
		}
		if len(line) != 0 {
			return n, errors.Wrap(ErrMalformedChunk, "CRLF delimiter not found")
		}

		cr.chunk = nil
		cr.read = 0
	}

	return n, nil
}

func (cr *ChunkedReader) decodeChunk() error {
	line, err := readLine(cr.br)
	if err != nil {
		return err
	}

	parts := strings.Split(line, ";")

	sizeRaw := strings.TrimFunc(parts[0], rule.IsWhitespace)
	size, err := decodeChunkSize(sizeRaw)
	if err != nil {
		return errors.Wrap(err, "decoding chunk size")
	}

	extensions := make([][2]string, 0)
	for _, part := range parts[1:] {
		k, v, _ := strings.Cut(part, "=")
		// Trim BWS.
		k = strings.TrimFunc(k, rule.IsWhitespace)
		v = strings.TrimFunc(v, rule.IsWhitespace)

		extensions = append(extensions, [2]string{k, string(rule.Unquote([]byte(v)))})
	}

	cr.chunk = &Chunk{Size: size, Extensions: extensions}

	return nil
}

func decodeChunkSize(s string) (uint64, error) {
	if s == "" {
		return 0, errors.Wrap(ErrMalformedChunk, "chunk size is empty")
	}

	size, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedChunk, "failed to decode hex: %q", s)
	}

	return size, nil
}

func (cr *ChunkedReader) decodeTrailers() error {
	fields := make([]http.Field, 0)
	for {
		line, err := readLine(cr.br)
		if err != nil {
			return errors.Wrap(err, "reading line")
		}

		if len(line) == 0 {
			// Last field.
			break
		}

		name, value, found := strings.Cut(line, ":")
		if !found || !rule.IsValidToken(name) {
			return errors.Wrapf(ErrMalformedChunk, "malformed trailer field: %q", line)
		}

		fields = append(fields, http.Field{Name: name, Value: strings.Trim(value, string(rule.OWS))})
	}

	if cr.onTrailer != nil && len(fields) > 0 {
		cr.onTrailer(fields)
	}

	return nil
}

// readLine reads until LF and cuts the line terminator.
func readLine(br *bufio.Reader) (string, error) {
	b, err := bytesutil.ReadLine(br, maxChunkLineLength)
	if err != nil {
		return "", err
	}

	return rule.TrimLineEnd(string(b)), nil
}
