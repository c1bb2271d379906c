package transfer

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"httpwrap/application/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ChunkedReaderTestSuite struct {
	suite.Suite
}

func TestChunkedReaderTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkedReaderTestSuite))
}

func (s *ChunkedReaderTestSuite) TestRead() {
	input := []byte("" +
		"5;ext=foo\r\n" +
		"ABCDE\r\n" +
		"a\r\n" +
		"FGHIJKLNMO\r\n" +
		"0\r\n" + // last chunk
		"Hello: World\r\n" + // trailer
		"\r\n", // empty trailer (last trailer)
	)

	var trailers []http.Field
	cr := NewChunkedReader(bytes.NewReader(input))
	cr.SetOnTrailerReceived(func(f []http.Field) { trailers = f })

	buf := make([]byte, 2)
	// First read reads only AB
	n, err := cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(len(buf), n)
	s.Equal([]byte("AB"), buf)

	buf = make([]byte, 10)
	// Second read reads the rest of the first chunk.
	n, err = cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(3, n)
	s.Equal([]byte("CDE"), buf[:n])

	// Third read reads all the data in second chunk.
	n, err = cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(len(buf), n)
	s.Equal([]byte("FGHIJKLNMO"), buf)

	// Fourth read reads last chunk.
	n, err = cr.Read(buf)
	s.Require().ErrorIs(err, io.EOF)
	s.Equal(0, n)

	// Stays at EOF.
	_, err = cr.Read(buf)
	s.ErrorIs(err, io.EOF)

	s.Equal([]http.Field{{Name: "Hello", Value: "World"}}, trailers)
}

func (s *ChunkedReaderTestSuite) TestReadAll() {
	input := "4\r\nWiki\r\n7\r\npedia i\r\nB\r\nn \r\nchunks.\r\n0\r\n\r\n"

	called := false
	cr := NewChunkedReader(strings.NewReader(input))
	cr.SetOnTrailerReceived(func([]http.Field) { called = true })

	b, err := io.ReadAll(cr)
	s.Require().NoError(err)
	s.Equal("Wikipedia in \r\nchunks.", string(b))
	s.False(called, "empty trailer section is not reported")
}

func (s *ChunkedReaderTestSuite) TestReadMalformed() {
	testcases := []struct {
		desc  string
		input string
	}{
		{desc: "empty size", input: "\r\n"},
		{desc: "invalid hex", input: "zz\r\nabc\r\n0\r\n\r\n"},
		{desc: "missing delimiter", input: "3\r\nabcX\r\n0\r\n\r\n"},
		{desc: "truncated data", input: "a\r\nabc"},
		{desc: "truncated before last chunk", input: "3\r\nabc\r\n"},
		{desc: "malformed trailer", input: "0\r\nbad trailer\r\n\r\n"},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			_, err := io.ReadAll(NewChunkedReader(strings.NewReader(tc.input)))
			s.Error(err)
		})
	}
}

func (s *ChunkedReaderTestSuite) TestDecodeChunk() {
	testcases := []struct {
		desc     string
		input    string
		expected Chunk
		wantErr  bool
	}{
		{
			desc:  "example chunk",
			input: "5;ext=foo\r\nABCDE\r\n",
			expected: Chunk{
				Size:       5,
				Extensions: [][2]string{{"ext", "foo"}},
			},
		},
		{
			desc:  "BWS inside chunk",
			input: "5 ; ext = \"foo\"\r\nABCDE\r\n",
			expected: Chunk{
				Size:       5,
				Extensions: [][2]string{{"ext", "foo"}},
			},
		},
		{
			desc:    "malformed chunk (empty)",
			input:   "\r\n",
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			cr := NewChunkedReader(strings.NewReader(tc.input))

			err := cr.decodeChunk()
			if tc.wantErr {
				s.Error(err)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected, *cr.chunk)
		})
	}
}

func TestDecodeChunkSize(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected uint64
		wantErr  bool
	}{
		{
			desc:     "normal hex",
			input:    "FF",
			expected: 0xFF,
		},
		{
			desc:     "lowercase hex",
			input:    "1a",
			expected: 0x1A,
		},
		{
			desc:    "invalid hex",
			input:   "haha this aint hex",
			wantErr: true,
		},
		{
			desc:    "hex too long",
			input:   "FFFFFFFFFFFFFFFFFF", // 9 bytes
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			size, err := decodeChunkSize(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, size)
		})
	}
}
