package http

import (
	"regexp"

	"github.com/pkg/errors"
)

var (
	ErrMissingResponse          = errors.New("response does not exist")
	ErrPlausibleHeadersNotFound = errors.New("plausible headers not found in response")
)

// blankLine delimits chunks: "\n\n", "\r\n\n", "\n\r\n" or "\r\n\r\n".
var blankLine = regexp.MustCompile(`\r?\n\r?\n`)

// chunk is a blank-line delimited span of the raw response.
type chunk struct {
	text   string
	offset int // where text starts in the raw response.
}

func splitChunks(raw string) []chunk {
	delims := blankLine.FindAllStringIndex(raw, -1)

	chunks := make([]chunk, 0, len(delims)+1)
	start := 0
	for _, d := range delims {
		chunks = append(chunks, chunk{text: raw[start:d[0]], offset: start})
		start = d[1]
	}
	chunks = append(chunks, chunk{text: raw[start:], offset: start})

	return chunks
}

// Parts is a raw response split at its header/body boundary.
type Parts struct {
	Status      StatusLine
	HeaderBlock string // status line included.
	Body        string
}

// Split finds the authoritative header block of raw and the body after it.
//
// A transfer may emit several header blocks before the final one
// (interim 1xx responses, redirect hops, authentication challenges).
// Chunks are walked in order while they carry a status line. The first
// chunk that doesn't is where the body starts, and the chunk before it is
// the header block. The body is sliced from raw as is.
func Split(raw string) (Parts, error) {
	var (
		status StatusLine
		prev   *chunk
	)

	chunks := splitChunks(raw)
	for idx := range chunks {
		c := &chunks[idx]

		if line, ok := findStatusLine(c.text); ok {
			status, prev = line, c
			continue
		}

		if prev == nil {
			// Content before any header block.
			return Parts{}, errors.Wrap(ErrPlausibleHeadersNotFound, "first chunk has no status line")
		}

		return Parts{
			Status:      status,
			HeaderBlock: prev.text,
			Body:        raw[c.offset:],
		}, nil
	}

	return Parts{}, errors.Wrap(ErrPlausibleHeadersNotFound, "no body boundary after headers")
}
