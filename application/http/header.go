package http

import (
	"strings"

	"httpwrap/application/http/semantic"
	"httpwrap/application/util/rule"
)

// ParseHeaderBlock parses a header block into headers.
// The first line is the status line and is skipped. Repeated names
// accumulate their values in order of appearance.
func ParseHeaderBlock(block string) semantic.Headers {
	var headers semantic.Headers

	lines := strings.Split(block, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	for _, line := range lines {
		line = strings.TrimSuffix(line, string(rule.CR))
		if line == "" {
			continue
		}

		field := ParseField(line)
		headers.Add(field.Name, field.Value)
	}

	return headers
}
