package http

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// [Major, Minor]
type Version [2]uint

var Version11 = Version{1, 1}

// ParseVersion parses http version text(e.g. "HTTP/1.1") into [Version].
func ParseVersion(s string) (Version, error) {
	const prefix = "HTTP/"
	rest, found := strings.CutPrefix(s, prefix)
	if !found {
		return Version{}, errors.Errorf("http version prefix not found: %s", s)
	}

	// Get major and minor version.
	first, second, found := strings.Cut(rest, ".")
	if !found {
		return Version{}, errors.Errorf("dot seperator not found on version: %s", s)
	}

	major, err1 := strconv.ParseUint(first, 10, 64)
	minor, err2 := strconv.ParseUint(second, 10, 64)
	if err1 != nil || err2 != nil {
		return Version{}, errors.Errorf("http version is not convertable to int: %s", s)
	}

	return Version{uint(major), uint(minor)}, nil
}

func (ver Version) String() string {
	return "HTTP/" +
		strconv.FormatUint(uint64(ver[0]), 10) + "." +
		strconv.FormatUint(uint64(ver[1]), 10)
}

// Field is a single "name: value" line.
type Field struct{ Name, Value string }

const fieldSeparator = ": "

// ParseField splits fieldLine on the first ": ".
// A line without the separator becomes a field named after the whole line
// with an empty value.
func ParseField(fieldLine string) Field {
	name, value, _ := strings.Cut(fieldLine, fieldSeparator)
	return Field{Name: name, Value: value}
}

func (f Field) Text() string { return f.Name + fieldSeparator + f.Value }
