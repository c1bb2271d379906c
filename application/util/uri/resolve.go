package uri

import (
	"strings"

	"httpwrap/lib/ds/stack"
)

// Resolve resolves ref against base.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.2
func Resolve(base, ref URI) (URI, error) {
	if base.IsRelativeRef() {
		return URI{}, ErrRelativeBaseURI
	}

	out := ref
	switch {
	case ref.Scheme != "":
	case ref.Authority != nil:
		out.Scheme = base.Scheme
	case ref.Path != "":
		out.Scheme, out.Authority = base.Scheme, base.Authority
		if !strings.HasPrefix(ref.Path, "/") {
			out.Path = mergePath(base, ref)
		}
	default:
		out.Scheme, out.Authority, out.Path = base.Scheme, base.Authority, base.Path
		if ref.Query == nil {
			out.Query = base.Query
		}
	}

	out.Path = removeDotSegments(out.Path)
	return out, nil
}

// ResolveString parses ref and resolves it against base.
func ResolveString(base URI, ref string) (URI, error) {
	r, err := Parse(ref)
	if err != nil {
		return URI{}, err
	}
	return Resolve(base, r)
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.3
func mergePath(base, ref URI) string {
	if base.Authority != nil && base.Path == "" {
		return "/" + ref.Path
	}
	if i := strings.LastIndexByte(base.Path, '/'); i >= 0 {
		return base.Path[:i+1] + ref.Path
	}
	return ref.Path
}

// removeDotSegments interprets "." and ".." segments. Each output segment
// carries its leading "/".
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.4
func removeDotSegments(path string) string {
	out := stack.New[string](0)

	for path != "" {
		var ok bool
		switch {
		case path == "." || path == "..":
			path = ""
		case path == "/.":
			path = "/"
		case path == "/..":
			_, _ = out.Pop()
			path = "/"
		default:
			if path, ok = strings.CutPrefix(path, "../"); ok {
				continue
			}
			if path, ok = strings.CutPrefix(path, "./"); ok {
				continue
			}
			if path, ok = strings.CutPrefix(path, "/./"); ok {
				path = "/" + path
				continue
			}
			if path, ok = strings.CutPrefix(path, "/../"); ok {
				_, _ = out.Pop()
				path = "/" + path
				continue
			}

			end := strings.IndexByte(path[1:], '/') + 1
			if end == 0 {
				end = len(path)
			}
			out.Push(path[:end])
			path = path[end:]
		}
	}

	return strings.Join(out.Data(), "")
}
