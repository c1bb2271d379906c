package uri

import (
	"strconv"
	"strings"

	"httpwrap/application/util/rule"

	"github.com/pkg/errors"
)

var (
	ErrContainsCTL     = errors.New("URI contains whitespace or control characters")
	ErrInvalidScheme   = errors.New("invalid scheme")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidHost     = errors.New("invalid host")
	ErrNotAbsolute     = errors.New("URI is not absolute")
	ErrMissingHost     = errors.New("URI has no host")
	ErrRelativeBaseURI = errors.New("base URI cannot be a relative reference")
)

// URI is a URI reference. Optional components are pointers so that an
// empty component ("http://a/?") differs from an absent one.
type URI struct {
	Scheme    string
	Authority *Authority
	Path      string
	Query     *string
	Fragment  *string
}

type Authority struct {
	UserInfo string
	Host     string // IP literals keep their brackets.

	// Port is limited to uint16 for usability, although RFC 3986 allows
	// any number of digits.
	Port *uint16
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-4.2
func (u URI) IsRelativeRef() bool { return u.Scheme == "" }

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.3
func (u URI) String() string {
	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}
	if u.Authority != nil {
		b.WriteString("//")
		b.WriteString(u.Authority.String())
	}
	b.WriteString(u.Path)
	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(*u.Query)
	}
	if u.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(*u.Fragment)
	}
	return b.String()
}

func (a Authority) String() string {
	s := a.HostPort()
	if a.UserInfo != "" {
		s = a.UserInfo + "@" + s
	}
	return s
}

// HostPort renders host and, when present, port.
func (a Authority) HostPort() string {
	if a.Port == nil {
		return a.Host
	}
	return a.Host + ":" + strconv.FormatUint(uint64(*a.Port), 10)
}

// Hostname is the host without IP literal brackets.
func (a Authority) Hostname() string {
	return strings.TrimSuffix(strings.TrimPrefix(a.Host, "["), "]")
}

// RequestTarget is the origin-form target sent on the request line.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (u URI) RequestTarget() string {
	target := u.Path
	if target == "" {
		target = "/"
	}
	if u.Query != nil {
		target += "?" + *u.Query
	}
	return target
}

// HostHeader is the value of the Host header field. Ports equal to
// defaultPort are omitted.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-7.2
func (u URI) HostHeader(defaultPort uint16) string {
	if u.Authority == nil {
		return ""
	}
	a := *u.Authority
	if a.Port != nil && *a.Port == defaultPort {
		a.Port = nil
	}
	return a.HostPort()
}

// Port returns the explicit port or fallback.
func (u URI) Port(fallback uint16) uint16 {
	if u.Authority == nil || u.Authority.Port == nil {
		return fallback
	}
	return *u.Authority.Port
}

// Parse parses a URI reference. Scheme and host are lowercased.
func Parse(raw string) (URI, error) {
	if containsCTL(raw) {
		return URI{}, ErrContainsCTL
	}

	var u URI

	rest := raw
	if scheme, after, ok := cutScheme(raw); ok {
		if !isValidScheme(scheme) {
			return URI{}, errors.Wrapf(ErrInvalidScheme, "%q", scheme)
		}
		u.Scheme, rest = strings.ToLower(scheme), after
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		frag := rest[i+1:]
		u.Fragment, rest = &frag, rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		query := rest[i+1:]
		u.Query, rest = &query, rest[:i]
	}

	if after, ok := strings.CutPrefix(rest, "//"); ok {
		authority, path := after, ""
		if i := strings.IndexByte(after, '/'); i >= 0 {
			authority, path = after[:i], after[i:]
		}

		a, err := parseAuthority(authority)
		if err != nil {
			return URI{}, errors.Wrap(err, "parsing authority")
		}
		u.Authority, rest = &a, path
	}

	u.Path = rest
	return u, nil
}

// ParseAbsolute parses raw and requires scheme and host.
func ParseAbsolute(raw string) (URI, error) {
	u, err := Parse(raw)
	if err != nil {
		return URI{}, err
	}
	if u.IsRelativeRef() {
		return URI{}, ErrNotAbsolute
	}
	if u.Authority == nil || u.Authority.Host == "" {
		return URI{}, ErrMissingHost
	}
	return u, nil
}

// cutScheme reports a scheme only when ':' comes before any of "/?#".
func cutScheme(raw string) (scheme, rest string, ok bool) {
	i := strings.IndexAny(raw, ":/?#")
	if i <= 0 || raw[i] != ':' {
		return "", raw, false
	}
	return raw[:i], raw[i+1:], true
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.1
func isValidScheme(s string) bool {
	if s == "" || !rule.IsAlpha(rune(s[0])) {
		return false
	}
	for _, c := range s[1:] {
		if rule.IsAlpha(c) || rule.IsDigit(c) || c == '+' || c == '-' || c == '.' {
			continue
		}
		return false
	}
	return true
}

func parseAuthority(raw string) (Authority, error) {
	var a Authority
	if i := strings.LastIndexByte(raw, '@'); i >= 0 {
		a.UserInfo, raw = raw[:i], raw[i+1:]
	}

	host, port := raw, ""
	if strings.HasPrefix(raw, "[") {
		end := strings.IndexByte(raw, ']')
		if end < 0 {
			return Authority{}, errors.Wrap(ErrInvalidHost, "missing ']' in IP literal")
		}
		host, port = raw[:end+1], raw[end+1:]
		if port != "" && port[0] != ':' {
			return Authority{}, errors.Wrapf(ErrInvalidHost, "%q", raw)
		}
	} else if i := strings.LastIndexByte(raw, ':'); i >= 0 {
		host, port = raw[:i], raw[i:]
	}

	if strings.ContainsAny(host, " \t") {
		return Authority{}, errors.Wrapf(ErrInvalidHost, "%q", host)
	}
	a.Host = strings.ToLower(host)

	// An empty port ("host:") is allowed and means the scheme default.
	if len(port) > 1 {
		digits := port[1:]
		if !rule.IsDigits(digits) {
			return Authority{}, errors.Wrapf(ErrInvalidPort, "%q", digits)
		}
		n, err := strconv.ParseUint(digits, 10, 16)
		if err != nil {
			return Authority{}, errors.Wrapf(ErrInvalidPort, "%q", digits)
		}
		p := uint16(n)
		a.Port = &p
	}

	return a, nil
}

func containsCTL(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b <= ' ' || b == 0x7f {
			return true
		}
	}
	return false
}
