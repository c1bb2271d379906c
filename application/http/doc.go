// Package http splits raw HTTP/1.x response text into a status line,
// a header block and a body, and parses the header block into
// [semantic.Headers].
//
// It also carries the small wire pieces used by the transfer client:
// a request encoder and a response head reader.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
