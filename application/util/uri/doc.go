// Package uri parses and resolves the URI references used to address
// HTTP resources.
//
// Components are kept in their escaped form: the package never decodes
// percent-encoded octets, so a parsed URI renders back to the same text.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986
package uri
