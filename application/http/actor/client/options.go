package client

import (
	"time"

	"httpwrap/application/http"
)

type Options struct {
	Send     SendOptions
	Receive  ReceiveOptions
	Redirect RedirectOptions
	Timeout  TimeoutOptions
}

type SendOptions struct {
	Encode http.EncodeOptions

	// UserAgent is sent unless the caller provides one. Empty sends none.
	UserAgent string
}

type ReceiveOptions struct {
	Decode http.DecodeOptions

	// MaxBodySize limits the decoded body of a single response.
	// Zero means no limit.
	MaxBodySize int64
}

type RedirectOptions struct {
	// MaxRedirects applies when the transfer does not set one.
	// Zero means [DefaultMaxRedirects].
	MaxRedirects int
}

type TimeoutOptions struct {
	// Default applies when the transfer does not set a timeout.
	// Zero means no timeout.
	Default time.Duration
}

const (
	DefaultMaxRedirects = 10
	DefaultPort         = 80
)

// DefaultOptions are sensible options for talking to real servers.
var DefaultOptions = Options{
	Send:     SendOptions{Encode: http.DefaultEncodeOptions, UserAgent: "httpwrap/1.0"},
	Receive:  ReceiveOptions{Decode: http.DefaultDecodeOptions, MaxBodySize: 64 << 20},
	Redirect: RedirectOptions{MaxRedirects: DefaultMaxRedirects},
	Timeout:  TimeoutOptions{Default: 30 * time.Second},
}
