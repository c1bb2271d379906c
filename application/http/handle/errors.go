package handle

import (
	"fmt"

	"httpwrap/transport"

	"github.com/pkg/errors"
)

var (
	ErrReservedSetting = errors.New("setting is managed by the handle")
	ErrMissingURI      = errors.New("URI is not set")
)

// ConfigurationError reports misuse detected before any network activity.
type ConfigurationError struct {
	Setting transport.Setting // empty when not about a setting.
	cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Setting == "" {
		return "configuration error: " + e.cause.Error()
	}
	return fmt.Sprintf("configuration error on %q: %s", e.Setting, e.cause)
}

func (e *ConfigurationError) Unwrap() error { return e.cause }
