package transport

import (
	"time"

	"github.com/pkg/errors"
)

// Setting is the key of a transport-specific setting.
type Setting string

const (
	SettingMethod         Setting = "method"          // string
	SettingBody           Setting = "body"            // string
	SettingTimeout        Setting = "timeout"         // time.Duration
	SettingUserAgent      Setting = "user_agent"      // string
	SettingFollowLocation Setting = "follow_location" // bool
	SettingMaxRedirects   Setting = "max_redirects"   // int
	SettingMaxBodySize    Setting = "max_body_size"   // int64
	SettingRequestID      Setting = "request_id"      // string

	// Settings carried by [Options] fields. Handles own them.
	SettingIncludeHeaders Setting = "include_headers" // bool
	SettingHeaderLines    Setting = "header_lines"    // []string
)

var ErrSettingType = errors.New("setting has unexpected type")

// Settings is a mapping of transport settings.
type Settings map[Setting]any

// Check validates the type of every known setting.
func (s Settings) Check() error {
	for key, value := range s {
		if err := CheckSetting(key, value); err != nil {
			return err
		}
	}
	return nil
}

// CheckSetting validates the type of value for a known key.
// Unknown keys are accepted as is.
func CheckSetting(key Setting, value any) error {
	var ok bool
	switch key {
	case SettingMethod, SettingBody, SettingUserAgent, SettingRequestID:
		_, ok = value.(string)
	case SettingTimeout:
		_, ok = value.(time.Duration)
	case SettingFollowLocation, SettingIncludeHeaders:
		_, ok = value.(bool)
	case SettingMaxRedirects:
		_, ok = value.(int)
	case SettingMaxBodySize:
		_, ok = value.(int64)
	case SettingHeaderLines:
		_, ok = value.([]string)
	default:
		return nil
	}

	if !ok {
		return errors.Wrapf(ErrSettingType, "%s: %T", key, value)
	}
	return nil
}

func (s Settings) String(key Setting, fallback string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return fallback
}

func (s Settings) Bool(key Setting, fallback bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return fallback
}

func (s Settings) Int(key Setting, fallback int) int {
	if v, ok := s[key].(int); ok {
		return v
	}
	return fallback
}

func (s Settings) Int64(key Setting, fallback int64) int64 {
	if v, ok := s[key].(int64); ok {
		return v
	}
	return fallback
}

func (s Settings) Duration(key Setting, fallback time.Duration) time.Duration {
	if v, ok := s[key].(time.Duration); ok {
		return v
	}
	return fallback
}

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	clone := make(Settings, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}
