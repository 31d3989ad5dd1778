package config

import "fmt"

// ConfigError reports an invalid or unusable option value, such as a
// malformed base URL or a destination that cannot be created.
type ConfigError struct {
	Option string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "config"
	if e.Option != "" {
		msg += ": " + e.Option
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnknownOptionError reports an option name that is not part of the
// freeze configuration schema.
type UnknownOptionError struct {
	Option string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("config: unknown option %q", e.Option)
}
