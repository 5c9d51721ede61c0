package prizepool

import "errors"

// ErrConfig matches every *ConfigError via errors.Is.
var ErrConfig = errors.New("invalid prize configuration")

// ConfigError reports a prize configuration that cannot start a game. Message is
// suitable for showing to the operator as-is.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
