package analysis

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports a run configuration that cannot be honoured, such as a
// date column missing from the dataset or a non-positive page size.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigError) Unwrap() error { return e.Err }
