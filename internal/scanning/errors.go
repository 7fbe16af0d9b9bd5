package scanning

import "fmt"

// ConfigError reports a missing required setting. It is returned before any
// network attempt is made and is never retried.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required setting %s", e.Missing)
}

// TransportError reports a failed round-trip to the model API: either a
// non-2xx status, or a network-level failure. The status code and raw body
// are carried unchanged so callers can inspect what the service returned.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model api request failed: %v", e.Err)
	}
	return fmt.Sprintf("model api error (status %d): %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
