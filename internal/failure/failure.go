// Package failure defines the error taxonomy shared by every stage of the
// thumbnail pipeline. Each kind is a concrete type so callers can branch with
// errors.As (or the Is* helpers) without string matching.
package failure

import (
	"errors"
	"fmt"
)

// ConfigError reports missing or contradictory options. It is always
// surfaced before any collaborator runs and is never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Config is shorthand for constructing a ConfigError.
func Config(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfig reports whether err is (or wraps) a ConfigError.
func IsConfig(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// MediaError reports that a video could not be inspected (unreadable,
// corrupt, or without a usable video stream).
type MediaError struct {
	Path string
	Err  error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media %q: %v", e.Path, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// IsMedia reports whether err is (or wraps) a MediaError.
func IsMedia(err error) bool {
	var e *MediaError
	return errors.As(err, &e)
}

// SamplingError reports a frame extraction failure at one timemark.
// Index is the position in the sampling plan; Offset is in seconds.
type SamplingError struct {
	Index  int
	Offset float64
	Err    error
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("sampling failed at index %d (%.3fs): %v", e.Index, e.Offset, e.Err)
}

func (e *SamplingError) Unwrap() error { return e.Err }

// IsSampling reports whether err is (or wraps) a SamplingError.
func IsSampling(err error) bool {
	var e *SamplingError
	return errors.As(err, &e)
}

// PackingError reports an image composition or output write failure.
// Index is the offending thumbnail, or -1 when the failure is not tied to
// a single cell (encode, file write).
type PackingError struct {
	Index int
	Op    string
	Err   error
}

func (e *PackingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("packing: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("packing: %s at index %d: %v", e.Op, e.Index, e.Err)
}

func (e *PackingError) Unwrap() error { return e.Err }

// IsPacking reports whether err is (or wraps) a PackingError.
func IsPacking(err error) bool {
	var e *PackingError
	return errors.As(err, &e)
}

// Kind returns a short label for logging: "config", "media", "sampling",
// "packing", or "error" for anything else.
func Kind(err error) string {
	switch {
	case IsConfig(err):
		return "config"
	case IsMedia(err):
		return "media"
	case IsSampling(err):
		return "sampling"
	case IsPacking(err):
		return "packing"
	default:
		return "error"
	}
}
