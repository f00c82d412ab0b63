package registry

import (
	"errors"
	"fmt"
)

// InvalidURLError is returned by Shorten when the input is not an absolute URL.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Err
}

// IsInvalidURL reports whether err is, or wraps, an *InvalidURLError.
func IsInvalidURL(err error) (*InvalidURLError, bool) {
	var invalid *InvalidURLError
	if errors.As(err, &invalid) {
		return invalid, true
	}
	return nil, false
}

// StorageReadError wraps a failure to load mappings at startup.
type StorageReadError struct {
	Err error
}

func (e *StorageReadError) Error() string {
	return "error loading mappings: " + e.Err.Error()
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError wraps a failure to persist mappings after a mutation.
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string {
	return "error saving mappings: " + e.Err.Error()
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// ErrShortURLExhausted is returned when every generated short URL collided with an existing one.
var ErrShortURLExhausted = errors.New("could not generate an unused short url")
