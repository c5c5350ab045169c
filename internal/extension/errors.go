package extension

import (
	"errors"
	"fmt"
)

var ErrRequestFailed = errors.New("extension request failed")

// RequestFailedError is returned by every hook when the service could not be
// reached, answered with a non-2xx status or sent a malformed payload.
type RequestFailedError struct {
	Op string

	// Message reported by the service, or the transport error text.
	Message    string
	StatusCode int

	Err error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("extension %s failed (%d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("extension %s failed: %s", e.Op, e.Message)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}
