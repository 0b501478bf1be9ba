package bridge

import (
	"errors"
	"fmt"
)

var errInvalidUTF8 = errors.New("payload is not valid UTF-8")

// UnroutedTopicError reports a message received on a topic with no configured
// device. Under correct subscription this should never happen, but the
// dispatcher handles it defensively rather than dropping it silently.
type UnroutedTopicError struct {
	Topic string
}

func (e *UnroutedTopicError) Error() string {
	return fmt.Sprintf("no device configured for topic %q", e.Topic)
}

// MalformedPayloadError reports a message body that is not valid JSON of the
// expected shape.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed sensor payload: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}
