package compositor

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Standard errors returned by the compositor supervisor.
var (
	// ErrAlreadyQuit indicates the child has already exited cleanly.
	ErrAlreadyQuit = errors.New("compositor has already quit")

	// ErrNotStarted indicates the supervisor was used before Start.
	ErrNotStarted = errors.New("compositor not started")
)

// QuitError indicates the child exited abnormally. Stderr holds everything
// the child wrote to its stderr stream before dying.
type QuitError struct {
	Stderr string
}

// Error implements the error interface.
func (e *QuitError) Error() string {
	return "compositor quit with error: " + e.Stderr
}

// CompositorError is a structured error frame from the child: a response with
// error status whose payload carried well-formed {error, backtrace} JSON.
type CompositorError struct {
	Message   string
	Backtrace string
}

// Error implements the error interface.
func (e *CompositorError) Error() string {
	return fmt.Sprintf("Compositor error: %s\n%s", e.Message, e.Backtrace)
}

// RawCompositorError is an error frame whose payload was not the structured
// JSON shape. The payload is surfaced verbatim as UTF-8 text.
type RawCompositorError struct {
	Payload []byte
}

// Error implements the error interface.
func (e *RawCompositorError) Error() string {
	return string(e.Payload)
}

// ProtocolError indicates the child violated the framing protocol, e.g. a
// non-numeric length field. Protocol violations are fatal: the supervisor
// transitions to the crashed state and rejects every pending caller.
type ProtocolError struct {
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return "compositor protocol violation: " + e.Reason
}

// decodeErrorPayload converts an error frame payload into an error value.
// Well-formed {error, backtrace} JSON becomes a CompositorError; anything
// else is surfaced raw.
func decodeErrorPayload(payload []byte) error {
	if gjson.ValidBytes(payload) {
		if msg := gjson.GetBytes(payload, "error"); msg.Exists() {
			return &CompositorError{
				Message:   msg.String(),
				Backtrace: gjson.GetBytes(payload, "backtrace").String(),
			}
		}
	}
	return &RawCompositorError{Payload: payload}
}
