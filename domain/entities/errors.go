package entities

import "fmt"

// ConnectionError indicates the live channel failed to open or broke down.
// The session moves to the error state and does not retry.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DecodeError indicates a malformed inbound audio chunk. The chunk is skipped
// and the session continues.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %s", e.Reason)
}

// ValidationError indicates malformed tool-call arguments. It is reported as
// a failed tool response and the session continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

// DeviceError indicates the microphone or output device is unavailable.
// It is fatal and forces session teardown.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error: %s: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }
