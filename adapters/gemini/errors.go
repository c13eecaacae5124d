package gemini

import "errors"

var (
	errClosed = errors.New("live channel is closed")
	errBusy   = errors.New("live channel transport is busy")
)
