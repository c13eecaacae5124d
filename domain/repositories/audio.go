package repositories

// AudioInput is the capture boundary: a raw sample stream at a fixed input
// rate (16 kHz in this domain).
type AudioInput interface {
	// Start acquires the input device at the given sample rate.
	Start(sampleRate int) error

	// Read fills p with raw little-endian PCM16 samples. It blocks until the
	// device has produced enough audio or fails.
	Read(p []byte) (int, error)

	// Stop synchronously releases the capture device. Stopping an already
	// stopped device is a no-op.
	Stop() error
}

// AudioOutput is the playback boundary: a sample sink at a fixed output rate
// (24 kHz in this domain).
type AudioOutput interface {
	// Start acquires the output device at the given sample rate.
	Start(sampleRate int) error

	// Write enqueues raw little-endian PCM16 samples for playback.
	Write(p []byte) error

	// Flush drops any audio the device has buffered but not yet played.
	// Used on barge-in, where queued playback must cancel instantly.
	Flush() error

	// Stop synchronously releases the output device. Stopping an already
	// stopped device is a no-op.
	Stop() error
}
