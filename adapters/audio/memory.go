package audio

import (
	"errors"
	"io"
	"sync"
)

// MemoryInput is an in-memory capture device. It serves a fixed PCM16 script
// and then blocks until stopped, which is how a silent microphone behaves.
// Suitable for tests and credential-free dry runs.
type MemoryInput struct {
	mu      sync.Mutex
	script  []byte
	offset  int
	started bool
	wake    chan struct{}
}

// NewMemoryInput creates an input device serving the given samples.
func NewMemoryInput(script []byte) *MemoryInput {
	return &MemoryInput{script: script}
}

func (m *MemoryInput) Start(sampleRate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("input device already started")
	}
	m.started = true
	m.offset = 0
	m.wake = make(chan struct{})
	return nil
}

func (m *MemoryInput) Read(p []byte) (int, error) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	if m.offset < len(m.script) {
		n := copy(p, m.script[m.offset:])
		m.offset += n
		m.mu.Unlock()
		return n, nil
	}
	wake := m.wake
	m.mu.Unlock()

	// Script exhausted: block like a silent microphone until released.
	<-wake
	return 0, io.ErrClosedPipe
}

func (m *MemoryInput) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false
	close(m.wake)
	return nil
}

// Started reports whether the device is currently acquired.
func (m *MemoryInput) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// MemoryOutput is an in-memory playback device recording everything written
// to it.
type MemoryOutput struct {
	mu      sync.Mutex
	started bool
	written []byte
	writes  int
	flushes int
}

// NewMemoryOutput creates an in-memory output device.
func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{}
}

func (m *MemoryOutput) Start(sampleRate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("output device already started")
	}
	m.started = true
	return nil
}

func (m *MemoryOutput) Write(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return io.ErrClosedPipe
	}
	m.written = append(m.written, p...)
	m.writes++
	return nil
}

func (m *MemoryOutput) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

func (m *MemoryOutput) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

// Started reports whether the device is currently acquired.
func (m *MemoryOutput) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Written returns a snapshot of all samples written so far.
func (m *MemoryOutput) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.written...)
}

// Writes returns the number of Write calls.
func (m *MemoryOutput) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Flushes returns the number of Flush calls.
func (m *MemoryOutput) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}
