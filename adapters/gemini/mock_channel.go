package gemini

import (
	"context"
	"sync"

	"github.com/wildcloud007/greenguard/domain/repositories"
)

// MockChannel is a scriptable in-memory LiveChannel for tests and local
// development without Gemini credentials.
type MockChannel struct {
	mu        sync.Mutex
	events    chan repositories.ChannelEvent
	closed    bool
	frames    []repositories.AudioFrame
	responses []MockToolResponse

	// RejectFrames makes SendAudioFrame fail, simulating a transport that
	// cannot accept audio.
	RejectFrames bool
}

// MockToolResponse records one tool response sent through the channel.
type MockToolResponse struct {
	ID      string
	Name    string
	Payload map[string]any
}

// NewMockChannel creates an open mock channel.
func NewMockChannel() *MockChannel {
	return &MockChannel{
		events: make(chan repositories.ChannelEvent, 64),
	}
}

// Emit scripts one event onto the stream.
func (m *MockChannel) Emit(event repositories.ChannelEvent) {
	m.events <- event
}

func (m *MockChannel) Events() <-chan repositories.ChannelEvent {
	return m.events
}

func (m *MockChannel) SendAudioFrame(frame repositories.AudioFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	if m.RejectFrames {
		return errBusy
	}
	m.frames = append(m.frames, frame)
	return nil
}

func (m *MockChannel) SendToolResponse(id, name string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.responses = append(m.responses, MockToolResponse{ID: id, Name: name, Payload: payload})
	return nil
}

func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.events)
	return nil
}

// Closed reports whether Close has been called.
func (m *MockChannel) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SentFrames returns a snapshot of the frames handed to the channel.
func (m *MockChannel) SentFrames() []repositories.AudioFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repositories.AudioFrame(nil), m.frames...)
}

// ToolResponses returns a snapshot of the tool responses sent so far.
func (m *MockChannel) ToolResponses() []MockToolResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockToolResponse(nil), m.responses...)
}

// MockOpener hands out a prepared channel and records open attempts.
type MockOpener struct {
	mu       sync.Mutex
	Channel  *MockChannel
	Err      error
	opens    int
	lastConf repositories.ChannelConfig
}

// NewMockOpener creates an opener serving the given channel.
func NewMockOpener(channel *MockChannel) *MockOpener {
	return &MockOpener{Channel: channel}
}

func (o *MockOpener) Open(ctx context.Context, config repositories.ChannelConfig) (repositories.LiveChannel, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	o.lastConf = config
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Channel, nil
}

// Opens returns how many channels were requested.
func (o *MockOpener) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// LastConfig returns the config of the most recent open attempt.
func (o *MockOpener) LastConfig() repositories.ChannelConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastConf
}
