package repositories

import "context"

// ChannelEvent is a single event from the live channel's ordered event
// stream. Events are delivered strictly in production order: an interruption
// is observed after every audio chunk it invalidates and before any chunk
// produced after it.
type ChannelEvent interface {
	channelEvent() string
}

// OpenedEvent signals that the channel completed its setup handshake.
type OpenedEvent struct{}

func (OpenedEvent) channelEvent() string { return "opened" }

// AudioChunkEvent carries an opaque encoded audio payload from the remote
// service, to be decoded and scheduled for playback.
type AudioChunkEvent struct {
	Data []byte
}

func (AudioChunkEvent) channelEvent() string { return "audio_chunk" }

// InterruptedEvent signals a barge-in: the user began speaking during
// playback and all scheduled audio must be cancelled immediately.
type InterruptedEvent struct{}

func (InterruptedEvent) channelEvent() string { return "interrupted" }

// ToolCallEvent is a structured request from the remote service. It must be
// answered by exactly one tool response bearing the same ID.
type ToolCallEvent struct {
	ID   string
	Name string
	Args map[string]any
}

func (ToolCallEvent) channelEvent() string { return "tool_call" }

// ClosedEvent signals that the remote side closed the channel.
type ClosedEvent struct{}

func (ClosedEvent) channelEvent() string { return "closed" }

// ErrorEvent carries a channel transport failure.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) channelEvent() string { return "error" }

// AudioFrame is one outbound window of raw samples, discarded immediately
// after being handed to the channel.
type AudioFrame struct {
	Data       []byte
	SampleRate int
	MIMEType   string
}

// ToolDeclaration describes a tool exposed to the remote service.
type ToolDeclaration struct {
	Name        string
	Description string
	// Parameters maps parameter name to a human-readable description.
	// All declared parameters are required strings.
	Parameters map[string]string
	Required   []string
}

// ChannelConfig configures a live channel at open time.
type ChannelConfig struct {
	Model             string
	SystemInstruction string
	Tools             []ToolDeclaration
}

// LiveChannel is the persistent bidirectional transport to the remote
// conversational audio service.
type LiveChannel interface {
	// Events returns the ordered event stream. The channel closes it when
	// the transport terminates.
	Events() <-chan ChannelEvent

	// SendAudioFrame forwards one capture frame. It never blocks on playback
	// or tool work; when the transport cannot accept the frame it returns an
	// error and the frame is dropped by the caller.
	SendAudioFrame(frame AudioFrame) error

	// SendToolResponse sends the correlated response for a tool call.
	SendToolResponse(id, name string, payload map[string]any) error

	// Close tears down the transport. In-flight operations are abandoned
	// without awaiting transport-level acknowledgment.
	Close() error
}

// ChannelOpener opens live channels against the remote service.
type ChannelOpener interface {
	Open(ctx context.Context, config ChannelConfig) (LiveChannel, error)
}
