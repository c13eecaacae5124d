package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/domain/entities"
	"github.com/wildcloud007/greenguard/domain/repositories"
)

// Session audio defaults for this domain: 16 kHz capture, 24 kHz playback,
// 4096-sample capture windows.
const (
	DefaultInputSampleRate  = 16000
	DefaultOutputSampleRate = 24000
	DefaultFrameSamples     = 4096
)

// SessionConfig configures one voice session.
type SessionConfig struct {
	Model             string
	SystemInstruction string
	InputSampleRate   int
	OutputSampleRate  int
	FrameSamples      int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.InputSampleRate <= 0 {
		c.InputSampleRate = DefaultInputSampleRate
	}
	if c.OutputSampleRate <= 0 {
		c.OutputSampleRate = DefaultOutputSampleRate
	}
	if c.FrameSamples <= 0 {
		c.FrameSamples = DefaultFrameSamples
	}
	return c
}

// Session is one active conversation with the remote assistant. It owns the
// live channel, the capture pipeline and the playback scheduler, and drives
// them from a single-consumer reactor loop over the channel's event stream.
type Session struct {
	id       string
	cfg      SessionConfig
	opener   repositories.ChannelOpener
	input    repositories.AudioInput
	output   repositories.AudioOutput
	bookings repositories.BookingLog
	notifier Notifier
	logger   *zap.Logger

	mu       sync.Mutex
	state    entities.SessionState
	status   string
	channel  repositories.LiveChannel
	capture  *CapturePipeline
	playback *PlaybackScheduler
}

// NewSession creates a session in the disconnected state.
func NewSession(
	cfg SessionConfig,
	opener repositories.ChannelOpener,
	input repositories.AudioInput,
	output repositories.AudioOutput,
	bookings repositories.BookingLog,
	notifier Notifier,
	logger *zap.Logger,
) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Session{
		id:       uuid.NewString(),
		cfg:      cfg.withDefaults(),
		opener:   opener,
		input:    input,
		output:   output,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
		state:    entities.SessionStateDisconnected,
		status:   "Disconnected",
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() entities.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the human-readable status string. It is updated on every
// state transition and every recovered or fatal error.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Connect opens the live channel and starts the session. It is valid only
// from the disconnected and error states; anywhere else it is rejected so a
// duplicate session can never be created.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.CanConnect() {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("connect rejected: session is %s", state)
	}
	s.setStateLocked(entities.SessionStateConnecting, "Connecting to assistant...")
	s.mu.Unlock()

	dispatcher := NewToolDispatcher(s.sendToolResponse, s.logger)
	decl, handler := BookSiteVisitTool(s.bookings, s.notifier, s.logger)
	dispatcher.Register(decl, handler)

	channel, err := s.opener.Open(ctx, repositories.ChannelConfig{
		Model:             s.cfg.Model,
		SystemInstruction: s.cfg.SystemInstruction,
		Tools:             dispatcher.Declarations(),
	})
	if err != nil {
		connErr := &entities.ConnectionError{Err: err}
		s.mu.Lock()
		s.setStateLocked(entities.SessionStateError, "Connection failed: "+err.Error())
		s.mu.Unlock()
		return connErr
	}

	playback := NewPlaybackScheduler(s.output, NewPCMDecoder(s.cfg.OutputSampleRate), s.logger)
	playback.OnSpeaking(s.handleSpeaking)
	playback.OnError(s.handlePlaybackError)
	if err := playback.Start(s.cfg.OutputSampleRate); err != nil {
		_ = channel.Close()
		s.mu.Lock()
		s.setStateLocked(entities.SessionStateError, "Audio output unavailable: "+err.Error())
		s.mu.Unlock()
		return err
	}

	capture := NewCapturePipeline(
		s.input,
		s.cfg.InputSampleRate,
		s.cfg.FrameSamples,
		s.sendAudioFrame,
		s.handleFatal,
		s.logger,
	)

	s.mu.Lock()
	if s.state != entities.SessionStateConnecting {
		// Torn down while the channel was being opened. Abandon the dial.
		s.mu.Unlock()
		playback.Stop()
		_ = channel.Close()
		return fmt.Errorf("connect aborted: session is %s", s.State())
	}
	s.channel = channel
	s.playback = playback
	s.capture = capture
	s.mu.Unlock()

	go s.reactor(channel, playback, dispatcher)

	s.logger.Info("Session connecting",
		zap.String("sessionID", s.id),
		zap.String("model", s.cfg.Model))
	return nil
}

// Disconnect tears the session down and releases all owned resources.
// Teardown is idempotent: disconnecting an already-disconnected session is a
// no-op.
func (s *Session) Disconnect() {
	s.teardown(entities.SessionStateDisconnected, "Disconnected")
}

// reactor is the single consumer of the channel event stream. All inbound
// work — decode-and-schedule, interruption, tool dispatch — happens here in
// strict arrival order.
func (s *Session) reactor(channel repositories.LiveChannel, playback *PlaybackScheduler, tools *ToolDispatcher) {
	for event := range channel.Events() {
		switch e := event.(type) {
		case repositories.OpenedEvent:
			s.handleOpened()
		case repositories.AudioChunkEvent:
			playback.Schedule(e.Data)
		case repositories.InterruptedEvent:
			playback.Interrupt()
			s.setStatus("Listening")
		case repositories.ToolCallEvent:
			tools.Dispatch(context.Background(), e)
		case repositories.ClosedEvent:
			s.logger.Info("Channel closed by remote", zap.String("sessionID", s.id))
			s.teardown(entities.SessionStateDisconnected, "Disconnected: assistant ended the session")
			return
		case repositories.ErrorEvent:
			s.logger.Error("Channel error", zap.String("sessionID", s.id), zap.Error(e.Err))
			s.teardown(entities.SessionStateError, "Connection error: "+e.Err.Error())
			return
		}
	}
	// Event stream drained without a terminal event: the channel was closed
	// locally and teardown already ran.
}

// handleOpened moves the session to connected and starts capture. Frames
// produced before this point were never sent; the channel was not ready.
func (s *Session) handleOpened() {
	s.mu.Lock()
	if s.state != entities.SessionStateConnecting {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(entities.SessionStateConnected, "Connected. Start talking!")
	capture := s.capture
	s.mu.Unlock()

	if capture == nil {
		return
	}
	if err := capture.Start(); err != nil {
		s.logger.Error("Failed to start capture", zap.Error(err))
		s.teardown(entities.SessionStateError, "Microphone unavailable: "+err.Error())
	}
}

// sendAudioFrame forwards a capture frame when the session is connected.
// Anything else drops the frame.
func (s *Session) sendAudioFrame(frame repositories.AudioFrame) error {
	s.mu.Lock()
	channel := s.channel
	ready := s.state == entities.SessionStateConnected && channel != nil
	s.mu.Unlock()
	if !ready {
		return ErrChannelNotReady
	}
	return channel.SendAudioFrame(frame)
}

// sendToolResponse sends a tool response over the current channel.
func (s *Session) sendToolResponse(id, name string, payload map[string]any) error {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()
	if channel == nil {
		return errors.New("no open channel for tool response")
	}
	return channel.SendToolResponse(id, name, payload)
}

// handleSpeaking updates the status string on speaking-state transitions.
func (s *Session) handleSpeaking(speaking bool) {
	s.mu.Lock()
	if s.state == entities.SessionStateConnected {
		if speaking {
			s.statusLocked("Assistant speaking...")
		} else {
			s.statusLocked("Listening")
		}
	}
	s.mu.Unlock()
	s.notifier.Speaking(speaking)
}

// handlePlaybackError absorbs recoverable decode failures and escalates
// device faults.
func (s *Session) handlePlaybackError(err error) {
	var decodeErr *entities.DecodeError
	if errors.As(err, &decodeErr) {
		s.setStatus("Recovered from a malformed audio chunk")
		return
	}
	s.handleFatal(err)
}

// handleFatal tears the session down on an unrecoverable fault.
func (s *Session) handleFatal(err error) {
	s.logger.Error("Fatal session fault", zap.String("sessionID", s.id), zap.Error(err))
	s.teardown(entities.SessionStateError, "Session failed: "+err.Error())
}

// teardown releases all owned resources and forces the target state,
// irrespective of in-flight channel operations. Safe to call repeatedly and
// from any goroutine.
func (s *Session) teardown(target entities.SessionState, status string) {
	s.mu.Lock()
	if s.channel == nil && s.capture == nil && s.playback == nil {
		// Already torn down. Still honor an explicit state change, e.g. a
		// user disconnect after an error.
		if s.state != target && target == entities.SessionStateDisconnected && s.state != entities.SessionStateDisconnected {
			s.setStateLocked(target, status)
		}
		s.mu.Unlock()
		return
	}
	channel, capture, playback := s.channel, s.capture, s.playback
	s.channel, s.capture, s.playback = nil, nil, nil
	s.setStateLocked(target, status)
	s.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
	if playback != nil {
		playback.Stop()
	}
	if channel != nil {
		if err := channel.Close(); err != nil {
			s.logger.Warn("Channel close failed", zap.Error(err))
		}
	}
	s.logger.Info("Session torn down",
		zap.String("sessionID", s.id),
		zap.String("state", target.String()))
}

// setStateLocked records a state transition and publishes it. Callers hold
// s.mu; the notifier must not block.
func (s *Session) setStateLocked(state entities.SessionState, status string) {
	s.state = state
	s.status = status
	s.logger.Info("Session state changed",
		zap.String("sessionID", s.id),
		zap.String("state", state.String()),
		zap.String("status", status))
	s.notifier.StateChanged(state, status)
}

// statusLocked updates the status string without a state change.
func (s *Session) statusLocked(status string) {
	s.status = status
	s.notifier.StateChanged(s.state, status)
}

func (s *Session) setStatus(status string) {
	s.mu.Lock()
	s.statusLocked(status)
	s.mu.Unlock()
}
