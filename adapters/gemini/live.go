package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/wildcloud007/greenguard/domain/repositories"
)

const (
	// Buffered event capacity; the reactor drains far faster than the
	// remote produces, so the producer effectively never blocks.
	eventBuffer = 256

	// Outbound frame queue. When full the transport is behind and frames
	// are dropped by the caller, never buffered beyond this.
	frameBuffer = 16
)

// Opener opens live channels against the Gemini Live API.
type Opener struct {
	client *genai.Client
	logger *zap.Logger
}

// NewOpener creates a Gemini live channel opener.
func NewOpener(ctx context.Context, apiKey string, logger *zap.Logger) (*Opener, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Opener{client: client, logger: logger}, nil
}

// Open dials a live session with audio responses, the configured system
// instruction and the declared tools.
func (o *Opener) Open(ctx context.Context, config repositories.ChannelConfig) (repositories.LiveChannel, error) {
	liveConfig := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
	}
	if config.SystemInstruction != "" {
		liveConfig.SystemInstruction = genai.NewContentFromText(config.SystemInstruction, genai.RoleUser)
	}
	if len(config.Tools) > 0 {
		liveConfig.Tools = toGenaiTools(config.Tools)
	}

	session, err := o.client.Live.Connect(ctx, config.Model, liveConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open live channel: %w", err)
	}

	channel := &liveChannel{
		session: session,
		logger:  o.logger,
		events:  make(chan repositories.ChannelEvent, eventBuffer),
		frames:  make(chan repositories.AudioFrame, frameBuffer),
		done:    make(chan struct{}),
	}
	// Connect completes the setup handshake, so the channel is open now.
	channel.events <- repositories.OpenedEvent{}
	go channel.readLoop()
	go channel.writeLoop()

	o.logger.Info("Live channel opened", zap.String("model", config.Model))
	return channel, nil
}

// toGenaiTools converts tool declarations to Gemini function declarations.
// All declared parameters are required strings.
func toGenaiTools(decls []repositories.ToolDeclaration) []*genai.Tool {
	fns := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		properties := make(map[string]*genai.Schema, len(decl.Parameters))
		for name, description := range decl.Parameters {
			properties[name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: description,
			}
		}
		fns = append(fns, &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   decl.Required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: fns}}
}

// liveChannel adapts one *genai.Session to the LiveChannel interface. The
// read loop preserves the server's production order on the event stream.
type liveChannel struct {
	session *genai.Session
	logger  *zap.Logger

	events chan repositories.ChannelEvent
	frames chan repositories.AudioFrame

	done      chan struct{}
	closeOnce sync.Once
}

func (c *liveChannel) Events() <-chan repositories.ChannelEvent {
	return c.events
}

// SendAudioFrame queues one frame for the transport. It never blocks: a full
// queue means the transport cannot keep up and the frame is rejected.
func (c *liveChannel) SendAudioFrame(frame repositories.AudioFrame) error {
	select {
	case <-c.done:
		return errClosed
	default:
	}
	select {
	case c.frames <- frame:
		return nil
	default:
		return errBusy
	}
}

// SendToolResponse sends the correlated function response for a tool call.
func (c *liveChannel) SendToolResponse(id, name string, payload map[string]any) error {
	select {
	case <-c.done:
		return errClosed
	default:
	}
	err := c.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: []*genai.FunctionResponse{{
			ID:       id,
			Name:     name,
			Response: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to send tool response: %w", err)
	}
	return nil
}

// Close tears down the transport without awaiting acknowledgment of
// in-flight operations.
func (c *liveChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.session.Close(); err != nil {
			c.logger.Warn("Live session close failed", zap.Error(err))
		}
	})
	return nil
}

// readLoop pumps server messages into the ordered event stream.
func (c *liveChannel) readLoop() {
	defer close(c.events)

	for {
		message, err := c.session.Receive()
		if err != nil {
			select {
			case <-c.done:
				// Local close; the receive failure is expected and the
				// session owner already tore down.
			default:
				if errors.Is(err, io.EOF) {
					c.emit(repositories.ClosedEvent{})
				} else {
					c.emit(repositories.ErrorEvent{Err: err})
				}
			}
			return
		}
		if message == nil {
			continue
		}

		if message.ToolCall != nil {
			for _, call := range message.ToolCall.FunctionCalls {
				c.emit(repositories.ToolCallEvent{
					ID:   call.ID,
					Name: call.Name,
					Args: call.Args,
				})
			}
		}

		if content := message.ServerContent; content != nil {
			// Interruption invalidates chunks delivered before this
			// message, so it goes out ahead of any audio carried here.
			if content.Interrupted {
				c.emit(repositories.InterruptedEvent{})
			}
			if content.ModelTurn != nil {
				for _, part := range content.ModelTurn.Parts {
					if part.InlineData != nil && len(part.InlineData.Data) > 0 {
						c.emit(repositories.AudioChunkEvent{Data: part.InlineData.Data})
					}
				}
			}
		}
	}
}

// writeLoop drains the outbound frame queue into the transport.
func (c *liveChannel) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.frames:
			err := c.session.SendRealtimeInput(genai.LiveRealtimeInput{
				Media: &genai.Blob{
					Data:     frame.Data,
					MIMEType: frame.MIMEType,
				},
			})
			if err != nil {
				c.logger.Warn("Failed to send audio frame", zap.Error(err))
			}
		}
	}
}

// emit delivers an event in production order, giving up only when the
// channel is torn down with a stalled consumer.
func (c *liveChannel) emit(event repositories.ChannelEvent) {
	select {
	case c.events <- event:
	case <-c.done:
	}
}
