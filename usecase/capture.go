package usecase

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/domain/entities"
	"github.com/wildcloud007/greenguard/domain/repositories"
)

// ErrChannelNotReady is returned by a FrameSender while the channel cannot
// accept audio. Frames hitting it are dropped, not queued.
var ErrChannelNotReady = errors.New("channel not ready for audio")

// FrameSender forwards one capture frame to the live channel. It must be
// fire-and-forget: never blocking on playback or tool work.
type FrameSender func(frame repositories.AudioFrame) error

// CapturePipeline pulls fixed-size sample windows from the input device,
// encodes them for the wire and forwards them to the live channel. Frames
// the channel cannot accept are dropped rather than buffered.
type CapturePipeline struct {
	input  repositories.AudioInput
	logger *zap.Logger

	sampleRate   int
	frameSamples int
	send         FrameSender
	onFatal      func(err error)

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	framesSent    atomic.Uint64
	framesDropped atomic.Uint64
}

// NewCapturePipeline creates a capture pipeline reading frameSamples-sample
// windows at the given rate from the input device.
func NewCapturePipeline(input repositories.AudioInput, sampleRate, frameSamples int, send FrameSender, onFatal func(error), logger *zap.Logger) *CapturePipeline {
	if onFatal == nil {
		onFatal = func(error) {}
	}
	return &CapturePipeline{
		input:        input,
		logger:       logger,
		sampleRate:   sampleRate,
		frameSamples: frameSamples,
		send:         send,
		onFatal:      onFatal,
	}
}

// Start acquires the input device and begins periodic frame delivery.
func (c *CapturePipeline) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	if err := c.input.Start(c.sampleRate); err != nil {
		return &entities.DeviceError{Device: "audio input", Err: err}
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop(c.stop, c.done)
	c.logger.Info("Capture pipeline started",
		zap.Int("sampleRate", c.sampleRate),
		zap.Int("frameSamples", c.frameSamples))
	return nil
}

// Stop synchronously releases the capture device and waits for the delivery
// loop to exit. Stopping a stopped pipeline is a no-op.
func (c *CapturePipeline) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	if err := c.input.Stop(); err != nil {
		c.logger.Error("Failed to stop input device", zap.Error(err))
	}
	<-done
	c.logger.Info("Capture pipeline stopped",
		zap.Uint64("framesSent", c.framesSent.Load()),
		zap.Uint64("framesDropped", c.framesDropped.Load()))
}

// FramesSent returns the number of frames handed to the channel.
func (c *CapturePipeline) FramesSent() uint64 { return c.framesSent.Load() }

// FramesDropped returns the number of frames dropped because the channel
// could not accept them.
func (c *CapturePipeline) FramesDropped() uint64 { return c.framesDropped.Load() }

func (c *CapturePipeline) loop(stop, done chan struct{}) {
	defer close(done)

	frame := make([]byte, c.frameSamples*2)
	mimeType := fmt.Sprintf("audio/pcm;rate=%d", c.sampleRate)

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := c.readFrame(frame); err != nil {
			select {
			case <-stop:
				// Read failed because the device was released.
				return
			default:
			}
			c.logger.Error("Capture device read failed", zap.Error(err))
			// The fault handler tears the session down, and teardown calls
			// Stop, which waits for this loop to exit. Report from a fresh
			// goroutine so Stop never waits on its own caller.
			go c.onFatal(&entities.DeviceError{Device: "audio input", Err: err})
			return
		}

		out := repositories.AudioFrame{
			Data:       append([]byte(nil), frame...),
			SampleRate: c.sampleRate,
			MIMEType:   mimeType,
		}
		if err := c.send(out); err != nil {
			c.framesDropped.Add(1)
			c.logger.Debug("Dropped capture frame", zap.Error(err))
			continue
		}
		c.framesSent.Add(1)
	}
}

// readFrame fills frame with exactly one window of samples.
func (c *CapturePipeline) readFrame(frame []byte) error {
	filled := 0
	for filled < len(frame) {
		n, err := c.input.Read(frame[filled:])
		if err != nil {
			return err
		}
		filled += n
	}
	return nil
}
