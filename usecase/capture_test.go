package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/adapters/audio"
	"github.com/wildcloud007/greenguard/domain/entities"
	"github.com/wildcloud007/greenguard/domain/repositories"
)

// frameRecorder collects frames handed to the channel.
type frameRecorder struct {
	mu     sync.Mutex
	frames []repositories.AudioFrame
	reject bool
}

func (r *frameRecorder) send(frame repositories.AudioFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject {
		return ErrChannelNotReady
	}
	r.frames = append(r.frames, frame)
	return nil
}

func (r *frameRecorder) snapshot() []repositories.AudioFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repositories.AudioFrame(nil), r.frames...)
}

func TestCapturePipelineDeliversFullFrames(t *testing.T) {
	const frameSamples = 160
	input := audio.NewMemoryInput(make([]byte, frameSamples*2*2)) // exactly two frames
	recorder := &frameRecorder{}
	c := NewCapturePipeline(input, 16000, frameSamples, recorder.send, nil, zap.NewNop())

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Stop()

	waitFor(t, time.Second, func() bool {
		return c.FramesSent() == 2
	}, "frames never delivered")

	for i, frame := range recorder.snapshot() {
		if len(frame.Data) != frameSamples*2 {
			t.Errorf("Frame %d: expected %d bytes, got %d", i, frameSamples*2, len(frame.Data))
		}
		if frame.SampleRate != 16000 {
			t.Errorf("Frame %d: expected 16000 Hz, got %d", i, frame.SampleRate)
		}
		if frame.MIMEType != "audio/pcm;rate=16000" {
			t.Errorf("Frame %d: unexpected MIME type %q", i, frame.MIMEType)
		}
	}
}

func TestCapturePipelineDropsUnsendableFrames(t *testing.T) {
	const frameSamples = 160
	input := audio.NewMemoryInput(make([]byte, frameSamples*2*3))
	recorder := &frameRecorder{reject: true}
	c := NewCapturePipeline(input, 16000, frameSamples, recorder.send, nil, zap.NewNop())

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Stop()

	waitFor(t, time.Second, func() bool {
		return c.FramesDropped() == 3
	}, "frames never dropped")

	if c.FramesSent() != 0 {
		t.Errorf("Expected no frames sent, got %d", c.FramesSent())
	}
	if len(recorder.snapshot()) != 0 {
		t.Error("Expected no frames recorded")
	}
}

func TestCapturePipelineStopReleasesDevice(t *testing.T) {
	input := audio.NewMemoryInput(nil)
	recorder := &frameRecorder{}
	fatal := make(chan error, 1)
	c := NewCapturePipeline(input, 16000, 160, recorder.send, func(err error) {
		fatal <- err
	}, zap.NewNop())

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.Stop()

	if input.Started() {
		t.Error("Expected input device to be released")
	}
	select {
	case err := <-fatal:
		t.Errorf("Unexpected fatal error on clean stop: %v", err)
	default:
	}

	// Stopping again is a no-op.
	c.Stop()
}

// brokenInput fails every read, simulating a lost device.
type brokenInput struct{}

func (brokenInput) Start(sampleRate int) error { return nil }
func (brokenInput) Read(p []byte) (int, error) { return 0, errors.New("device gone") }
func (brokenInput) Stop() error                { return nil }

func TestCapturePipelineReportsFatalReadError(t *testing.T) {
	recorder := &frameRecorder{}
	fatal := make(chan error, 1)
	c := NewCapturePipeline(brokenInput{}, 16000, 160, recorder.send, func(err error) {
		fatal <- err
	}, zap.NewNop())

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case err := <-fatal:
		var deviceErr *entities.DeviceError
		if !errors.As(err, &deviceErr) {
			t.Errorf("Expected DeviceError, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Fatal read error never reported")
	}
}
