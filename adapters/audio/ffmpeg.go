package audio

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// FFmpegInput captures mono PCM16 from the default microphone through an
// ffmpeg subprocess. ffmpeg handles the platform capture backend so the rest
// of the pipeline only ever sees raw samples on a pipe.
type FFmpegInput struct {
	logger *zap.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// NewFFmpegInput creates an ffmpeg-backed capture device.
func NewFFmpegInput(logger *zap.Logger) *FFmpegInput {
	return &FFmpegInput{logger: logger}
}

func (f *FFmpegInput) Start(sampleRate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmd != nil {
		return errors.New("capture device already started")
	}

	backend, device := captureBackend()
	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", backend, "-i", device,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg capture: %w", err)
	}

	f.cmd = cmd
	f.stdout = stdout
	f.logger.Info("Microphone capture started",
		zap.String("backend", backend),
		zap.Int("sampleRate", sampleRate))
	return nil
}

func (f *FFmpegInput) Read(p []byte) (int, error) {
	f.mu.Lock()
	stdout := f.stdout
	f.mu.Unlock()
	if stdout == nil {
		return 0, io.ErrClosedPipe
	}
	return stdout.Read(p)
}

func (f *FFmpegInput) Stop() error {
	f.mu.Lock()
	cmd, stdout := f.cmd, f.stdout
	f.cmd, f.stdout = nil, nil
	f.mu.Unlock()

	if cmd == nil {
		return nil
	}
	// Closing the pipe unblocks any in-flight Read before the kill lands.
	_ = stdout.Close()
	_ = cmd.Process.Kill()
	_ = cmd.Wait()
	return nil
}

// captureBackend picks the ffmpeg input backend for the host platform.
func captureBackend() (backend, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":default"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "alsa", "default"
	}
}

// FFplayOutput plays mono PCM16 through an ffplay subprocess reading raw
// samples from stdin. Flush restarts the process, discarding whatever ffplay
// has internally buffered, which is what an interruption needs.
type FFplayOutput struct {
	logger *zap.Logger

	mu         sync.Mutex
	sampleRate int
	cmd        *exec.Cmd
	stdin      io.WriteCloser
}

// NewFFplayOutput creates an ffplay-backed playback device.
func NewFFplayOutput(logger *zap.Logger) *FFplayOutput {
	return &FFplayOutput{logger: logger}
}

func (f *FFplayOutput) Start(sampleRate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmd != nil {
		return errors.New("playback device already started")
	}
	f.sampleRate = sampleRate
	return f.spawnLocked()
}

func (f *FFplayOutput) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stdin == nil {
		return io.ErrClosedPipe
	}
	if _, err := f.stdin.Write(p); err != nil {
		return fmt.Errorf("failed to write to ffplay: %w", err)
	}
	return nil
}

// Flush drops buffered audio by cycling the player process.
func (f *FFplayOutput) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmd == nil {
		return nil
	}
	f.killLocked()
	f.logger.Debug("Playback flushed", zap.Int("sampleRate", f.sampleRate))
	return f.spawnLocked()
}

func (f *FFplayOutput) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killLocked()
	return nil
}

func (f *FFplayOutput) spawnLocked() error {
	cmd := exec.Command("ffplay",
		"-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(f.sampleRate),
		"-ac", "1",
		"-nodisp", "-autoexit",
		"-",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open playback pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}
	f.cmd = cmd
	f.stdin = stdin
	return nil
}

func (f *FFplayOutput) killLocked() {
	if f.cmd == nil {
		return
	}
	_ = f.stdin.Close()
	_ = f.cmd.Process.Kill()
	_ = f.cmd.Wait()
	f.cmd, f.stdin = nil, nil
}
