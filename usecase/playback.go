package usecase

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/domain/entities"
	"github.com/wildcloud007/greenguard/domain/repositories"
)

// DecodeFunc decodes an opaque inbound audio chunk into raw PCM16 samples
// and their playback duration. Decoding may be slow for real codecs; the
// scheduler tolerates that without reordering playback.
type DecodeFunc func(data []byte) (pcm []byte, duration time.Duration, err error)

// NewPCMDecoder returns a DecodeFunc for little-endian PCM16 mono at the
// given sample rate, the wire format the remote service produces.
func NewPCMDecoder(sampleRate int) DecodeFunc {
	return func(data []byte) ([]byte, time.Duration, error) {
		if len(data) == 0 {
			return nil, 0, &entities.DecodeError{Reason: "empty audio chunk"}
		}
		if len(data)%2 != 0 {
			return nil, 0, &entities.DecodeError{Reason: fmt.Sprintf("odd PCM16 payload length %d", len(data))}
		}
		samples := len(data) / 2
		duration := time.Duration(samples) * time.Second / time.Duration(sampleRate)
		return data, duration, nil
	}
}

// scheduledBuffer is one decoded chunk reserved on the playback timeline.
type scheduledBuffer struct {
	id         uint64
	start      time.Time
	duration   time.Duration
	startTimer *time.Timer
	doneTimer  *time.Timer
}

// PlaybackScheduler decodes inbound audio chunks and schedules them for
// gapless back-to-back playback. It keeps a timeline cursor: each chunk is
// reserved a slot starting at max(cursor, now) and the cursor advances by
// the chunk's duration, so variable decode latency never produces gaps or
// overlap. On interruption every active buffer is stopped, the active set is
// cleared and the cursor resets to the interruption time.
type PlaybackScheduler struct {
	output repositories.AudioOutput
	logger *zap.Logger

	decode DecodeFunc
	now    func() time.Time

	// onSpeaking reports transitions of the active set between empty and
	// non-empty. onError reports decode failures and device faults.
	onSpeaking func(speaking bool)
	onError    func(err error)

	mu         sync.Mutex
	started    bool
	nextStart  time.Time
	generation uint64
	seq        uint64
	active     map[uint64]*scheduledBuffer
}

// NewPlaybackScheduler creates a playback scheduler writing to the given
// output device.
func NewPlaybackScheduler(output repositories.AudioOutput, decode DecodeFunc, logger *zap.Logger) *PlaybackScheduler {
	return &PlaybackScheduler{
		output:     output,
		logger:     logger,
		decode:     decode,
		now:        time.Now,
		onSpeaking: func(bool) {},
		onError:    func(error) {},
		active:     make(map[uint64]*scheduledBuffer),
	}
}

// OnSpeaking sets the speaking-state callback. Must be set before Start.
func (p *PlaybackScheduler) OnSpeaking(fn func(bool)) {
	if fn != nil {
		p.onSpeaking = fn
	}
}

// OnError sets the error callback. Must be set before Start.
func (p *PlaybackScheduler) OnError(fn func(error)) {
	if fn != nil {
		p.onError = fn
	}
}

// Start acquires the output device and initializes the cursor to now.
func (p *PlaybackScheduler) Start(sampleRate int) error {
	if err := p.output.Start(sampleRate); err != nil {
		return &entities.DeviceError{Device: "audio output", Err: err}
	}
	p.mu.Lock()
	p.started = true
	p.nextStart = p.now()
	p.mu.Unlock()
	return nil
}

// Schedule decodes one inbound chunk and reserves its slot on the timeline.
// Chunks must be passed in arrival order from the event-consumption context.
// A chunk that fails to decode is treated as a zero-duration buffer: the
// failure is reported and subsequent chunks stay in sync. A chunk whose
// decode completes after an interruption was observed is discarded rather
// than scheduled.
func (p *PlaybackScheduler) Schedule(data []byte) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	gen := p.generation
	p.mu.Unlock()

	pcm, duration, err := p.decode(data)
	if err != nil {
		p.logger.Warn("Dropping undecodable audio chunk", zap.Error(err))
		p.onError(err)
		return
	}

	p.mu.Lock()
	if !p.started || gen != p.generation {
		// Interrupted (or stopped) while decoding: this chunk was never
		// reserved on the cursor, so it must not play.
		p.mu.Unlock()
		return
	}

	now := p.now()
	start := p.nextStart
	if start.Before(now) {
		start = now
	}
	p.nextStart = start.Add(duration)

	if duration <= 0 {
		p.mu.Unlock()
		return
	}

	p.seq++
	buf := &scheduledBuffer{
		id:       p.seq,
		start:    start,
		duration: duration,
	}
	wasEmpty := len(p.active) == 0
	p.active[buf.id] = buf
	buf.startTimer = time.AfterFunc(start.Sub(now), func() {
		p.play(gen, buf.id, pcm)
	})
	p.mu.Unlock()

	if wasEmpty {
		p.onSpeaking(true)
	}
}

// play writes a buffer to the device at its reserved start time.
func (p *PlaybackScheduler) play(gen, id uint64, pcm []byte) {
	p.mu.Lock()
	buf, ok := p.active[id]
	if !ok || gen != p.generation {
		p.mu.Unlock()
		return
	}
	buf.doneTimer = time.AfterFunc(buf.duration, func() {
		p.complete(gen, id)
	})
	p.mu.Unlock()

	if err := p.output.Write(pcm); err != nil {
		p.logger.Error("Failed to write audio to output device", zap.Error(err))
		p.onError(&entities.DeviceError{Device: "audio output", Err: err})
	}
}

// complete removes a buffer from the active set on natural completion.
func (p *PlaybackScheduler) complete(gen, id uint64) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	if _, ok := p.active[id]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.active, id)
	empty := len(p.active) == 0
	p.mu.Unlock()

	if empty {
		p.onSpeaking(false)
	}
}

// Interrupt cancels every scheduled and playing buffer, clears the active
// set and resets the cursor to now. Interrupting with an empty active set is
// a no-op apart from the cursor reset.
func (p *PlaybackScheduler) Interrupt() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.generation++
	p.nextStart = p.now()
	hadActive := len(p.active) > 0
	for _, buf := range p.active {
		// Stopping an already-fired timer is a harmless no-op.
		buf.startTimer.Stop()
		if buf.doneTimer != nil {
			buf.doneTimer.Stop()
		}
	}
	p.active = make(map[uint64]*scheduledBuffer)
	p.mu.Unlock()

	if hadActive {
		if err := p.output.Flush(); err != nil {
			p.logger.Error("Failed to flush output device on interruption", zap.Error(err))
		}
		p.onSpeaking(false)
	}
}

// Stop cancels all playback and releases the output device.
func (p *PlaybackScheduler) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.generation++
	for _, buf := range p.active {
		buf.startTimer.Stop()
		if buf.doneTimer != nil {
			buf.doneTimer.Stop()
		}
	}
	p.active = make(map[uint64]*scheduledBuffer)
	p.mu.Unlock()

	if err := p.output.Stop(); err != nil {
		p.logger.Error("Failed to stop output device", zap.Error(err))
	}
}

// ActiveCount returns the number of buffers currently scheduled or playing.
func (p *PlaybackScheduler) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}
