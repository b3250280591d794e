package playback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reverb-bot/reverb/internal/opus"
)

// Default pacing parameters. All of them are tunable through Config.
const (
	// DefaultFrameSamples is one playout frame: 50 ms at 48 kHz mono.
	DefaultFrameSamples = 2400

	// DefaultWarmup is how long to wait after publishing the track so the
	// first frames are not dropped while the connection settles.
	DefaultWarmup = 50 * time.Millisecond

	// DefaultQueueTarget is the sink queue depth above which the pacer
	// stops feeding and waits for drain.
	DefaultQueueTarget = 800 * time.Millisecond

	// DefaultDrainTimeout bounds the drain wait so a sink that never
	// signals playout cannot hang the pipeline.
	DefaultDrainTimeout = 5 * time.Second
)

// Config tunes the pacer. The zero value of any field means its default.
type Config struct {
	FrameSamples int
	Warmup       time.Duration
	QueueTarget  time.Duration
	DrainTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.FrameSamples <= 0 {
		c.FrameSamples = DefaultFrameSamples
	}
	if c.Warmup <= 0 {
		c.Warmup = DefaultWarmup
	}
	if c.QueueTarget <= 0 {
		c.QueueTarget = DefaultQueueTarget
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
	return c
}

// phase is the playout state: idle → published → pacing → (drained | failed).
type phase int

const (
	phaseIdle phase = iota
	phasePublished
	phasePacing
	phaseDrained
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phasePublished:
		return "published"
	case phasePacing:
		return "pacing"
	case phaseDrained:
		return "drained"
	default:
		return "failed"
	}
}

// session is the per-play state: one immutable clip, a read offset, and the
// sink it feeds. It lives for exactly one Play call.
type session struct {
	sink   Sink
	clip   []int16
	cfg    Config
	offset int
	sent   int
	phase  phase
}

// Play delivers clip to sink at real-time cadence: fixed-size frames, the
// final one zero-padded, with queue-depth backpressure between frames.
//
// Play fails before sending anything if the sink is not ready or the clip
// is empty. Any failure is returned to the caller, which owns the decision
// to fall back to non-real-time streaming; nothing is retried here. The
// sink is closed on every exit path.
func Play(ctx context.Context, sink Sink, clip []int16, cfg Config) error {
	if sink == nil {
		return ErrSinkUnavailable
	}

	s := &session{sink: sink, clip: clip, cfg: cfg.withDefaults(), phase: phaseIdle}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			slog.Warn("failed to close playback sink", "phase", s.phase.String(), "error", cerr)
		}
	}()

	if !sink.Ready() {
		s.phase = phaseFailed
		return ErrSinkUnavailable
	}
	if len(clip) == 0 {
		s.phase = phaseFailed
		return ErrEmptyClip
	}

	if err := s.run(ctx); err != nil {
		s.phase = phaseFailed
		return err
	}
	s.phase = phaseDrained
	return nil
}

func (s *session) run(ctx context.Context) error {
	if err := s.sink.Publish(); err != nil {
		return fmt.Errorf("publish track: %w", err)
	}
	s.phase = phasePublished

	// Give the freshly published track a moment before the first frame.
	select {
	case <-time.After(s.cfg.Warmup):
	case <-ctx.Done():
		return ctx.Err()
	}

	s.phase = phasePacing
	for s.offset < len(s.clip) {
		if err := s.waitForHeadroom(ctx); err != nil {
			return err
		}

		frame := s.nextFrame()
		if err := s.sink.Capture(ctx, frame); err != nil {
			return fmt.Errorf("capture frame %d: %w", s.sent, err)
		}
		s.offset += s.cfg.FrameSamples
		s.sent++
	}
	return nil
}

// waitForHeadroom suspends while the sink has more than QueueTarget of audio
// queued, until the sink signals drain or DrainTimeout passes. The timeout
// keeps a non-responsive sink from stalling playback forever; pacing
// proceeds regardless of which fired.
func (s *session) waitForHeadroom(ctx context.Context) error {
	if s.sink.QueuedDuration() <= s.cfg.QueueTarget {
		return nil
	}

	timer := time.NewTimer(s.cfg.DrainTimeout)
	defer timer.Stop()
	select {
	case <-s.sink.WaitForPlayout():
	case <-timer.C:
		slog.Warn("sink did not drain in time, continuing playout",
			"queued", s.sink.QueuedDuration(), "timeout", s.cfg.DrainTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// nextFrame cuts the next frame-sized slice from the clip, zero-padding the
// final short slice to full length.
func (s *session) nextFrame() []int16 {
	end := s.offset + s.cfg.FrameSamples
	if end <= len(s.clip) {
		return s.clip[s.offset:end]
	}
	frame := make([]int16, s.cfg.FrameSamples)
	copy(frame, s.clip[s.offset:])
	return frame
}

// ClipDuration reports the real-time length of a PCM clip.
func ClipDuration(clip []int16) time.Duration {
	samples := len(clip) / opus.Channels
	return time.Duration(samples) * time.Second / time.Duration(opus.SampleRate)
}
