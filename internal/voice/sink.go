package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"

	"github.com/reverb-bot/reverb/internal/playback"
)

// Compile-time interface assertion.
var _ playback.Sink = (*DiscordSink)(nil)

// Discord voice wants 48 kHz stereo Opus in 20 ms frames.
const (
	sinkSampleRate = 48000
	sinkChannels   = 2

	// encodeFrameSamples is samples per channel per 20 ms frame.
	encodeFrameSamples  = 960
	encodeFrameDuration = 20 * time.Millisecond

	// maxOpusFrameBytes bounds one encoded frame handed to the send queue.
	maxOpusFrameBytes = 1400

	sendQueueDepth = 64

	// sendTimeout caps how long a frame may sit waiting on the voice
	// connection before the sink gives up.
	sendTimeout = time.Minute
)

// frameEncoder is the slice of the gopus encoder the sink needs.
// Tests substitute their own.
type frameEncoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// DiscordSink adapts a discordgo voice connection to playback.Sink. It takes
// 50 ms mono PCM frames from the pacer, upmixes them to stereo, encodes
// 20 ms Opus frames, and forwards them through an internal queue whose depth
// is the sink's queued-playout measure.
//
// A sink serves exactly one playout; create a fresh one per play.
type DiscordSink struct {
	send     chan<- []byte
	ready    func() bool
	speaking func(bool) error
	enc      frameEncoder

	queue   chan []byte
	pending []int16 // mono samples short of a full encode frame

	mu    sync.Mutex
	drain chan struct{}

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewDiscordSink wraps vc. The forwarding goroutine starts immediately and
// runs until Close.
func NewDiscordSink(vc *discordgo.VoiceConnection) (*DiscordSink, error) {
	enc, err := gopus.NewEncoder(sinkSampleRate, sinkChannels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}
	ready := func() bool { return vc != nil && vc.Ready }
	return newDiscordSink(vc.OpusSend, ready, vc.Speaking, enc), nil
}

func newDiscordSink(send chan<- []byte, ready func() bool, speaking func(bool) error, enc frameEncoder) *DiscordSink {
	s := &DiscordSink{
		send:     send,
		ready:    ready,
		speaking: speaking,
		enc:      enc,
		queue:    make(chan []byte, sendQueueDepth),
		done:     make(chan struct{}),
	}
	go s.forward()
	return s
}

// Ready reports whether the voice connection can accept audio.
func (s *DiscordSink) Ready() bool {
	select {
	case <-s.done:
		return false
	default:
	}
	return s.ready()
}

// Publish marks the bot as speaking. No frames may be captured before this.
func (s *DiscordSink) Publish() error {
	if err := s.speaking(true); err != nil {
		return fmt.Errorf("set speaking: %w", err)
	}
	return nil
}

// Capture accepts one mono PCM frame, encoding and queueing every complete
// 20 ms sub-frame it completes. Capture blocks while the queue is full,
// which is the pacer's backpressure point.
func (s *DiscordSink) Capture(ctx context.Context, frame []int16) error {
	s.pending = append(s.pending, frame...)
	for len(s.pending) >= encodeFrameSamples {
		if err := s.encodeAndQueue(ctx, s.pending[:encodeFrameSamples]); err != nil {
			return err
		}
		s.pending = s.pending[:copy(s.pending, s.pending[encodeFrameSamples:])]
	}
	return nil
}

func (s *DiscordSink) encodeAndQueue(ctx context.Context, mono []int16) error {
	stereo := monoToStereo(mono)
	data, err := s.enc.Encode(stereo, encodeFrameSamples, maxOpusFrameBytes)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	select {
	case s.queue <- data:
		return nil
	case <-s.done:
		return fmt.Errorf("sink closed during capture")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueuedDuration reports audio accepted but not yet handed to the voice
// connection.
func (s *DiscordSink) QueuedDuration() time.Duration {
	return time.Duration(len(s.queue)) * encodeFrameDuration
}

// WaitForPlayout returns a channel closed the next time the send queue
// drains completely.
func (s *DiscordSink) WaitForPlayout() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drain == nil {
		s.drain = make(chan struct{})
	}
	return s.drain
}

// Close flushes any partial frame, stops the forwarder, and clears the
// speaking state. Safe to call more than once.
func (s *DiscordSink) Close() error {
	s.closeOnce.Do(func() {
		// Pad and push a trailing partial frame so the clip tail is not
		// cut off.
		if len(s.pending) > 0 {
			tail := make([]int16, encodeFrameSamples)
			copy(tail, s.pending)
			s.pending = nil
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := s.encodeAndQueue(ctx, tail); err != nil {
				slog.Warn("failed to flush sink tail", "error", err)
			}
			cancel()
		}

		close(s.done)
		if err := s.speaking(false); err != nil {
			s.closeErr = fmt.Errorf("clear speaking: %w", err)
		}
	})
	return s.closeErr
}

// forward moves encoded frames from the queue to the voice connection,
// signalling drain whenever the queue empties.
func (s *DiscordSink) forward() {
	for {
		var data []byte
		select {
		case data = <-s.queue:
		case <-s.done:
			// Drain what is already queued before stopping.
			select {
			case data = <-s.queue:
			default:
				s.signalDrain()
				return
			}
		}

		timer := time.NewTimer(sendTimeout)
		select {
		case s.send <- data:
			timer.Stop()
		case <-timer.C:
			slog.Warn("voice connection send timeout, dropping frame")
		}

		if len(s.queue) == 0 {
			s.signalDrain()
		}
	}
}

func (s *DiscordSink) signalDrain() {
	s.mu.Lock()
	if s.drain != nil {
		close(s.drain)
		s.drain = nil
	}
	s.mu.Unlock()
}

// monoToStereo duplicates each mono sample into an interleaved L+R pair.
func monoToStereo(mono []int16) []int16 {
	stereo := make([]int16, len(mono)*2)
	for i, sample := range mono {
		stereo[i*2] = sample
		stereo[i*2+1] = sample
	}
	return stereo
}
