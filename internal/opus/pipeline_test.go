package opus_test

import (
	"context"
	"testing"
	"time"

	"github.com/reverb-bot/reverb/internal/opus"
	"github.com/reverb-bot/reverb/internal/playback"
)

// levelDecoder stands in for the opus decoder: every packet yields a fixed
// number of samples at a level taken from its first payload byte.
type levelDecoder struct {
	samplesPerPacket int
}

func (d *levelDecoder) DecodeFloat32(data []byte, pcm []float32) (int, error) {
	level := float32(data[1]) / 1000
	for i := range d.samplesPerPacket {
		pcm[i] = level
	}
	return d.samplesPerPacket, nil
}

// captureSink collects the frames the pacer delivers. Always ready, never
// backs up.
type captureSink struct {
	frames [][]int16
	closed bool
	drain  chan struct{}
}

func newCaptureSink() *captureSink {
	return &captureSink{drain: make(chan struct{})}
}

func (s *captureSink) Ready() bool    { return !s.closed }
func (s *captureSink) Publish() error { return nil }

func (s *captureSink) Capture(_ context.Context, frame []int16) error {
	copied := make([]int16, len(frame))
	copy(copied, frame)
	s.frames = append(s.frames, copied)
	return nil
}

func (s *captureSink) QueuedDuration() time.Duration  { return 0 }
func (s *captureSink) WaitForPlayout() <-chan struct{} { return s.drain }

func (s *captureSink) Close() error {
	s.closed = true
	return nil
}

var _ playback.Sink = (*captureSink)(nil)

// TestChunksToPlayout runs the whole path from demuxer chunks to paced
// frames: three single-frame packets decode to 480 samples each, the
// 1440-sample clip is shorter than one default frame, so the sink receives
// exactly one frame with the tail zero-padded.
func TestChunksToPlayout(t *testing.T) {
	var buffer opus.PacketBuffer
	var packets [][]byte
	for _, marker := range []byte{1, 2, 3} {
		extracted := buffer.Feed([]byte{tocSingle, marker})
		if extracted == nil {
			t.Fatalf("chunk %d did not yield a packet", marker)
		}
		packets = append(packets, extracted...)
	}
	if len(packets) != 3 {
		t.Fatalf("got %d packets; want 3", len(packets))
	}
	if buffer.Pending() != 0 {
		t.Fatalf("buffer holds %d pending bytes; want 0", buffer.Pending())
	}

	decoder := opus.NewClipDecoderWith(&levelDecoder{samplesPerPacket: 480})
	clip := decoder.DecodeClip(packets)
	if len(clip) != 1440 {
		t.Fatalf("clip length = %d; want 1440", len(clip))
	}

	sink := newCaptureSink()
	cfg := playback.Config{Warmup: time.Millisecond}
	if err := playback.Play(context.Background(), sink, clip, cfg); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}

	if len(sink.frames) != 1 {
		t.Fatalf("got %d frames; want 1", len(sink.frames))
	}
	frame := sink.frames[0]
	if len(frame) != playback.DefaultFrameSamples {
		t.Fatalf("frame has %d samples; want %d", len(frame), playback.DefaultFrameSamples)
	}

	// The first 1440 samples carry the decoded levels in packet order.
	for i, marker := range []byte{1, 2, 3} {
		want := opus.Float32ToInt16([]float32{float32(marker) / 1000})[0]
		if got := frame[i*480]; got != want {
			t.Errorf("sample %d = %d; want %d", i*480, got, want)
		}
	}

	// The remaining 960 samples are padding.
	for i := 1440; i < playback.DefaultFrameSamples; i++ {
		if frame[i] != 0 {
			t.Fatalf("padding sample %d = %d; want 0", i, frame[i])
		}
	}

	if !sink.closed {
		t.Error("sink was not closed after playout")
	}
}
