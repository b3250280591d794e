package voice

import (
	"context"
	"testing"
	"time"
)

// fakeEncoder tags each encoded frame with the first stereo sample so tests
// can check framing without a real opus encoder.
type fakeEncoder struct {
	frames [][]int16
}

func (e *fakeEncoder) Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error) {
	copied := make([]int16, len(pcm))
	copy(copied, pcm)
	e.frames = append(e.frames, copied)
	return []byte{byte(len(e.frames))}, nil
}

func newTestSink(send chan []byte) (*DiscordSink, *fakeEncoder) {
	enc := &fakeEncoder{}
	speaking := func(bool) error { return nil }
	ready := func() bool { return true }
	return newDiscordSink(send, ready, speaking, enc), enc
}

func collectFrames(t *testing.T, send chan []byte, n int) [][]byte {
	t.Helper()
	var frames [][]byte
	for range n {
		select {
		case data := <-send:
			frames = append(frames, data)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d frames", len(frames), n)
		}
	}
	return frames
}

func TestSinkReframesPacerFramesToEncodeFrames(t *testing.T) {
	send := make(chan []byte, 16)
	sink, enc := newTestSink(send)

	// One 50 ms pacer frame (2400 mono samples) yields two complete 20 ms
	// encode frames with 480 samples left pending.
	frame := make([]int16, 2400)
	for i := range frame {
		frame[i] = int16(i)
	}
	if err := sink.Capture(context.Background(), frame); err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}

	collectFrames(t, send, 2)
	if len(enc.frames) != 2 {
		t.Fatalf("encoded %d frames; want 2", len(enc.frames))
	}

	// The second batch must start exactly where the first ended, upmixed
	// to interleaved stereo.
	second := enc.frames[1]
	if len(second) != encodeFrameSamples*sinkChannels {
		t.Fatalf("encode frame has %d samples; want %d", len(second), encodeFrameSamples*sinkChannels)
	}
	if second[0] != 960 || second[1] != 960 {
		t.Errorf("second frame starts with (%d, %d); want (960, 960)", second[0], second[1])
	}

	if err := sink.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestSinkCloseFlushesPaddedTail(t *testing.T) {
	send := make(chan []byte, 16)
	sink, enc := newTestSink(send)

	// 1000 samples: one complete encode frame plus a 40-sample tail.
	if err := sink.Capture(context.Background(), make([]int16, 1000)); err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	collectFrames(t, send, 2)
	if len(enc.frames) != 2 {
		t.Fatalf("encoded %d frames; want 2 (tail flushed)", len(enc.frames))
	}
	if len(enc.frames[1]) != encodeFrameSamples*sinkChannels {
		t.Errorf("flushed tail has %d samples; want a full padded frame", len(enc.frames[1]))
	}
}

func TestSinkDrainSignal(t *testing.T) {
	send := make(chan []byte, 16)
	sink, _ := newTestSink(send)

	if err := sink.Capture(context.Background(), make([]int16, encodeFrameSamples)); err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}

	drained := sink.WaitForPlayout()
	collectFrames(t, send, 1)

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("drain was never signalled")
	}

	if err := sink.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestSinkNotReadyAfterClose(t *testing.T) {
	send := make(chan []byte, 16)
	sink, _ := newTestSink(send)

	if !sink.Ready() {
		t.Error("fresh sink is not ready")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if sink.Ready() {
		t.Error("closed sink still reports ready")
	}
	// Close is idempotent.
	if err := sink.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}
}

func TestSinkQueuedDuration(t *testing.T) {
	// Unbuffered send channel with no reader keeps frames in the queue.
	send := make(chan []byte)
	sink, _ := newTestSink(send)
	defer sink.Close()

	if sink.QueuedDuration() != 0 {
		t.Errorf("fresh sink QueuedDuration = %s; want 0", sink.QueuedDuration())
	}

	// Three encode frames: the forwarder takes the first and blocks on
	// send, leaving the rest queued.
	if err := sink.Capture(context.Background(), make([]int16, 3*encodeFrameSamples)); err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}

	deadline := time.After(time.Second)
	for sink.QueuedDuration() < 2*encodeFrameDuration {
		select {
		case <-deadline:
			t.Fatalf("QueuedDuration = %s; want at least %s", sink.QueuedDuration(), 2*encodeFrameDuration)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestMonoToStereo(t *testing.T) {
	stereo := monoToStereo([]int16{1, -2, 3})
	want := []int16{1, 1, -2, -2, 3, 3}
	if len(stereo) != len(want) {
		t.Fatalf("got %d samples; want %d", len(stereo), len(want))
	}
	for i := range want {
		if stereo[i] != want[i] {
			t.Errorf("stereo[%d] = %d; want %d", i, stereo[i], want[i])
		}
	}
}
