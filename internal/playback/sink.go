package playback

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSinkUnavailable indicates the sink was not connected and ready
	// when playout was requested. Nothing was sent.
	ErrSinkUnavailable = errors.New("playback: sink unavailable")

	// ErrEmptyClip indicates the clip held no samples. Nothing was sent.
	ErrEmptyClip = errors.New("playback: empty clip")
)

// Sink is a live real-time audio destination. The transport adapter must
// implement all of it; the pacer never probes for optional methods.
//
// Capture may block until the sink accepts the frame; that block is the
// pacer's sole backpressure point besides the queue-depth wait.
type Sink interface {
	// Ready reports whether the sink is connected and able to accept audio.
	Ready() bool

	// Publish announces a new track on the sink before any frames are sent.
	Publish() error

	// Capture hands one fixed-size PCM frame to the sink.
	Capture(ctx context.Context, frame []int16) error

	// QueuedDuration reports how much audio the sink has accepted but not
	// yet played out.
	QueuedDuration() time.Duration

	// WaitForPlayout returns a channel that is closed when the sink's
	// queue has drained.
	WaitForPlayout() <-chan struct{}

	// Close releases the track and audio source. Called on every exit
	// path of a playout, success or failure.
	Close() error
}
