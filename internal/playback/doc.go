// Package playback paces a decoded PCM clip into a live audio sink.
//
// The pacer slices a clip into fixed 50 ms frames and feeds them to a Sink,
// suspending when the sink reports too much queued audio and resuming on its
// drain signal, bounded by a timeout. Failures are returned to the caller,
// which may fall back to plain chunked streaming outside this package.
package playback
