package opus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	hraban "gopkg.in/hraban/opus.v2"
)

// Clips are decoded at 48 kHz mono; playout frames are cut from that rate.
const (
	SampleRate = 48000
	Channels   = 1

	// maxPacketSamples bounds one decoded packet: 120 ms at 48 kHz, the
	// largest frame duration Opus allows.
	maxPacketSamples = 5760
)

// floatDecoder is the slice of the opus decoder DecodeClip needs. The real
// implementation is gopkg.in/hraban/opus.v2; tests substitute their own.
type floatDecoder interface {
	DecodeFloat32(data []byte, pcm []float32) (int, error)
}

// ClipDecoder turns extracted Opus packets into a single PCM clip buffer.
// Create one per whole-clip decode and discard it afterwards so decoder
// state never leaks between clips.
type ClipDecoder struct {
	dec floatDecoder
}

func NewClipDecoder() (*ClipDecoder, error) {
	dec, err := hraban.NewDecoder(SampleRate, Channels)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}
	return &ClipDecoder{dec: dec}, nil
}

// DecodeClip decodes packets in order and concatenates the results into one
// contiguous int16 buffer. A packet that fails to decode is logged and
// dropped, shortening the clip by its duration; no gap-filling or reordering
// happens. Decoding the same packets twice yields identical output.
func (d *ClipDecoder) DecodeClip(packets [][]byte) []int16 {
	frames := make([][]int16, 0, len(packets))
	total := 0

	pcm := make([]float32, maxPacketSamples*Channels)
	for i, pkt := range packets {
		n, err := d.dec.DecodeFloat32(pkt, pcm)
		if err != nil {
			slog.Warn("dropping undecodable packet",
				"packet", i, "bytes", len(pkt), "error", err)
			continue
		}
		frame := Float32ToInt16(pcm[:n*Channels])
		frames = append(frames, frame)
		total += len(frame)
	}

	clip := make([]int16, 0, total)
	for _, frame := range frames {
		clip = append(clip, frame...)
	}
	return clip
}

// ReadClip reads length-prefixed Opus frames from source, runs each through
// the packet boundary parser, and decodes the result into one PCM clip.
// This is the whole path from stored bytes to a playable buffer.
func ReadClip(source *FrameReader) ([]int16, error) {
	decoder, err := NewClipDecoder()
	if err != nil {
		return nil, err
	}

	var buffer PacketBuffer
	var clip []int16
	for {
		chunk, err := source.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if packets := buffer.Feed(chunk); packets != nil {
			clip = append(clip, decoder.DecodeClip(packets)...)
		}
	}

	if pending := buffer.Pending(); pending > 0 {
		slog.Warn("unparsed trailing bytes after clip decode", "bytes", pending)
	}
	return clip, nil
}
