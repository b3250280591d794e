package voice

import (
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/reverb-bot/reverb/internal/opus"
)

var ErrVoiceConnClosed = errors.New("voice connection send timeout")

// StreamFrames is the non-real-time fallback path: it reads stored Opus
// frames from source and pushes them straight to the voice connection with
// no decoding or pacing, relying on the connection's own send cadence. Used
// when the paced PCM path fails. Blocks until all frames are sent or an
// error occurs; returns nil on clean EOF.
func StreamFrames(source *opus.FrameReader, vc *discordgo.VoiceConnection) error {
	for {
		frame, err := source.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		timer := time.NewTimer(time.Minute)
		select {
		case vc.OpusSend <- frame:
			timer.Stop()
		case <-timer.C:
			return ErrVoiceConnClosed
		}
	}
}
