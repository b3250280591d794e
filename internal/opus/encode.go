package opus

import (
	"errors"
	"io"
	"os/exec"

	"github.com/jonas747/ogg"
)

// Encode takes any audio as an io.Reader, runs FFmpeg to transcode it to
// mono Opus, and returns an io.Reader producing length-prefixed Opus frames.
// FFmpeg is the external encoder; the Ogg packet decoder is the container
// demultiplexer. The caller should read until EOF and must close the
// returned io.ReadCloser to clean up the FFmpeg process.
func Encode(r io.Reader) (io.ReadCloser, error) {
	ffmpeg := exec.Command("ffmpeg",
		"-i", "pipe:0",
		"-vn",
		"-map", "0:a",
		"-acodec", "libopus",
		"-f", "ogg",
		"-vbr", "on",
		"-compression_level", "10",
		"-ar", "48000",
		"-ac", "1",
		"-b:a", "64000",
		"-application", "audio",
		"-frame_duration", "20",
		"-packet_loss", "1",
		"-threads", "0",
		"pipe:1",
	)

	ffmpeg.Stdin = r

	stdout, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()

	go func() {
		defer pw.Close()
		defer ffmpeg.Wait()

		decoder := ogg.NewPacketDecoder(ogg.NewDecoder(stdout))

		// Skip the OpusHead and OpusTags metadata packets.
		skip := 2
		for {
			packet, _, err := decoder.Decode()
			if skip > 0 {
				skip--
				continue
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
					pw.CloseWithError(err)
				}
				return
			}

			if err := WriteFrame(pw, packet); err != nil {
				return
			}
		}
	}()

	return &encodeCloser{ReadCloser: pr, cmd: ffmpeg}, nil
}

// encodeCloser wraps the pipe reader and ensures the FFmpeg process is cleaned up.
type encodeCloser struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (e *encodeCloser) Close() error {
	err := e.ReadCloser.Close()
	// Kill FFmpeg if still running (e.g. pipe closed early).
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	e.cmd.Wait()
	return err
}
