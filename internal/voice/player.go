package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/reverb-bot/reverb/internal/opus"
	"github.com/reverb-bot/reverb/internal/playback"
)

// ErrGuildBusy indicates a playout is already running in the guild.
var ErrGuildBusy = errors.New("a sound is already playing in this guild")

// ClipSource yields decoded PCM clips by sound ID. Implemented by the
// registry.
type ClipSource interface {
	Clip(ctx context.Context, soundID string) ([]int16, error)
}

// FrameSource yields the stored encoded frames for a sound. Implemented by
// blob storage; used by the fallback path.
type FrameSource interface {
	Fetch(ctx context.Context, soundID string) (io.ReadCloser, error)
}

// Player joins a voice channel and plays one sound into it, trying the
// paced real-time PCM path first and falling back to plain frame streaming
// when that path fails. One playout per guild at a time.
type Player struct {
	clips  ClipSource
	frames FrameSource
	busy   *Busy
	cfg    playback.Config
}

func NewPlayer(clips ClipSource, frames FrameSource, cfg playback.Config) *Player {
	return &Player{
		clips:  clips,
		frames: frames,
		busy:   NewBusy(),
		cfg:    cfg,
	}
}

// Busy exposes the per-guild playout guard so periodic work can skip guilds
// with an active playout.
func (p *Player) Busy() *Busy {
	return p.busy
}

// Play joins channelID and plays soundID into it, blocking until playout
// finishes or fails.
func (p *Player) Play(ctx context.Context, s *discordgo.Session, guildID, channelID, soundID string) error {
	if !p.busy.TryAcquire(guildID) {
		return ErrGuildBusy
	}
	defer p.busy.Release(guildID)

	return WithVoiceChannel(s, guildID, channelID, func(_ *discordgo.Session, vc *discordgo.VoiceConnection) error {
		err := p.playPaced(ctx, vc, soundID)
		if err == nil {
			return nil
		}
		slog.Warn("paced playout failed, falling back to frame streaming",
			"soundID", soundID, "error", err)
		return p.playStreamed(ctx, vc, soundID)
	})
}

func (p *Player) playPaced(ctx context.Context, vc *discordgo.VoiceConnection, soundID string) error {
	clip, err := p.clips.Clip(ctx, soundID)
	if err != nil {
		return fmt.Errorf("load clip: %w", err)
	}

	sink, err := NewDiscordSink(vc)
	if err != nil {
		return fmt.Errorf("create sink: %w", err)
	}
	return playback.Play(ctx, sink, clip, p.cfg)
}

func (p *Player) playStreamed(ctx context.Context, vc *discordgo.VoiceConnection, soundID string) error {
	body, err := p.frames.Fetch(ctx, soundID)
	if err != nil {
		return fmt.Errorf("fetch frames: %w", err)
	}
	defer body.Close()

	if err := vc.Speaking(true); err != nil {
		return fmt.Errorf("set speaking: %w", err)
	}
	defer func() {
		if err := vc.Speaking(false); err != nil {
			slog.Warn("failed to clear speaking state", "error", err)
		}
	}()

	return StreamFrames(opus.NewFrameReader(body), vc)
}
