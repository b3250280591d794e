package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/reverb-bot/reverb/internal/repository"
	"github.com/reverb-bot/reverb/internal/util"
	"github.com/reverb-bot/reverb/internal/voice"
)

// MakeReactionAddHandler wires soundboard reactions to playouts. A reaction
// on a tracked board message that matches a registered sound's emoji plays
// that sound in the reacting user's voice channel. The user's reaction is
// removed afterwards so the board stays clickable.
func MakeReactionAddHandler(
	repo repository.SoundRepository,
	player *voice.Player,
	boards *BoardTracker,
) ReactionAddHandler {
	return func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.UserID == s.State.User.ID {
			return
		}
		if !boards.IsBoard(r.MessageID) {
			return
		}

		defer func() {
			err := s.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID)
			if err != nil {
				slog.Warn("Failed to remove board reaction", "error", err)
			}
		}()

		ctx := context.Background()
		sounds, err := repo.List(ctx, r.GuildID)
		if err != nil {
			slog.Warn("Failed to list sounds for reaction", "error", err)
			return
		}

		sound, ok := util.FindFirst(sounds, func(s repository.Sound) bool {
			return s.Emoji != "" && s.Emoji == r.Emoji.Name
		})
		if !ok {
			return
		}

		channelID, err := voiceChannelForUser(s, r.GuildID, r.UserID)
		if err != nil {
			slog.Warn("No voice channel for reaction playout", "error", err)
			return
		}

		err = player.Play(ctx, s, r.GuildID, channelID, sound.ID)
		if err != nil && !errors.Is(err, voice.ErrGuildBusy) {
			slog.Warn("Failed to play sound from reaction", "soundID", sound.ID, "error", err)
		}
	}
}
