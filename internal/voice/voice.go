package voice

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// MaxAttendedChannel returns the voice channel with the most members in it.
// This returns nil if no channel has any members.
func MaxAttendedChannel(channels []*discordgo.Channel) *discordgo.Channel {
	var maxAttendedChannel *discordgo.Channel
	maxAttended := -1

	for _, channel := range channels {
		if channel.Type != discordgo.ChannelTypeGuildVoice {
			continue
		}

		if len(channel.Members) > maxAttended {
			maxAttendedChannel = channel
			maxAttended = len(channel.Members)
		}
	}

	return maxAttendedChannel
}

type VoiceChannelFunc func(*discordgo.Session, *discordgo.VoiceConnection) error

// WithVoiceChannel joins a voice channel, executes a callback, and tears the
// connection down afterwards. It handles the voice state updates for you.
func WithVoiceChannel(s *discordgo.Session, guildID, channelID string, callback VoiceChannelFunc) error {
	voiceConn, err := s.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("unable to join the voice channel: %w", err)
	}
	defer func() {
		if err := voiceConn.Disconnect(); err != nil {
			slog.Error("failed to disconnect", "error", err)
		}
	}()

	if err := callback(s, voiceConn); err != nil {
		return fmt.Errorf("error executing callback: %w", err)
	}

	return nil
}
