package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/reverb-bot/reverb/internal/datalayer"
	"github.com/reverb-bot/reverb/internal/generator"
	"github.com/reverb-bot/reverb/internal/presenters"
	"github.com/reverb-bot/reverb/internal/registry"
	"github.com/reverb-bot/reverb/internal/repository"
	"github.com/reverb-bot/reverb/internal/util"
	"github.com/reverb-bot/reverb/internal/voice"
)

// voiceChannelForUser resolves the channel a playout should target: the
// invoker's current voice channel, or the busiest voice channel in the
// guild when the invoker is not in one.
func voiceChannelForUser(s *discordgo.Session, guildID, userID string) (string, error) {
	vs, err := s.State.VoiceState(guildID, userID)
	if err == nil && vs != nil && vs.ChannelID != "" {
		return vs.ChannelID, nil
	}

	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to get guild channels: %w", err)
	}
	channel := voice.MaxAttendedChannel(channels)
	if channel == nil {
		return "", errors.New("no voice channel available")
	}
	return channel.ID, nil
}

func respondMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		slog.Warn("Failed to respond to interaction", "error", err)
	}
}

func respondDeferred(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		slog.Warn("Failed to send follow-up message", "error", err)
	}
}

func soundByName(ctx context.Context, repo repository.SoundRepository, guildID, name string) (repository.Sound, error) {
	sounds, err := repo.List(ctx, guildID)
	if err != nil {
		return repository.Sound{}, err
	}
	sound, ok := util.FindFirst(sounds, func(s repository.Sound) bool {
		return s.Name == name
	})
	if !ok {
		return repository.Sound{}, repository.ErrSoundNotFound
	}
	return sound, nil
}

func MakeInteractionCreateHandler(
	repo repository.SoundRepository,
	store *datalayer.SoundStore,
	clips *registry.Registry,
	player *voice.Player,
	boards *BoardTracker,
) InteractionCreateHandler {

	audioPiper := NewAudioPiper(store, http.DefaultClient)
	uuidGenerator := generator.UUIDV4Generator{}

	playSound := func(s *discordgo.Session, guildID, userID, soundID string) error {
		channelID, err := voiceChannelForUser(s, guildID, userID)
		if err != nil {
			return err
		}
		return player.Play(context.Background(), s, guildID, channelID, soundID)
	}

	handleAdd := func(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
		command := i.ApplicationCommandData()
		request, err := CommandToSoundAddRequest(command.Resolved.Attachments, options)
		if err != nil {
			var userErr *UserError
			if errors.As(err, &userErr) {
				respondMessage(s, i, userErr.Message)
				return
			}
			slog.Warn("Failed to parse sound add command", "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		ctx := context.Background()
		sounds, err := repo.List(ctx, i.GuildID)
		if err != nil {
			slog.Warn("Failed to list sounds", "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		requested := int64(request.Attachment.Size)
		if err := CheckStorageAvailable(sounds, requested, MaxStorageSize); err != nil {
			slog.Warn("Storage limit exceeded", "guildID", i.GuildID, "error", err)
			respondMessage(s, i, "This server's sound storage is full.")
			return
		}
		if err := CheckSoundNameFree(sounds, i.GuildID, request.Name); err != nil {
			respondMessage(s, i, fmt.Sprintf("A sound named %q already exists.", request.Name))
			return
		}

		id, err := uuidGenerator.Next()
		if err != nil {
			slog.Warn("Failed to generate sound ID", "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		// Transcoding can outlast the initial response window.
		if err := respondDeferred(s, i); err != nil {
			slog.Warn("Failed to defer interaction response", "error", err)
			return
		}

		if err := audioPiper.Pipe(ctx, id, request.Attachment.ProxyURL); err != nil {
			slog.Warn("Failed to pipe audio", "soundID", id, "error", err)
			followUp(s, i, "Transcoding that file failed.")
			return
		}

		sound := repository.Sound{
			ID:       id,
			GuildID:  i.GuildID,
			Name:     request.Name,
			Emoji:    request.Emoji,
			Cron:     request.Cron,
			FileSize: requested,
		}
		if err := repo.Save(ctx, sound); err != nil {
			slog.Warn("Failed to save sound", "soundID", id, "error", err)
			followUp(s, i, "That didn't work, sorry.")
			return
		}

		followUp(s, i, fmt.Sprintf("Added sound %q.", sound.Name))
	}

	handlePlay := func(s *discordgo.Session, i *discordgo.InteractionCreate, name string) {
		sound, err := soundByName(context.Background(), repo, i.GuildID, name)
		if err != nil {
			if errors.Is(err, repository.ErrSoundNotFound) {
				respondMessage(s, i, fmt.Sprintf("No sound named %q.", name))
				return
			}
			slog.Warn("Failed to look up sound", "name", name, "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		respondMessage(s, i, fmt.Sprintf("Playing %q.", sound.Name))
		if err := playSound(s, i.GuildID, i.Member.User.ID, sound.ID); err != nil {
			slog.Warn("Failed to play sound", "soundID", sound.ID, "error", err)
		}
	}

	handleRemove := func(s *discordgo.Session, i *discordgo.InteractionCreate, name string) {
		ctx := context.Background()
		sound, err := soundByName(ctx, repo, i.GuildID, name)
		if err != nil {
			if errors.Is(err, repository.ErrSoundNotFound) {
				respondMessage(s, i, fmt.Sprintf("No sound named %q.", name))
				return
			}
			slog.Warn("Failed to look up sound", "name", name, "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		clips.Invalidate(sound.ID)
		if err := store.Remove(ctx, sound.ID); err != nil {
			slog.Warn("Failed to remove stored audio", "soundID", sound.ID, "error", err)
		}
		if err := repo.Delete(ctx, sound.ID); err != nil {
			slog.Warn("Failed to delete sound", "soundID", sound.ID, "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		respondMessage(s, i, fmt.Sprintf("Removed sound %q.", sound.Name))
	}

	handleBoard := func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		sounds, err := repo.List(context.Background(), i.GuildID)
		if err != nil {
			slog.Warn("Failed to list sounds", "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		content := presenters.BuildSoundBoardContent(sounds)
		message, err := s.ChannelMessageSend(i.ChannelID, content)
		if err != nil {
			slog.Warn("Failed to post soundboard", "error", err)
			respondMessage(s, i, "That didn't work, sorry.")
			return
		}

		boards.Track(i.GuildID, message.ID)
		for _, emoji := range presenters.BoardEmojis(sounds) {
			if err := s.MessageReactionAdd(i.ChannelID, message.ID, emoji); err != nil {
				slog.Warn("Failed to seed board reaction", "emoji", emoji, "error", err)
			}
		}

		respondMessage(s, i, "Soundboard posted.")
	}

	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionMessageComponent {
			data := i.MessageComponentData()
			if data.CustomID != presenters.ComponentIDSoundSelect || len(data.Values) == 0 {
				return
			}
			soundID := data.Values[0]

			respondMessage(s, i, "Playing it now.")
			if err := playSound(s, i.GuildID, i.Member.User.ID, soundID); err != nil {
				slog.Warn("Failed to play selected sound", "soundID", soundID, "error", err)
			}
			return
		}

		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		command := i.ApplicationCommandData()
		switch command.Name {
		case "ping":
			respondMessage(s, i, "Pong!")
		case "sound":
			if len(command.Options) == 0 {
				slog.Warn("No subcommand provided for sound command")
				return
			}
			subCommand := command.Options[0]
			switch subCommand.Name {
			case "list":
				sounds, err := repo.List(context.Background(), i.GuildID)
				if err != nil {
					slog.Warn("Failed to list sounds", "error", err)
					respondMessage(s, i, "That didn't work, sorry.")
					return
				}
				response := presenters.BuildSoundSelectResponse(sounds)
				if err := s.InteractionRespond(i.Interaction, response); err != nil {
					slog.Warn("Failed to respond with sound list", "error", err)
				}
			case "add":
				handleAdd(s, i, subCommand.Options)
			case "play":
				if len(subCommand.Options) == 0 {
					return
				}
				handlePlay(s, i, subCommand.Options[0].StringValue())
			case "remove":
				if len(subCommand.Options) == 0 {
					return
				}
				handleRemove(s, i, subCommand.Options[0].StringValue())
			case "board":
				handleBoard(s, i)
			}
		}
	}
}
