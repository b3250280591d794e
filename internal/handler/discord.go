package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/reverb-bot/reverb/internal/datalayer"
	"github.com/reverb-bot/reverb/internal/opus"
	"github.com/reverb-bot/reverb/internal/repository"
	"github.com/reverb-bot/reverb/internal/schedule"
	"github.com/reverb-bot/reverb/internal/util"
)

type ReadyHandler = func(*discordgo.Session, *discordgo.Ready)
type InteractionCreateHandler = func(*discordgo.Session, *discordgo.InteractionCreate)
type ReactionAddHandler = func(*discordgo.Session, *discordgo.MessageReactionAdd)

var ReadyLog = func(s *discordgo.Session, r *discordgo.Ready) {
	username := r.User.Username
	userID := r.User.ID
	slog.Info("Bot is ready", "username", username, "userID", userID)
}

// SoundAddRequest is a parsed /sound add invocation.
type SoundAddRequest struct {
	Attachment *discordgo.MessageAttachment
	Name       string
	Emoji      string
	Cron       string
}

// CommandToSoundAddRequest extracts the attachment and options of a
// /sound add command. The name defaults to the attachment's file name; a
// cron expression, when given, is validated before being accepted.
func CommandToSoundAddRequest(
	attachments map[string]*discordgo.MessageAttachment,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) (*SoundAddRequest, error) {
	attachment, err := util.GetOne(attachments)
	if err != nil {
		return nil, err
	}

	req := &SoundAddRequest{Attachment: attachment}

	for _, option := range options {
		if option.Type != discordgo.ApplicationCommandOptionString {
			continue
		}
		switch option.Name {
		case "name":
			req.Name = option.StringValue()
		case "emoji":
			req.Emoji = option.StringValue()
		case "cron":
			req.Cron = option.StringValue()
		}
	}

	if req.Name == "" {
		req.Name = attachment.Filename
	}
	if req.Cron != "" {
		if err := schedule.ValidateCron(req.Cron); err != nil {
			return nil, &UserError{Message: fmt.Sprintf("invalid cron expression %q", req.Cron)}
		}
	}

	return req, nil
}

// MaxStorageSize caps the total encoded audio one guild may store.
const MaxStorageSize = 10 * 1024 * 1024 // 10 MB

func CheckStorageAvailable(sounds []repository.Sound, requested, maxStorage int64) error {
	var totalSize int64
	for _, sound := range sounds {
		totalSize += sound.FileSize
	}

	if totalSize+requested > maxStorage {
		return &StorageLimitError{
			Requested: requested,
			Current:   totalSize,
			Max:       maxStorage,
		}
	}
	return nil
}

func CheckSoundNameFree(sounds []repository.Sound, guildID, name string) error {
	for _, sound := range sounds {
		if sound.GuildID == guildID && sound.Name == name {
			return &SoundAlreadyExistsError{GuildID: guildID, Name: name}
		}
	}
	return nil
}

// HTTPClient is an abstraction for making HTTP requests.
// The implementation is usually Go's stdlib http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AudioPiper downloads an attachment, transcodes it to the stored Opus
// frame format, and uploads the result to the sound store in one streaming
// pass.
type AudioPiper struct {
	store      *datalayer.SoundStore
	httpClient HTTPClient
}

func NewAudioPiper(store *datalayer.SoundStore, httpClient HTTPClient) *AudioPiper {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AudioPiper{store: store, httpClient: httpClient}
}

func (a *AudioPiper) Pipe(ctx context.Context, soundID, sourceURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file: %s", resp.Status)
	}

	frames, err := opus.Encode(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to start transcode: %w", err)
	}
	defer frames.Close()

	// Transcoded size is unknown until the stream ends.
	if err := a.store.Put(ctx, soundID, frames, -1); err != nil {
		return fmt.Errorf("failed to upload sound: %w", err)
	}
	return nil
}

type Handlers struct {
	Ready             ReadyHandler
	InteractionCreate InteractionCreateHandler
	ReactionAdd       ReactionAddHandler
}

func NewSession(token string, handlers Handlers) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	s.Identify.Intents |= discordgo.IntentGuildMessageReactions | discordgo.IntentGuildVoiceStates

	if handlers.Ready != nil {
		s.AddHandler(handlers.Ready)
	}
	if handlers.InteractionCreate != nil {
		s.AddHandler(handlers.InteractionCreate)
	}
	if handlers.ReactionAdd != nil {
		s.AddHandler(handlers.ReactionAdd)
	}

	return s, nil
}
