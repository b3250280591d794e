package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/reverb-bot/reverb/internal/config"
	"github.com/reverb-bot/reverb/internal/datalayer"
	"github.com/reverb-bot/reverb/internal/handler"
	"github.com/reverb-bot/reverb/internal/opus"
	"github.com/reverb-bot/reverb/internal/playback"
	"github.com/reverb-bot/reverb/internal/registry"
	"github.com/reverb-bot/reverb/internal/repository"
	"github.com/reverb-bot/reverb/internal/schedule"
	"github.com/reverb-bot/reverb/internal/voice"
)

// scheduleTick is how often upcoming cron runs are polled; scheduleWindow is
// how far ahead a run may be to get queued. The window exceeds the tick so
// no run can fall between polls.
const (
	scheduleTick   = 30 * time.Second
	scheduleWindow = 2 * time.Minute
)

func runScheduledPlays(
	ctx context.Context,
	session *discordgo.Session,
	repo repository.SoundRepository,
	player *voice.Player,
	scheduler *schedule.Scheduler,
) {
	ticker := time.NewTicker(scheduleTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		sounds, err := repo.ListScheduled(ctx)
		if err != nil {
			slog.Error("failed to list scheduled sounds", "error", err)
			continue
		}

		now := time.Now()
		for _, sound := range sounds {
			next, err := schedule.NextRunAfter(sound.Cron, now)
			if err != nil {
				slog.Warn("skipping sound with bad cron",
					"soundID", sound.ID, "cron", sound.Cron, "error", err)
				continue
			}
			if next.IsZero() || next.After(now.Add(scheduleWindow)) {
				continue
			}

			scheduler.Submit(ctx, schedule.Job{
				Key:   sound.ID,
				RunAt: next,
				Execute: func(ctx context.Context) {
					channels, err := session.GuildChannels(sound.GuildID)
					if err != nil {
						slog.Error("failed to get guild channels",
							"guildID", sound.GuildID, "error", err)
						return
					}
					channel := voice.MaxAttendedChannel(channels)
					if channel == nil {
						slog.Warn("no attended voice channel for scheduled play",
							"guildID", sound.GuildID, "soundID", sound.ID)
						return
					}

					err = player.Play(ctx, session, sound.GuildID, channel.ID, sound.ID)
					if err != nil {
						slog.Warn("scheduled play failed",
							"soundID", sound.ID, "error", err)
					}
				},
			})
		}
	}
}

func runBotForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	pool, err := datalayer.NewPostgresPoolFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := datalayer.MigratePostgres(pool); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}

	discordConfig, err := config.NewDiscordConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load discord config: %w", err)
	}

	playbackConfig, err := config.NewPlaybackConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load playback config: %w", err)
	}

	repo := repository.NewPostgresSoundRepository(pool)

	minioStorage, err := datalayer.NewMinioStorageFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create minio storage: %w", err)
	}
	if err := minioStorage.EnsureBucket(context.Background()); err != nil {
		return fmt.Errorf("failed to ensure minio bucket: %w", err)
	}
	store := datalayer.NewSoundStore(minioStorage)

	clips := registry.New(func(ctx context.Context, soundID string) ([]int16, error) {
		body, err := store.Fetch(ctx, soundID)
		if err != nil {
			return nil, fmt.Errorf("fetch sound: %w", err)
		}
		defer body.Close()
		return opus.ReadClip(opus.NewFrameReader(body))
	})

	player := voice.NewPlayer(clips, store, playback.Config{
		Warmup:       playbackConfig.Warmup,
		QueueTarget:  playbackConfig.QueueTarget,
		DrainTimeout: playbackConfig.DrainTimeout,
	})

	boards := handler.NewBoardTracker()

	session, err := handler.NewSession(discordConfig.Token, handler.Handlers{
		Ready:             handler.ReadyLog,
		InteractionCreate: handler.MakeInteractionCreateHandler(repo, store, clips, player, boards),
		ReactionAdd:       handler.MakeReactionAddHandler(repo, player, boards),
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("failed to close session", "error", err)
		}
	}()

	if err := handler.EstablishCommands(session, discordConfig.GuildID); err != nil {
		return fmt.Errorf("failed to establish commands: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runScheduledPlays(ctx, session, repo, player, schedule.NewScheduler())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	return nil
}

func main() {
	if err := runBotForever(); err != nil {
		log.Fatalf("failed to run bot: %v", err)
	}
}
