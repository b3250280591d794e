package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/reverb-bot/reverb/internal/config"
	"github.com/reverb-bot/reverb/internal/datalayer"
	"github.com/reverb-bot/reverb/internal/generator"
	"github.com/reverb-bot/reverb/internal/opus"
	"github.com/reverb-bot/reverb/internal/playback"
	"github.com/reverb-bot/reverb/internal/repository"
	"github.com/reverb-bot/reverb/internal/schedule"
)

var stdinReader = bufio.NewReader(os.Stdin)

var uuidGenerator = generator.UUIDV4Generator{}

func prompt(label string) string {
	fmt.Printf("%s: ", label)
	input, _ := stdinReader.ReadString('\n')
	return strings.TrimSpace(input)
}

var guildIDFlag = &cli.StringFlag{
	Name:     "guild-id",
	Usage:    "ID of the guild to operate on",
	Required: true,
}

func newStore(ctx context.Context) (*datalayer.SoundStore, error) {
	storage, err := datalayer.NewMinioStorageFromEnv()
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return datalayer.NewSoundStore(storage), nil
}

func main() {
	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	pool, err := datalayer.NewPostgresPoolFromEnv()
	if err != nil {
		log.Fatalf("Failed to create postgres pool: %v", err)
	}
	if err := datalayer.MigratePostgres(pool); err != nil {
		log.Fatalf("Failed to migrate postgres: %v", err)
	}
	repo := repository.NewPostgresSoundRepository(pool)

	app := &cli.App{
		Name:        "reverb-cli",
		Description: "A development CLI tool for managing Reverb sounds without Discord",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all sounds for a specific guild",
				Flags: []cli.Flag{guildIDFlag},
				Action: func(c *cli.Context) error {
					sounds, err := repo.List(c.Context, c.String("guild-id"))
					if err != nil {
						return cli.Exit("Failed to list sounds: "+err.Error(), 1)
					}
					if len(sounds) == 0 {
						log.Println("No sounds found for the specified guild.")
						return nil
					}

					for _, sound := range sounds {
						line := fmt.Sprintf("%s  %s", sound.ID, sound.Name)
						if sound.Emoji != "" {
							line += "  " + sound.Emoji
						}
						log.Println(line)

						if sound.Cron == "" {
							continue
						}
						runs, err := schedule.NextRunsAfter(sound.Cron, time.Now(), 3)
						if err != nil {
							log.Printf("  bad cron %q: %v", sound.Cron, err)
							continue
						}
						for _, run := range runs {
							log.Printf("  next run: %s", run.Format(time.RFC3339))
						}
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Transcode a local audio file and register it as a sound",
				ArgsUsage: "<audio-file>",
				Flags:     []cli.Flag{guildIDFlag},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("Please provide an audio file path", 1)
					}

					file, err := os.Open(path)
					if err != nil {
						return cli.Exit("Failed to open audio file: "+err.Error(), 1)
					}
					defer file.Close()

					name := prompt("Enter sound name")
					emoji := prompt("Enter reaction emoji (optional)")
					cron := prompt("Enter cron expression (optional)")
					if cron != "" {
						if err := schedule.ValidateCron(cron); err != nil {
							return cli.Exit("Invalid cron expression: "+err.Error(), 1)
						}
					}

					store, err := newStore(c.Context)
					if err != nil {
						return cli.Exit("Failed to create sound store: "+err.Error(), 1)
					}

					id, err := uuidGenerator.Next()
					if err != nil {
						return cli.Exit("Failed to generate sound ID: "+err.Error(), 1)
					}

					frames, err := opus.Encode(file)
					if err != nil {
						return cli.Exit("Failed to start transcode: "+err.Error(), 1)
					}
					defer frames.Close()

					if err := store.Put(c.Context, id, frames, -1); err != nil {
						return cli.Exit("Failed to upload sound: "+err.Error(), 1)
					}

					info, err := os.Stat(path)
					if err != nil {
						return cli.Exit("Failed to stat audio file: "+err.Error(), 1)
					}

					sound := repository.Sound{
						ID:       id,
						GuildID:  c.String("guild-id"),
						Name:     name,
						Emoji:    emoji,
						Cron:     cron,
						FileSize: info.Size(),
					}
					if err := repo.Save(c.Context, sound); err != nil {
						return cli.Exit("Failed to save sound: "+err.Error(), 1)
					}

					log.Printf("Added sound %s with ID %s", name, id)
					return nil
				},
			},
			{
				Name:      "inspect",
				Usage:     "Decode a stored sound and report its shape",
				ArgsUsage: "<sound-id>",
				Action: func(c *cli.Context) error {
					soundID := c.Args().First()
					if soundID == "" {
						return cli.Exit("Please provide a sound ID", 1)
					}

					store, err := newStore(c.Context)
					if err != nil {
						return cli.Exit("Failed to create sound store: "+err.Error(), 1)
					}

					body, err := store.Fetch(c.Context, soundID)
					if err != nil {
						return cli.Exit("Failed to fetch sound: "+err.Error(), 1)
					}
					defer body.Close()

					clip, err := opus.ReadClip(opus.NewFrameReader(body))
					if err != nil {
						return cli.Exit("Failed to decode sound: "+err.Error(), 1)
					}

					frameCount := (len(clip) + playback.DefaultFrameSamples - 1) / playback.DefaultFrameSamples
					log.Printf("samples:  %d", len(clip))
					log.Printf("duration: %s", playback.ClipDuration(clip))
					log.Printf("frames:   %d (%d samples each)", frameCount, playback.DefaultFrameSamples)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a sound and its stored audio",
				ArgsUsage: "<sound-id>",
				Action: func(c *cli.Context) error {
					soundID := c.Args().First()
					if soundID == "" {
						return cli.Exit("Please provide a sound ID", 1)
					}

					store, err := newStore(c.Context)
					if err != nil {
						return cli.Exit("Failed to create sound store: "+err.Error(), 1)
					}

					if err := store.Remove(c.Context, soundID); err != nil {
						log.Printf("Failed to remove stored audio: %v", err)
					}
					if err := repo.Delete(c.Context, soundID); err != nil {
						return cli.Exit("Failed to delete sound: "+err.Error(), 1)
					}

					log.Println("Sound removed.")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error running CLI: %v", err)
	}
}
