package handler

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var addCommandOptions = []*discordgo.ApplicationCommandOption{
	{
		Name:        "audio",
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Description: "The audio file to register.",
		Required:    true,
	},
	{
		Name:        "name",
		Type:        discordgo.ApplicationCommandOptionString,
		Description: "The name of the sound. Defaults to the file name if not provided.",
		Required:    false,
	},
	{
		Name:        "emoji",
		Type:        discordgo.ApplicationCommandOptionString,
		Description: "The reaction emoji that plays this sound from the board.",
		Required:    false,
	},
	{
		Name:        "cron",
		Type:        discordgo.ApplicationCommandOptionString,
		Description: "Optional cron expression for scheduled plays.",
		Required:    false,
	},
}

var playCommandOptions = []*discordgo.ApplicationCommandOption{
	{
		Name:        "name",
		Type:        discordgo.ApplicationCommandOptionString,
		Description: "The name of the sound to play.",
		Required:    true,
	},
}

var removeCommandOptions = []*discordgo.ApplicationCommandOption{
	{
		Name:        "name",
		Type:        discordgo.ApplicationCommandOptionString,
		Description: "The name of the sound to remove.",
		Required:    true,
	},
}

// Commands is a list of all the commands the bot can handle.
// This is used to register the commands with Discord.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "ping",
		Description: "Check that the bot is alive",
	},
	{
		Name:        "sound",
		Description: "Manage and play soundboard sounds",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "list",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "List all sounds as a pickable menu",
			},
			{
				Name:        "add",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Add a sound from a file attachment",
				Options:     addCommandOptions,
			},
			{
				Name:        "play",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Play a sound in your voice channel",
				Options:     playCommandOptions,
			},
			{
				Name:        "remove",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Remove a sound",
				Options:     removeCommandOptions,
			},
			{
				Name:        "board",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Post the reaction soundboard in this channel",
			},
		},
	},
}

func EstablishCommands(s *discordgo.Session, guildID string) error {
	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, Commands)
	if err != nil {
		return fmt.Errorf("failed to establish commands: %w", err)
	}
	return nil
}
