package presenters

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/reverb-bot/reverb/internal/repository"
)

var noSoundsResponse = &discordgo.InteractionResponse{
	Type: discordgo.InteractionResponseChannelMessageWithSource,
	Data: &discordgo.InteractionResponseData{
		Content: "No sounds registered",
	},
}

// ComponentIDSoundSelect is the custom ID of the sound picker menu.
const ComponentIDSoundSelect = "sound_select_menu"

func soundToSelectMenuOption(s repository.Sound) discordgo.SelectMenuOption {
	return discordgo.SelectMenuOption{
		Label: s.Name,
		Value: s.ID,
	}
}

var soundSelectMinValues = 1

// BuildSoundSelectResponse renders the guild's sounds as a select menu;
// picking an option plays that sound.
func BuildSoundSelectResponse(sounds []repository.Sound) *discordgo.InteractionResponse {
	if len(sounds) == 0 {
		return noSoundsResponse
	}

	var options []discordgo.SelectMenuOption
	for _, s := range sounds {
		options = append(options, soundToSelectMenuOption(s))
	}

	menu := discordgo.SelectMenu{
		CustomID:    ComponentIDSoundSelect,
		Placeholder: "Pick a sound",
		MinValues:   &soundSelectMinValues,
		MaxValues:   1,
		Options:     options,
	}

	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			menu,
		},
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pick a sound to play:",
			Components: []discordgo.MessageComponent{
				row,
			},
		},
	}
}

// BuildSoundBoardContent renders the reaction-menu message body: one line
// per sound with its reaction emoji. Sounds without an emoji are listed but
// not reactable.
func BuildSoundBoardContent(sounds []repository.Sound) string {
	if len(sounds) == 0 {
		return "No sounds registered"
	}

	var b strings.Builder
	b.WriteString("**Soundboard** _(react to play)_\n")
	for _, s := range sounds {
		if s.Emoji == "" {
			fmt.Fprintf(&b, "· %s\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", s.Emoji, s.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BoardEmojis returns the reaction emojis to seed the board message with,
// in listing order.
func BoardEmojis(sounds []repository.Sound) []string {
	var emojis []string
	for _, s := range sounds {
		if s.Emoji != "" {
			emojis = append(emojis, s.Emoji)
		}
	}
	return emojis
}
