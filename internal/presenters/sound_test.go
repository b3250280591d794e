package presenters_test

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/reverb-bot/reverb/internal/presenters"
	"github.com/reverb-bot/reverb/internal/repository"
)

var testSounds = []repository.Sound{
	{ID: "id-1", Name: "airhorn", Emoji: "📯"},
	{ID: "id-2", Name: "rimshot"},
	{ID: "id-3", Name: "sad-trombone", Emoji: "🎺"},
}

func TestBuildSoundSelectResponse(t *testing.T) {
	resp := presenters.BuildSoundSelectResponse(testSounds)

	minValues := 1
	expected := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pick a sound to play:",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    presenters.ComponentIDSoundSelect,
							Placeholder: "Pick a sound",
							MinValues:   &minValues,
							MaxValues:   1,
							Options: []discordgo.SelectMenuOption{
								{Label: "airhorn", Value: "id-1"},
								{Label: "rimshot", Value: "id-2"},
								{Label: "sad-trombone", Value: "id-3"},
							},
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(expected, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSoundSelectResponseEmpty(t *testing.T) {
	resp := presenters.BuildSoundSelectResponse(nil)
	if resp.Data.Content != "No sounds registered" {
		t.Errorf("content = %q; want the no-sounds message", resp.Data.Content)
	}
	if len(resp.Data.Components) != 0 {
		t.Error("empty guild response has components")
	}
}

func TestBuildSoundBoardContent(t *testing.T) {
	content := presenters.BuildSoundBoardContent(testSounds)

	expected := "**Soundboard** _(react to play)_\n" +
		"📯 airhorn\n" +
		"· rimshot\n" +
		"🎺 sad-trombone"
	if content != expected {
		t.Errorf("content = %q; want %q", content, expected)
	}
}

func TestBuildSoundBoardContentEmpty(t *testing.T) {
	if got := presenters.BuildSoundBoardContent(nil); got != "No sounds registered" {
		t.Errorf("content = %q; want the no-sounds message", got)
	}
}

func TestBoardEmojis(t *testing.T) {
	got := presenters.BoardEmojis(testSounds)
	want := []string{"📯", "🎺"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("emojis mismatch (-want +got):\n%s", diff)
	}
}
