// Package music holds the /music-* slash commands.
package music

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/core"
	"github.com/keshon/jukebox/internal/music/embed"
	"github.com/keshon/jukebox/internal/music/player"
)

const (
	group    = "music"
	category = "🎵 Music"
)

// Deps are shared by all music commands.
type Deps struct {
	Player *player.Player
	Bot    core.BotVoice
	Panel  *SelectPanel
	Embeds *embed.Builder
}

// Commands builds every music command. They are registered by the bot
// because they need the running player.
func Commands(d Deps) []core.Command {
	return []core.Command{
		&PlayCommand{Deps: d},
		&StopCommand{Deps: d},
		&PauseCommand{Deps: d},
		&RepeatCommand{Deps: d},
		&SkipCommand{Deps: d},
		&QueueCommand{Deps: d},
		&WrongCommand{Deps: d},
		&ShuffleCommand{Deps: d},
		&HistoryCommand{Deps: d},
	}
}

// errorText turns player errors into the replies users see.
func errorText(err error) string {
	switch {
	case errors.Is(err, player.ErrNotConnected):
		return "Wrong instance to process operation"
	case errors.Is(err, player.ErrNotInVoice):
		return "You're not connected to a voice channel!"
	case errors.Is(err, player.ErrQueueEmpty):
		return "There are no songs in the queue!"
	case errors.Is(err, player.ErrUnknownGuild):
		return "This server is not ready yet, try again in a moment."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func requester(m *discordgo.Member) player.Requester {
	if m == nil || m.User == nil {
		return player.Requester{Name: "Unknown author"}
	}
	return player.Requester{
		ID:        m.User.ID,
		Name:      m.DisplayName(),
		AvatarURL: m.AvatarURL(""),
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// simpleDefinition is the definition of a command without options.
func simpleDefinition(c core.Command) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}
