package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/core"
	"github.com/keshon/jukebox/internal/music/player"
	"github.com/keshon/jukebox/internal/music/sources"
)

const playTimeout = 30 * time.Second

type PlayCommand struct{ Deps }

func (c *PlayCommand) Name() string        { return "music-play" }
func (c *PlayCommand) Description() string { return "Play a song by link or search query" }
func (c *PlayCommand) Aliases() []string   { return []string{"play", "p"} }
func (c *PlayCommand) Group() string       { return group }
func (c *PlayCommand) Category() string    { return category }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "input",
				Description: "Link, playlist or search query",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "now",
				Description: "Put the song in front of the queue",
				Required:    false,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event

	input, now := playOptions(e.ApplicationCommandData().Options)
	if input == "" {
		return core.RespondEphemeral(s, e, "Please provide a link or a search query.")
	}

	author := requester(e.Member)
	vs, err := c.Bot.FindUserVoiceState(e.GuildID, author.ID)
	if err != nil || vs.ChannelID == "" {
		return core.RespondEphemeral(s, e, errorText(player.ErrNotInVoice))
	}

	if err := core.DeferEphemeral(s, e); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	req := player.Request{
		GuildID:        e.GuildID,
		ChannelID:      e.ChannelID,
		VoiceChannelID: vs.ChannelID,
		Author:         author,
		Query:          input,
		Now:            now,
		Channel:        c.Bot.TextChannel(e.ChannelID),
	}

	playCtx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()
	if err := c.Player.Play(playCtx, req); err != nil {
		log.Warn().Err(err).Str("guild_id", e.GuildID).Msg("[Music] play failed")
		return core.EditResponse(s, e, errorText(err))
	}

	reply := "Queued!"
	if !sources.IsURL(input) {
		reply = "Pick a song from the list in the channel."
	}
	return core.EditResponse(s, e, reply)
}

// Component receives picks from the search selection menu.
func (c *PlayCommand) Component(ctx *core.ComponentInteractionContext) error {
	s := ctx.Session
	e := ctx.Event

	data := e.MessageComponentData()
	id, ok := strings.CutPrefix(data.CustomID, selectPrefix)
	if !ok || len(data.Values) == 0 {
		return nil
	}

	_, err := c.Panel.Choose(id, interactionUserID(e), data.Values[0])
	switch {
	case errors.Is(err, ErrSelectionExpired):
		return core.RespondEphemeral(s, e, "This selection has expired.")
	case errors.Is(err, ErrNotYourSelection):
		return core.RespondEphemeral(s, e, "Only the one who searched can pick a song.")
	case err != nil:
		return core.RespondEphemeral(s, e, fmt.Sprintf("Error: %v", err))
	}

	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func playOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) (input string, now bool) {
	for _, opt := range opts {
		switch opt.Name {
		case "input":
			input = strings.TrimSpace(opt.StringValue())
		case "now":
			now = opt.BoolValue()
		}
	}
	return input, now
}
