package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/core"
)

type QueueCommand struct{ Deps }

func (c *QueueCommand) Name() string        { return "music-queue" }
func (c *QueueCommand) Description() string { return "Show the upcoming songs" }
func (c *QueueCommand) Aliases() []string   { return []string{"queue", "q"} }
func (c *QueueCommand) Group() string       { return group }
func (c *QueueCommand) Category() string    { return category }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *QueueCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	view, err := c.Player.Queue(e.GuildID)
	if err != nil {
		return core.RespondEphemeral(s, e, errorText(err))
	}
	return core.RespondEmbed(s, e, c.Embeds.Queue(view))
}

type HistoryCommand struct{ Deps }

func (c *HistoryCommand) Name() string        { return "music-history" }
func (c *HistoryCommand) Description() string { return "Show recently played songs" }
func (c *HistoryCommand) Aliases() []string   { return []string{"history"} }
func (c *HistoryCommand) Group() string       { return group }
func (c *HistoryCommand) Category() string    { return category }

func (c *HistoryCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *HistoryCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event
	if sctx.Storage == nil {
		return core.RespondEphemeral(s, e, "History is not available.")
	}

	records, err := sctx.Storage.FetchTracksHistory(e.GuildID)
	if err != nil {
		return core.RespondEphemeral(s, e, fmt.Sprintf("Failed to load history: %v", err))
	}
	return core.RespondEmbedEphemeral(s, e, c.Embeds.History(records))
}
