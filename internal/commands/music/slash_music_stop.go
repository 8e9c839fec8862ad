package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/core"
)

type StopCommand struct{ Deps }

func (c *StopCommand) Name() string        { return "music-stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear the queue and leave voice" }
func (c *StopCommand) Aliases() []string   { return []string{"stop", "leave"} }
func (c *StopCommand) Group() string       { return group }
func (c *StopCommand) Category() string    { return category }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *StopCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	if err := c.Player.Stop(e.GuildID, requester(e.Member)); err != nil {
		return core.RespondEphemeral(s, e, errorText(err))
	}
	return core.RespondEphemeral(s, e, "Stopped.")
}
