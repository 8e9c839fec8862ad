package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/core"
	"github.com/keshon/jukebox/internal/music/player"
)

type PauseCommand struct{ Deps }

func (c *PauseCommand) Name() string        { return "music-pause" }
func (c *PauseCommand) Description() string { return "Pause or resume the current song" }
func (c *PauseCommand) Aliases() []string   { return []string{"pause", "resume"} }
func (c *PauseCommand) Group() string       { return group }
func (c *PauseCommand) Category() string    { return category }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *PauseCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	paused, err := c.Player.Pause(e.GuildID)
	if err != nil {
		return core.RespondEphemeral(s, e, errorText(err))
	}
	if paused {
		return core.Respond(s, e, "Player paused!")
	}
	return core.Respond(s, e, "Player resumed!")
}

type RepeatCommand struct{ Deps }

func (c *RepeatCommand) Name() string        { return "music-repeat" }
func (c *RepeatCommand) Description() string { return "Toggle repeating of the current song" }
func (c *RepeatCommand) Aliases() []string   { return []string{"repeat", "loop"} }
func (c *RepeatCommand) Group() string       { return group }
func (c *RepeatCommand) Category() string    { return category }

func (c *RepeatCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *RepeatCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	on, err := c.Player.Repeat(e.GuildID)
	if err != nil {
		return core.RespondEphemeral(s, e, errorText(err))
	}
	return core.Respond(s, e, repeatText(on))
}

func repeatText(on bool) string {
	if on {
		return "Repeat mode is on!"
	}
	return "Repeat mode is off!"
}

type SkipCommand struct{ Deps }

func (c *SkipCommand) Name() string        { return "music-skip" }
func (c *SkipCommand) Description() string { return "Skip the current song" }
func (c *SkipCommand) Aliases() []string   { return []string{"skip", "next"} }
func (c *SkipCommand) Group() string       { return group }
func (c *SkipCommand) Category() string    { return category }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *SkipCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	if err := c.Player.Skip(e.GuildID); err != nil {
		return core.RespondEphemeral(s, e, errorText(err))
	}
	return core.Respond(s, e, "Skipped current track!")
}

type WrongCommand struct{ Deps }

func (c *WrongCommand) Name() string        { return "music-wrong" }
func (c *WrongCommand) Description() string { return "Remove the last added song from the queue" }
func (c *WrongCommand) Aliases() []string   { return []string{"wrong", "undo"} }
func (c *WrongCommand) Group() string       { return group }
func (c *WrongCommand) Category() string    { return category }

func (c *WrongCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *WrongCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	t, err := c.Player.Wrong(e.GuildID)
	if err != nil {
		return core.RespondEphemeral(s, e, errorText(err))
	}
	return core.Respond(s, e, removedText(t))
}

func removedText(t *player.Track) string {
	title := t.Title()
	if title == "" {
		title = "(Not yet loaded)"
	}
	return fmt.Sprintf("Removed %s from queue!", title)
}

type ShuffleCommand struct{ Deps }

func (c *ShuffleCommand) Name() string        { return "music-shuffle" }
func (c *ShuffleCommand) Description() string { return "Shuffle the queue" }
func (c *ShuffleCommand) Aliases() []string   { return []string{"shuffle"} }
func (c *ShuffleCommand) Group() string       { return group }
func (c *ShuffleCommand) Category() string    { return category }

func (c *ShuffleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c)
}

func (c *ShuffleCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	res, err := c.Player.Shuffle(e.GuildID)
	if err != nil {
		return core.RespondEphemeral(s, e, errorText(err))
	}
	return core.Respond(s, e, shuffleText(res))
}

func shuffleText(r player.ShuffleResult) string {
	switch r {
	case player.ShuffleEmpty:
		return "I am not playing anything!"
	case player.ShuffleSingle:
		return "There are no tracks to shuffle!"
	default:
		return "Shuffle completed successfully!"
	}
}
