package core

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name       string
	aliases    []string
	runs       int
	components int
	err        error
}

func (c *stubCommand) Name() string        { return c.name }
func (c *stubCommand) Description() string { return "stub" }
func (c *stubCommand) Aliases() []string   { return c.aliases }
func (c *stubCommand) Group() string       { return "music" }
func (c *stubCommand) Category() string    { return "🎵 Music" }

func (c *stubCommand) Run(ctx interface{}) error {
	c.runs++
	return c.err
}

func (c *stubCommand) Component(ctx *ComponentInteractionContext) error {
	c.components++
	return nil
}

func (c *stubCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.name, Description: "stub"}
}

func interaction(guildID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{GuildID: guildID}}
}

func TestRegistryAliasesAndOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "music-stop"})
	r.Register(&stubCommand{name: "music-play", aliases: []string{"p"}})

	cmd, ok := r.Get("p")
	require.True(t, ok)
	assert.Equal(t, "music-play", cmd.Name())

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "music-play", all[0].Name())
	assert.Equal(t, "music-stop", all[1].Name())
}

func TestGuildOnlyDropsDirectMessages(t *testing.T) {
	inner := &stubCommand{name: "music-play"}
	cmd := ApplyMiddlewares(inner, WithGuildOnly())

	require.NoError(t, cmd.Run(&SlashInteractionContext{Event: interaction("")}))
	assert.Zero(t, inner.runs)

	require.NoError(t, cmd.Run(&SlashInteractionContext{Event: interaction("g1")}))
	assert.Equal(t, 1, inner.runs)
}

func TestMiddlewaresKeepComponentAndDefinition(t *testing.T) {
	inner := &stubCommand{name: "music-play", err: errors.New("boom")}
	cmd := ApplyMiddlewares(inner, WithGuildOnly(), WithCommandLogger())

	ch, ok := cmd.(ComponentInteractionHandler)
	require.True(t, ok)
	require.NoError(t, ch.Component(&ComponentInteractionContext{Event: interaction("g1")}))
	assert.Equal(t, 1, inner.components)
	assert.Zero(t, inner.runs)

	sp, ok := cmd.(SlashProvider)
	require.True(t, ok)
	assert.Equal(t, "music-play", sp.SlashDefinition().Name)

	assert.EqualError(t, cmd.Run(&SlashInteractionContext{Event: interaction("g1")}), "boom")
}

func TestCommandParam(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "input", Type: discordgo.ApplicationCommandOptionString, Value: "never gonna"},
		{Name: "now", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
	}
	assert.Equal(t, "input=never gonna now=true", CommandParam(opts))
	assert.Empty(t, CommandParam(nil))
}
