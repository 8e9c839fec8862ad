// Package info holds informational commands.
package info

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/core"
)

type HelpCommand struct {
	AppName  string
	Registry *core.Registry
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get a list of available commands" }
func (c *HelpCommand) Aliases() []string   { return []string{} }
func (c *HelpCommand) Group() string       { return "core" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "view_as",
				Description: "View commands as categories or a flat list",
				Required:    false,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Categories", Value: "category"},
					{Name: "Flat list", Value: "flat"},
				},
			},
		},
	}
}

func (c *HelpCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := sctx.Session, sctx.Event

	viewAs := "category"
	if opts := e.ApplicationCommandData().Options; len(opts) > 0 {
		viewAs = opts[0].StringValue()
	}

	var output string
	if viewAs == "flat" {
		output = helpFlat(c.Registry.All())
	} else {
		output = helpByCategory(c.Registry.All())
	}

	return core.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
		Title:       c.AppName + " Help",
		Description: output,
		Color:       core.EmbedColor,
	})
}

func helpByCategory(all []core.Command) string {
	byCategory := make(map[string][]core.Command)
	for _, cmd := range all {
		byCategory[cmd.Category()] = append(byCategory[cmd.Category()], cmd)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var sb strings.Builder
	for i, cat := range categories {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**%s**\n", cat)
		for _, cmd := range byCategory[cat] {
			sb.WriteString(helpLine(cmd))
		}
	}
	return sb.String()
}

func helpFlat(all []core.Command) string {
	var sb strings.Builder
	for _, cmd := range all {
		sb.WriteString(helpLine(cmd))
	}
	return sb.String()
}

func helpLine(cmd core.Command) string {
	return fmt.Sprintf("`/%s` - %s\n", cmd.Name(), cmd.Description())
}
