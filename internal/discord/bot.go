// Package discord runs the gateway session and adapts it to the player.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/commands/info"
	"github.com/keshon/jukebox/internal/commands/music"
	"github.com/keshon/jukebox/internal/config"
	"github.com/keshon/jukebox/internal/core"
	"github.com/keshon/jukebox/internal/eventlog"
	"github.com/keshon/jukebox/internal/music/embed"
	"github.com/keshon/jukebox/internal/music/player"
	"github.com/keshon/jukebox/internal/music/stream"
	"github.com/keshon/jukebox/internal/storage"
	"github.com/keshon/jukebox/pkg/jobmgr"
)

// AppName is shown in help and startup lines.
const AppName = "Jukebox"

const shutdownTimeout = 10 * time.Second

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	storage  *storage.Storage
	events   *eventlog.Logger
	player   *player.Player
	commands *core.Registry
	limiters *limiters
}

// New creates the session, the player and the command set. Nothing is
// connected until Run.
func New(cfg *config.Config, store *storage.Storage, events *eventlog.Logger, resolver player.Resolver) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		storage:  store,
		events:   events,
		commands: core.NewRegistry(),
		limiters: newLimiters(cfg.NotifyRate, 3),
	}

	panel := music.NewSelectPanel(dg)
	embeds := embed.New()
	b.player = player.New(player.Options{
		PollInterval:        cfg.PollInterval,
		IdleTimeout:         cfg.IdleTimeout,
		ConnectPollInterval: cfg.ConnectPollInterval,
		ConnectTimeout:      cfg.ConnectTimeout,
		SelectTimeout:       cfg.SelectTimeout,
		SearchResults:       cfg.SearchResults,
		QueuePreview:        cfg.QueuePreview,
	}, player.Deps{
		Connector: &voiceConnector{dg: dg, open: stream.FFmpeg(cfg.FFmpegPath)},
		Resolver:  resolver,
		Panel:     panel,
		Embeds:    embeds,
		Events:    events,
		History:   store,
		Jobs: jobmgr.NewManager(func(s string) {
			log.Debug().Str("job", s).Msg("[Jobs] status")
		}),
	})

	for _, c := range music.Commands(music.Deps{Player: b.player, Bot: b, Panel: panel, Embeds: embeds}) {
		b.commands.Register(core.ApplyMiddlewares(c,
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		))
	}
	b.commands.Register(core.ApplyMiddlewares(
		&info.HelpCommand{AppName: AppName, Registry: b.commands},
		core.WithCommandLogger(),
	))
	return b, nil
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.player.Subscribe(eventSource{dg: b.dg, blocked: b.cfg.IsGuildBlacklisted})
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onVoiceStateUpdate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Msg("❎ Shutdown signal received. Cleaning up...")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := b.player.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("Player shutdown did not finish")
	}
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.player.SetBotID(r.User.ID)

	for _, g := range r.Guilds {
		if b.leaveIfBlacklisted(s, g.ID) {
			continue
		}
		b.player.OnGuildAvailable(g.ID)
		b.syncCommands(g.ID)
	}

	b.events.Startup(r.User.Username)
	log.Info().Str("bot", r.User.Username).Int("guilds", len(r.Guilds)).Msgf("✅ Discord bot %s is running", r.User.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	log.Info().Str("guild_id", g.ID).Str("guild", g.Name).Msg("Guild available")
	b.syncCommands(g.ID)
}

func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	ev, ok := voiceEvent(v)
	if !ok || !b.events.Enabled() {
		return
	}
	b.events.VoiceMove(ev.GuildID, b.memberName(s, v), b.channelName(s, ev.BeforeChannelID), b.channelName(s, ev.AfterChannelID))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		cmd, ok := b.commands.Get(name)
		if !ok {
			log.Warn().Str("command", name).Msg("Unknown command")
			return
		}
		ctx := &core.SlashInteractionContext{Session: s, Event: i, Storage: b.storage}
		if err := cmd.Run(ctx); err != nil {
			log.Error().Err(err).Str("command", name).Msg("Error running slash command")
			_ = core.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
				Description: fmt.Sprintf("Error running slash command: %v", err),
				Color:       core.EmbedColor,
			})
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		cmd := matchComponent(b.commands, customID)
		if cmd == nil {
			log.Warn().Str("custom_id", customID).Msg("No matching component")
			return
		}
		handler, ok := cmd.(core.ComponentInteractionHandler)
		if !ok {
			return
		}
		ctx := &core.ComponentInteractionContext{Session: s, Event: i, Storage: b.storage}
		if err := handler.Component(ctx); err != nil {
			log.Error().Err(err).Str("command", cmd.Name()).Msg("Error running component")
		}

	default:
		log.Debug().Int("type", int(i.Type)).Msg("Unknown interaction type")
	}
}

// matchComponent finds the command whose name prefixes customID.
func matchComponent(r *core.Registry, customID string) core.Command {
	for _, cmd := range r.All() {
		if customID == cmd.Name() || strings.HasPrefix(customID, cmd.Name()+":") {
			return cmd
		}
	}
	return nil
}

func (b *Bot) syncCommands(guildID string) {
	if !b.cfg.InitSlashCommands {
		return
	}
	if err := b.registerCommands(guildID); err != nil {
		log.Error().Err(err).Str("guild_id", guildID).Msg("Error registering slash commands")
	}
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.IsGuildBlacklisted(guildID) {
		return false
	}
	log.Info().Str("guild_id", guildID).Msg("Leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild_id", guildID).Msg("Failed to leave guild")
	}
	return true
}

func (b *Bot) memberName(s *discordgo.Session, v *discordgo.VoiceStateUpdate) string {
	if v.Member != nil && v.Member.User != nil {
		return v.Member.DisplayName()
	}
	if m, err := s.State.Member(v.GuildID, v.UserID); err == nil && m.User != nil {
		return m.DisplayName()
	}
	return v.UserID
}

func (b *Bot) channelName(s *discordgo.Session, channelID string) string {
	if channelID == "" {
		return ""
	}
	if c, err := s.State.Channel(channelID); err == nil {
		return c.Name
	}
	return channelID
}
