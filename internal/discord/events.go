package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/music/player"
)

// eventSource feeds gateway lifecycle events to the player.
type eventSource struct {
	dg      *discordgo.Session
	blocked func(guildID string) bool
}

func (e eventSource) OnGuildAvailable(fn func(guildID string)) {
	e.dg.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Guild == nil || e.blocked(g.ID) {
			return
		}
		fn(g.ID)
	})
}

func (e eventSource) OnGuildRemoved(fn func(guildID string)) {
	e.dg.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		// Unavailable guilds are outages, not removals.
		if g.Guild == nil || g.Unavailable {
			return
		}
		fn(g.ID)
	})
}

func (e eventSource) OnVoiceStateChange(fn func(player.VoiceEvent)) {
	e.dg.AddHandler(func(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		if ev, ok := voiceEvent(v); ok {
			fn(ev)
		}
	})
}

// voiceEvent maps a gateway update, dropping mute and deafen changes.
func voiceEvent(v *discordgo.VoiceStateUpdate) (player.VoiceEvent, bool) {
	if v == nil || v.VoiceState == nil {
		return player.VoiceEvent{}, false
	}
	ev := player.VoiceEvent{
		GuildID:        v.GuildID,
		UserID:         v.UserID,
		AfterChannelID: v.ChannelID,
	}
	if v.BeforeUpdate != nil {
		ev.BeforeChannelID = v.BeforeUpdate.ChannelID
	}
	if ev.BeforeChannelID == ev.AfterChannelID {
		return player.VoiceEvent{}, false
	}
	return ev, true
}
