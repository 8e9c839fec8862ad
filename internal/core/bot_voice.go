package core

import "github.com/keshon/jukebox/internal/music/player"

// BotVoice is what music commands need from the running bot.
type BotVoice interface {
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
	TextChannel(channelID string) player.Channel
}

type VoiceState struct {
	ChannelID string
	UserID    string
}
