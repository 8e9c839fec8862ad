package player

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/storage"
)

// Connector opens voice connections.
type Connector interface {
	Connect(ctx context.Context, guildID, channelID string) (Conn, error)
}

// Conn is one live voice connection. Status methods must not block.
type Conn interface {
	Play(ctx context.Context, info *sources.TrackInfo) error
	Pause()
	Resume()
	Stop()
	Move(ctx context.Context, channelID string) error
	IsPlaying() bool
	IsPaused() bool
	IsConnected() bool
	ChannelID() string
	// Members counts users in the connection's channel, the bot included.
	Members() int
	Disconnect(ctx context.Context) error
}

// Channel is a text channel notices are posted to.
type Channel interface {
	Send(ctx context.Context, text string, embed *discordgo.MessageEmbed) (Message, error)
}

type Message interface {
	Delete(ctx context.Context) error
}

type Resolver interface {
	Search(ctx context.Context, query string, limit int) ([]sources.TrackInfo, error)
	Resolve(ctx context.Context, url string) (*sources.TrackInfo, error)
	IsPlaylist(url string) bool
	LeadURL(url string) string
	Playlist(ctx context.Context, url string) ([]sources.TrackInfo, error)
}

// Panel lets the requester pick one of the search results. A nil result
// without error means the selection timed out or was dismissed.
type Panel interface {
	Select(ctx context.Context, req Request, results []sources.TrackInfo) (*sources.TrackInfo, error)
}

// EventLogger receives fire-and-forget guild events.
type EventLogger interface {
	Error(guildID string, err error)
	Skip(guildID, channel string)
	Added(guildID string, info *sources.TrackInfo)
	Playing(guildID string, info *sources.TrackInfo, channel string)
	Finished(guildID, channel string)
}

// Embedder renders a track card.
type Embedder interface {
	Track(requester Requester, info *sources.TrackInfo, title string) *discordgo.MessageEmbed
}

type History interface {
	AppendTrack(guildID string, rec storage.TrackRecord) error
}

// EventSource delivers platform lifecycle events.
type EventSource interface {
	OnGuildAvailable(func(guildID string))
	OnGuildRemoved(func(guildID string))
	OnVoiceStateChange(func(VoiceEvent))
}

// VoiceEvent is a member moving between voice channels. Empty ids mean "not
// in voice".
type VoiceEvent struct {
	GuildID         string
	UserID          string
	BeforeChannelID string
	AfterChannelID  string
}

type Requester struct {
	ID        string
	Name      string
	AvatarURL string
}

// Request is the context of one play command.
type Request struct {
	GuildID        string
	ChannelID      string
	VoiceChannelID string
	Author         Requester
	Query          string
	Now            bool
	Channel        Channel
}
