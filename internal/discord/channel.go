package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/keshon/jukebox/internal/music/player"
)

type messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// textChannel posts player notices, paced per channel.
type textChannel struct {
	api     messenger
	id      string
	limiter *rate.Limiter
}

func (c *textChannel) Send(ctx context.Context, text string, embed *discordgo.MessageEmbed) (player.Message, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	send := &discordgo.MessageSend{Content: text}
	if embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}
	m, err := c.api.ChannelMessageSendComplex(c.id, send, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &channelMessage{api: c.api, channelID: m.ChannelID, id: m.ID}, nil
}

type channelMessage struct {
	api       messenger
	channelID string
	id        string
}

func (m *channelMessage) Delete(ctx context.Context) error {
	return m.api.ChannelMessageDelete(m.channelID, m.id, discordgo.WithContext(ctx))
}

// limiters hands out one limiter per text channel.
type limiters struct {
	every time.Duration
	burst int

	mu  sync.Mutex
	all map[string]*rate.Limiter
}

func newLimiters(every time.Duration, burst int) *limiters {
	return &limiters{every: every, burst: burst, all: make(map[string]*rate.Limiter)}
}

func (l *limiters) get(channelID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.all[channelID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.every), l.burst)
		l.all[channelID] = lim
	}
	return lim
}

// TextChannel returns the notice channel for channelID.
func (b *Bot) TextChannel(channelID string) player.Channel {
	return &textChannel{api: b.dg, id: channelID, limiter: b.limiters.get(channelID)}
}
